package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/softball-tournament/brackets"
	"github.com/Dosada05/softball-tournament/models"
	"github.com/Dosada05/softball-tournament/repositories"
	"github.com/Dosada05/softball-tournament/scoring"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	Load(ctx context.Context) error
	Close(ctx context.Context) error

	Teams() []models.Team
	Games() []models.Game
	Game(id int) (models.Game, error)
	Standings() []models.Standing
	Leaderboard(limit int) models.Leaderboard
	Champion() (models.Champion, bool)

	UpdateGameField(ctx context.Context, gameID int, field models.GameField, value string) (models.Game, error)
	UpdateInning(ctx context.Context, gameID, inning, side int, value string) (models.Game, error)
	SwapTeams(ctx context.Context, gameID int) (models.Game, error)
	SaveBatting(ctx context.Context, gameID, playerID int, line models.BattingLine) (models.Game, error)
	SavePitching(ctx context.Context, gameID, playerID int, line models.PitchingLine) (models.Game, error)
	Reset(ctx context.Context) error

	UpdatePlayer(ctx context.Context, playerID int, update models.PlayerUpdate) (models.Player, error)
	AddPlayers(ctx context.Context, teamID int, players []models.Player) ([]models.Player, error)
}

type TournamentOptions struct {
	Debounce       time.Duration
	PersistTimeout time.Duration
	SeedPolicy     brackets.SeedPolicy
	// Days labels the generated schedule when the store holds no games.
	Days []string
}

// tournamentService owns the live tournament state. Every exported method
// takes mu, so mutations run one at a time and reads see a whole state.
type tournamentService struct {
	teamRepo repositories.TeamRepository
	gameRepo repositories.GameRepository
	statRepo repositories.StatRepository

	seeder    *brackets.ChampionshipSeeder
	writeBack *WriteBackSynchronizer
	notifier  Notifier
	events    Publisher
	log       zerolog.Logger

	persistTimeout time.Duration
	days           []string

	mu        sync.RWMutex
	loaded    bool
	teams     []models.Team
	games     []models.Game
	standings []models.Standing
	champion  *models.Champion
}

func NewTournamentService(
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
	statRepo repositories.StatRepository,
	notifier Notifier,
	events Publisher,
	opts TournamentOptions,
	log zerolog.Logger,
) TournamentService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if events == nil {
		events = nopPublisher{}
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = DefaultPersistTimeout
	}

	s := &tournamentService{
		teamRepo:       teamRepo,
		gameRepo:       gameRepo,
		statRepo:       statRepo,
		seeder:         brackets.NewChampionshipSeeder(opts.SeedPolicy),
		notifier:       notifier,
		events:         events,
		log:            log.With().Str("component", "tournament").Logger(),
		persistTimeout: opts.PersistTimeout,
		days:           opts.Days,
		teams:          []models.Team{},
		games:          []models.Game{},
		standings:      []models.Standing{},
	}
	s.writeBack = NewWriteBackSynchronizer(gameRepo, s, notifier, opts.Debounce, opts.PersistTimeout, log)
	return s
}

// Load reads teams and games from the store. An empty store gets the
// generated preliminary schedule; a missing championship record is created.
func (s *tournamentService) Load(ctx context.Context) error {
	var teams []models.Team
	var games []models.Game

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.FetchTeamsWithRosters(gctx)
		if err != nil {
			return fmt.Errorf("failed to load teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		games, err = s.gameRepo.FetchGames(gctx)
		if err != nil {
			return fmt.Errorf("failed to load games: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if len(games) == 0 && len(teams) >= 2 {
		schedule, err := brackets.PreliminarySchedule(teams, s.days)
		if err != nil {
			return fmt.Errorf("failed to generate schedule: %w", err)
		}
		if err := s.gameRepo.CreateGames(ctx, nil, schedule); err != nil {
			return fmt.Errorf("failed to store generated schedule: %w", err)
		}
		s.log.Info().Int("games", len(schedule)).Msg("generated preliminary schedule")
		games = schedule
	}

	if !hasGame(games, models.ChampionshipGameID) {
		final := championshipPlaceholder(s.days)
		if err := s.gameRepo.CreateGames(ctx, nil, []models.Game{final}); err != nil {
			return fmt.Errorf("failed to create championship game: %w", err)
		}
		games = append(games, final)
	}

	for i := range games {
		games[i].Innings = scoring.EnsureInnings(games[i].Innings)
	}
	sort.SliceStable(games, func(i, j int) bool { return games[i].ID < games[j].ID })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = teams
	s.games = games
	s.standings = []models.Standing{}
	s.champion = nil
	s.loaded = true
	s.recomputeLocked()
	s.checkChampionLocked(false)

	s.log.Info().Int("teams", len(teams)).Int("games", len(games)).Msg("tournament loaded")
	return nil
}

func (s *tournamentService) Close(ctx context.Context) error {
	return s.writeBack.Close(ctx)
}

func (s *tournamentService) Teams() []models.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Team, len(s.teams))
	for i, t := range s.teams {
		out[i] = t
		out[i].Players = append([]models.Player(nil), t.Players...)
	}
	return out
}

func (s *tournamentService) Games() []models.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Game, len(s.games))
	for i := range s.games {
		out[i] = *s.games[i].Clone()
	}
	return out
}

func (s *tournamentService) Game(id int) (models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, err := s.gameLocked(id)
	if err != nil {
		return models.Game{}, err
	}
	return *g.Clone(), nil
}

func (s *tournamentService) Standings() []models.Standing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Standing{}, s.standings...)
}

func (s *tournamentService) Leaderboard(limit int) models.Leaderboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scoring.BuildLeaderboard(s.teams, s.games, limit)
}

func (s *tournamentService) Champion() (models.Champion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.champion == nil {
		return models.Champion{}, false
	}
	return *s.champion, true
}

// SnapshotGame serves the write-back path with the game's latest state.
func (s *tournamentService) SnapshotGame(id int) (models.GameUpdate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, err := s.gameLocked(id)
	if err != nil {
		return models.GameUpdate{}, false
	}
	return g.Update(), true
}

func (s *tournamentService) UpdateGameField(ctx context.Context, gameID int, field models.GameField, value string) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gameLocked(gameID)
	if err != nil {
		return models.Game{}, err
	}
	if field.IsTeamRef() {
		if g.IsChampionship() {
			return models.Game{}, ErrChampionshipTeamsLocked
		}
		if err := s.checkTeamRefLocked(value); err != nil {
			return models.Game{}, err
		}
	}

	if err := scoring.ApplyField(g, field, value); err != nil {
		return models.Game{}, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return s.afterGameChangeLocked(g), nil
}

func (s *tournamentService) UpdateInning(ctx context.Context, gameID, inning, side int, value string) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gameLocked(gameID)
	if err != nil {
		return models.Game{}, err
	}
	if err := scoring.ApplyInningEdit(g, inning, side, value); err != nil {
		return models.Game{}, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return s.afterGameChangeLocked(g), nil
}

func (s *tournamentService) SwapTeams(ctx context.Context, gameID int) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gameLocked(gameID)
	if err != nil {
		return models.Game{}, err
	}
	scoring.SwapTeams(g)
	return s.afterGameChangeLocked(g), nil
}

// SaveBatting writes the line to the store first and merges it into memory
// only when the write succeeded.
func (s *tournamentService) SaveBatting(ctx context.Context, gameID, playerID int, line models.BattingLine) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gameLocked(gameID)
	if err != nil {
		return models.Game{}, err
	}
	if !s.hasPlayerLocked(playerID) {
		return models.Game{}, ErrPlayerNotFound
	}

	callCtx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()
	if err := s.statRepo.UpsertBattingStat(callCtx, gameID, playerID, line); err != nil {
		s.log.Error().Err(err).Int("game_id", gameID).Int("player_id", playerID).Msg("failed to save batting stats")
		s.notifier.Notify(NotificationError, fmt.Sprintf("Failed to save batting stats for game %d", gameID))
		return models.Game{}, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	scoring.UpsertBatting(g, playerID, line)
	s.publishGameLocked(g)
	return *g.Clone(), nil
}

func (s *tournamentService) SavePitching(ctx context.Context, gameID, playerID int, line models.PitchingLine) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gameLocked(gameID)
	if err != nil {
		return models.Game{}, err
	}
	if !s.hasPlayerLocked(playerID) {
		return models.Game{}, ErrPlayerNotFound
	}

	callCtx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()
	if err := s.statRepo.UpsertPitchingStat(callCtx, gameID, playerID, line); err != nil {
		s.log.Error().Err(err).Int("game_id", gameID).Int("player_id", playerID).Msg("failed to save pitching stats")
		s.notifier.Notify(NotificationError, fmt.Sprintf("Failed to save pitching stats for game %d", gameID))
		return models.Game{}, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	scoring.UpsertPitching(g, playerID, line)
	s.publishGameLocked(g)
	return *g.Clone(), nil
}

// Reset clears every score and box score in the store and in memory. Teams,
// players and the schedule are kept; the championship game is unseeded and
// then seeded again from the fresh table.
func (s *tournamentService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.quiesceWriteBackLocked(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	if err := s.gameRepo.ResetAllScoresAndStats(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to reset tournament")
		s.notifier.Notify(NotificationError, "Failed to reset the tournament")
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	for i := range s.games {
		scoring.ResetScores(&s.games[i], s.games[i].IsChampionship())
	}
	s.standings = []models.Standing{}
	s.champion = nil
	s.recomputeLocked()

	s.log.Info().Msg("tournament reset")
	s.notifier.Notify(NotificationSuccess, "Tournament reset")
	s.events.Publish(EventTournamentReset, nil)
	return nil
}

// quiesceWriteBackLocked drops pending game writes and waits out any flush
// that is already running, so no pre-reset snapshot lands after the clear.
// The wait releases mu because a running flush snapshots games under it.
// It always returns with mu held; no new flush can start until mu is
// released, since only locked mutations mark games dirty.
func (s *tournamentService) quiesceWriteBackLocked(ctx context.Context) error {
	for {
		s.writeBack.Cancel()
		if !s.writeBack.Busy() {
			return nil
		}
		s.mu.Unlock()
		err := s.writeBack.Wait(ctx)
		s.mu.Lock()
		if err != nil {
			return err
		}
	}
}

func (s *tournamentService) UpdatePlayer(ctx context.Context, playerID int, update models.PlayerUpdate) (models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerLocked(playerID)
	if p == nil {
		return models.Player{}, ErrPlayerNotFound
	}
	if update.IsEmpty() {
		return *p, nil
	}

	stored, err := s.teamRepo.UpdatePlayer(ctx, playerID, update)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return models.Player{}, ErrPlayerNotFound
		}
		return models.Player{}, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	*p = *stored
	return *p, nil
}

// AddPlayers appends already-structured roster rows to a team.
func (s *tournamentService) AddPlayers(ctx context.Context, teamID int, players []models.Player) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team := s.teamLocked(teamID)
	if team == nil {
		return nil, ErrTeamNotFound
	}
	rows := make([]*models.Player, 0, len(players))
	for i := range players {
		p := players[i]
		if p.Name == "" {
			return nil, fmt.Errorf("%w: player %d has no name", ErrValidationFailed, i)
		}
		p.TeamID = teamID
		rows = append(rows, &p)
	}

	if err := s.teamRepo.CreatePlayers(ctx, nil, rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	created := make([]models.Player, 0, len(rows))
	for _, p := range rows {
		team.Players = append(team.Players, *p)
		created = append(created, *p)
	}
	s.log.Info().Int("team_id", teamID).Int("players", len(created)).Msg("players added")
	return created, nil
}

// afterGameChangeLocked marks g dirty and propagates the edit: preliminary
// changes recompute the table and may re-seed the final; final changes may
// decide the champion.
func (s *tournamentService) afterGameChangeLocked(g *models.Game) models.Game {
	s.writeBack.MarkDirty(g.ID)
	s.publishGameLocked(g)

	if g.IsChampionship() {
		s.checkChampionLocked(true)
	} else {
		s.recomputeLocked()
	}
	return *g.Clone()
}

func (s *tournamentService) recomputeLocked() {
	standings, err := scoring.CalculateStandings(s.teams, s.games)
	if err != nil {
		if errors.Is(err, scoring.ErrTiedGame) {
			s.log.Debug().Err(err).Msg("keeping previous standings")
			return
		}
		s.log.Error().Err(err).Msg("failed to calculate standings")
		return
	}
	s.standings = standings
	s.events.Publish(EventStandingsUpdate, standings)

	final, err := s.gameLocked(models.ChampionshipGameID)
	if err != nil {
		return
	}
	if s.seeder.Seed(standings, final) {
		s.log.Info().Interface("team1_id", final.Team1ID).Interface("team2_id", final.Team2ID).Msg("championship game seeded")
		s.writeBack.MarkDirty(final.ID)
		s.publishGameLocked(final)
		s.checkChampionLocked(true)
	}
}

func (s *tournamentService) checkChampionLocked(announce bool) {
	final, err := s.gameLocked(models.ChampionshipGameID)
	if err != nil {
		return
	}
	winnerID, ok := scoring.Winner(final)
	if !ok {
		s.champion = nil
		return
	}
	team := s.teamLocked(winnerID)
	if team == nil {
		s.champion = nil
		return
	}
	if s.champion != nil && s.champion.TeamID == team.ID {
		return
	}

	s.champion = &models.Champion{TeamID: team.ID, TeamName: team.Name, GameID: final.ID}
	if announce {
		s.log.Info().Int("team_id", team.ID).Str("team", team.Name).Msg("champion decided")
		s.notifier.Notify(NotificationSuccess, fmt.Sprintf("Champion decided: %s", team.Name))
		s.events.Publish(EventChampionDecided, *s.champion)
	}
}

func (s *tournamentService) publishGameLocked(g *models.Game) {
	s.events.Publish(EventGameUpdated, g.Clone())
}

func (s *tournamentService) gameLocked(id int) (*models.Game, error) {
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	for i := range s.games {
		if s.games[i].ID == id {
			return &s.games[i], nil
		}
	}
	return nil, ErrGameNotFound
}

func (s *tournamentService) teamLocked(id int) *models.Team {
	for i := range s.teams {
		if s.teams[i].ID == id {
			return &s.teams[i]
		}
	}
	return nil
}

func (s *tournamentService) playerLocked(id int) *models.Player {
	for i := range s.teams {
		if p, ok := s.teams[i].FindPlayer(id); ok {
			return p
		}
	}
	return nil
}

func (s *tournamentService) hasPlayerLocked(id int) bool {
	return s.playerLocked(id) != nil
}

// checkTeamRefLocked accepts an empty value or the id of a known team.
func (s *tournamentService) checkTeamRefLocked(value string) error {
	id := scoring.ParseCount(value)
	if id == nil {
		return nil
	}
	if s.teamLocked(*id) == nil {
		return fmt.Errorf("%w: %q", ErrTeamNotFound, value)
	}
	return nil
}

func hasGame(games []models.Game, id int) bool {
	for i := range games {
		if games[i].ID == id {
			return true
		}
	}
	return false
}

func championshipPlaceholder(days []string) models.Game {
	if len(days) == 0 {
		days = brackets.DefaultDays
	}
	return models.Game{
		ID:      models.ChampionshipGameID,
		Day:     days[len(days)-1],
		Time:    brackets.DefaultTimes[len(brackets.DefaultTimes)-1],
		Innings: scoring.NewInnings(),
	}
}
