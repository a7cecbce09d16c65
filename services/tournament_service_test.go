package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/softball-tournament/brackets"
	"github.com/Dosada05/softball-tournament/models"
	"github.com/rs/zerolog"
)

type fixture struct {
	svc    *tournamentService
	teams  *memTeamRepo
	games  *memGameRepo
	stats  *memStatRepo
	notes  *recordingNotifier
	events *recordingPublisher
}

func sixTeamRoster() []models.Team {
	names := []string{"Tigres", "Leones", "Aguilas", "Toros", "Halcones", "Piratas"}
	teams := make([]models.Team, len(names))
	for i, n := range names {
		id := i + 1
		teams[i] = models.Team{ID: id, Name: n, Players: []models.Player{
			{ID: id * 10, TeamID: id, Number: 1, Name: n + " Pitcher"},
			{ID: id*10 + 1, TeamID: id, Number: 2, Name: n + " Catcher"},
		}}
	}
	return teams
}

func newFixture(t *testing.T, policy brackets.SeedPolicy, games ...models.Game) *fixture {
	t.Helper()
	return newFixtureWith(t, policy, time.Hour, nil, games...)
}

// newFixtureWith builds a fixture with a custom debounce; a non-nil block
// holds every game write until it is closed.
func newFixtureWith(t *testing.T, policy brackets.SeedPolicy, debounce time.Duration, block chan struct{}, games ...models.Game) *fixture {
	t.Helper()
	f := &fixture{
		teams:  &memTeamRepo{teams: sixTeamRoster()},
		games:  newMemGameRepo(games...),
		stats:  newMemStatRepo(),
		notes:  &recordingNotifier{},
		events: &recordingPublisher{},
	}
	f.games.block = block
	svc := NewTournamentService(f.teams, f.games, f.stats, f.notes, f.events, TournamentOptions{
		Debounce:       debounce,
		PersistTimeout: time.Second,
		SeedPolicy:     policy,
	}, zerolog.Nop())
	f.svc = svc.(*tournamentService)
	if err := f.svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return f
}

// playGame enters a full score through the inning grid.
func playGame(t *testing.T, svc TournamentService, id int, runs1, runs2 string) {
	t.Helper()
	if _, err := svc.UpdateInning(context.Background(), id, 0, 0, runs1); err != nil {
		t.Fatalf("inning top: %v", err)
	}
	if _, err := svc.UpdateInning(context.Background(), id, 0, 1, runs2); err != nil {
		t.Fatalf("inning bottom: %v", err)
	}
}

func TestLoadGeneratesScheduleForEmptyStore(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)

	games := f.svc.Games()
	if len(games) != models.PreliminaryGameCount+1 {
		t.Fatalf("games = %d, want %d", len(games), models.PreliminaryGameCount+1)
	}
	if len(f.games.created) != models.PreliminaryGameCount+1 {
		t.Fatalf("stored %d games", len(f.games.created))
	}
	final, err := f.svc.Game(models.ChampionshipGameID)
	if err != nil {
		t.Fatalf("final: %v", err)
	}
	if final.Team1ID == nil || final.Team2ID == nil {
		t.Fatalf("final must be seeded after load")
	}
	if got := f.svc.writeBack.Pending(); len(got) != 1 || got[0] != models.ChampionshipGameID {
		t.Fatalf("pending = %v, want seeded final only", got)
	}
}

func TestLoadCreatesMissingChampionship(t *testing.T) {
	one := models.Game{ID: 1, Team1ID: models.IntPtr(1), Team2ID: models.IntPtr(2)}
	f := newFixture(t, brackets.SeedPolicyLive, one)

	if len(f.svc.Games()) != 2 {
		t.Fatalf("games = %d, want 2", len(f.svc.Games()))
	}
	g, err := f.svc.Game(1)
	if err != nil {
		t.Fatalf("game: %v", err)
	}
	if len(g.Innings) != models.RegulationInnings {
		t.Fatalf("innings not filled on load: %d", len(g.Innings))
	}
}

func TestInningEditDrivesStandingsAndSeeding(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	ctx := context.Background()

	g1, _ := f.svc.Game(1)
	playGame(t, f.svc, 1, "1", "6")

	standings := f.svc.Standings()
	if standings[0].TeamID != *g1.Team2ID || standings[0].Wins != 1 {
		t.Fatalf("leader = %+v, want winner of game 1", standings[0])
	}

	final, _ := f.svc.Game(models.ChampionshipGameID)
	if *final.Team2ID != standings[0].TeamID || *final.Team1ID != standings[1].TeamID {
		t.Fatalf("final = %d vs %d, want %d vs %d", *final.Team1ID, *final.Team2ID, standings[1].TeamID, standings[0].TeamID)
	}

	game, err := f.svc.UpdateInning(ctx, 1, 1, 0, "2")
	if err != nil {
		t.Fatalf("inning: %v", err)
	}
	if *game.Score1 != 3 || *game.Score2 != 6 {
		t.Fatalf("score = %d-%d, want 3-6", *game.Score1, *game.Score2)
	}
	if f.svc.writeBack.State(1) != SyncDirty {
		t.Fatalf("edited game must be dirty")
	}
	if !f.events.has(EventStandingsUpdate) || !f.events.has(EventGameUpdated) {
		t.Fatalf("events = %v", f.events.events)
	}
}

func TestTiedGameKeepsPreviousStandings(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	ctx := context.Background()

	playGame(t, f.svc, 1, "5", "2")
	before := f.svc.Standings()

	if _, err := f.svc.UpdateGameField(ctx, 2, models.FieldScore1, "4"); err != nil {
		t.Fatalf("score1: %v", err)
	}
	if _, err := f.svc.UpdateGameField(ctx, 2, models.FieldScore2, "4"); err != nil {
		t.Fatalf("score2: %v", err)
	}

	after := f.svc.Standings()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("row %d changed on tie: %+v -> %+v", i, before[i], after[i])
		}
	}

	if _, err := f.svc.UpdateGameField(ctx, 2, models.FieldScore2, "5"); err != nil {
		t.Fatalf("score2: %v", err)
	}
	played := 0
	for _, s := range f.svc.Standings() {
		played += s.GamesPlayed()
	}
	if played != 4 {
		t.Fatalf("games played = %d, want 4 once the tie is broken", played)
	}
}

func TestChampionshipTeamsLocked(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	_, err := f.svc.UpdateGameField(context.Background(), models.ChampionshipGameID, models.FieldTeam1ID, "3")
	if !errors.Is(err, ErrChampionshipTeamsLocked) {
		t.Fatalf("err = %v, want ErrChampionshipTeamsLocked", err)
	}
}

func TestUpdateGameFieldRejectsUnknownTeam(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	_, err := f.svc.UpdateGameField(context.Background(), 1, models.FieldTeam1ID, "42")
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("err = %v, want ErrTeamNotFound", err)
	}
	if _, err := f.svc.UpdateGameField(context.Background(), 99, models.FieldHits1, "1"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("err = %v, want ErrGameNotFound", err)
	}
}

func TestChampionDecided(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	final, _ := f.svc.Game(models.ChampionshipGameID)

	playGame(t, f.svc, models.ChampionshipGameID, "2", "4")

	champ, ok := f.svc.Champion()
	if !ok || champ.TeamID != *final.Team2ID {
		t.Fatalf("champion = %+v/%v, want team %d", champ, ok, *final.Team2ID)
	}
	if f.notes.count(NotificationSuccess) != 1 || !f.events.has(EventChampionDecided) {
		t.Fatalf("champion was not announced")
	}

	// Same winner again: no second announcement.
	if _, err := f.svc.UpdateGameField(context.Background(), models.ChampionshipGameID, models.FieldHits1, "5"); err != nil {
		t.Fatalf("hits: %v", err)
	}
	if f.notes.count(NotificationSuccess) != 1 {
		t.Fatalf("champion announced twice")
	}
}

func TestLockOnStartKeepsFinalTeams(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLockOnStart)
	ctx := context.Background()

	final, _ := f.svc.Game(models.ChampionshipGameID)
	if _, err := f.svc.UpdateInning(ctx, models.ChampionshipGameID, 0, 0, "1"); err != nil {
		t.Fatalf("inning: %v", err)
	}

	for id := 1; id <= 5; id++ {
		playGame(t, f.svc, id, "0", "9")
	}

	after, _ := f.svc.Game(models.ChampionshipGameID)
	if *after.Team1ID != *final.Team1ID || *after.Team2ID != *final.Team2ID {
		t.Fatalf("started final was re-seeded")
	}
}

func TestSaveBattingWritesThroughFirst(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	ctx := context.Background()

	g, err := f.svc.SaveBatting(ctx, 1, 10, models.BattingLine{models.BatHits: 2})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(g.BattingStats) != 1 || g.BattingStats[0].Stats.Get(models.BatHits) != 2 {
		t.Fatalf("batting = %+v", g.BattingStats)
	}
	if f.stats.batting[[2]int{1, 10}].Get(models.BatHits) != 2 {
		t.Fatalf("store did not receive the line")
	}

	f.stats.fail = true
	if _, err := f.svc.SaveBatting(ctx, 1, 10, models.BattingLine{models.BatHits: 5}); !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("err = %v, want ErrPersistFailed", err)
	}
	g, _ = f.svc.Game(1)
	if g.BattingStats[0].Stats.Get(models.BatHits) != 2 {
		t.Fatalf("failed save changed memory")
	}
	if f.notes.count(NotificationError) != 1 {
		t.Fatalf("failure was not surfaced")
	}

	if _, err := f.svc.SaveBatting(ctx, 1, 999, models.BattingLine{}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
}

func TestSavePitchingMergesOuts(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	ctx := context.Background()

	if _, err := f.svc.SavePitching(ctx, 1, 10, models.PitchingLine{models.PitInningsPitched: 14}); err != nil {
		t.Fatalf("save: %v", err)
	}
	g, err := f.svc.SavePitching(ctx, 1, 10, models.PitchingLine{models.PitStrikeOuts: 3})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	stats := g.PitchingStats[0].Stats
	if stats.InningsPitched().Outs != 14 || stats.Get(models.PitStrikeOuts) != 3 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	ctx := context.Background()

	playGame(t, f.svc, 1, "3", "1")
	playGame(t, f.svc, models.ChampionshipGameID, "1", "0")
	if _, err := f.svc.SaveBatting(ctx, 1, 10, models.BattingLine{models.BatHits: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := f.svc.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if f.games.resets != 1 {
		t.Fatalf("store reset calls = %d", f.games.resets)
	}
	for _, g := range f.svc.Games() {
		if g.Score1 != nil || g.Score2 != nil || len(g.BattingStats) != 0 {
			t.Fatalf("game %d not cleared: %+v", g.ID, g)
		}
		if !g.IsChampionship() && (g.Team1ID == nil || g.Team2ID == nil) {
			t.Fatalf("preliminary game %d lost its teams", g.ID)
		}
	}
	if _, ok := f.svc.Champion(); ok {
		t.Fatalf("champion survived reset")
	}
	final, _ := f.svc.Game(models.ChampionshipGameID)
	if final.Team1ID == nil || final.Team2ID == nil {
		t.Fatalf("final must be re-seeded after reset")
	}
	if got := f.svc.writeBack.Pending(); len(got) != 1 || got[0] != models.ChampionshipGameID {
		t.Fatalf("pending after reset = %v, want only the re-seeded final", got)
	}
	if len(f.svc.Teams()) != 6 || len(f.svc.Teams()[0].Players) != 2 {
		t.Fatalf("reset touched the rosters")
	}
}

func TestResetWaitsForInFlightWrite(t *testing.T) {
	block := make(chan struct{})
	f := newFixtureWith(t, brackets.SeedPolicyLive, 10*time.Millisecond, block)
	ctx := context.Background()

	playGame(t, f.svc, 1, "3", "1")
	playGame(t, f.svc, 2, "4", "0")
	waitFor(t, func() bool { return f.svc.writeBack.State(1) == SyncInFlight })

	done := make(chan error, 1)
	go func() { done <- f.svc.Reset(ctx) }()

	time.Sleep(30 * time.Millisecond)
	if n := f.games.resetCount(); n != 0 {
		t.Fatalf("store reset ran while a game write was in flight")
	}

	close(block)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reset never finished")
	}
	time.Sleep(50 * time.Millisecond)

	for _, w := range f.games.writesAfterReset() {
		if w.Score1 != nil || w.Score2 != nil || (len(w.Innings) > 0 && w.Innings[0] != (models.Inning{})) {
			t.Fatalf("stale game state written after reset: %+v", w)
		}
	}
	g, _ := f.svc.Game(1)
	if g.Score1 != nil {
		t.Fatalf("in-memory score survived reset")
	}
}

func TestUpdatePlayer(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	name := "Ana Ruiz"
	number := 23

	p, err := f.svc.UpdatePlayer(context.Background(), 10, models.PlayerUpdate{Name: &name, Number: &number})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Name != name || p.Number != 23 {
		t.Fatalf("player = %+v", p)
	}
	got, _ := f.svc.Teams()[0].FindPlayer(10)
	if got.Name != name {
		t.Fatalf("memory not updated: %+v", got)
	}
	if _, err := f.svc.UpdatePlayer(context.Background(), 404, models.PlayerUpdate{Name: &name}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
}

func TestAddPlayers(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	created, err := f.svc.AddPlayers(context.Background(), 2, []models.Player{{Number: 8, Name: "Eva Soto"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(created) != 1 || created[0].ID == 0 || created[0].TeamID != 2 {
		t.Fatalf("created = %+v", created)
	}
	if len(f.svc.Teams()[1].Players) != 3 {
		t.Fatalf("roster not updated")
	}
	if _, err := f.svc.AddPlayers(context.Background(), 77, nil); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("err = %v, want ErrTeamNotFound", err)
	}
}

func TestCloseFlushesPendingGames(t *testing.T) {
	f := newFixture(t, brackets.SeedPolicyLive)
	playGame(t, f.svc, 3, "2", "1")

	if err := f.svc.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	writes := f.games.writes(3)
	if len(writes) != 1 || *writes[0].Score1 != 2 || *writes[0].Score2 != 1 {
		t.Fatalf("writes = %+v", writes)
	}
}
