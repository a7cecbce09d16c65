package services

import (
	"context"
	"errors"
	"sync"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/Dosada05/softball-tournament/repositories"
)

var errStoreDown = errors.New("store unavailable")

type memTeamRepo struct {
	mu     sync.Mutex
	teams  []models.Team
	nextID int
}

func (r *memTeamRepo) FetchTeamsWithRosters(ctx context.Context) ([]models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Team, len(r.teams))
	for i, t := range r.teams {
		out[i] = t
		out[i].Players = append([]models.Player(nil), t.Players...)
	}
	return out, nil
}

func (r *memTeamRepo) UpdatePlayer(ctx context.Context, playerID int, update models.PlayerUpdate) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.teams {
		if p, ok := r.teams[i].FindPlayer(playerID); ok {
			update.Apply(p)
			c := *p
			return &c, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *memTeamRepo) CreatePlayers(ctx context.Context, exec repositories.SQLExecutor, players []*models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range players {
		r.nextID++
		p.ID = 1000 + r.nextID
		for i := range r.teams {
			if r.teams[i].ID == p.TeamID {
				r.teams[i].Players = append(r.teams[i].Players, *p)
			}
		}
	}
	return nil
}

type memGameRepo struct {
	mu      sync.Mutex
	games   map[int]models.Game
	upserts map[int][]models.GameUpdate
	created []int
	resets  int
	late    []models.GameUpdate
	failOn  map[int]bool
	block   chan struct{}
}

func newMemGameRepo(games ...models.Game) *memGameRepo {
	r := &memGameRepo{
		games:   make(map[int]models.Game),
		upserts: make(map[int][]models.GameUpdate),
		failOn:  make(map[int]bool),
	}
	for _, g := range games {
		r.games[g.ID] = g
	}
	return r
}

func (r *memGameRepo) FetchGames(ctx context.Context) ([]models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Game, 0, len(r.games))
	for _, g := range r.games {
		out = append(out, *g.Clone())
	}
	return out, nil
}

func (r *memGameRepo) UpsertGame(ctx context.Context, id int, update models.GameUpdate) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn[id] {
		return errStoreDown
	}
	r.upserts[id] = append(r.upserts[id], update)
	if r.resets > 0 {
		r.late = append(r.late, update)
	}
	return nil
}

func (r *memGameRepo) CreateGames(ctx context.Context, exec repositories.SQLExecutor, games []models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range games {
		r.games[g.ID] = g
		r.created = append(r.created, g.ID)
	}
	return nil
}

func (r *memGameRepo) ResetAllScoresAndStats(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
	return nil
}

func (r *memGameRepo) resetCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resets
}

// writesAfterReset returns every game write that landed after a reset.
func (r *memGameRepo) writesAfterReset() []models.GameUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.GameUpdate(nil), r.late...)
}

func (r *memGameRepo) writes(id int) []models.GameUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.GameUpdate(nil), r.upserts[id]...)
}

type memStatRepo struct {
	mu       sync.Mutex
	fail     bool
	batting  map[[2]int]models.BattingLine
	pitching map[[2]int]models.PitchingLine
}

func newMemStatRepo() *memStatRepo {
	return &memStatRepo{
		batting:  make(map[[2]int]models.BattingLine),
		pitching: make(map[[2]int]models.PitchingLine),
	}
}

func (r *memStatRepo) UpsertBattingStat(ctx context.Context, gameID, playerID int, line models.BattingLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStoreDown
	}
	key := [2]int{gameID, playerID}
	r.batting[key] = r.batting[key].Merge(line)
	return nil
}

func (r *memStatRepo) UpsertPitchingStat(ctx context.Context, gameID, playerID int, line models.PitchingLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStoreDown
	}
	key := [2]int{gameID, playerID}
	r.pitching[key] = r.pitching[key].Merge(line)
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (n *recordingNotifier) Notify(level NotificationLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, Notification{Level: level, Message: message})
}

func (n *recordingNotifier) count(level NotificationLevel) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, note := range n.notes {
		if note.Level == level {
			c++
		}
	}
	return c
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(msgType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msgType)
}

func (p *recordingPublisher) has(msgType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e == msgType {
			return true
		}
	}
	return false
}
