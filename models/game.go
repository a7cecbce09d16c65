package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	ChampionshipGameID   = 16
	PreliminaryGameCount = 15
	RegulationInnings    = 7
)

// InningSentinel marks a side that did not bat in an inning.
const InningSentinel = "X"

// Inning holds the raw cell values for both sides of one inning.
// A cell is empty (not played), InningSentinel, or the typed run count.
type Inning [2]string

type Game struct {
	ID      int    `json:"id" db:"id"`
	Team1ID *int   `json:"team1_id" db:"team1_id"`
	Team2ID *int   `json:"team2_id" db:"team2_id"`
	Day     string `json:"day" db:"day"`
	Time    string `json:"time" db:"time"`

	Score1  *int `json:"score1" db:"score1"`
	Score2  *int `json:"score2" db:"score2"`
	Hits1   *int `json:"hits1" db:"hits1"`
	Hits2   *int `json:"hits2" db:"hits2"`
	Errors1 *int `json:"errors1" db:"errors1"`
	Errors2 *int `json:"errors2" db:"errors2"`

	Innings []Inning `json:"innings" db:"innings"`

	BattingStats  []BattingStat  `json:"batting_stats" db:"-"`
	PitchingStats []PitchingStat `json:"pitching_stats" db:"-"`
}

func (g *Game) IsChampionship() bool {
	return g.ID == ChampionshipGameID
}

func (g Game) MarshalJSON() ([]byte, error) {
	type alias Game
	return json.Marshal(struct {
		alias
		IsChampionship bool `json:"is_championship"`
	}{alias: alias(g), IsChampionship: g.IsChampionship()})
}

// Clone returns a deep copy so snapshots never alias live state.
func (g *Game) Clone() *Game {
	c := *g
	c.Team1ID = cloneInt(g.Team1ID)
	c.Team2ID = cloneInt(g.Team2ID)
	c.Score1 = cloneInt(g.Score1)
	c.Score2 = cloneInt(g.Score2)
	c.Hits1 = cloneInt(g.Hits1)
	c.Hits2 = cloneInt(g.Hits2)
	c.Errors1 = cloneInt(g.Errors1)
	c.Errors2 = cloneInt(g.Errors2)
	if g.Innings != nil {
		c.Innings = append([]Inning(nil), g.Innings...)
	}
	if g.BattingStats != nil {
		c.BattingStats = make([]BattingStat, len(g.BattingStats))
		for i, s := range g.BattingStats {
			c.BattingStats[i] = BattingStat{GameID: s.GameID, PlayerID: s.PlayerID, Stats: s.Stats.Clone()}
		}
	}
	if g.PitchingStats != nil {
		c.PitchingStats = make([]PitchingStat, len(g.PitchingStats))
		for i, s := range g.PitchingStats {
			c.PitchingStats[i] = PitchingStat{GameID: s.GameID, PlayerID: s.PlayerID, Stats: s.Stats.Clone()}
		}
	}
	return &c
}

// Update builds the persisted partial for the game's current state.
func (g *Game) Update() GameUpdate {
	return GameUpdate{
		Team1ID: cloneInt(g.Team1ID),
		Team2ID: cloneInt(g.Team2ID),
		Day:     g.Day,
		Time:    g.Time,
		Score1:  cloneInt(g.Score1),
		Score2:  cloneInt(g.Score2),
		Hits1:   cloneInt(g.Hits1),
		Hits2:   cloneInt(g.Hits2),
		Errors1: cloneInt(g.Errors1),
		Errors2: cloneInt(g.Errors2),
		Innings: append([]Inning(nil), g.Innings...),
	}
}

// GameUpdate is what the write-back path sends to the store for one game.
// Team references are add-only: a nil reference keeps the stored one, so
// clearing a team in memory is not persisted and comes back on reload. Only
// a tournament reset unseeds the championship game in the store.
type GameUpdate struct {
	Team1ID *int
	Team2ID *int
	Day     string
	Time    string
	Score1  *int
	Score2  *int
	Hits1   *int
	Hits2   *int
	Errors1 *int
	Errors2 *int
	Innings []Inning
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// IntPtr is a small helper for building optional counters.
func IntPtr(v int) *int {
	return &v
}

// GameField names a user-editable field of a game.
type GameField string

const (
	FieldScore1  GameField = "score1"
	FieldScore2  GameField = "score2"
	FieldHits1   GameField = "hits1"
	FieldHits2   GameField = "hits2"
	FieldErrors1 GameField = "errors1"
	FieldErrors2 GameField = "errors2"
	FieldDay     GameField = "day"
	FieldTime    GameField = "time"
	FieldTeam1ID GameField = "team1_id"
	FieldTeam2ID GameField = "team2_id"
)

var ErrUnknownGameField = errors.New("unknown game field")

var gameFields = map[GameField]struct{}{
	FieldScore1: {}, FieldScore2: {},
	FieldHits1: {}, FieldHits2: {},
	FieldErrors1: {}, FieldErrors2: {},
	FieldDay: {}, FieldTime: {},
	FieldTeam1ID: {}, FieldTeam2ID: {},
}

func ParseGameField(name string) (GameField, error) {
	f := GameField(name)
	if _, ok := gameFields[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGameField, name)
	}
	return f, nil
}

// IsCounter reports whether the field holds a numeric counter.
func (f GameField) IsCounter() bool {
	switch f {
	case FieldScore1, FieldScore2, FieldHits1, FieldHits2, FieldErrors1, FieldErrors2:
		return true
	}
	return false
}

func (f GameField) IsTeamRef() bool {
	return f == FieldTeam1ID || f == FieldTeam2ID
}
