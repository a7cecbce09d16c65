package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/softball-tournament/models"
)

// ParseCount reads a user-typed counter. Empty input means unset; anything
// unparsable or negative counts as 0.
func ParseCount(raw string) *int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return models.IntPtr(0)
	}
	return models.IntPtr(n)
}

func parseTeamRef(raw string) (*int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(v)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTeamID, raw)
	}
	return &id, nil
}

// ApplyField sets one editable field of g from raw user input.
func ApplyField(g *models.Game, field models.GameField, raw string) error {
	switch field {
	case models.FieldScore1:
		g.Score1 = ParseCount(raw)
	case models.FieldScore2:
		g.Score2 = ParseCount(raw)
	case models.FieldHits1:
		g.Hits1 = ParseCount(raw)
	case models.FieldHits2:
		g.Hits2 = ParseCount(raw)
	case models.FieldErrors1:
		g.Errors1 = ParseCount(raw)
	case models.FieldErrors2:
		g.Errors2 = ParseCount(raw)
	case models.FieldDay:
		g.Day = raw
	case models.FieldTime:
		g.Time = raw
	case models.FieldTeam1ID, models.FieldTeam2ID:
		id, err := parseTeamRef(raw)
		if err != nil {
			return err
		}
		if field == models.FieldTeam1ID {
			g.Team1ID = id
		} else {
			g.Team2ID = id
		}
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownGameField, field)
	}
	return nil
}

// ApplyInningEdit runs the ledger for one cell and overwrites the game's
// score fields with the fresh totals.
func ApplyInningEdit(g *models.Game, index, side int, raw string) error {
	res, err := ApplyInning(EnsureInnings(g.Innings), index, side, raw)
	if err != nil {
		return err
	}
	g.Innings = res.Innings
	g.Score1 = res.Score1
	g.Score2 = res.Score2
	return nil
}

// UpsertBatting merges line into the player's batting row, creating the row
// on first edit.
func UpsertBatting(g *models.Game, playerID int, line models.BattingLine) {
	for i := range g.BattingStats {
		if g.BattingStats[i].PlayerID == playerID {
			g.BattingStats[i].Stats = g.BattingStats[i].Stats.Merge(line)
			return
		}
	}
	g.BattingStats = append(g.BattingStats, models.BattingStat{
		GameID:   g.ID,
		PlayerID: playerID,
		Stats:    models.BattingLine{}.Merge(line),
	})
}

func UpsertPitching(g *models.Game, playerID int, line models.PitchingLine) {
	for i := range g.PitchingStats {
		if g.PitchingStats[i].PlayerID == playerID {
			g.PitchingStats[i].Stats = g.PitchingStats[i].Stats.Merge(line)
			return
		}
	}
	g.PitchingStats = append(g.PitchingStats, models.PitchingStat{
		GameID:   g.ID,
		PlayerID: playerID,
		Stats:    models.PitchingLine{}.Merge(line),
	})
}

// SwapTeams exchanges home and away: team refs, runs, hits, errors and every
// inning pair.
func SwapTeams(g *models.Game) {
	g.Team1ID, g.Team2ID = g.Team2ID, g.Team1ID
	g.Score1, g.Score2 = g.Score2, g.Score1
	g.Hits1, g.Hits2 = g.Hits2, g.Hits1
	g.Errors1, g.Errors2 = g.Errors2, g.Errors1
	swapped := make([]models.Inning, len(g.Innings))
	for i, inn := range g.Innings {
		swapped[i] = models.Inning{inn[1], inn[0]}
	}
	g.Innings = swapped
}

// ResetScores clears every score, the box score and the inning grid.
// Team references are only cleared when clearTeams is set.
func ResetScores(g *models.Game, clearTeams bool) {
	g.Score1, g.Score2 = nil, nil
	g.Hits1, g.Hits2 = nil, nil
	g.Errors1, g.Errors2 = nil, nil
	g.Innings = NewInnings()
	g.BattingStats = nil
	g.PitchingStats = nil
	if clearTeams {
		g.Team1ID, g.Team2ID = nil, nil
	}
}

// HasScores reports whether both sides have a total.
func HasScores(g *models.Game) bool {
	return g.Score1 != nil && g.Score2 != nil
}

// IsComplete reports whether the game counts toward the standings.
func IsComplete(g *models.Game) bool {
	return g.Team1ID != nil && g.Team2ID != nil && HasScores(g)
}

// HasActivity reports whether anything has been entered for the game.
func HasActivity(g *models.Game) bool {
	if g.Score1 != nil || g.Score2 != nil || g.Hits1 != nil || g.Hits2 != nil || g.Errors1 != nil || g.Errors2 != nil {
		return true
	}
	if len(g.BattingStats) > 0 || len(g.PitchingStats) > 0 {
		return true
	}
	for _, inn := range g.Innings {
		if inn[0] != "" || inn[1] != "" {
			return true
		}
	}
	return false
}

// Winner returns the winning team of a complete, untied game.
func Winner(g *models.Game) (int, bool) {
	if !IsComplete(g) || *g.Score1 == *g.Score2 {
		return 0, false
	}
	if *g.Score1 > *g.Score2 {
		return *g.Team1ID, true
	}
	return *g.Team2ID, true
}
