package scoring

import (
	"strconv"
	"strings"

	"github.com/Dosada05/softball-tournament/models"
)

// extraInningsFrom is the zero-based index of the 7th inning; a tie written
// there or later opens another inning.
const extraInningsFrom = models.RegulationInnings - 1

// MaxInnings bounds the line score. No softball game runs this long.
const MaxInnings = 99

type LedgerResult struct {
	Innings []models.Inning
	Score1  *int
	Score2  *int
}

// NewInnings returns the regulation grid of empty innings.
func NewInnings() []models.Inning {
	return make([]models.Inning, models.RegulationInnings)
}

// EnsureInnings returns innings, or a fresh regulation grid when empty.
func EnsureInnings(innings []models.Inning) []models.Inning {
	if len(innings) == 0 {
		return NewInnings()
	}
	return innings
}

// NormalizeCell trims the raw input and maps any case of "x" to the sentinel.
func NormalizeCell(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, models.InningSentinel) {
		return models.InningSentinel
	}
	return v
}

// CellRuns is the number of runs a cell contributes to its side's total.
func CellRuns(cell string) int {
	if cell == "" || cell == models.InningSentinel {
		return 0
	}
	n, err := strconv.Atoi(cell)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Totals sums both sides over the full grid.
func Totals(innings []models.Inning) (int, int) {
	var s1, s2 int
	for _, inn := range innings {
		s1 += CellRuns(inn[0])
		s2 += CellRuns(inn[1])
	}
	return s1, s2
}

// ApplyInning writes raw into innings[index][side] on a copy of the grid and
// recomputes both totals from scratch.
func ApplyInning(innings []models.Inning, index, side int, raw string) (LedgerResult, error) {
	if side != 0 && side != 1 {
		return LedgerResult{}, ErrInvalidSide
	}
	if index < 0 || index >= MaxInnings {
		return LedgerResult{}, ErrInvalidInning
	}

	grid := make([]models.Inning, len(innings), max(len(innings), index+1)+1)
	copy(grid, innings)
	for len(grid) <= index {
		grid = append(grid, models.Inning{})
	}

	value := NormalizeCell(raw)
	grid[index][side] = value

	if value != "" && index == len(grid)-1 && index >= extraInningsFrom {
		s1, s2 := Totals(grid)
		if s1 == s2 {
			grid = append(grid, models.Inning{})
		}
	}

	score1, score2 := sideTotals(grid)
	return LedgerResult{Innings: grid, Score1: score1, Score2: score2}, nil
}

// sideTotals is Totals with an unset result for a side nobody has written to.
func sideTotals(grid []models.Inning) (*int, *int) {
	var entered [2]bool
	for _, inn := range grid {
		for side := 0; side < 2; side++ {
			if inn[side] != "" {
				entered[side] = true
			}
		}
	}
	s1, s2 := Totals(grid)
	var score1, score2 *int
	if entered[0] {
		score1 = models.IntPtr(s1)
	}
	if entered[1] {
		score2 = models.IntPtr(s2)
	}
	return score1, score2
}
