package scoring

import "errors"

var (
	ErrInvalidSide   = errors.New("side must be 0 or 1")
	ErrInvalidInning = errors.New("inning index out of range")
	ErrInvalidTeamID = errors.New("invalid team id")

	// ErrTiedGame is returned by CalculateStandings when a scored game is
	// tied. Callers keep their previous table.
	ErrTiedGame = errors.New("tied game in preliminary round")
)
