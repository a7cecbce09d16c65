package models

// Standing is a derived row of the preliminary-round table. It is recomputed
// from the games on every change and never stored.
type Standing struct {
	TeamID      int     `json:"team_id"`
	TeamName    string  `json:"team_name"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	RunsScored  int     `json:"runs_scored"`
	RunsAllowed int     `json:"runs_allowed"`
	Pct         float64 `json:"-"`
	DisplayPct  int     `json:"pct"`
	Rank        int     `json:"rank"`
	GamesBehind float64 `json:"games_behind"`
}

func (s Standing) GamesPlayed() int {
	return s.Wins + s.Losses
}

func (s Standing) RunDifferential() int {
	return s.RunsScored - s.RunsAllowed
}
