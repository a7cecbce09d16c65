package models

// Champion is the winner of the decided championship game.
type Champion struct {
	TeamID   int    `json:"team_id"`
	TeamName string `json:"team_name"`
	GameID   int    `json:"game_id"`
}
