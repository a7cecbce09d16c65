package models

type BattingLeader struct {
	Player
	TeamName    string  `json:"team_name"`
	GamesPlayed int     `json:"games_played"`
	Average     float64 `json:"avg"`
	HomeRuns    int     `json:"hr"`
	RBI         int     `json:"rbi"`
	Hits        int     `json:"h"`
	Runs        int     `json:"r"`
	AtBats      int     `json:"ab"`
	PA          int     `json:"pa"`
}

type PitchingLeader struct {
	Player
	TeamName       string         `json:"team_name"`
	GamesPlayed    int            `json:"games_played"`
	ERA            float64        `json:"era"`
	StrikeOuts     int            `json:"so"`
	InningsPitched InningsPitched `json:"ip"`
	Wins           int            `json:"w"`
	Losses         int            `json:"l"`
}

type Leaderboard struct {
	Batting  []BattingLeader  `json:"batting"`
	Pitching []PitchingLeader `json:"pitching"`
}
