package scoring

import (
	"sort"

	"github.com/Dosada05/softball-tournament/models"
)

const (
	DefaultLeaderLimit = 10

	// Minimum plate appearances and innings per team game to qualify.
	BattingQualifier  = 2.1
	PitchingQualifier = 2.3

	// Outs in a regulation 7-inning game, the ERA scale.
	outsPerGame = models.RegulationInnings * 3
)

type playerTotals struct {
	player   models.Player
	teamName string

	batting      models.BattingLine
	battingGames int

	pitching      models.PitchingLine
	pitchingGames int
}

// BuildLeaderboard aggregates box scores from every scored game and returns
// the qualified batting and pitching leaders.
func BuildLeaderboard(teams []models.Team, games []models.Game, limit int) models.Leaderboard {
	if limit <= 0 {
		limit = DefaultLeaderLimit
	}

	totals := make(map[int]*playerTotals)
	order := make([]int, 0)
	teamGames := make(map[int]int, len(teams))
	for _, t := range teams {
		teamGames[t.ID] = 0
		for _, p := range t.Players {
			if _, dup := totals[p.ID]; !dup {
				order = append(order, p.ID)
			}
			totals[p.ID] = &playerTotals{
				player:   p,
				teamName: t.Name,
				batting:  models.BattingLine{},
				pitching: models.PitchingLine{},
			}
		}
	}

	for i := range games {
		g := &games[i]
		if !HasScores(g) {
			continue
		}
		if g.Team1ID != nil {
			teamGames[*g.Team1ID]++
		}
		if g.Team2ID != nil {
			teamGames[*g.Team2ID]++
		}

		for _, row := range g.BattingStats {
			pt, ok := totals[row.PlayerID]
			if !ok {
				continue
			}
			for _, f := range models.BattingFields {
				pt.batting[f] += row.Stats.Get(f)
			}
			pt.battingGames++
		}

		for _, row := range g.PitchingStats {
			pt, ok := totals[row.PlayerID]
			if !ok {
				continue
			}
			for _, f := range models.PitchingFields {
				pt.pitching[f] += row.Stats.Get(f)
			}
			pt.pitchingGames++
		}
	}

	board := models.Leaderboard{
		Batting:  battingLeaders(totals, order, teamGames),
		Pitching: pitchingLeaders(totals, order, teamGames),
	}
	if len(board.Batting) > limit {
		board.Batting = board.Batting[:limit]
	}
	if len(board.Pitching) > limit {
		board.Pitching = board.Pitching[:limit]
	}
	return board
}

func battingLeaders(totals map[int]*playerTotals, order []int, teamGames map[int]int) []models.BattingLeader {
	leaders := make([]models.BattingLeader, 0)
	for _, id := range order {
		pt := totals[id]
		tg := teamGames[pt.player.TeamID]
		pa := pt.batting.Get(models.BatPlateAppearances)
		if tg == 0 || float64(pa) < float64(tg)*BattingQualifier {
			continue
		}
		ab := pt.batting.Get(models.BatAtBats)
		h := pt.batting.Get(models.BatHits)
		leaders = append(leaders, models.BattingLeader{
			Player:      pt.player,
			TeamName:    pt.teamName,
			GamesPlayed: pt.battingGames,
			Average:     BattingAverage(h, ab),
			HomeRuns:    pt.batting.Get(models.BatHomeRuns),
			RBI:         pt.batting.Get(models.BatRBI),
			Hits:        h,
			Runs:        pt.batting.Get(models.BatRuns),
			AtBats:      ab,
			PA:          pa,
		})
	}
	sort.SliceStable(leaders, func(i, j int) bool {
		if leaders[i].Average != leaders[j].Average {
			return leaders[i].Average > leaders[j].Average
		}
		return leaders[i].HomeRuns > leaders[j].HomeRuns
	})
	return leaders
}

func pitchingLeaders(totals map[int]*playerTotals, order []int, teamGames map[int]int) []models.PitchingLeader {
	leaders := make([]models.PitchingLeader, 0)
	for _, id := range order {
		pt := totals[id]
		tg := teamGames[pt.player.TeamID]
		ip := pt.pitching.InningsPitched()
		if tg == 0 || ip.Innings() < float64(tg)*PitchingQualifier {
			continue
		}
		leaders = append(leaders, models.PitchingLeader{
			Player:         pt.player,
			TeamName:       pt.teamName,
			GamesPlayed:    pt.pitchingGames,
			ERA:            EarnedRunAverage(pt.pitching.Get(models.PitEarnedRuns), ip),
			StrikeOuts:     pt.pitching.Get(models.PitStrikeOuts),
			InningsPitched: ip,
			Wins:           pt.pitching.Get(models.PitWins),
			Losses:         pt.pitching.Get(models.PitLosses),
		})
	}
	sort.SliceStable(leaders, func(i, j int) bool {
		if leaders[i].ERA != leaders[j].ERA {
			return leaders[i].ERA < leaders[j].ERA
		}
		return leaders[i].StrikeOuts > leaders[j].StrikeOuts
	})
	return leaders
}

func BattingAverage(hits, atBats int) float64 {
	if atBats <= 0 {
		return 0
	}
	return float64(hits) / float64(atBats)
}

// EarnedRunAverage scales earned runs to a 7-inning game.
func EarnedRunAverage(earnedRuns int, ip models.InningsPitched) float64 {
	if ip.Outs <= 0 {
		return 0
	}
	return float64(earnedRuns*outsPerGame) / float64(ip.Outs)
}
