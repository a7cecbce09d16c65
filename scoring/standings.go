package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/softball-tournament/models"
)

// CalculateStandings derives the preliminary-round table from scratch.
// Championship records are ignored. A scored tie anywhere in the round
// aborts with ErrTiedGame so the caller can keep its last valid table.
func CalculateStandings(teams []models.Team, games []models.Game) ([]models.Standing, error) {
	for i := range games {
		g := &games[i]
		if g.IsChampionship() || !HasScores(g) {
			continue
		}
		if *g.Score1 == *g.Score2 {
			return nil, fmt.Errorf("%w: game %d", ErrTiedGame, g.ID)
		}
	}

	standings := make([]models.Standing, len(teams))
	index := make(map[int]int, len(teams))
	for i, t := range teams {
		standings[i] = models.Standing{TeamID: t.ID, TeamName: t.Name}
		index[t.ID] = i
	}

	for i := range games {
		g := &games[i]
		if g.IsChampionship() || !IsComplete(g) {
			continue
		}
		i1, ok1 := index[*g.Team1ID]
		i2, ok2 := index[*g.Team2ID]
		if !ok1 || !ok2 {
			continue
		}
		s1, s2 := *g.Score1, *g.Score2
		standings[i1].RunsScored += s1
		standings[i1].RunsAllowed += s2
		standings[i2].RunsScored += s2
		standings[i2].RunsAllowed += s1
		if s1 > s2 {
			standings[i1].Wins++
			standings[i2].Losses++
		} else {
			standings[i2].Wins++
			standings[i1].Losses++
		}
	}

	for i := range standings {
		if gp := standings[i].GamesPlayed(); gp > 0 {
			standings[i].Pct = float64(standings[i].Wins) / float64(gp)
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Pct != b.Pct {
			return a.Pct > b.Pct
		}
		if a.RunDifferential() != b.RunDifferential() {
			return a.RunDifferential() > b.RunDifferential()
		}
		return a.GamesPlayed() < b.GamesPlayed()
	})

	assignRanks(standings)
	return standings, nil
}

// assignRanks numbers rows by position, letting rows with the same W-L record
// share the rank of the first of them.
func assignRanks(standings []models.Standing) {
	if len(standings) == 0 {
		return
	}
	leader := standings[0]
	rank := 1
	for i := range standings {
		s := &standings[i]
		if i > 0 {
			prev := standings[i-1]
			if s.Wins != prev.Wins || s.Losses != prev.Losses {
				rank = i + 1
			}
		}
		s.Rank = rank
		if s.GamesPlayed() > 0 {
			s.GamesBehind = float64((leader.Wins-s.Wins)+(s.Losses-leader.Losses)) / 2
			s.DisplayPct = int(math.Round(s.Pct * 1000))
		}
	}
}
