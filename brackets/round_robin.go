package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/Dosada05/softball-tournament/scoring"
)

var (
	DefaultDays  = []string{"Day 1", "Day 2", "Day 3", "Day 4"}
	DefaultTimes = []string{"18:00", "19:30", "21:00"}
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() ScheduleGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateSchedule pairs every team with every other team once and appends
// the championship placeholder. Games are numbered from 1 in pairing order
// and spread over the day/time slots; the final takes the last slot.
func (g *RoundRobinGenerator) GenerateSchedule(ctx context.Context, params GenerateScheduleParams) ([]models.Game, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: not enough teams (found %d, min 2 required)", len(teams))
	}

	pairings := len(teams) * (len(teams) - 1) / 2
	if pairings > models.PreliminaryGameCount {
		return nil, fmt.Errorf("RoundRobinGenerator: %d teams need %d games, the preliminary round holds %d",
			len(teams), pairings, models.PreliminaryGameCount)
	}

	days := params.Days
	if len(days) == 0 {
		days = DefaultDays
	}
	times := params.Times
	if len(times) == 0 {
		times = DefaultTimes
	}
	slot := func(i int) (string, string) {
		d := (i / len(times)) % len(days)
		return days[d], times[i%len(times)]
	}

	games := make([]models.Game, 0, pairings+1)
	matchOrder := 0
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			matchOrder++
			t1, t2 := teams[i].ID, teams[j].ID
			day, at := slot(matchOrder - 1)
			games = append(games, models.Game{
				ID:      matchOrder,
				Team1ID: &t1,
				Team2ID: &t2,
				Day:     day,
				Time:    at,
				Innings: scoring.NewInnings(),
			})
		}
	}

	games = append(games, models.Game{
		ID:      models.ChampionshipGameID,
		Day:     days[len(days)-1],
		Time:    times[len(times)-1],
		Innings: scoring.NewInnings(),
	})
	return games, nil
}

// PreliminarySchedule is the schedule the store is seeded with when it holds
// no games.
func PreliminarySchedule(teams []models.Team, days []string) ([]models.Game, error) {
	return NewRoundRobinGenerator().GenerateSchedule(context.Background(), GenerateScheduleParams{
		Teams: teams,
		Days:  days,
	})
}
