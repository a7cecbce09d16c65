package scoring

import (
	"math"
	"testing"

	"github.com/Dosada05/softball-tournament/models"
)

func rosterTeams() []models.Team {
	return []models.Team{
		{ID: 1, Name: "Tigres", Players: []models.Player{
			{ID: 10, TeamID: 1, Number: 7, Name: "Ana Ruiz"},
			{ID: 11, TeamID: 1, Number: 9, Name: "Eva Soto"},
		}},
		{ID: 2, Name: "Leones", Players: []models.Player{
			{ID: 20, TeamID: 2, Number: 3, Name: "Luz Pena"},
		}},
	}
}

func withBatting(g models.Game, playerID int, line models.BattingLine) models.Game {
	UpsertBatting(&g, playerID, line)
	return g
}

func withPitching(g models.Game, playerID int, ip float64, line models.PitchingLine) models.Game {
	l := line.Clone()
	if l == nil {
		l = models.PitchingLine{}
	}
	l[models.PitInningsPitched] = models.InningsPitchedFromDecimal(ip).Outs
	UpsertPitching(&g, playerID, l)
	return g
}

func TestInningsPitchedMergeUsesOuts(t *testing.T) {
	a := models.InningsPitchedFromDecimal(4.2)
	b := models.InningsPitchedFromDecimal(4.2)
	sum := a.Add(b)
	if sum.Outs != 28 {
		t.Fatalf("outs = %d, want 28", sum.Outs)
	}
	if got := sum.Decimal(); math.Abs(got-9.1) > 1e-9 {
		t.Fatalf("decimal = %v, want 9.1", got)
	}
	if sum.String() != "9.1" {
		t.Fatalf("string = %q, want 9.1", sum.String())
	}
}

func TestBattingQualification(t *testing.T) {
	tests := []struct {
		name      string
		pa        int
		qualifies bool
	}{
		{"seven plate appearances qualify", 7, true},
		{"six plate appearances do not", 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			games := []models.Game{
				withBatting(scored(1, 1, 2, 3, 1), 10, models.BattingLine{
					models.BatPlateAppearances: tt.pa, models.BatAtBats: 4, models.BatHits: 2,
				}),
				scored(2, 1, 2, 5, 2),
				scored(3, 2, 1, 1, 4),
			}
			board := BuildLeaderboard(rosterTeams(), games, 0)
			found := false
			for _, l := range board.Batting {
				if l.ID == 10 {
					found = true
				}
			}
			if found != tt.qualifies {
				t.Fatalf("qualified = %v, want %v", found, tt.qualifies)
			}
		})
	}
}

func TestBattingLeadersSortAndAverage(t *testing.T) {
	g := scored(1, 1, 2, 6, 2)
	g = withBatting(g, 10, models.BattingLine{models.BatPlateAppearances: 4, models.BatAtBats: 4, models.BatHits: 2, models.BatHomeRuns: 0})
	g = withBatting(g, 11, models.BattingLine{models.BatPlateAppearances: 4, models.BatAtBats: 4, models.BatHits: 2, models.BatHomeRuns: 1})
	g = withBatting(g, 20, models.BattingLine{models.BatPlateAppearances: 3, models.BatAtBats: 3, models.BatHits: 3})

	board := BuildLeaderboard(rosterTeams(), []models.Game{g}, 10)
	if len(board.Batting) != 3 {
		t.Fatalf("leaders = %d, want 3", len(board.Batting))
	}
	wantOrder := []int{20, 11, 10}
	for i, id := range wantOrder {
		if board.Batting[i].ID != id {
			t.Fatalf("position %d = player %d, want %d", i, board.Batting[i].ID, id)
		}
	}
	if board.Batting[0].Average != 1 {
		t.Fatalf("avg = %v, want 1", board.Batting[0].Average)
	}
	if board.Batting[0].TeamName != "Leones" {
		t.Fatalf("team name = %q", board.Batting[0].TeamName)
	}
}

func TestLeaderboardIgnoresUnscoredGames(t *testing.T) {
	g := scored(1, 1, 2, 3, 1)
	g.Score1 = nil
	g = withBatting(g, 10, models.BattingLine{models.BatPlateAppearances: 10, models.BatAtBats: 10, models.BatHits: 5})

	board := BuildLeaderboard(rosterTeams(), []models.Game{g}, 0)
	if len(board.Batting) != 0 {
		t.Fatalf("unscored game produced leaders: %+v", board.Batting)
	}
}

func TestLeaderboardAggregatesAcrossGames(t *testing.T) {
	g1 := withBatting(scored(1, 1, 2, 3, 1), 10, models.BattingLine{models.BatPlateAppearances: 3, models.BatAtBats: 3, models.BatHits: 1})
	g2 := withBatting(scored(2, 2, 1, 0, 2), 10, models.BattingLine{models.BatPlateAppearances: 4, models.BatAtBats: 3, models.BatHits: 2, models.BatWalks: 1})
	g3 := withBatting(scored(3, 1, 2, 4, 3), 99, models.BattingLine{models.BatPlateAppearances: 4})

	board := BuildLeaderboard(rosterTeams(), []models.Game{g1, g2, g3}, 0)
	if len(board.Batting) != 1 {
		t.Fatalf("leaders = %d, want 1", len(board.Batting))
	}
	l := board.Batting[0]
	if l.GamesPlayed != 2 || l.PA != 7 || l.Hits != 3 || l.AtBats != 6 {
		t.Fatalf("totals = %+v", l)
	}
	if l.Average != 0.5 {
		t.Fatalf("avg = %v, want 0.5", l.Average)
	}
}

func TestPitchingLeaders(t *testing.T) {
	g1 := scored(1, 1, 2, 5, 2)
	g1 = withPitching(g1, 10, 4.2, models.PitchingLine{models.PitEarnedRuns: 1, models.PitStrikeOuts: 5})
	g1 = withPitching(g1, 20, 7.0, models.PitchingLine{models.PitEarnedRuns: 3, models.PitStrikeOuts: 2})
	g2 := scored(2, 2, 1, 1, 3)
	g2 = withPitching(g2, 10, 4.2, models.PitchingLine{models.PitEarnedRuns: 1, models.PitStrikeOuts: 4, models.PitWins: 1})
	g2 = withPitching(g2, 20, 2.0, models.PitchingLine{models.PitEarnedRuns: 0})

	board := BuildLeaderboard(rosterTeams(), []models.Game{g1, g2}, 0)
	if len(board.Pitching) != 2 {
		t.Fatalf("leaders = %d, want 2", len(board.Pitching))
	}

	first := board.Pitching[0]
	if first.ID != 10 {
		t.Fatalf("leader = %d, want 10", first.ID)
	}
	if first.InningsPitched.Outs != 28 {
		t.Fatalf("ip outs = %d, want 28", first.InningsPitched.Outs)
	}
	wantERA := float64(2*21) / 28
	if math.Abs(first.ERA-wantERA) > 1e-9 {
		t.Fatalf("era = %v, want %v", first.ERA, wantERA)
	}
	if first.StrikeOuts != 9 || first.Wins != 1 {
		t.Fatalf("totals = %+v", first)
	}
}

func TestPitchingQualification(t *testing.T) {
	// Two team games need 4.6 innings: 4.1 (13 outs) falls short, 4.2 (14 outs) passes.
	tests := []struct {
		ip        float64
		qualifies bool
	}{
		{4.1, false},
		{4.2, true},
	}
	for _, tt := range tests {
		g1 := withPitching(scored(1, 1, 2, 5, 2), 10, tt.ip, nil)
		g2 := scored(2, 1, 2, 3, 2)
		board := BuildLeaderboard(rosterTeams(), []models.Game{g1, g2}, 0)
		if got := len(board.Pitching) == 1; got != tt.qualifies {
			t.Fatalf("ip %v qualified = %v, want %v", tt.ip, got, tt.qualifies)
		}
	}
}

func TestLeaderboardLimit(t *testing.T) {
	teams := []models.Team{{ID: 1, Name: "Big"}, {ID: 2, Name: "Other"}}
	g := scored(1, 1, 2, 1, 0)
	for i := 0; i < 15; i++ {
		id := 100 + i
		teams[0].Players = append(teams[0].Players, models.Player{ID: id, TeamID: 1})
		g = withBatting(g, id, models.BattingLine{models.BatPlateAppearances: 3, models.BatAtBats: 3, models.BatHits: i % 4})
	}
	if got := len(BuildLeaderboard(teams, []models.Game{g}, 0).Batting); got != DefaultLeaderLimit {
		t.Fatalf("default limit = %d, want %d", got, DefaultLeaderLimit)
	}
	if got := len(BuildLeaderboard(teams, []models.Game{g}, 5).Batting); got != 5 {
		t.Fatalf("limit = %d, want 5", got)
	}
}

func TestEarnedRunAverageWithoutOuts(t *testing.T) {
	if era := EarnedRunAverage(3, models.InningsPitched{}); era != 0 {
		t.Fatalf("era = %v, want 0", era)
	}
	if avg := BattingAverage(2, 0); avg != 0 {
		t.Fatalf("avg = %v, want 0", avg)
	}
}
