package brackets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/Dosada05/softball-tournament/scoring"
)

type SeedPolicy string

const (
	// SeedPolicyLive re-seeds the final on every standings recomputation.
	SeedPolicyLive SeedPolicy = "live"
	// SeedPolicyLockOnStart keeps the seeded teams once the final has activity.
	SeedPolicyLockOnStart SeedPolicy = "lock-on-start"
)

var ErrUnknownSeedPolicy = errors.New("unknown championship seed policy")

func ParseSeedPolicy(s string) (SeedPolicy, error) {
	switch p := SeedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return SeedPolicyLive, nil
	case SeedPolicyLive, SeedPolicyLockOnStart:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSeedPolicy, s)
	}
}

// Pairing is one first-round match of a seeded bracket. Visitor is the lower
// seed and bats first (team1); Home is the higher seed (team2).
type Pairing struct {
	Visitor int
	Home    int
}

// SeedPairings pairs seed i with seed size+1-i from the top of the standings.
func SeedPairings(standings []models.Standing, size int) ([]Pairing, error) {
	if size < 2 || size%2 != 0 {
		return nil, fmt.Errorf("bracket size must be an even number >= 2, got %d", size)
	}
	if len(standings) < size {
		return nil, fmt.Errorf("not enough teams for a %d-team bracket (found %d)", size, len(standings))
	}

	pairings := make([]Pairing, 0, size/2)
	for i := 0; i < size/2; i++ {
		pairings = append(pairings, Pairing{
			Visitor: standings[size-1-i].TeamID,
			Home:    standings[i].TeamID,
		})
	}
	return pairings, nil
}

type ChampionshipSeeder struct {
	policy SeedPolicy
}

func NewChampionshipSeeder(policy SeedPolicy) *ChampionshipSeeder {
	if policy == "" {
		policy = SeedPolicyLive
	}
	return &ChampionshipSeeder{policy: policy}
}

func (s *ChampionshipSeeder) Policy() SeedPolicy {
	return s.policy
}

// Seed places the second-ranked team as team1 and the leader as team2 of the
// final. It reports whether either reference changed. Scores, innings and
// box scores are never touched.
func (s *ChampionshipSeeder) Seed(standings []models.Standing, final *models.Game) bool {
	if final == nil || len(standings) < 2 {
		return false
	}
	if s.policy == SeedPolicyLockOnStart && scoring.HasActivity(final) && final.Team1ID != nil && final.Team2ID != nil {
		return false
	}

	pairings, err := SeedPairings(standings, 2)
	if err != nil {
		return false
	}
	p := pairings[0]

	changed := final.Team1ID == nil || *final.Team1ID != p.Visitor ||
		final.Team2ID == nil || *final.Team2ID != p.Home
	if !changed {
		return false
	}
	final.Team1ID = models.IntPtr(p.Visitor)
	final.Team2ID = models.IntPtr(p.Home)
	return true
}
