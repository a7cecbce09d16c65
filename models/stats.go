package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrUnknownBattingField  = errors.New("unknown batting field")
	ErrUnknownPitchingField = errors.New("unknown pitching field")
)

type BattingField string

const (
	BatPlateAppearances BattingField = "plate_appearances"
	BatAtBats           BattingField = "at_bats"
	BatHits             BattingField = "hits"
	BatRuns             BattingField = "runs"
	BatRBI              BattingField = "rbi"
	BatHomeRuns         BattingField = "home_runs"
	BatWalks            BattingField = "walks"
	BatStrikeOuts       BattingField = "strike_outs"
)

// BattingFields lists the batting schema in box-score order.
var BattingFields = []BattingField{
	BatPlateAppearances, BatAtBats, BatHits, BatRuns, BatRBI, BatHomeRuns, BatWalks, BatStrikeOuts,
}

type PitchingField string

const (
	PitInningsPitched PitchingField = "innings_pitched"
	PitHits           PitchingField = "hits"
	PitRuns           PitchingField = "runs"
	PitEarnedRuns     PitchingField = "earned_runs"
	PitWalks          PitchingField = "walks"
	PitStrikeOuts     PitchingField = "strike_outs"
	PitWins           PitchingField = "wins"
	PitLosses         PitchingField = "losses"
)

var PitchingFields = []PitchingField{
	PitInningsPitched, PitHits, PitRuns, PitEarnedRuns, PitWalks, PitStrikeOuts, PitWins, PitLosses,
}

func ParseBattingField(name string) (BattingField, error) {
	for _, f := range BattingFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBattingField, name)
}

func ParsePitchingField(name string) (PitchingField, error) {
	for _, f := range PitchingFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPitchingField, name)
}

// BattingLine is a sparse set of batting counters for one player in one game.
type BattingLine map[BattingField]int

// Get returns the counter, treating an absent field as 0.
func (l BattingLine) Get(f BattingField) int {
	return l[f]
}

// Merge overwrites the receiver's fields with the ones present in other.
func (l BattingLine) Merge(other BattingLine) BattingLine {
	out := l.Clone()
	if out == nil {
		out = BattingLine{}
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

func (l BattingLine) Clone() BattingLine {
	if l == nil {
		return nil
	}
	out := make(BattingLine, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// ParseBattingLine validates raw field values against the batting schema.
// Values are truncated to integers; negatives clamp to 0.
func ParseBattingLine(raw map[string]float64) (BattingLine, error) {
	line := make(BattingLine, len(raw))
	for name, v := range raw {
		f, err := ParseBattingField(name)
		if err != nil {
			return nil, err
		}
		line[f] = clampCount(v)
	}
	return line, nil
}

// PitchingLine is a sparse set of pitching counters. PitInningsPitched is
// held as total outs; JSON carries the usual innings.outs decimal.
type PitchingLine map[PitchingField]int

func (l PitchingLine) Get(f PitchingField) int {
	return l[f]
}

func (l PitchingLine) InningsPitched() InningsPitched {
	return InningsPitched{Outs: l[PitInningsPitched]}
}

func (l PitchingLine) Merge(other PitchingLine) PitchingLine {
	out := l.Clone()
	if out == nil {
		out = PitchingLine{}
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

func (l PitchingLine) Clone() PitchingLine {
	if l == nil {
		return nil
	}
	out := make(PitchingLine, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

func (l PitchingLine) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(l))
	for k, v := range l {
		if k == PitInningsPitched {
			m[string(k)] = InningsPitched{Outs: v}.Decimal()
			continue
		}
		m[string(k)] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON skips names outside the schema so stored rows written by
// older clients still load.
func (l *PitchingLine) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	line := make(PitchingLine, len(raw))
	for name, v := range raw {
		f, err := ParsePitchingField(name)
		if err != nil {
			continue
		}
		line[f] = pitchingValue(f, v)
	}
	*l = line
	return nil
}

func ParsePitchingLine(raw map[string]float64) (PitchingLine, error) {
	line := make(PitchingLine, len(raw))
	for name, v := range raw {
		f, err := ParsePitchingField(name)
		if err != nil {
			return nil, err
		}
		line[f] = pitchingValue(f, v)
	}
	return line, nil
}

func pitchingValue(f PitchingField, v float64) int {
	if f == PitInningsPitched {
		return InningsPitchedFromDecimal(v).Outs
	}
	return clampCount(v)
}

func clampCount(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(v)
}

type BattingStat struct {
	GameID   int         `json:"game_id" db:"game_id"`
	PlayerID int         `json:"player_id" db:"player_id"`
	Stats    BattingLine `json:"stats" db:"stats"`
}

type PitchingStat struct {
	GameID   int          `json:"game_id" db:"game_id"`
	PlayerID int          `json:"player_id" db:"player_id"`
	Stats    PitchingLine `json:"stats" db:"stats"`
}

// InningsPitched counts recorded outs. The decimal form 4.2 means four full
// innings plus two outs, so values are never added as decimals.
type InningsPitched struct {
	Outs int
}

// InningsPitchedFromDecimal converts innings.outs notation into outs.
func InningsPitchedFromDecimal(ip float64) InningsPitched {
	if ip <= 0 || math.IsNaN(ip) {
		return InningsPitched{}
	}
	whole := math.Floor(ip)
	outs := int(whole)*3 + int(math.Round((ip-whole)*10))
	return InningsPitched{Outs: outs}
}

func (ip InningsPitched) Add(other InningsPitched) InningsPitched {
	return InningsPitched{Outs: ip.Outs + other.Outs}
}

// Decimal renders the value back into innings.outs notation.
func (ip InningsPitched) Decimal() float64 {
	return float64(ip.Outs/3) + float64(ip.Outs%3)/10
}

// Innings returns the value as true innings (outs/3).
func (ip InningsPitched) Innings() float64 {
	return float64(ip.Outs) / 3
}

func (ip InningsPitched) String() string {
	return strconv.Itoa(ip.Outs/3) + "." + strconv.Itoa(ip.Outs%3)
}

func (ip InningsPitched) MarshalJSON() ([]byte, error) {
	return json.Marshal(ip.Decimal())
}
