package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/Dosada05/softball-tournament/storage"
	"github.com/rs/zerolog"
)

type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (u *memUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.fail {
		return nil, errStoreDown
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = body
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type staticSource struct {
	standings []models.Standing
	champion  *models.Champion
}

func (s staticSource) Standings() []models.Standing { return s.standings }

func (s staticSource) Leaderboard(limit int) models.Leaderboard {
	return models.Leaderboard{Batting: []models.BattingLeader{}, Pitching: []models.PitchingLeader{}}
}

func (s staticSource) Champion() (models.Champion, bool) {
	if s.champion == nil {
		return models.Champion{}, false
	}
	return *s.champion, true
}

func TestPublishUploadsBothDocuments(t *testing.T) {
	up := &memUploader{objects: make(map[string][]byte)}
	src := staticSource{
		standings: []models.Standing{{TeamID: 1, TeamName: "Tigres", Wins: 3, Rank: 1}},
		champion:  &models.Champion{TeamID: 1, TeamName: "Tigres", GameID: models.ChampionshipGameID},
	}

	res, err := NewExportService(src, up, zerolog.Nop()).Publish(context.Background())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if res.StandingsURL != "https://cdn.example.com/standings.json" || res.LeadersURL != "https://cdn.example.com/leaders.json" {
		t.Fatalf("result = %+v", res)
	}

	var doc struct {
		Standings []map[string]any `json:"standings"`
		Champion  map[string]any   `json:"champion"`
	}
	if err := json.Unmarshal(up.objects[StandingsSnapshotKey], &doc); err != nil {
		t.Fatalf("decode standings: %v", err)
	}
	if len(doc.Standings) != 1 || doc.Champion["team_name"] != "Tigres" {
		t.Fatalf("standings document = %s", up.objects[StandingsSnapshotKey])
	}
	if _, ok := up.objects[LeadersSnapshotKey]; !ok {
		t.Fatalf("leaders document missing")
	}
}

func TestPublishDisabledWithoutUploader(t *testing.T) {
	_, err := NewExportService(staticSource{}, nil, zerolog.Nop()).Publish(context.Background())
	if !errors.Is(err, ErrExportDisabled) {
		t.Fatalf("err = %v, want ErrExportDisabled", err)
	}
}

func TestPublishSurfacesUploadFailure(t *testing.T) {
	up := &memUploader{objects: make(map[string][]byte), fail: true}
	_, err := NewExportService(staticSource{}, up, zerolog.Nop()).Publish(context.Background())
	if !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("err = %v, want ErrPersistFailed", err)
	}
}
