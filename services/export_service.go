package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/Dosada05/softball-tournament/storage"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	StandingsSnapshotKey = "standings.json"
	LeadersSnapshotKey   = "leaders.json"
)

// SnapshotSource is the read side of the tournament the export needs.
type SnapshotSource interface {
	Standings() []models.Standing
	Leaderboard(limit int) models.Leaderboard
	Champion() (models.Champion, bool)
}

type ExportResult struct {
	StandingsURL string    `json:"standings_url"`
	LeadersURL   string    `json:"leaders_url"`
	PublishedAt  time.Time `json:"published_at"`
}

type ExportService interface {
	Publish(ctx context.Context) (*ExportResult, error)
}

type exportService struct {
	source   SnapshotSource
	uploader storage.FileUploader
	log      zerolog.Logger
}

// NewExportService returns a service that reports ErrExportDisabled when
// uploader is nil.
func NewExportService(source SnapshotSource, uploader storage.FileUploader, log zerolog.Logger) ExportService {
	return &exportService{
		source:   source,
		uploader: uploader,
		log:      log.With().Str("component", "export").Logger(),
	}
}

type standingsDocument struct {
	Standings   []models.Standing `json:"standings"`
	Champion    *models.Champion  `json:"champion,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

type leadersDocument struct {
	models.Leaderboard
	GeneratedAt time.Time `json:"generated_at"`
}

// Publish uploads the standings and the leaderboard side by side.
func (s *exportService) Publish(ctx context.Context) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportDisabled
	}

	now := time.Now().UTC()
	standings := standingsDocument{Standings: s.source.Standings(), GeneratedAt: now}
	if champ, ok := s.source.Champion(); ok {
		standings.Champion = &champ
	}
	leaders := leadersDocument{Leaderboard: s.source.Leaderboard(0), GeneratedAt: now}

	result := &ExportResult{PublishedAt: now}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := s.upload(gctx, StandingsSnapshotKey, standings)
		result.StandingsURL = url
		return err
	})
	g.Go(func() error {
		url, err := s.upload(gctx, LeadersSnapshotKey, leaders)
		result.LeadersURL = url
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("snapshot export failed")
		return nil, err
	}

	s.log.Info().Str("standings_url", result.StandingsURL).Str("leaders_url", result.LeadersURL).Msg("snapshot published")
	return result, nil
}

func (s *exportService) upload(ctx context.Context, key string, doc interface{}) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", key, err)
	}
	res, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return res.Location, nil
}
