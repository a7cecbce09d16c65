package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/lib/pq"
)

var (
	ErrStatGameInvalid   = errors.New("stat line references an unknown game")
	ErrStatPlayerInvalid = errors.New("stat line references an unknown player")
)

// StatRepository persists per-game box-score lines. Upserts merge field by
// field: fields absent from the line keep their stored value.
type StatRepository interface {
	UpsertBattingStat(ctx context.Context, gameID, playerID int, line models.BattingLine) error
	UpsertPitchingStat(ctx context.Context, gameID, playerID int, line models.PitchingLine) error
}

type postgresStatRepository struct {
	db *sql.DB
}

func NewPostgresStatRepository(db *sql.DB) StatRepository {
	return &postgresStatRepository{db: db}
}

func (r *postgresStatRepository) UpsertBattingStat(ctx context.Context, gameID, playerID int, line models.BattingLine) error {
	raw, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to encode batting line: %w", err)
	}
	query := `
		INSERT INTO batting_stats (game_id, player_id, stats)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, player_id) DO UPDATE
		SET stats = batting_stats.stats || EXCLUDED.stats`
	if _, err := r.db.ExecContext(ctx, query, gameID, playerID, raw); err != nil {
		return fmt.Errorf("failed to upsert batting stat %d/%d: %w", gameID, playerID, r.handleStatError(err))
	}
	return nil
}

func (r *postgresStatRepository) UpsertPitchingStat(ctx context.Context, gameID, playerID int, line models.PitchingLine) error {
	raw, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to encode pitching line: %w", err)
	}
	query := `
		INSERT INTO pitching_stats (game_id, player_id, stats)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, player_id) DO UPDATE
		SET stats = pitching_stats.stats || EXCLUDED.stats`
	if _, err := r.db.ExecContext(ctx, query, gameID, playerID, raw); err != nil {
		return fmt.Errorf("failed to upsert pitching stat %d/%d: %w", gameID, playerID, r.handleStatError(err))
	}
	return nil
}

func (r *postgresStatRepository) handleStatError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
		switch pqErr.Constraint {
		case "batting_stats_game_id_fkey", "pitching_stats_game_id_fkey":
			return ErrStatGameInvalid
		case "batting_stats_player_id_fkey", "pitching_stats_player_id_fkey":
			return ErrStatPlayerInvalid
		}
	}
	return err
}
