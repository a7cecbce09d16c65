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
	ErrGameNotFound    = errors.New("game not found")
	ErrGameTeamInvalid = errors.New("game team conflict or invalid")
)

type GameRepository interface {
	FetchGames(ctx context.Context) ([]models.Game, error)
	UpsertGame(ctx context.Context, id int, update models.GameUpdate) error
	CreateGames(ctx context.Context, exec SQLExecutor, games []models.Game) error
	ResetAllScoresAndStats(ctx context.Context) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

// FetchGames returns every game in id order with its box-score rows attached.
func (r *postgresGameRepository) FetchGames(ctx context.Context) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team1_id, team2_id, day, time, score1, score2, hits1, hits2, errors1, errors2, innings
		FROM games
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	index := make(map[int]int)
	for rows.Next() {
		var g models.Game
		var innings []byte
		if err := rows.Scan(
			&g.ID,
			&g.Team1ID,
			&g.Team2ID,
			&g.Day,
			&g.Time,
			&g.Score1,
			&g.Score2,
			&g.Hits1,
			&g.Hits2,
			&g.Errors1,
			&g.Errors2,
			&innings,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		if len(innings) > 0 {
			if err := json.Unmarshal(innings, &g.Innings); err != nil {
				return nil, fmt.Errorf("failed to decode innings for game %d: %w", g.ID, err)
			}
		}
		g.BattingStats = make([]models.BattingStat, 0)
		g.PitchingStats = make([]models.PitchingStat, 0)
		index[g.ID] = len(games)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachBatting(ctx, games, index); err != nil {
		return nil, err
	}
	if err := r.attachPitching(ctx, games, index); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *postgresGameRepository) attachBatting(ctx context.Context, games []models.Game, index map[int]int) error {
	rows, err := r.db.QueryContext(ctx, `SELECT game_id, player_id, stats FROM batting_stats ORDER BY game_id, player_id`)
	if err != nil {
		return fmt.Errorf("failed to list batting stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.BattingStat
		var raw []byte
		if err := rows.Scan(&s.GameID, &s.PlayerID, &raw); err != nil {
			return fmt.Errorf("failed to scan batting stat: %w", err)
		}
		if err := json.Unmarshal(raw, &s.Stats); err != nil {
			return fmt.Errorf("failed to decode batting stat %d/%d: %w", s.GameID, s.PlayerID, err)
		}
		if i, ok := index[s.GameID]; ok {
			games[i].BattingStats = append(games[i].BattingStats, s)
		}
	}
	return rows.Err()
}

func (r *postgresGameRepository) attachPitching(ctx context.Context, games []models.Game, index map[int]int) error {
	rows, err := r.db.QueryContext(ctx, `SELECT game_id, player_id, stats FROM pitching_stats ORDER BY game_id, player_id`)
	if err != nil {
		return fmt.Errorf("failed to list pitching stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.PitchingStat
		var raw []byte
		if err := rows.Scan(&s.GameID, &s.PlayerID, &raw); err != nil {
			return fmt.Errorf("failed to scan pitching stat: %w", err)
		}
		if err := json.Unmarshal(raw, &s.Stats); err != nil {
			return fmt.Errorf("failed to decode pitching stat %d/%d: %w", s.GameID, s.PlayerID, err)
		}
		if i, ok := index[s.GameID]; ok {
			games[i].PitchingStats = append(games[i].PitchingStats, s)
		}
	}
	return rows.Err()
}

// UpsertGame writes the full record of one game. Team references are only
// replaced when the update carries them.
func (r *postgresGameRepository) UpsertGame(ctx context.Context, id int, update models.GameUpdate) error {
	innings, err := encodeInnings(update.Innings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO games
			(id, team1_id, team2_id, day, time, score1, score2, hits1, hits2, errors1, errors2, innings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			team1_id = COALESCE(EXCLUDED.team1_id, games.team1_id),
			team2_id = COALESCE(EXCLUDED.team2_id, games.team2_id),
			day = EXCLUDED.day,
			time = EXCLUDED.time,
			score1 = EXCLUDED.score1,
			score2 = EXCLUDED.score2,
			hits1 = EXCLUDED.hits1,
			hits2 = EXCLUDED.hits2,
			errors1 = EXCLUDED.errors1,
			errors2 = EXCLUDED.errors2,
			innings = EXCLUDED.innings`

	_, err = r.db.ExecContext(ctx, query,
		id,
		update.Team1ID,
		update.Team2ID,
		update.Day,
		update.Time,
		update.Score1,
		update.Score2,
		update.Hits1,
		update.Hits2,
		update.Errors1,
		update.Errors2,
		innings,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game %d: %w", id, r.handleGameError(err))
	}
	return nil
}

func (r *postgresGameRepository) CreateGames(ctx context.Context, exec SQLExecutor, games []models.Game) error {
	if len(games) == 0 {
		return nil
	}
	return withTx(ctx, r.db, exec, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO games (id, team1_id, team2_id, day, time, innings)
			VALUES ($1, $2, $3, $4, $5, $6)`)
		if err != nil {
			return fmt.Errorf("CreateGames failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, g := range games {
			innings, err := encodeInnings(g.Innings)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, g.ID, g.Team1ID, g.Team2ID, g.Day, g.Time, innings); err != nil {
				return fmt.Errorf("CreateGames failed for game %d: %w", g.ID, r.handleGameError(err))
			}
		}
		return nil
	})
}

// ResetAllScoresAndStats deletes every box-score row, clears scores and
// innings of all games and unseeds the championship game.
func (r *postgresGameRepository) ResetAllScoresAndStats(ctx context.Context) error {
	return withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM batting_stats`); err != nil {
			return fmt.Errorf("failed to clear batting stats: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pitching_stats`); err != nil {
			return fmt.Errorf("failed to clear pitching stats: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE games
			SET score1 = NULL, score2 = NULL, hits1 = NULL, hits2 = NULL,
			    errors1 = NULL, errors2 = NULL, innings = '[]'::jsonb`); err != nil {
			return fmt.Errorf("failed to clear game scores: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE games SET team1_id = NULL, team2_id = NULL WHERE id = $1`,
			models.ChampionshipGameID,
		); err != nil {
			return fmt.Errorf("failed to unseed championship game: %w", err)
		}
		return nil
	})
}

func encodeInnings(innings []models.Inning) ([]byte, error) {
	if innings == nil {
		innings = []models.Inning{}
	}
	b, err := json.Marshal(innings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode innings: %w", err)
	}
	return b, nil
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
		return ErrGameTeamInvalid
	}
	return err
}
