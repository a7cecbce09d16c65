package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/softball-tournament/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerTeamInvalid = errors.New("player team conflict or invalid")
	ErrPlayerConflict    = errors.New("player number is already taken on this team")
)

type TeamRepository interface {
	FetchTeamsWithRosters(ctx context.Context) ([]models.Team, error)
	UpdatePlayer(ctx context.Context, playerID int, update models.PlayerUpdate) (*models.Player, error)
	CreatePlayers(ctx context.Context, exec SQLExecutor, players []*models.Player) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) FetchTeamsWithRosters(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM teams ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	index := make(map[int]int)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		t.Players = make([]models.Player, 0)
		index[t.ID] = len(teams)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	playerRows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, number, name, role, place_of_birth
		FROM players
		ORDER BY team_id ASC, number ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer playerRows.Close()

	for playerRows.Next() {
		var p models.Player
		if err := playerRows.Scan(&p.ID, &p.TeamID, &p.Number, &p.Name, &p.Role, &p.PlaceOfBirth); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		i, ok := index[p.TeamID]
		if !ok {
			continue
		}
		teams[i].Players = append(teams[i].Players, p)
	}
	return teams, playerRows.Err()
}

func (r *postgresTeamRepository) UpdatePlayer(ctx context.Context, playerID int, update models.PlayerUpdate) (*models.Player, error) {
	query := `
		UPDATE players
		SET number = COALESCE($1, number),
		    name = COALESCE($2, name),
		    role = COALESCE($3, role),
		    place_of_birth = COALESCE($4, place_of_birth)
		WHERE id = $5
		RETURNING id, team_id, number, name, role, place_of_birth`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query,
		update.Number,
		update.Name,
		update.Role,
		update.PlaceOfBirth,
		playerID,
	).Scan(&p.ID, &p.TeamID, &p.Number, &p.Name, &p.Role, &p.PlaceOfBirth)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, r.handlePlayerError(err)
	}
	return p, nil
}

func (r *postgresTeamRepository) CreatePlayers(ctx context.Context, exec SQLExecutor, players []*models.Player) error {
	if len(players) == 0 {
		return nil
	}
	return withTx(ctx, r.db, exec, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO players (team_id, number, name, role, place_of_birth)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`)
		if err != nil {
			return fmt.Errorf("CreatePlayers failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range players {
			if p.PlaceOfBirth == "" {
				p.PlaceOfBirth = models.UnknownPlaceOfBirth
			}
			if err := stmt.QueryRowContext(ctx, p.TeamID, p.Number, p.Name, p.Role, p.PlaceOfBirth).Scan(&p.ID); err != nil {
				return fmt.Errorf("CreatePlayers failed for team_id %d, name %q: %w", p.TeamID, p.Name, r.handlePlayerError(err))
			}
		}
		return nil
	})
}

func (r *postgresTeamRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return ErrPlayerTeamInvalid
		case "23505": // unique_violation
			return ErrPlayerConflict
		}
	}
	return err
}
