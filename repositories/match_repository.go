package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AlazarStudio/lfl-live/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchStatusConflict = errors.New("match is not in the expected status")
)

type MatchRepository interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// UpdateStatus переводит матч из статуса from в статус to. Если матч не в
	// статусе from, возвращает ErrMatchStatusConflict — переходы только вперёд.
	UpdateStatus(ctx context.Context, id int, from, to models.MatchStatus) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT id, tournament_id, team1_id, team2_id, status, half_minutes, halves, date, created_at
		FROM matches
		WHERE id = $1`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.TournamentID,
		&match.Team1ID,
		&match.Team2ID,
		&match.Status,
		&match.HalfMinutes,
		&match.Halves,
		&match.Date,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, from, to models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// Различаем "матча нет" и "матч в другом статусе".
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrMatchStatusConflict
	}
	return nil
}
