package repositories

import (
	"context"
	"database/sql"

	"github.com/AlazarStudio/lfl-live/models"
)

type RefereeRepository interface {
	List(ctx context.Context) ([]models.Referee, error)
}

type postgresRefereeRepository struct {
	db *sql.DB
}

func NewPostgresRefereeRepository(db *sql.DB) RefereeRepository {
	return &postgresRefereeRepository{db: db}
}

func (r *postgresRefereeRepository) List(ctx context.Context) ([]models.Referee, error) {
	query := `
		SELECT id, first_name, last_name, created_at
		FROM referees
		ORDER BY last_name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referees := make([]models.Referee, 0)
	for rows.Next() {
		var ref models.Referee
		if scanErr := rows.Scan(&ref.ID, &ref.FirstName, &ref.LastName, &ref.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		referees = append(referees, ref)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return referees, nil
}
