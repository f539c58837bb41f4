package repositories

import (
	"context"
	"database/sql"

	"github.com/AlazarStudio/lfl-live/models"
)

type RosterRepository interface {
	// ListByTeam возвращает полную заявку команды вместе с данными игроков,
	// упорядоченную по игровому номеру. Используется как резервный источник
	// составов, когда на матч не опубликованы участники.
	ListByTeam(ctx context.Context, teamID int) ([]models.RosterItem, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) ListByTeam(ctx context.Context, teamID int) ([]models.RosterItem, error) {
	query := `
		SELECT ri.id, ri.team_id, ri.player_id, ri.number, ri.role, ri.position, ri.created_at,
			p.id, p.first_name, p.last_name, p.created_at
		FROM roster_items ri
		JOIN players p ON p.id = ri.player_id
		WHERE ri.team_id = $1
		ORDER BY ri.number ASC NULLS LAST, p.last_name ASC, ri.id ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.RosterItem, 0)
	for rows.Next() {
		var item models.RosterItem
		var player models.Player
		if scanErr := rows.Scan(
			&item.ID,
			&item.TeamID,
			&item.PlayerID,
			&item.Number,
			&item.Role,
			&item.Position,
			&item.CreatedAt,
			&player.ID,
			&player.FirstName,
			&player.LastName,
			&player.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		item.Player = &player
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
