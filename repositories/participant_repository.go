package repositories

import (
	"context"
	"database/sql"

	"github.com/AlazarStudio/lfl-live/models"
)

type ParticipantRepository interface {
	// ListByMatch возвращает строки опубликованного состава. Пустой список —
	// валидный ответ: состав на матч не публиковался.
	ListByMatch(ctx context.Context, matchID int) ([]models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) ListByMatch(ctx context.Context, matchID int) ([]models.Participant, error) {
	query := `
		SELECT mp.id, mp.match_id, mp.roster_item_id, ri.player_id, ri.team_id, mp.created_at
		FROM match_participants mp
		JOIN roster_items ri ON ri.id = mp.roster_item_id
		WHERE mp.match_id = $1
		ORDER BY ri.team_id ASC, ri.number ASC NULLS LAST, mp.id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(
			&p.ID,
			&p.MatchID,
			&p.RosterItemID,
			&p.PlayerID,
			&p.TeamID,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}
