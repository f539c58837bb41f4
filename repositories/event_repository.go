package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AlazarStudio/lfl-live/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrEventMatchInvalid      = errors.New("event references an unknown match")
	ErrEventTeamInvalid       = errors.New("event references an unknown team")
	ErrEventRosterItemInvalid = errors.New("event references an unknown roster item")
	ErrEventRefereeInvalid    = errors.New("event references an unknown referee")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	// Update — полная замена изменяемых полей события.
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int) error
	// ListByMatch возвращает все события матча — единственный источник истины
	// для всех производных вычислений.
	ListByMatch(ctx context.Context, matchID int) ([]models.Event, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO match_events
			(match_id, team_id, type, half, minute, roster_item_id, assist_roster_item_id, referee_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.MatchID,
		event.TeamID,
		event.Type,
		event.Half,
		event.Minute,
		event.RosterItemID,
		event.AssistRosterItemID,
		event.RefereeID,
		event.Description,
	).Scan(&event.ID, &event.CreatedAt)

	return r.handleEventError(err)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, match_id, team_id, type, half, minute, roster_item_id, assist_roster_item_id, referee_id, description, created_at
		FROM match_events
		WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.MatchID,
		&event.TeamID,
		&event.Type,
		&event.Half,
		&event.Minute,
		&event.RosterItemID,
		&event.AssistRosterItemID,
		&event.RefereeID,
		&event.Description,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE match_events
		SET team_id = $1, type = $2, half = $3, minute = $4,
			roster_item_id = $5, assist_roster_item_id = $6, referee_id = $7, description = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		event.TeamID,
		event.Type,
		event.Half,
		event.Minute,
		event.RosterItemID,
		event.AssistRosterItemID,
		event.RefereeID,
		event.Description,
		event.ID,
	)
	if err != nil {
		return r.handleEventError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM match_events WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) ListByMatch(ctx context.Context, matchID int) ([]models.Event, error) {
	query := `
		SELECT id, match_id, team_id, type, half, minute, roster_item_id, assist_roster_item_id, referee_id, description, created_at
		FROM match_events
		WHERE match_id = $1
		ORDER BY half ASC, minute ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var event models.Event
		if scanErr := rows.Scan(
			&event.ID,
			&event.MatchID,
			&event.TeamID,
			&event.Type,
			&event.Half,
			&event.Minute,
			&event.RosterItemID,
			&event.AssistRosterItemID,
			&event.RefereeID,
			&event.Description,
			&event.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) handleEventError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "match_events_match_id_fkey":
				return ErrEventMatchInvalid
			case "match_events_team_id_fkey":
				return ErrEventTeamInvalid
			case "match_events_roster_item_id_fkey", "match_events_assist_roster_item_id_fkey":
				return ErrEventRosterItemInvalid
			case "match_events_referee_id_fkey":
				return ErrEventRefereeInvalid
			}
		}
	}
	return err
}
