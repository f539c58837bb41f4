package models

import "time"

// EventType соответствует ENUM event_type в БД.
type EventType string

const (
	EventGoal          EventType = "GOAL"
	EventPenaltyScored EventType = "PENALTY_SCORED"
	EventPenaltyMissed EventType = "PENALTY_MISSED"
	EventYellowCard    EventType = "YELLOW_CARD"
	EventRedCard       EventType = "RED_CARD"
	EventSubstitution  EventType = "SUBSTITUTION"
)

func (t EventType) Valid() bool {
	switch t {
	case EventGoal, EventPenaltyScored, EventPenaltyMissed,
		EventYellowCard, EventRedCard, EventSubstitution:
		return true
	}
	return false
}

// Scoring сообщает, влияет ли событие на счёт матча.
func (t EventType) Scoring() bool {
	return t == EventGoal || t == EventPenaltyScored
}

// Event — неизменяемый факт матча. TeamID указывает сторону, которой
// принадлежит событие; актор задаётся через слот заявки (RosterItemID),
// а не напрямую через игрока.
type Event struct {
	ID                 int       `json:"id" db:"id"`
	MatchID            int       `json:"match_id" db:"match_id"`
	TeamID             int       `json:"team_id" db:"team_id"`
	Type               EventType `json:"type" db:"type"`
	Half               int       `json:"half" db:"half"`
	Minute             int       `json:"minute" db:"minute"`
	RosterItemID       *int      `json:"roster_item_id,omitempty" db:"roster_item_id"`
	AssistRosterItemID *int      `json:"assist_roster_item_id,omitempty" db:"assist_roster_item_id"`
	RefereeID          *int      `json:"referee_id,omitempty" db:"referee_id"`
	Description        *string   `json:"description,omitempty" db:"description"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
