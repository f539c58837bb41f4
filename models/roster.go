package models

import "time"

// RosterRole соответствует ENUM roster_role в БД.
type RosterRole string

const (
	RoleStarter    RosterRole = "starter"
	RoleSubstitute RosterRole = "substitute"
	RoleReserve    RosterRole = "reserve"
)

// RosterItem — включение игрока в заявку команды на турнир. События матча
// ссылаются именно на слот заявки: один игрок может состоять в разных
// заявках разных турниров.
type RosterItem struct {
	ID        int        `json:"id" db:"id"`
	TeamID    int        `json:"team_id" db:"team_id"`
	PlayerID  int        `json:"player_id" db:"player_id"`
	Number    *int       `json:"number,omitempty" db:"number"`
	Role      RosterRole `json:"role" db:"role"`
	Position  *string    `json:"position,omitempty" db:"position"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}

// Participant — строка опубликованного состава на конкретный матч.
type Participant struct {
	ID           int       `json:"id" db:"id"`
	MatchID      int       `json:"match_id" db:"match_id"`
	RosterItemID int       `json:"roster_item_id" db:"roster_item_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
