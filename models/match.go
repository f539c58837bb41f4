package models

import "time"

// MatchStatus соответствует ENUM match_status в БД.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusFinished  MatchStatus = "FINISHED"
	MatchStatusPostponed MatchStatus = "POSTPONED"
	MatchStatusCanceled  MatchStatus = "CANCELED"
)

// Match — матч турнира. HalfMinutes и Halves приходят из настроек турнира
// и фиксируются на матче при его создании.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Team1ID      int         `json:"team1_id" db:"team1_id"`
	Team2ID      int         `json:"team2_id" db:"team2_id"`
	Status       MatchStatus `json:"status" db:"status"`
	HalfMinutes  int         `json:"half_minutes" db:"half_minutes"`
	Halves       int         `json:"halves" db:"halves"`
	Date         *time.Time  `json:"date,omitempty" db:"date"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// Terminal сообщает, достиг ли матч поглощающего статуса: из FINISHED,
// POSTPONED и CANCELED переходов нет.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusFinished || s == MatchStatusPostponed || s == MatchStatusCanceled
}
