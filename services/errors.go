package services

import "errors"

// Общие ошибки сервисного слоя, участвующие в маппинге на HTTP.
var (
	// Ошибки валидации события
	ErrValidationFailed  = errors.New("validation failed")
	ErrEventTypeRequired = errors.New("event type is required")
	ErrEventTypeInvalid  = errors.New("unknown event type")
	ErrEventTeamInvalid  = errors.New("event team must be one of the match sides")

	// Ошибки состояния сессии и матча
	ErrMatchFinished           = errors.New("match is finished, mutations are rejected")
	ErrMatchNotRunnable        = errors.New("match cannot be taken live in its current status")
	ErrSessionNotFound         = errors.New("no live session is open for this match")
	ErrStatusTransitionInvalid = errors.New("invalid match status transition")

	// Аутентификация оператора
	ErrInvalidCredentials = errors.New("invalid operator credentials")
)
