package services

import (
	"context"

	"github.com/AlazarStudio/lfl-live/live"
	"github.com/AlazarStudio/lfl-live/models"
	"github.com/AlazarStudio/lfl-live/repositories"
)

// MatchService — публичные чтения вокруг живого матча: карточка матча,
// журнал событий, опубликованный состав, заявка команды, судьи.
type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListEvents(ctx context.Context, matchID int) ([]models.Event, error)
	ListParticipants(ctx context.Context, matchID int) ([]models.Participant, error)
	ListTeamRoster(ctx context.Context, teamID int) ([]models.RosterItem, error)
	ListReferees(ctx context.Context) ([]models.Referee, error)
}

type matchService struct {
	matchRepo       repositories.MatchRepository
	eventRepo       repositories.EventRepository
	participantRepo repositories.ParticipantRepository
	rosterRepo      repositories.RosterRepository
	refereeRepo     repositories.RefereeRepository
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	eventRepo repositories.EventRepository,
	participantRepo repositories.ParticipantRepository,
	rosterRepo repositories.RosterRepository,
	refereeRepo repositories.RefereeRepository,
) MatchService {
	return &matchService{
		matchRepo:       matchRepo,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		rosterRepo:      rosterRepo,
		refereeRepo:     refereeRepo,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	return s.matchRepo.GetByID(ctx, matchID)
}

func (s *matchService) ListEvents(ctx context.Context, matchID int) ([]models.Event, error) {
	events, err := s.eventRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	// Порядок хранения не значим, для отдачи события пересортировываются.
	live.SortEvents(events)
	return events, nil
}

func (s *matchService) ListParticipants(ctx context.Context, matchID int) ([]models.Participant, error) {
	return s.participantRepo.ListByMatch(ctx, matchID)
}

func (s *matchService) ListTeamRoster(ctx context.Context, teamID int) ([]models.RosterItem, error) {
	return s.rosterRepo.ListByTeam(ctx, teamID)
}

func (s *matchService) ListReferees(ctx context.Context) ([]models.Referee, error) {
	return s.refereeRepo.List(ctx)
}
