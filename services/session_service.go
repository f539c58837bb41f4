package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/AlazarStudio/lfl-live/live"
	"github.com/AlazarStudio/lfl-live/models"
	"github.com/AlazarStudio/lfl-live/repositories"
	"golang.org/x/sync/errgroup"
)

// EventInput — данные формы ввода события. Minute и Half опциональны:
// при создании отсутствующие значения берутся из секундомера сессии.
type EventInput struct {
	TeamID             int              `json:"team_id"`
	Type               models.EventType `json:"type"`
	Half               *int             `json:"half,omitempty"`
	Minute             *int             `json:"minute,omitempty"`
	RosterItemID       *int             `json:"roster_item_id,omitempty"`
	AssistRosterItemID *int             `json:"assist_roster_item_id,omitempty"`
	RefereeID          *int             `json:"referee_id,omitempty"`
	Description        *string          `json:"description,omitempty"`
}

// Snapshot — всё, что видит оператор: матч, производный счёт, секундомер,
// журнал событий, составы и список судей.
type Snapshot struct {
	Match    *models.Match    `json:"match"`
	Score    live.Score       `json:"score"`
	Clock    live.ClockState  `json:"clock"`
	Events   []models.Event   `json:"events"`
	Lineups  live.Lineups     `json:"lineups"`
	Referees []models.Referee `json:"referees"`
}

// RankingResult — рейтинг MVP и его вершина (nil, если кандидатов нет).
type RankingResult struct {
	Ranking []live.PlayerStanding `json:"ranking"`
	MVP     *live.PlayerStanding  `json:"mvp,omitempty"`
}

// SessionService — контроллер живого матча. Сессия открывается один раз,
// держит журнал событий и секундомер, пересчитывает счёт после каждой
// мутации по полной перезагрузке журнала и необратимо завершает матч.
type SessionService interface {
	Open(ctx context.Context, matchID int) (*Snapshot, error)
	Close(matchID int) error
	CloseAll()
	Snapshot(matchID int) (*Snapshot, error)

	RecordEvent(ctx context.Context, matchID int, input EventInput) (*Snapshot, error)
	EditEvent(ctx context.Context, eventID int, input EventInput) (*Snapshot, error)
	DeleteEvent(ctx context.Context, eventID int) (*Snapshot, error)
	FinishMatch(ctx context.Context, matchID int) (*Snapshot, error)

	ToggleClock(matchID int) (live.ClockState, error)
	AdvanceHalf(matchID int) (live.ClockState, error)
	RetreatHalf(matchID int) (live.ClockState, error)

	Ranking(ctx context.Context, matchID int) (*RankingResult, error)
}

// liveSession — состояние одной открытой сессии. Мутации сериализуются
// мьютексом: порядок конкурентных вызовов разных операторов не гарантируется,
// но производное состояние всегда считается от последней перезагрузки.
type liveSession struct {
	mu       sync.Mutex
	match    *models.Match
	lineups  live.Lineups
	referees []models.Referee
	clock    *live.Clock
	events   []models.Event
	score    live.Score
	finished bool
	tickStop chan struct{} // nil, когда тик не запущен
}

type sessionService struct {
	matchRepo       repositories.MatchRepository
	eventRepo       repositories.EventRepository
	participantRepo repositories.ParticipantRepository
	rosterRepo      repositories.RosterRepository
	refereeRepo     repositories.RefereeRepository
	hub             *live.Hub
	reports         ReportPublisher // может быть nil: экспорт отчётов выключен
	logger          *slog.Logger

	mu       sync.Mutex
	sessions map[int]*liveSession
}

func NewSessionService(
	matchRepo repositories.MatchRepository,
	eventRepo repositories.EventRepository,
	participantRepo repositories.ParticipantRepository,
	rosterRepo repositories.RosterRepository,
	refereeRepo repositories.RefereeRepository,
	hub *live.Hub,
	reports ReportPublisher,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		matchRepo:       matchRepo,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		rosterRepo:      rosterRepo,
		refereeRepo:     refereeRepo,
		hub:             hub,
		reports:         reports,
		logger:          logger,
		sessions:        make(map[int]*liveSession),
	}
}

func (s *sessionService) session(matchID int) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[matchID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Open загружает матч, составы, журнал событий и судей и открывает сессию.
// SCHEDULED-матч при этом переводится в LIVE. Повторное открытие той же
// сессии возвращает её текущий снимок.
func (s *sessionService) Open(ctx context.Context, matchID int) (*Snapshot, error) {
	if sess, err := s.session(matchID); err == nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.snapshotLocked(), nil
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	switch {
	case match.Status == models.MatchStatusFinished:
		return nil, ErrMatchFinished
	case match.Status.Terminal():
		return nil, fmt.Errorf("%w: %s", ErrMatchNotRunnable, match.Status)
	case match.Status == models.MatchStatusScheduled:
		err := s.matchRepo.UpdateStatus(ctx, matchID, models.MatchStatusScheduled, models.MatchStatusLive)
		if err != nil && !errors.Is(err, repositories.ErrMatchStatusConflict) {
			return nil, err
		}
		if err != nil {
			// Параллельное открытие уже вывело матч в LIVE — проверяем.
			fresh, getErr := s.matchRepo.GetByID(ctx, matchID)
			if getErr != nil {
				return nil, getErr
			}
			if fresh.Status != models.MatchStatusLive {
				return nil, fmt.Errorf("%w: %s", ErrMatchNotRunnable, fresh.Status)
			}
		}
		match.Status = models.MatchStatusLive
	}
	// LIVE: сессия была закрыта без завершения матча — продолжаем.

	var (
		participants []models.Participant
		roster1      []models.RosterItem
		roster2      []models.RosterItem
		events       []models.Event
		referees     []models.Referee
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		participants, err = s.participantRepo.ListByMatch(gctx, matchID)
		return err
	})
	g.Go(func() (err error) {
		roster1, err = s.rosterRepo.ListByTeam(gctx, match.Team1ID)
		return err
	})
	g.Go(func() (err error) {
		roster2, err = s.rosterRepo.ListByTeam(gctx, match.Team2ID)
		return err
	})
	g.Go(func() (err error) {
		events, err = s.eventRepo.ListByMatch(gctx, matchID)
		return err
	})
	g.Go(func() (err error) {
		referees, err = s.refereeRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lineups := live.ResolveLineups(match.Team1ID, match.Team2ID, participants, roster1, roster2)
	if lineups.Fallback {
		s.logger.Info("no published lineup, falling back to full rosters", slog.Int("match_id", matchID))
	}
	live.SortEvents(events)

	sess := &liveSession{
		match:    match,
		lineups:  lineups,
		referees: referees,
		clock:    live.NewClock(match.Halves, match.HalfMinutes),
		events:   events,
		score:    live.ProjectScore(events, match.Team1ID, match.Team2ID),
	}

	s.mu.Lock()
	if existing, ok := s.sessions[matchID]; ok {
		// Параллельное открытие: победила другая сессия.
		s.mu.Unlock()
		existing.mu.Lock()
		defer existing.mu.Unlock()
		return existing.snapshotLocked(), nil
	}
	s.sessions[matchID] = sess
	s.mu.Unlock()

	s.logger.Info("live session opened",
		slog.Int("match_id", matchID),
		slog.Bool("lineup_fallback", lineups.Fallback),
		slog.Int("events", len(events)),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

// Close снимает сессию и гарантированно останавливает тик секундомера.
func (s *sessionService) Close(matchID int) error {
	s.mu.Lock()
	sess, ok := s.sessions[matchID]
	delete(s.sessions, matchID)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.stopTickLocked(sess)
	s.logger.Info("live session closed", slog.Int("match_id", matchID))
	return nil
}

func (s *sessionService) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[int]*liveSession)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		s.stopTickLocked(sess)
		sess.mu.Unlock()
	}
}

func (s *sessionService) Snapshot(matchID int) (*Snapshot, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

// RecordEvent записывает событие и пересчитывает производное состояние от
// полной перезагрузки журнала. При ошибке записи журнал и счёт не меняются.
func (s *sessionService) RecordEvent(ctx context.Context, matchID int, input EventInput) (*Snapshot, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.finished {
		return nil, ErrMatchFinished
	}

	event, err := buildEvent(sess, input, nil)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	if err := s.reloadLocked(ctx, sess); err != nil {
		return nil, err
	}
	return sess.snapshotLocked(), nil
}

// EditEvent полностью заменяет изменяемые поля события. Отсутствующие в
// патче минута и тайм сохраняются от прежней версии события.
func (s *sessionService) EditEvent(ctx context.Context, eventID int, input EventInput) (*Snapshot, error) {
	existing, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(existing.MatchID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.finished {
		return nil, ErrMatchFinished
	}

	event, err := buildEvent(sess, input, existing)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	if err := s.reloadLocked(ctx, sess); err != nil {
		return nil, err
	}
	return sess.snapshotLocked(), nil
}

func (s *sessionService) DeleteEvent(ctx context.Context, eventID int) (*Snapshot, error) {
	existing, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(existing.MatchID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.finished {
		return nil, ErrMatchFinished
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.reloadLocked(ctx, sess); err != nil {
		return nil, err
	}
	return sess.snapshotLocked(), nil
}

// FinishMatch необратимо переводит матч в FINISHED. После успеха любые
// мутации сессии отклоняются локально, до обращения к хранилищу. Публикация
// отчёта идёт после перехода и его не откатывает.
func (s *sessionService) FinishMatch(ctx context.Context, matchID int) (*Snapshot, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.finished {
		return nil, ErrMatchFinished
	}

	if err := s.matchRepo.UpdateStatus(ctx, matchID, models.MatchStatusLive, models.MatchStatusFinished); err != nil {
		if errors.Is(err, repositories.ErrMatchStatusConflict) {
			return nil, fmt.Errorf("%w: %s", ErrStatusTransitionInvalid, sess.match.Status)
		}
		return nil, err
	}
	sess.finished = true
	sess.match.Status = models.MatchStatusFinished
	s.stopTickLocked(sess)
	if sess.clock.Running() {
		sess.clock.StartOrPause()
	}

	ranking := live.RankMVP(sess.events, sess.lineups.PlayerByRosterItem, sess.match.Team1ID, sess.match.Team2ID)
	s.hub.BroadcastToRoom(roomID(matchID), live.Frame{
		Type: live.FrameMatchFinished,
		Payload: map[string]interface{}{
			"score":   sess.score,
			"ranking": ranking,
		},
	})
	s.logger.Info("match finished",
		slog.Int("match_id", matchID),
		slog.Int("score1", sess.score.Team1),
		slog.Int("score2", sess.score.Team2),
	)

	if s.reports != nil {
		report := MatchReport{
			MatchID:    matchID,
			Team1ID:    sess.match.Team1ID,
			Team2ID:    sess.match.Team2ID,
			Score:      sess.score,
			Events:     append([]models.Event(nil), sess.events...),
			Ranking:    ranking,
			FinishedAt: time.Now().UTC(),
		}
		if mvp, ok := live.MVP(ranking); ok {
			report.MVP = &mvp
		}
		if _, err := s.reports.PublishMatchReport(ctx, report); err != nil {
			s.logger.Error("match report publication failed", slog.Int("match_id", matchID), slog.Any("error", err))
		}
	}

	return sess.snapshotLocked(), nil
}

// ToggleClock переключает секундомер. На запуске стартует тик трансляции,
// на паузе тик останавливается.
func (s *sessionService) ToggleClock(matchID int) (live.ClockState, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return live.ClockState{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.finished {
		return live.ClockState{}, ErrMatchFinished
	}

	sess.clock.StartOrPause()
	if sess.clock.Running() {
		s.startTickLocked(sess)
	} else {
		s.stopTickLocked(sess)
	}
	state := sess.clock.State()
	s.hub.BroadcastToRoom(roomID(matchID), live.Frame{Type: live.FrameClockTick, Payload: state})
	return state, nil
}

func (s *sessionService) AdvanceHalf(matchID int) (live.ClockState, error) {
	return s.shiftHalf(matchID, +1)
}

func (s *sessionService) RetreatHalf(matchID int) (live.ClockState, error) {
	return s.shiftHalf(matchID, -1)
}

func (s *sessionService) shiftHalf(matchID, direction int) (live.ClockState, error) {
	sess, err := s.session(matchID)
	if err != nil {
		return live.ClockState{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.finished {
		return live.ClockState{}, ErrMatchFinished
	}

	s.stopTickLocked(sess)
	if direction > 0 {
		sess.clock.NextHalf()
	} else {
		sess.clock.PrevHalf()
	}
	state := sess.clock.State()
	s.hub.BroadcastToRoom(roomID(matchID), live.Frame{Type: live.FrameClockTick, Payload: state})
	return state, nil
}

// Ranking считает рейтинг MVP по требованию. Для открытой сессии — от её
// состояния, для завершённого матча — от данных хранилища.
func (s *sessionService) Ranking(ctx context.Context, matchID int) (*RankingResult, error) {
	if sess, err := s.session(matchID); err == nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return rankingResult(sess.events, sess.lineups.PlayerByRosterItem, sess.match.Team1ID, sess.match.Team2ID), nil
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	roster1, err := s.rosterRepo.ListByTeam(ctx, match.Team1ID)
	if err != nil {
		return nil, err
	}
	roster2, err := s.rosterRepo.ListByTeam(ctx, match.Team2ID)
	if err != nil {
		return nil, err
	}
	lineups := live.ResolveLineups(match.Team1ID, match.Team2ID, participants, roster1, roster2)
	return rankingResult(events, lineups.PlayerByRosterItem, match.Team1ID, match.Team2ID), nil
}

func rankingResult(events []models.Event, playerByRosterItem map[int]int, team1ID, team2ID int) *RankingResult {
	ranking := live.RankMVP(events, playerByRosterItem, team1ID, team2ID)
	result := &RankingResult{Ranking: ranking}
	if mvp, ok := live.MVP(ranking); ok {
		result.MVP = &mvp
	}
	return result
}

// reloadLocked перечитывает журнал событий целиком и пересчитывает счёт.
// Инкрементальных и оптимистичных обновлений нет намеренно: консистентность
// важнее задержки.
func (s *sessionService) reloadLocked(ctx context.Context, sess *liveSession) error {
	events, err := s.eventRepo.ListByMatch(ctx, sess.match.ID)
	if err != nil {
		return err
	}
	live.SortEvents(events)
	sess.events = events
	sess.score = live.ProjectScore(events, sess.match.Team1ID, sess.match.Team2ID)

	room := roomID(sess.match.ID)
	s.hub.BroadcastToRoom(room, live.Frame{Type: live.FrameEventsUpdated, Payload: events})
	s.hub.BroadcastToRoom(room, live.Frame{Type: live.FrameScoreUpdated, Payload: sess.score})
	return nil
}

// buildEvent валидирует ввод и собирает запись события. existing задаётся
// при редактировании: его минута и тайм служат значениями по умолчанию
// вместо секундомера.
func buildEvent(sess *liveSession, input EventInput, existing *models.Event) (*models.Event, error) {
	if input.Type == "" {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, ErrEventTypeRequired)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrEventTypeInvalid, input.Type)
	}
	if input.TeamID != sess.match.Team1ID && input.TeamID != sess.match.Team2ID {
		return nil, fmt.Errorf("%w: %d", ErrEventTeamInvalid, input.TeamID)
	}

	clockState := sess.clock.State()
	half := clockState.CurrentHalf
	minute := clockState.CurrentMinute
	if existing != nil {
		half = existing.Half
		minute = existing.Minute
	}
	if input.Half != nil {
		half = *input.Half
	}
	if input.Minute != nil {
		minute = *input.Minute
	}

	event := &models.Event{
		MatchID:      sess.match.ID,
		TeamID:       input.TeamID,
		Type:         input.Type,
		Half:         clampInt(half, 1, sess.match.Halves),
		Minute:       clampInt(minute, 1, sess.match.HalfMinutes),
		RosterItemID: input.RosterItemID,
		Description:  input.Description,
	}
	if existing != nil {
		event.ID = existing.ID
	}
	// Ассист имеет смысл только у гола, судья — только у карточек.
	if input.Type == models.EventGoal {
		event.AssistRosterItemID = input.AssistRosterItemID
	}
	if input.Type == models.EventYellowCard || input.Type == models.EventRedCard {
		event.RefereeID = input.RefereeID
	}
	return event, nil
}

func (sess *liveSession) snapshotLocked() *Snapshot {
	return &Snapshot{
		Match:    sess.match,
		Score:    sess.score,
		Clock:    sess.clock.State(),
		Events:   append([]models.Event(nil), sess.events...),
		Lineups:  sess.lineups,
		Referees: sess.referees,
	}
}

// startTickLocked запускает секундный тик трансляции состояния секундомера.
// Тик только читает состояние и обязан быть остановлен на каждом выходе:
// пауза, смена тайма, завершение матча, закрытие сессии.
func (s *sessionService) startTickLocked(sess *liveSession) {
	if sess.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	sess.tickStop = stop
	room := roomID(sess.match.ID)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				sess.mu.Lock()
				state := sess.clock.State()
				sess.mu.Unlock()
				s.hub.BroadcastToRoom(room, live.Frame{Type: live.FrameClockTick, Payload: state})
			}
		}
	}()
}

func (s *sessionService) stopTickLocked(sess *liveSession) {
	if sess.tickStop != nil {
		close(sess.tickStop)
		sess.tickStop = nil
	}
}

func roomID(matchID int) string {
	return strconv.Itoa(matchID)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
