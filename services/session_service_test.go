package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/AlazarStudio/lfl-live/live"
	"github.com/AlazarStudio/lfl-live/models"
	"github.com/AlazarStudio/lfl-live/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMatchID = 1
	testTeam1   = 10
	testTeam2   = 20
)

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, id int, from, to models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if match.Status != from {
		return repositories.ErrMatchStatusConflict
	}
	match.Status = to
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	nextID int
	events map[int]models.Event

	failCreate error // подменяет результат следующего Create
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{nextID: 1, events: make(map[int]models.Event)}
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		err := r.failCreate
		r.failCreate = nil
		return err
	}
	event.ID = r.nextID
	r.nextID++
	r.events[event.ID] = *event
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return &event, nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	r.events[event.ID] = *event
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) ListByMatch(_ context.Context, matchID int) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]models.Event, 0)
	for _, event := range r.events {
		if event.MatchID == matchID {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

type fakeParticipantRepo struct {
	participants []models.Participant
}

func (r *fakeParticipantRepo) ListByMatch(context.Context, int) ([]models.Participant, error) {
	return append([]models.Participant(nil), r.participants...), nil
}

type fakeRosterRepo struct {
	byTeam map[int][]models.RosterItem
}

func (r *fakeRosterRepo) ListByTeam(_ context.Context, teamID int) ([]models.RosterItem, error) {
	return append([]models.RosterItem(nil), r.byTeam[teamID]...), nil
}

type fakeRefereeRepo struct{}

func (r *fakeRefereeRepo) List(context.Context) ([]models.Referee, error) {
	return []models.Referee{{ID: 1, FirstName: "Марат", LastName: "Кудаев"}}, nil
}

type fakeReportPublisher struct {
	mu      sync.Mutex
	reports []MatchReport
}

func (p *fakeReportPublisher) PublishMatchReport(_ context.Context, report MatchReport) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, report)
	return "https://cdn.example/reports/match-1.json", nil
}

type testEnv struct {
	service SessionService
	matches *fakeMatchRepo
	events  *fakeEventRepo
	reports *fakeReportPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	matches := &fakeMatchRepo{matches: map[int]*models.Match{
		testMatchID: {
			ID:          testMatchID,
			Team1ID:     testTeam1,
			Team2ID:     testTeam2,
			Status:      models.MatchStatusScheduled,
			HalfMinutes: 45,
			Halves:      2,
		},
	}}
	events := newFakeEventRepo()
	participants := &fakeParticipantRepo{participants: []models.Participant{
		{ID: 1, MatchID: testMatchID, RosterItemID: 101, PlayerID: 1, TeamID: testTeam1},
		{ID: 2, MatchID: testMatchID, RosterItemID: 102, PlayerID: 2, TeamID: testTeam1},
		{ID: 3, MatchID: testMatchID, RosterItemID: 109, PlayerID: 9, TeamID: testTeam2},
	}}
	rosters := &fakeRosterRepo{byTeam: map[int][]models.RosterItem{}}
	reports := &fakeReportPublisher{}

	service := NewSessionService(
		matches,
		events,
		participants,
		rosters,
		&fakeRefereeRepo{},
		live.NewHub(logger),
		reports,
		logger,
	)
	t.Cleanup(service.CloseAll)

	return &testEnv{service: service, matches: matches, events: events, reports: reports}
}

func goalInput(teamID, rosterItemID, minute int) EventInput {
	return EventInput{
		TeamID:       teamID,
		Type:         models.EventGoal,
		Minute:       &minute,
		RosterItemID: &rosterItemID,
	}
}

func TestOpenTakesScheduledMatchLive(t *testing.T) {
	env := newTestEnv(t)

	snapshot, err := env.service.Open(context.Background(), testMatchID)
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusLive, snapshot.Match.Status)
	assert.Equal(t, live.Score{}, snapshot.Score)
	assert.Equal(t, 1, snapshot.Clock.CurrentHalf)
	assert.False(t, snapshot.Clock.Running)
	assert.False(t, snapshot.Lineups.Fallback)
	assert.Len(t, snapshot.Lineups.Team1.Entries, 2)
	assert.Len(t, snapshot.Lineups.Team2.Entries, 1)
	assert.NotEmpty(t, snapshot.Referees)

	stored, err := env.matches.GetByID(context.Background(), testMatchID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusLive, stored.Status)
}

func TestOpenFallsBackToRosterWhenNoLineupPublished(t *testing.T) {
	env := newTestEnv(t)
	env.service.(*sessionService).participantRepo = &fakeParticipantRepo{}
	env.service.(*sessionService).rosterRepo = &fakeRosterRepo{byTeam: map[int][]models.RosterItem{
		testTeam1: {{ID: 101, TeamID: testTeam1, PlayerID: 1}},
		testTeam2: {{ID: 109, TeamID: testTeam2, PlayerID: 9}},
	}}

	snapshot, err := env.service.Open(context.Background(), testMatchID)
	require.NoError(t, err)

	assert.True(t, snapshot.Lineups.Fallback)
	assert.Len(t, snapshot.Lineups.Team1.Entries, 1)
	assert.Len(t, snapshot.Lineups.Team2.Entries, 1)
}

func TestRecordEventRecomputesScoreFromReload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	snapshot, err := env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 10))
	require.NoError(t, err)
	assert.Equal(t, live.Score{Team1: 1}, snapshot.Score)

	snapshot, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 30))
	require.NoError(t, err)
	assert.Equal(t, live.Score{Team1: 2}, snapshot.Score)
	assert.Len(t, snapshot.Events, 2)
}

func TestRecordEventClampsMinute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	snapshot, err := env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 999))
	require.NoError(t, err)
	assert.Equal(t, 45, snapshot.Events[0].Minute)

	snapshot, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Events[0].Minute)
}

func TestRecordEventDefaultsMinuteAndHalfFromClock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	input := EventInput{TeamID: testTeam2, Type: models.EventYellowCard, RefereeID: intp(1)}
	snapshot, err := env.service.RecordEvent(ctx, testMatchID, input)
	require.NoError(t, err)

	require.Len(t, snapshot.Events, 1)
	assert.Equal(t, 1, snapshot.Events[0].Half)
	assert.Equal(t, 1, snapshot.Events[0].Minute)
	require.NotNil(t, snapshot.Events[0].RefereeID)
	assert.Equal(t, 1, *snapshot.Events[0].RefereeID)
}

func TestRecordEventValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	_, err = env.service.RecordEvent(ctx, testMatchID, EventInput{TeamID: testTeam1})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = env.service.RecordEvent(ctx, testMatchID, EventInput{TeamID: testTeam1, Type: "OWN_GOAL"})
	assert.ErrorIs(t, err, ErrEventTypeInvalid)

	_, err = env.service.RecordEvent(ctx, testMatchID, EventInput{TeamID: 555, Type: models.EventGoal})
	assert.ErrorIs(t, err, ErrEventTeamInvalid)

	// Ни одна из отклонённых мутаций не тронула журнал.
	snapshot, err := env.service.Snapshot(testMatchID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Events)
}

func TestRecordEventDropsAssistAndRefereeWhereMeaningless(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	input := EventInput{
		TeamID:             testTeam1,
		Type:               models.EventSubstitution,
		Minute:             intp(60),
		RosterItemID:       intp(101),
		AssistRosterItemID: intp(102),
		RefereeID:          intp(1),
	}
	snapshot, err := env.service.RecordEvent(ctx, testMatchID, input)
	require.NoError(t, err)

	event := snapshot.Events[0]
	assert.Nil(t, event.AssistRosterItemID)
	assert.Nil(t, event.RefereeID)
	assert.Equal(t, 45, event.Minute)
}

func TestFailedCreateLeavesDerivedStateUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	_, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 5))
	require.NoError(t, err)

	env.events.failCreate = errors.New("connection reset")
	_, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 6))
	require.Error(t, err)

	snapshot, err := env.service.Snapshot(testMatchID)
	require.NoError(t, err)
	assert.Equal(t, live.Score{Team1: 1}, snapshot.Score)
	assert.Len(t, snapshot.Events, 1)
}

func TestDeleteAndReAddKeepsScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	snapshot, err := env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 10))
	require.NoError(t, err)
	before := snapshot.Score
	eventID := snapshot.Events[0].ID

	snapshot, err = env.service.DeleteEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, live.Score{}, snapshot.Score)

	snapshot, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 10))
	require.NoError(t, err)
	assert.Equal(t, before, snapshot.Score)
}

func TestEditEventMovesGoalToOtherSide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	snapshot, err := env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 10))
	require.NoError(t, err)
	eventID := snapshot.Events[0].ID

	snapshot, err = env.service.EditEvent(ctx, eventID, goalInput(testTeam2, 109, 10))
	require.NoError(t, err)
	assert.Equal(t, live.Score{Team2: 1}, snapshot.Score)
}

func TestEditEventKeepsMinuteWhenPatchOmitsIt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	snapshot, err := env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 33))
	require.NoError(t, err)
	eventID := snapshot.Events[0].ID

	snapshot, err = env.service.EditEvent(ctx, eventID, EventInput{TeamID: testTeam1, Type: models.EventPenaltyScored, RosterItemID: intp(101)})
	require.NoError(t, err)
	assert.Equal(t, 33, snapshot.Events[0].Minute)
	assert.Equal(t, models.EventPenaltyScored, snapshot.Events[0].Type)
}

func TestEditMissingEventReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	_, err = env.service.EditEvent(ctx, 777, goalInput(testTeam1, 101, 1))
	assert.ErrorIs(t, err, repositories.ErrEventNotFound)
}

func TestFinishMatchIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	_, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 10))
	require.NoError(t, err)

	snapshot, err := env.service.FinishMatch(ctx, testMatchID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, snapshot.Match.Status)

	// Повторное завершение и любые мутации отклоняются локально.
	_, err = env.service.FinishMatch(ctx, testMatchID)
	assert.ErrorIs(t, err, ErrMatchFinished)

	_, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 20))
	assert.ErrorIs(t, err, ErrMatchFinished)

	_, err = env.service.ToggleClock(testMatchID)
	assert.ErrorIs(t, err, ErrMatchFinished)

	after, err := env.service.Snapshot(testMatchID)
	require.NoError(t, err)
	assert.Len(t, after.Events, 1)
	assert.Equal(t, live.Score{Team1: 1}, after.Score)
}

func TestFinishMatchPublishesReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	_, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 10))
	require.NoError(t, err)
	_, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 20))
	require.NoError(t, err)

	_, err = env.service.FinishMatch(ctx, testMatchID)
	require.NoError(t, err)

	require.Len(t, env.reports.reports, 1)
	report := env.reports.reports[0]
	assert.Equal(t, live.Score{Team1: 2}, report.Score)
	require.NotNil(t, report.MVP)
	assert.Equal(t, 1, report.MVP.PlayerID)
	// Два гола и бонус победителя: 3*2 + 1.
	assert.Equal(t, 7, report.MVP.Score)
}

func TestRankingWithoutOpenSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	_, err = env.service.RecordEvent(ctx, testMatchID, goalInput(testTeam1, 101, 10))
	require.NoError(t, err)
	_, err = env.service.FinishMatch(ctx, testMatchID)
	require.NoError(t, err)
	require.NoError(t, env.service.Close(testMatchID))

	result, err := env.service.Ranking(ctx, testMatchID)
	require.NoError(t, err)
	require.NotNil(t, result.MVP)
	assert.Equal(t, 1, result.MVP.PlayerID)
}

func TestRankingEmptyLogYieldsNoMVP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	result, err := env.service.Ranking(ctx, testMatchID)
	require.NoError(t, err)
	assert.Empty(t, result.Ranking)
	assert.Nil(t, result.MVP)
}

func TestClockOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	state, err := env.service.ToggleClock(testMatchID)
	require.NoError(t, err)
	assert.True(t, state.Running)

	state, err = env.service.ToggleClock(testMatchID)
	require.NoError(t, err)
	assert.False(t, state.Running)

	state, err = env.service.AdvanceHalf(testMatchID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentHalf)
	assert.Equal(t, 0, state.ElapsedSeconds)

	// За последним таймом номер не растёт.
	state, err = env.service.AdvanceHalf(testMatchID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentHalf)

	state, err = env.service.RetreatHalf(testMatchID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentHalf)
}

func TestCloseStopsSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.service.Open(ctx, testMatchID)
	require.NoError(t, err)

	// Сессия закрывается с запущенным секундомером: тик обязан остановиться.
	_, err = env.service.ToggleClock(testMatchID)
	require.NoError(t, err)

	require.NoError(t, env.service.Close(testMatchID))

	_, err = env.service.Snapshot(testMatchID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, env.service.Close(testMatchID), ErrSessionNotFound)
}

func TestOpenFinishedMatchRejected(t *testing.T) {
	env := newTestEnv(t)
	env.matches.matches[testMatchID].Status = models.MatchStatusFinished

	_, err := env.service.Open(context.Background(), testMatchID)
	assert.ErrorIs(t, err, ErrMatchFinished)
}

func TestOpenPostponedMatchRejected(t *testing.T) {
	env := newTestEnv(t)
	env.matches.matches[testMatchID].Status = models.MatchStatusPostponed

	_, err := env.service.Open(context.Background(), testMatchID)
	assert.ErrorIs(t, err, ErrMatchNotRunnable)
}

func intp(v int) *int { return &v }
