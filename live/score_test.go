package live

import (
	"testing"

	"github.com/AlazarStudio/lfl-live/models"
	"github.com/stretchr/testify/assert"
)

const (
	teamA = 10
	teamB = 20
)

func TestProjectScoreCountsGoalsAndScoredPenalties(t *testing.T) {
	events := []models.Event{
		{ID: 1, TeamID: teamA, Type: models.EventGoal},
		{ID: 2, TeamID: teamA, Type: models.EventPenaltyScored},
		{ID: 3, TeamID: teamB, Type: models.EventGoal},
		{ID: 4, TeamID: teamB, Type: models.EventYellowCard},
		{ID: 5, TeamID: teamB, Type: models.EventSubstitution},
	}

	score := ProjectScore(events, teamA, teamB)

	assert.Equal(t, Score{Team1: 2, Team2: 1}, score)
}

func TestProjectScoreIgnoresMissedPenalties(t *testing.T) {
	events := []models.Event{
		{ID: 1, TeamID: teamA, Type: models.EventPenaltyMissed},
		{ID: 2, TeamID: teamB, Type: models.EventPenaltyMissed},
	}

	assert.Equal(t, Score{}, ProjectScore(events, teamA, teamB))
}

func TestProjectScoreIgnoresForeignTeams(t *testing.T) {
	events := []models.Event{
		{ID: 1, TeamID: 999, Type: models.EventGoal},
	}

	assert.Equal(t, Score{}, ProjectScore(events, teamA, teamB))
}

// Удаление события и добавление идентичного не меняют проекцию:
// счёт — чистая свёртка по множеству событий.
func TestProjectScoreStableUnderDeleteAndReAdd(t *testing.T) {
	events := []models.Event{
		{ID: 1, TeamID: teamA, Type: models.EventGoal},
		{ID: 2, TeamID: teamB, Type: models.EventPenaltyScored},
		{ID: 3, TeamID: teamA, Type: models.EventRedCard},
	}
	before := ProjectScore(events, teamA, teamB)

	// "Удаляем" событие 2 и добавляем идентичное с новым id.
	mutated := []models.Event{events[0], events[2], {ID: 4, TeamID: teamB, Type: models.EventPenaltyScored}}
	after := ProjectScore(mutated, teamA, teamB)

	assert.Equal(t, before, after)
}

func TestProjectScoreEmptyLog(t *testing.T) {
	assert.Equal(t, Score{}, ProjectScore(nil, teamA, teamB))
}

func TestSortEventsByHalfMinuteID(t *testing.T) {
	events := []models.Event{
		{ID: 3, Half: 2, Minute: 1},
		{ID: 2, Half: 1, Minute: 40},
		{ID: 5, Half: 1, Minute: 40},
		{ID: 1, Half: 1, Minute: 2},
	}

	SortEvents(events)

	ids := []int{events[0].ID, events[1].ID, events[2].ID, events[3].ID}
	assert.Equal(t, []int{1, 2, 5, 3}, ids)
}
