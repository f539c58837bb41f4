package live

import (
	"sort"

	"github.com/AlazarStudio/lfl-live/models"
)

// Score — проекция счёта, выведенная из журнала событий. Нигде не хранится:
// пересчитывается после каждой мутации событий.
type Score struct {
	Team1 int `json:"score1"`
	Team2 int `json:"score2"`
}

// ProjectScore сворачивает журнал событий в счёт сторон. Учитываются только
// GOAL и PENALTY_SCORED; события чужих матчей и неизвестных команд игнорируются.
func ProjectScore(events []models.Event, team1ID, team2ID int) Score {
	var s Score
	for _, e := range events {
		if !e.Type.Scoring() {
			continue
		}
		switch e.TeamID {
		case team1ID:
			s.Team1++
		case team2ID:
			s.Team2++
		}
	}
	return s
}

// SortEvents упорядочивает события для отображения: по тайму, затем по минуте,
// затем по id. Порядок, в котором события пришли из хранилища, значения не имеет.
func SortEvents(events []models.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Half != events[j].Half {
			return events[i].Half < events[j].Half
		}
		if events[i].Minute != events[j].Minute {
			return events[i].Minute < events[j].Minute
		}
		return events[i].ID < events[j].ID
	})
}
