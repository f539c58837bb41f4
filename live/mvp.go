package live

import (
	"sort"

	"github.com/AlazarStudio/lfl-live/models"
)

// Очки за действия при расчёте MVP.
const (
	mvpGoalPoints          = 3
	mvpPenaltyScoredPoints = 2
	mvpPenaltyMissedPoints = -2
	mvpAssistPoints        = 2
	mvpYellowPoints        = -1
	mvpRedPoints           = -3
	mvpWinnerBonus         = 1
)

// PlayerStanding — строка рейтинга MVP по итогам матча.
type PlayerStanding struct {
	PlayerID int `json:"player_id"`
	Score    int `json:"score"`
	Goals    int `json:"goals"`
	Assists  int `json:"assists"`
	Yellow   int `json:"yellow"`
	Red      int `json:"red"`
}

// RankMVP строит рейтинг игроков по журналу событий. playerByRosterItem
// переводит слот заявки в игрока (обе стороны в одной карте); события,
// чей слот не резолвится, в рейтинг не попадают.
//
// Голы и реализованные пенальти считаются вместе в Goals. Если одна из
// сторон строго впереди по счёту, каждый результативный игрок победителя
// (гол, реализованный пенальти или ассист) получает плоский бонус +1.
// Пустой журнал даёт пустой рейтинг — это не ошибка.
func RankMVP(events []models.Event, playerByRosterItem map[int]int, team1ID, team2ID int) []PlayerStanding {
	standings := make(map[int]*PlayerStanding)
	contributed := make(map[int]map[int]bool) // teamID → playerID → true

	get := func(playerID int) *PlayerStanding {
		st, ok := standings[playerID]
		if !ok {
			st = &PlayerStanding{PlayerID: playerID}
			standings[playerID] = st
		}
		return st
	}
	markContribution := func(teamID, playerID int) {
		if contributed[teamID] == nil {
			contributed[teamID] = make(map[int]bool)
		}
		contributed[teamID][playerID] = true
	}
	resolve := func(rosterItemID *int) (int, bool) {
		if rosterItemID == nil {
			return 0, false
		}
		playerID, ok := playerByRosterItem[*rosterItemID]
		return playerID, ok
	}

	for _, e := range events {
		actor, ok := resolve(e.RosterItemID)
		if ok {
			st := get(actor)
			switch e.Type {
			case models.EventGoal:
				st.Goals++
				st.Score += mvpGoalPoints
				markContribution(e.TeamID, actor)
			case models.EventPenaltyScored:
				st.Goals++
				st.Score += mvpPenaltyScoredPoints
				markContribution(e.TeamID, actor)
			case models.EventPenaltyMissed:
				st.Score += mvpPenaltyMissedPoints
			case models.EventYellowCard:
				st.Yellow++
				st.Score += mvpYellowPoints
			case models.EventRedCard:
				st.Red++
				st.Score += mvpRedPoints
			}
		}
		// Ассист учитывается только у гола.
		if e.Type == models.EventGoal {
			if assistant, ok := resolve(e.AssistRosterItemID); ok {
				st := get(assistant)
				st.Assists++
				st.Score += mvpAssistPoints
				markContribution(e.TeamID, assistant)
			}
		}
	}

	score := ProjectScore(events, team1ID, team2ID)
	var winner int
	switch {
	case score.Team1 > score.Team2:
		winner = team1ID
	case score.Team2 > score.Team1:
		winner = team2ID
	}
	if winner != 0 {
		for playerID := range contributed[winner] {
			standings[playerID].Score += mvpWinnerBonus
		}
	}

	ranking := make([]PlayerStanding, 0, len(standings))
	for _, st := range standings {
		ranking = append(ranking, *st)
	}
	sort.Slice(ranking, func(i, j int) bool {
		return lessStanding(ranking[i], ranking[j])
	})
	return ranking
}

// MVP возвращает вершину рейтинга. Второе значение — false, если кандидатов нет.
func MVP(ranking []PlayerStanding) (PlayerStanding, bool) {
	if len(ranking) == 0 {
		return PlayerStanding{}, false
	}
	return ranking[0], true
}

// lessStanding — детерминированный порядок рейтинга: очки ↓, голы ↓,
// ассисты ↓, красные ↑, жёлтые ↑, id игрока ↑. Порядок обхода map на
// результат не влияет.
func lessStanding(a, b PlayerStanding) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Goals != b.Goals {
		return a.Goals > b.Goals
	}
	if a.Assists != b.Assists {
		return a.Assists > b.Assists
	}
	if a.Red != b.Red {
		return a.Red < b.Red
	}
	if a.Yellow != b.Yellow {
		return a.Yellow < b.Yellow
	}
	return a.PlayerID < b.PlayerID
}
