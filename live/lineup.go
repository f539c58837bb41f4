package live

import "github.com/AlazarStudio/lfl-live/models"

// LineupEntry — игрок в меню ввода событий вместе со слотом заявки,
// на который будут ссылаться события.
type LineupEntry struct {
	RosterItemID int     `json:"roster_item_id"`
	PlayerID     int     `json:"player_id"`
	Number       *int    `json:"number,omitempty"`
	Position     *string `json:"position,omitempty"`
}

// Lineup — состав одной стороны: упорядоченный список для меню плюс
// таблица playerID → rosterItemID.
type Lineup struct {
	TeamID             int           `json:"team_id"`
	Entries            []LineupEntry `json:"entries"`
	RosterItemByPlayer map[int]int   `json:"-"`
}

// Lineups — результат резолвера составов. Fallback выставляется, когда на
// матч не был опубликован состав и стороны собраны из полных заявок команд —
// это явный наблюдаемый режим, а не тихая деградация.
type Lineups struct {
	Team1    Lineup `json:"team1"`
	Team2    Lineup `json:"team2"`
	Fallback bool   `json:"lineup_fallback"`

	// PlayerByRosterItem — обратная таблица по обеим сторонам,
	// нужна расчёту MVP.
	PlayerByRosterItem map[int]int `json:"-"`
}

// ResolveLineups строит составы сторон один раз на сессию: из опубликованных
// участников матча либо, когда их нет, из полных заявок команд. Если пусты
// оба источника, возвращаются пустые составы — события с нулевым актором
// записывать всё равно можно.
func ResolveLineups(team1ID, team2ID int, participants []models.Participant, roster1, roster2 []models.RosterItem) Lineups {
	l := Lineups{
		Team1:              newLineup(team1ID),
		Team2:              newLineup(team2ID),
		PlayerByRosterItem: make(map[int]int),
	}

	if len(participants) > 0 {
		for _, p := range participants {
			entry := LineupEntry{RosterItemID: p.RosterItemID, PlayerID: p.PlayerID}
			switch p.TeamID {
			case team1ID:
				l.Team1.add(entry)
			case team2ID:
				l.Team2.add(entry)
			default:
				continue
			}
			l.PlayerByRosterItem[p.RosterItemID] = p.PlayerID
		}
		return l
	}

	l.Fallback = true
	for _, item := range roster1 {
		l.Team1.add(rosterEntry(item))
		l.PlayerByRosterItem[item.ID] = item.PlayerID
	}
	for _, item := range roster2 {
		l.Team2.add(rosterEntry(item))
		l.PlayerByRosterItem[item.ID] = item.PlayerID
	}
	return l
}

func newLineup(teamID int) Lineup {
	return Lineup{
		TeamID:             teamID,
		Entries:            []LineupEntry{},
		RosterItemByPlayer: make(map[int]int),
	}
}

func (l *Lineup) add(entry LineupEntry) {
	l.Entries = append(l.Entries, entry)
	l.RosterItemByPlayer[entry.PlayerID] = entry.RosterItemID
}

func rosterEntry(item models.RosterItem) LineupEntry {
	return LineupEntry{
		RosterItemID: item.ID,
		PlayerID:     item.PlayerID,
		Number:       item.Number,
		Position:     item.Position,
	}
}
