package stats

import (
	"sort"

	"atlasmeta/internal/core/record"
)

// CommanderCard is one card's record inside one commander's pool. Rates are
// against the commander's player-game count
type CommanderCard struct {
	Name            string   `json:"name"`
	InclusionRate   float64  `json:"inclusion_rate"`
	DrawnRate       float64  `json:"drawn_rate"`
	DrawnWinrate    *float64 `json:"drawn_winrate"`
	PlayedRate      float64  `json:"played_rate"`
	PlayedWinrate   *float64 `json:"played_winrate"`
	DrawnCount      int      `json:"drawn_count"`
	PlayedCount     int      `json:"played_count"`
	DrawnInstances  int      `json:"drawn_instances"`
	PlayedInstances int      `json:"played_instances"`
	AvgCopies       float64  `json:"avg_copies"`
	DeckCount       int      `json:"deck_count"`
	Games           int      `json:"games"`
}

// CommanderCardStats tallies each commander's card pool: inclusion, draw, and
// play rates with winrates. Each commander's list is sorted by inclusion rate
// descending, name ascending
func CommanderCardStats(games []record.Cleaned) map[string][]CommanderCard {
	byCmd := map[string]map[string]*cardTally{}
	cmdGames := map[string]int{}
	tally := func(cmd, name string) *cardTally {
		m := byCmd[cmd]
		if m == nil {
			m = map[string]*cardTally{}
			byCmd[cmd] = m
		}
		t := m[name]
		if t == nil {
			t = &cardTally{}
			m[name] = t
		}
		return t
	}

	for _, g := range games {
		for _, p := range g.Players {
			if p.Commander == "" {
				continue
			}
			cmdGames[p.Commander]++
			for _, c := range p.Deck {
				t := tally(p.Commander, c.Name)
				t.deck++
				t.copies += c.Count
				if p.Won {
					t.deckWins++
				}
			}
			for _, c := range p.Drawn {
				t := tally(p.Commander, c.Name)
				t.drawn++
				t.drawnInst += c.Count
				if p.Won {
					t.drawnWins++
				}
			}
			for _, c := range p.Played {
				t := tally(p.Commander, c.Name)
				t.played++
				t.playedInst += c.Count
				if p.Won {
					t.playedWins++
				}
			}
		}
	}

	out := make(map[string][]CommanderCard, len(byCmd))
	for cmd, cards := range byCmd {
		total := cmdGames[cmd]
		if total == 0 {
			continue
		}
		list := make([]CommanderCard, 0, len(cards))
		for name, t := range cards {
			avgCopies := 0.0
			if t.deck > 0 {
				avgCopies = round2(float64(t.copies) / float64(t.deck))
			}
			list = append(list, CommanderCard{
				Name:            name,
				InclusionRate:   rate4z(t.deck, total),
				DrawnRate:       rate4z(t.drawn, total),
				DrawnWinrate:    rate4(t.drawnWins, t.drawn),
				PlayedRate:      rate4z(t.played, total),
				PlayedWinrate:   rate4(t.playedWins, t.played),
				DrawnCount:      t.drawn,
				PlayedCount:     t.played,
				DrawnInstances:  t.drawnInst,
				PlayedInstances: t.playedInst,
				AvgCopies:       avgCopies,
				DeckCount:       t.deck,
				Games:           total,
			})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].InclusionRate != list[j].InclusionRate {
				return list[i].InclusionRate > list[j].InclusionRate
			}
			return list[i].Name < list[j].Name
		})
		out[cmd] = list
	}
	return out
}
