package stats

import (
	"sort"

	"atlasmeta/internal/core/record"
)

// CardStat is one row of the global card table. Rates are against
// player-games (two sides per game); counts are per-side appearances and
// instances are copy-weighted
type CardStat struct {
	Name            string  `json:"name"`
	Faction         string  `json:"faction"`
	Type            string  `json:"type"`
	DeckCount       int     `json:"deck_count"`
	DeckRate        float64 `json:"deck_rate"`
	DeckWinrate     float64 `json:"deck_winrate"`
	DrawnCount      int     `json:"drawn_count"`
	DrawnRate       float64 `json:"drawn_rate"`
	DrawnWinrate    float64 `json:"drawn_winrate"`
	PlayedCount     int     `json:"played_count"`
	PlayedRate      float64 `json:"played_rate"`
	PlayedWinrate   float64 `json:"played_winrate"`
	AvgCopies       float64 `json:"avg_copies"`
	DrawnInstances  int     `json:"drawn_instances"`
	PlayedInstances int     `json:"played_instances"`
}

type cardTally struct {
	deck, deckWins     int
	drawn, drawnWins   int
	played, playedWins int
	copies             int
	drawnInst          int
	playedInst         int
}

// CardStats tallies deck inclusion, draw, and play records for every card
// across all player-sides. Sorted by deck count descending, name ascending
func CardStats(games []record.Cleaned, look Lookups) []CardStat {
	byName := map[string]*cardTally{}
	tally := func(name string) *cardTally {
		t := byName[name]
		if t == nil {
			t = &cardTally{}
			byName[name] = t
		}
		return t
	}

	for _, g := range games {
		for _, p := range g.Players {
			for _, c := range p.Deck {
				t := tally(c.Name)
				t.deck++
				t.copies += c.Count
				if p.Won {
					t.deckWins++
				}
			}
			for _, c := range p.Drawn {
				t := tally(c.Name)
				t.drawn++
				t.drawnInst += c.Count
				if p.Won {
					t.drawnWins++
				}
			}
			for _, c := range p.Played {
				t := tally(c.Name)
				t.played++
				t.playedInst += c.Count
				if p.Won {
					t.playedWins++
				}
			}
		}
	}

	playerGames := len(games) * 2
	out := make([]CardStat, 0, len(byName))
	for name, t := range byName {
		meta := look.CardInfo(name)
		avgCopies := 0.0
		if t.deck > 0 {
			avgCopies = round2(float64(t.copies) / float64(t.deck))
		}
		out = append(out, CardStat{
			Name:            name,
			Faction:         meta.Faction,
			Type:            meta.Type,
			DeckCount:       t.deck,
			DeckRate:        rate4z(t.deck, playerGames),
			DeckWinrate:     rate4z(t.deckWins, t.deck),
			DrawnCount:      t.drawn,
			DrawnRate:       rate4z(t.drawn, playerGames),
			DrawnWinrate:    rate4z(t.drawnWins, t.drawn),
			PlayedCount:     t.played,
			PlayedRate:      rate4z(t.played, playerGames),
			PlayedWinrate:   rate4z(t.playedWins, t.played),
			AvgCopies:       avgCopies,
			DrawnInstances:  t.drawnInst,
			PlayedInstances: t.playedInst,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeckCount != out[j].DeckCount {
			return out[i].DeckCount > out[j].DeckCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
