package stats

import (
	"strconv"

	"atlasmeta/internal/core/record"
)

// deck cost curve: one bucket per cost point, 12+ clamped together
const costBuckets = 13

// CostHistogram is the average mana-curve for a commander's decks, split by
// game outcome
type CostHistogram struct {
	Labels       []string  `json:"labels"`
	AllDecks     []float64 `json:"all_decks"`
	WinningDecks []float64 `json:"winning_decks"`
	LosingDecks  []float64 `json:"losing_decks"`
}

// CommanderDeckComp is the averaged deck-building profile of one commander
type CommanderDeckComp struct {
	Faction           string        `json:"faction"`
	DeckCount         int           `json:"deck_count"`
	AvgCost           float64       `json:"avg_cost"`
	CostHistogram     CostHistogram `json:"cost_histogram"`
	AvgMinionCount    float64       `json:"avg_minion_count"`
	AvgSpellCount     float64       `json:"avg_spell_count"`
	AvgPatronCards    float64       `json:"avg_patron_cards"`
	AvgNeutralCards   float64       `json:"avg_neutral_cards"`
	AvgOtherCards     float64       `json:"avg_other_cards"`
	WinAvgMinionCount float64       `json:"win_avg_minion_count"`
	WinAvgSpellCount  float64       `json:"win_avg_spell_count"`
	LossAvgMinion     float64       `json:"loss_avg_minion_count"`
	LossAvgSpell      float64       `json:"loss_avg_spell_count"`
}

// deckProfile is one observed deck, copy-weighted
type deckProfile struct {
	avgCost   float64
	costCurve [costBuckets]int
	minions   int
	spells    int
	patron    int
	neutral   int
	other     int
}

// DeckComposition profiles every commander's decks: mana curve, card-type
// ratio, and faction mix, with win/loss splits. Cards missing a catalog cost
// count toward deck size but not the curve
func DeckComposition(games []record.Cleaned, look Lookups) map[string]CommanderDeckComp {
	type cmdDecks struct {
		faction         string
		all, wins, loss []deckProfile
	}
	byCmd := map[string]*cmdDecks{}

	for _, g := range games {
		for _, p := range g.Players {
			if p.Commander == "" {
				continue
			}
			d := byCmd[p.Commander]
			if d == nil {
				d = &cmdDecks{faction: look.Faction(p.Commander)}
				byCmd[p.Commander] = d
			}

			var prof deckProfile
			costWeighted := 0
			cardCount := 0
			for _, c := range p.Deck {
				meta := look.CardInfo(c.Name)
				if meta.Cost != nil {
					costWeighted += *meta.Cost * c.Count
					bucket := *meta.Cost
					if bucket > 12 {
						bucket = 12
					}
					prof.costCurve[bucket] += c.Count
				}
				cardCount += c.Count

				switch meta.Type {
				case "Minion":
					prof.minions += c.Count
				case "Spell":
					prof.spells += c.Count
				}

				switch meta.Faction {
				case d.faction:
					prof.patron += c.Count
				case "neutral":
					prof.neutral += c.Count
				default:
					prof.other += c.Count
				}
			}
			if cardCount > 0 {
				prof.avgCost = float64(costWeighted) / float64(cardCount)
			}

			d.all = append(d.all, prof)
			if p.Won {
				d.wins = append(d.wins, prof)
			} else {
				d.loss = append(d.loss, prof)
			}
		}
	}

	labels := make([]string, costBuckets)
	for i := 0; i < 12; i++ {
		labels[i] = strconv.Itoa(i)
	}
	labels[12] = "12+"

	out := make(map[string]CommanderDeckComp, len(byCmd))
	for cmd, d := range byCmd {
		out[cmd] = CommanderDeckComp{
			Faction:   d.faction,
			DeckCount: len(d.all),
			AvgCost:   avgOf(d.all, func(p deckProfile) float64 { return p.avgCost }),
			CostHistogram: CostHistogram{
				Labels:       labels,
				AllDecks:     avgCurve(d.all),
				WinningDecks: avgCurve(d.wins),
				LosingDecks:  avgCurve(d.loss),
			},
			AvgMinionCount:    avgOf(d.all, func(p deckProfile) float64 { return float64(p.minions) }),
			AvgSpellCount:     avgOf(d.all, func(p deckProfile) float64 { return float64(p.spells) }),
			AvgPatronCards:    avgOf(d.all, func(p deckProfile) float64 { return float64(p.patron) }),
			AvgNeutralCards:   avgOf(d.all, func(p deckProfile) float64 { return float64(p.neutral) }),
			AvgOtherCards:     avgOf(d.all, func(p deckProfile) float64 { return float64(p.other) }),
			WinAvgMinionCount: avgOf(d.wins, func(p deckProfile) float64 { return float64(p.minions) }),
			WinAvgSpellCount:  avgOf(d.wins, func(p deckProfile) float64 { return float64(p.spells) }),
			LossAvgMinion:     avgOf(d.loss, func(p deckProfile) float64 { return float64(p.minions) }),
			LossAvgSpell:      avgOf(d.loss, func(p deckProfile) float64 { return float64(p.spells) }),
		}
	}
	return out
}

// avgOf averages a field over a set of decks, rounded to 2 places; zero when
// the set is empty
func avgOf(decks []deckProfile, field func(deckProfile) float64) float64 {
	if len(decks) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range decks {
		sum += field(d)
	}
	return round2(sum / float64(len(decks)))
}

// avgCurve averages cost curves bucket-wise, rounded to 2 places
func avgCurve(decks []deckProfile) []float64 {
	out := make([]float64, costBuckets)
	if len(decks) == 0 {
		return out
	}
	for i := range out {
		sum := 0
		for _, d := range decks {
			sum += d.costCurve[i]
		}
		out[i] = round2(float64(sum) / float64(len(decks)))
	}
	return out
}
