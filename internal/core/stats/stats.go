// Package stats computes the aggregation catalog over a slice of cleaned
// records. Every function is pure, stateless, and returns a structurally
// valid payload on an empty slice
package stats

import (
	"fmt"
	"math"
	"time"

	"atlasmeta/internal/core/record"
)

// CardMeta is the reference-catalog view a few aggregations need
type CardMeta struct {
	Faction string
	Type    string
	Cost    *int
}

// Lookups carries the reference catalogs into the aggregation pass.
// Zero-value lookups are legal; unknown names resolve to neutral
type Lookups struct {
	CommanderFaction map[string]string
	Card             map[string]CardMeta
}

// Faction resolves a commander's faction, defaulting to neutral
func (l Lookups) Faction(commander string) string {
	if f, ok := l.CommanderFaction[commander]; ok && f != "" {
		return f
	}
	return "neutral"
}

// CardInfo resolves a card's catalog row, defaulting to a neutral blank
func (l Lookups) CardInfo(name string) CardMeta {
	if m, ok := l.Card[name]; ok {
		return m
	}
	return CardMeta{Faction: "neutral"}
}

// FactionOrder is the fixed faction series order used by trend payloads
var FactionOrder = []string{"skaal", "grenalia", "lucia", "neutral", "shadis", "archaeon"}

// Func computes one statistic payload from one slice
type Func func(games []record.Cleaned) any

// Aggregation binds an output document name to its builder. Compact marks
// documents serialized without indentation
type Aggregation struct {
	Doc     string
	Compact bool
	Fn      Func
}

// Registry returns the full aggregation catalog. Adding a statistic means
// adding an entry here; the orchestration loop never changes
func Registry(look Lookups) []Aggregation {
	return []Aggregation{
		{Doc: "commander_stats", Fn: func(g []record.Cleaned) any { return CommanderStats(g, look) }},
		{Doc: "matchups", Fn: func(g []record.Cleaned) any { return Matchups(g) }},
		{Doc: "matchup_details", Compact: true, Fn: func(g []record.Cleaned) any { return MatchupDetails(g) }},
		{Doc: "card_stats", Fn: func(g []record.Cleaned) any { return CardStats(g, look) }},
		{Doc: "trends", Fn: func(g []record.Cleaned) any { return FactionTrends(g, look) }},
		{Doc: "game_distributions", Fn: func(g []record.Cleaned) any { return GameDistributions(g) }},
		{Doc: "deck_composition", Fn: func(g []record.Cleaned) any { return DeckComposition(g, look) }},
		{Doc: "first_turn", Fn: func(g []record.Cleaned) any { return FirstTurn(g) }},
		{Doc: "commander_trends", Fn: func(g []record.Cleaned) any { return CommanderTrends(g) }},
		{Doc: "commander_winrate_trends", Fn: func(g []record.Cleaned) any { return CommanderWinrateTrends(g) }},
		{Doc: "duration_winrates", Fn: func(g []record.Cleaned) any { return DurationWinrates(g) }},
		{Doc: "action_winrates", Fn: func(g []record.Cleaned) any { return ActionWinrates(g) }},
		{Doc: "turn_winrates", Fn: func(g []record.Cleaned) any { return TurnWinrates(g) }},
		{Doc: "commander_card_stats", Fn: func(g []record.Cleaned) any { return CommanderCardStats(g) }},
	}
}

// WeekKey buckets a timestamp into a Monday-start week-of-year label,
// e.g. "2025-W07". Week 0 covers the days before the year's first Monday
func WeekKey(t time.Time) string {
	t = t.UTC()
	yday := t.YearDay() - 1
	wday := (int(t.Weekday()) + 6) % 7
	week := (yday + 7 - wday) / 7
	return fmt.Sprintf("%04d-W%02d", t.Year(), week)
}

// round helpers: payload rates round to 4 places, averages to 2, trend
// percentages to 1

func round1(x float64) float64 { return math.Round(x*10) / 10 }

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func round4(x float64) float64 { return math.Round(x*10000) / 10000 }

// rate4 is wins/total rounded to 4 places, or nil when total is zero.
// Zero-sample rates are never reported as 0 or NaN
func rate4(wins, total int) *float64 {
	if total <= 0 {
		return nil
	}
	r := round4(float64(wins) / float64(total))
	return &r
}

// rate4z is like rate4 but degrades to 0 for zero totals, matching the
// payloads that carry an explicit sample count alongside
func rate4z(wins, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round4(float64(wins) / float64(total))
}

// pctPoint is (part/total)*100 rounded to 1 place
func pctPoint(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}
