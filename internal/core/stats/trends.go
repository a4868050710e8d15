package stats

import (
	"sort"

	"atlasmeta/internal/core/record"
)

// minWeekGames suppresses trend points for weeks with too few games to be
// statistically meaningful
const minWeekGames = 4

// TrendSeries is a set of weekly percentage series sharing one date axis
type TrendSeries struct {
	Dates  []string             `json:"dates"`
	Series map[string][]float64 `json:"factions"`
}

// CommanderTrendSeries mirrors TrendSeries with a commanders key
type CommanderTrendSeries struct {
	Dates  []string             `json:"dates"`
	Series map[string][]float64 `json:"commanders"`
}

// weeklyPicks buckets commander pick counts by week. Returns per-week
// per-commander counts and the per-week player-side totals
func weeklyPicks(games []record.Cleaned) (map[string]map[string]int, map[string]int) {
	weekly := map[string]map[string]int{}
	totals := map[string]int{}
	for _, g := range games {
		if g.StartTime == nil {
			continue
		}
		week := WeekKey(*g.StartTime)
		for _, p := range g.Players {
			if p.Commander == "" {
				continue
			}
			if weekly[week] == nil {
				weekly[week] = map[string]int{}
			}
			weekly[week][p.Commander]++
			totals[week]++
		}
	}
	return weekly, totals
}

func sortedWeeks(weekly map[string]map[string]int) []string {
	out := make([]string, 0, len(weekly))
	for w := range weekly {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// FactionTrends computes weekly faction share percentages. Weeks below the
// sample floor are dropped from the axis entirely
func FactionTrends(games []record.Cleaned, look Lookups) TrendSeries {
	weekly, totals := weeklyPicks(games)

	dates := make([]string, 0, len(weekly))
	series := map[string][]float64{}
	for _, week := range sortedWeeks(weekly) {
		total := totals[week]
		if total < minWeekGames {
			continue
		}
		dates = append(dates, week)
		counts := map[string]int{}
		for cmd, n := range weekly[week] {
			counts[look.Faction(cmd)] += n
		}
		for _, faction := range FactionOrder {
			series[faction] = append(series[faction], pctPoint(counts[faction], total))
		}
	}
	return TrendSeries{Dates: dates, Series: series}
}

// CommanderTrends computes weekly commander share percentages. Every
// commander seen in any week gets a point for each qualifying week, zero
// when absent that week
func CommanderTrends(games []record.Cleaned) CommanderTrendSeries {
	weekly, totals := weeklyPicks(games)

	all := map[string]bool{}
	for _, cmds := range weekly {
		for c := range cmds {
			all[c] = true
		}
	}

	dates := make([]string, 0, len(weekly))
	series := map[string][]float64{}
	for _, week := range sortedWeeks(weekly) {
		total := totals[week]
		if total < minWeekGames {
			continue
		}
		dates = append(dates, week)
		for cmd := range all {
			series[cmd] = append(series[cmd], pctPoint(weekly[week][cmd], total))
		}
	}
	return CommanderTrendSeries{Dates: dates, Series: series}
}

// WinrateTrend is one commander's weekly winrate series, with and without
// mirror matches. Winrate points are nil for weeks without samples
type WinrateTrend struct {
	Winrate         []*float64 `json:"winrate"`
	Games           []int      `json:"games"`
	WinrateNoMirror []*float64 `json:"winrate_no_mirror"`
	GamesNoMirror   []int      `json:"games_no_mirror"`
}

// WinrateTrendSeries is the weekly winrate payload for all commanders
type WinrateTrendSeries struct {
	Dates      []string                 `json:"dates"`
	Commanders map[string]*WinrateTrend `json:"commanders"`
}

// CommanderWinrateTrends computes weekly per-commander winrates. The mirror
// split excludes games where both sides picked the same commander; weeks
// below the game-count floor are dropped from the axis
func CommanderWinrateTrends(games []record.Cleaned) WinrateTrendSeries {
	type wt struct{ w, t, wnm, tnm int }
	weekly := map[string]map[string]*wt{}
	totals := map[string]int{}

	for _, g := range games {
		if g.StartTime == nil {
			continue
		}
		week := WeekKey(*g.StartTime)
		totals[week]++
		mirror := g.Players[0].Commander == g.Players[1].Commander
		for _, p := range g.Players {
			if p.Commander == "" {
				continue
			}
			if weekly[week] == nil {
				weekly[week] = map[string]*wt{}
			}
			b := weekly[week][p.Commander]
			if b == nil {
				b = &wt{}
				weekly[week][p.Commander] = b
			}
			b.t++
			if p.Won {
				b.w++
			}
			if !mirror {
				b.tnm++
				if p.Won {
					b.wnm++
				}
			}
		}
	}

	all := map[string]bool{}
	for _, cmds := range weekly {
		for c := range cmds {
			all[c] = true
		}
	}
	commanders := make(map[string]*WinrateTrend, len(all))
	for cmd := range all {
		commanders[cmd] = &WinrateTrend{
			Winrate:         []*float64{},
			Games:           []int{},
			WinrateNoMirror: []*float64{},
			GamesNoMirror:   []int{},
		}
	}

	weeks := make([]string, 0, len(weekly))
	for w := range weekly {
		weeks = append(weeks, w)
	}
	sort.Strings(weeks)

	dates := make([]string, 0, len(weeks))
	for _, week := range weeks {
		if totals[week] < minWeekGames {
			continue
		}
		dates = append(dates, week)
		for cmd := range all {
			b := weekly[week][cmd]
			if b == nil {
				b = &wt{}
			}
			tr := commanders[cmd]
			tr.Winrate = append(tr.Winrate, pctOrNil(b.w, b.t))
			tr.Games = append(tr.Games, b.t)
			tr.WinrateNoMirror = append(tr.WinrateNoMirror, pctOrNil(b.wnm, b.tnm))
			tr.GamesNoMirror = append(tr.GamesNoMirror, b.tnm)
		}
	}
	return WinrateTrendSeries{Dates: dates, Commanders: commanders}
}

// pctOrNil is (part/total)*100 rounded to 1 place, nil when total is zero
func pctOrNil(part, total int) *float64 {
	if total <= 0 {
		return nil
	}
	v := round1(float64(part) / float64(total) * 100)
	return &v
}
