// Package notify builds the daily activity summary and delivers it to a
// Discord webhook
package notify

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"atlasmeta/internal/core/record"
)

// TopCommander is one row of the daily pick leaderboard
type TopCommander struct {
	Name    string `json:"name"`
	Picks   int    `json:"picks"`
	Winrate int    `json:"winrate"`
}

// Summary is one day of activity
type Summary struct {
	Date             string         `json:"date"`
	TotalGames       int            `json:"total_games"`
	UniquePlayers    int            `json:"unique_players"`
	AvgDurationMin   *float64       `json:"avg_duration_min"`
	TopCommanders    []TopCommander `json:"top_commanders"`
	MostPopular      string         `json:"most_popular"`
	MostPopularPicks int            `json:"most_popular_picks"`
}

// ForDay filters the corpus to games started on day (UTC)
func ForDay(corpus []record.Cleaned, day time.Time) []record.Cleaned {
	y, m, d := day.UTC().Date()
	var out []record.Cleaned
	for _, g := range corpus {
		if g.StartTime == nil {
			continue
		}
		gy, gm, gd := g.StartTime.UTC().Date()
		if gy == y && gm == m && gd == d {
			out = append(out, g)
		}
	}
	return out
}

// Build summarizes one day's games
func Build(games []record.Cleaned, day time.Time) Summary {
	s := Summary{Date: day.UTC().Format("2006-01-02"), TotalGames: len(games)}
	if len(games) == 0 {
		return s
	}

	players := map[string]bool{}
	picks := map[string]int{}
	wins := map[string]int{}
	var durations []float64

	for _, g := range games {
		if g.DurationMinutes != nil && *g.DurationMinutes > 0 {
			durations = append(durations, *g.DurationMinutes)
		}
		for _, p := range g.Players {
			players[p.Name] = true
			if p.Commander == "" {
				continue
			}
			picks[p.Commander]++
			if p.Won {
				wins[p.Commander]++
			}
		}
	}
	s.UniquePlayers = len(players)

	if len(durations) > 0 {
		sum := 0.0
		for _, d := range durations {
			sum += d
		}
		avg := math.Round(sum/float64(len(durations))*10) / 10
		s.AvgDurationMin = &avg
	}

	type pick struct {
		name string
		n    int
	}
	ranked := make([]pick, 0, len(picks))
	for name, n := range picks {
		ranked = append(ranked, pick{name, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].name < ranked[j].name
	})

	for i, p := range ranked {
		if i == 3 {
			break
		}
		s.TopCommanders = append(s.TopCommanders, TopCommander{
			Name:    p.name,
			Picks:   p.n,
			Winrate: int(math.Round(float64(wins[p.name]) / float64(p.n) * 100)),
		})
	}
	if len(ranked) > 0 {
		s.MostPopular = ranked[0].name
		s.MostPopularPicks = ranked[0].n
	}
	return s
}

// Format renders the summary as a Discord-flavored markdown message
func Format(s Summary, siteURL string) string {
	if s.TotalGames == 0 {
		return fmt.Sprintf("**Daily Update** (%s)\nNo games recorded yesterday. Data refreshed.\n%s", s.Date, siteURL)
	}

	lines := []string{
		fmt.Sprintf("**Daily Update** — %s", s.Date),
		"",
		fmt.Sprintf("**%d** games played by **%d** unique players", s.TotalGames, s.UniquePlayers),
	}
	if s.AvgDurationMin != nil {
		lines = append(lines, fmt.Sprintf("Avg game length: **%v min**", *s.AvgDurationMin))
	}
	if len(s.TopCommanders) > 0 {
		lines = append(lines, "", "**Top Commanders**")
		for i, c := range s.TopCommanders {
			lines = append(lines, fmt.Sprintf("%d. %s — %d picks (%d%% WR)", i+1, c.Name, c.Picks, c.Winrate))
		}
	}
	lines = append(lines, "", siteURL)
	return strings.Join(lines, "\n")
}
