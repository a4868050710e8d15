package stats

import (
	"sort"

	"atlasmeta/internal/core/record"
)

// CommanderStat is one row of the commander leaderboard
type CommanderStat struct {
	Name    string  `json:"name"`
	Faction string  `json:"faction"`
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	Winrate float64 `json:"winrate"`
}

// CommanderStats tallies per-commander pick counts and winrates across all
// player-sides. Sorted by matches descending, name ascending
func CommanderStats(games []record.Cleaned, look Lookups) []CommanderStat {
	type tally struct{ matches, wins int }
	byName := map[string]*tally{}

	for _, g := range games {
		for _, p := range g.Players {
			if p.Commander == "" {
				continue
			}
			t := byName[p.Commander]
			if t == nil {
				t = &tally{}
				byName[p.Commander] = t
			}
			t.matches++
			if p.Won {
				t.wins++
			}
		}
	}

	out := make([]CommanderStat, 0, len(byName))
	for name, t := range byName {
		out = append(out, CommanderStat{
			Name:    name,
			Faction: look.Faction(name),
			Matches: t.matches,
			Wins:    t.wins,
			Winrate: rate4z(t.wins, t.matches),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Matches != out[j].Matches {
			return out[i].Matches > out[j].Matches
		}
		return out[i].Name < out[j].Name
	})
	return out
}
