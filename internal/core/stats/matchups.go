package stats

import (
	"sort"

	"atlasmeta/internal/core/record"
)

// MatchupCell is one directed commander-vs-opponent win/loss cell
type MatchupCell struct {
	Commander string  `json:"commander"`
	Opponent  string  `json:"opponent"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Total     int     `json:"total"`
	Winrate   float64 `json:"winrate"`
}

// MatchupMatrix is the full pairwise grid plus the commander roster
type MatchupMatrix struct {
	Commanders []string      `json:"commanders"`
	Matchups   []MatchupCell `json:"matchups"`
}

// Matchups tallies directed win/loss counts for every commander pairing.
// A game with no recorded winner contributes to neither direction; a mirror
// match lands both the win and the loss on the diagonal cell
func Matchups(games []record.Cleaned) MatchupMatrix {
	type wl struct{ wins, losses int }
	grid := map[[2]string]*wl{}
	seen := map[string]bool{}

	cell := func(cmd, opp string) *wl {
		k := [2]string{cmd, opp}
		c := grid[k]
		if c == nil {
			c = &wl{}
			grid[k] = c
		}
		return c
	}

	for _, g := range games {
		p1, p2 := g.Players[0], g.Players[1]
		c1, c2 := p1.Commander, p2.Commander
		if c1 == "" || c2 == "" {
			continue
		}
		seen[c1] = true
		seen[c2] = true
		switch {
		case p1.Won:
			cell(c1, c2).wins++
			cell(c2, c1).losses++
		case p2.Won:
			cell(c2, c1).wins++
			cell(c1, c2).losses++
		}
	}

	roster := make([]string, 0, len(seen))
	for c := range seen {
		roster = append(roster, c)
	}
	sort.Strings(roster)

	cells := make([]MatchupCell, 0, len(grid))
	for _, cmd := range roster {
		for _, opp := range roster {
			c, ok := grid[[2]string{cmd, opp}]
			if !ok {
				continue
			}
			total := c.wins + c.losses
			if total == 0 {
				continue
			}
			cells = append(cells, MatchupCell{
				Commander: cmd,
				Opponent:  opp,
				Wins:      c.wins,
				Losses:    c.losses,
				Total:     total,
				Winrate:   round4(float64(c.wins) / float64(total)),
			})
		}
	}
	return MatchupMatrix{Commanders: roster, Matchups: cells}
}
