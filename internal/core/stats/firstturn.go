package stats

import "atlasmeta/internal/core/record"

// FirstTurnCommander splits one commander's record by turn order
type FirstTurnCommander struct {
	FirstGames    int      `json:"first_games"`
	FirstWins     int      `json:"first_wins"`
	FirstWinrate  *float64 `json:"first_winrate"`
	SecondGames   int      `json:"second_games"`
	SecondWins    int      `json:"second_wins"`
	SecondWinrate *float64 `json:"second_winrate"`
}

// FirstTurnStats measures first-player advantage over games with an explicit
// seat marker
type FirstTurnStats struct {
	TotalGames         int                           `json:"total_games"`
	FirstPlayerWins    int                           `json:"first_player_wins"`
	FirstPlayerWinrate *float64                      `json:"first_player_winrate"`
	PerCommander       map[string]FirstTurnCommander `json:"per_commander"`
}

// FirstTurn computes first-player advantage. Only games whose first-player
// marker names seat one or two count; unknown markers are excluded entirely
func FirstTurn(games []record.Cleaned) FirstTurnStats {
	type tally struct {
		firstGames, firstWins   int
		secondGames, secondWins int
	}
	byCmd := map[string]*tally{}

	total := 0
	firstWins := 0
	for _, g := range games {
		idx := g.First.Index()
		if idx < 0 {
			continue
		}
		total++

		first, second := g.Players[idx], g.Players[1-idx]
		if first.Won {
			firstWins++
		}

		if first.Commander != "" {
			t := byCmd[first.Commander]
			if t == nil {
				t = &tally{}
				byCmd[first.Commander] = t
			}
			t.firstGames++
			if first.Won {
				t.firstWins++
			}
		}
		if second.Commander != "" {
			t := byCmd[second.Commander]
			if t == nil {
				t = &tally{}
				byCmd[second.Commander] = t
			}
			t.secondGames++
			if second.Won {
				t.secondWins++
			}
		}
	}

	per := make(map[string]FirstTurnCommander, len(byCmd))
	for cmd, t := range byCmd {
		per[cmd] = FirstTurnCommander{
			FirstGames:    t.firstGames,
			FirstWins:     t.firstWins,
			FirstWinrate:  rate4(t.firstWins, t.firstGames),
			SecondGames:   t.secondGames,
			SecondWins:    t.secondWins,
			SecondWinrate: rate4(t.secondWins, t.secondGames),
		}
	}

	return FirstTurnStats{
		TotalGames:         total,
		FirstPlayerWins:    firstWins,
		FirstPlayerWinrate: rate4(firstWins, total),
		PerCommander:       per,
	}
}
