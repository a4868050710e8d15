package stats

import (
	"sort"

	"atlasmeta/internal/core/record"
)

// MatchupCardStat is a card's record inside one matchup, counted per game
type MatchupCardStat struct {
	Name          string   `json:"name"`
	Played        int      `json:"played"`
	PlayedWinrate float64  `json:"played_winrate"`
	Drawn         int      `json:"drawn"`
	DrawnWinrate  *float64 `json:"drawn_winrate"`
}

// MatchupFirstTurn splits a matchup's games by which side went first
type MatchupFirstTurn struct {
	CmdFirstGames int `json:"cmd_first_games"`
	CmdFirstWins  int `json:"cmd_first_wins"`
	OppFirstGames int `json:"opp_first_games"`
	OppFirstWins  int `json:"opp_first_wins"`
}

// MatchupDetail is the deep view of one directed pairing: record, turn-order
// split, and the strongest cards for each side
type MatchupDetail struct {
	Commander string            `json:"commander"`
	Opponent  string            `json:"opponent"`
	Wins      int               `json:"wins"`
	Losses    int               `json:"losses"`
	Total     int               `json:"total"`
	Winrate   float64           `json:"winrate"`
	FirstTurn MatchupFirstTurn  `json:"first_turn"`
	CmdCards  []MatchupCardStat `json:"cmd_cards"`
	OppCards  []MatchupCardStat `json:"opp_cards"`
}

type pairCard struct {
	played, playedWins int
	drawn, drawnWins   int
}

type pairAgg struct {
	wins, losses int
	firstTurn    MatchupFirstTurn
	cmdCards     map[string]*pairCard
	oppCards     map[string]*pairCard
}

const (
	topCardLimit    = 10
	topCardMinGames = 3
)

// MatchupDetails builds the per-pairing deep records. Each game feeds both
// directions of its pairing; turn-order games count even when the winner is
// missing, while wins and losses require a decided game. Pairings with no
// decided games are dropped
func MatchupDetails(games []record.Cleaned) []MatchupDetail {
	pairs := map[[2]string]*pairAgg{}

	pair := func(cmd, opp string) *pairAgg {
		k := [2]string{cmd, opp}
		p := pairs[k]
		if p == nil {
			p = &pairAgg{cmdCards: map[string]*pairCard{}, oppCards: map[string]*pairCard{}}
			pairs[k] = p
		}
		return p
	}
	card := func(m map[string]*pairCard, name string) *pairCard {
		c := m[name]
		if c == nil {
			c = &pairCard{}
			m[name] = c
		}
		return c
	}

	for _, g := range games {
		p1, p2 := g.Players[0], g.Players[1]
		c1, c2 := p1.Commander, p2.Commander
		if c1 == "" || c2 == "" {
			continue
		}

		k1 := pair(c1, c2)
		k2 := pair(c2, c1)
		switch {
		case p1.Won:
			k1.wins++
			k2.losses++
		case p2.Won:
			k2.wins++
			k1.losses++
		}

		switch g.First {
		case record.FirstSeat1:
			k1.firstTurn.CmdFirstGames++
			k2.firstTurn.OppFirstGames++
			if p1.Won {
				k1.firstTurn.CmdFirstWins++
				k2.firstTurn.OppFirstWins++
			}
		case record.FirstSeat2:
			k1.firstTurn.OppFirstGames++
			k2.firstTurn.CmdFirstGames++
			if p2.Won {
				k1.firstTurn.OppFirstWins++
				k2.firstTurn.CmdFirstWins++
			}
		}

		side := func(own, other *pairAgg, p record.Player) {
			for _, c := range p.Played {
				own1, other1 := card(own.cmdCards, c.Name), card(other.oppCards, c.Name)
				own1.played++
				other1.played++
				if p.Won {
					own1.playedWins++
					other1.playedWins++
				}
			}
			for _, c := range p.Drawn {
				own1, other1 := card(own.cmdCards, c.Name), card(other.oppCards, c.Name)
				own1.drawn++
				other1.drawn++
				if p.Won {
					own1.drawnWins++
					other1.drawnWins++
				}
			}
		}
		side(k1, k2, p1)
		side(k2, k1, p2)
	}

	out := make([]MatchupDetail, 0, len(pairs))
	for k, p := range pairs {
		total := p.wins + p.losses
		if total < 1 {
			continue
		}
		out = append(out, MatchupDetail{
			Commander: k[0],
			Opponent:  k[1],
			Wins:      p.wins,
			Losses:    p.losses,
			Total:     total,
			Winrate:   round4(float64(p.wins) / float64(total)),
			FirstTurn: p.firstTurn,
			CmdCards:  topCards(p.cmdCards),
			OppCards:  topCards(p.oppCards),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commander != out[j].Commander {
			return out[i].Commander < out[j].Commander
		}
		return out[i].Opponent < out[j].Opponent
	})
	return out
}

// topCards keeps cards with enough played games, ranked by played winrate
// then played volume
func topCards(cards map[string]*pairCard) []MatchupCardStat {
	out := make([]MatchupCardStat, 0, len(cards))
	for name, c := range cards {
		if c.played < topCardMinGames {
			continue
		}
		out = append(out, MatchupCardStat{
			Name:          name,
			Played:        c.played,
			PlayedWinrate: round4(float64(c.playedWins) / float64(c.played)),
			Drawn:         c.drawn,
			DrawnWinrate:  rate4(c.drawnWins, c.drawn),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayedWinrate != out[j].PlayedWinrate {
			return out[i].PlayedWinrate > out[j].PlayedWinrate
		}
		if out[i].Played != out[j].Played {
			return out[i].Played > out[j].Played
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topCardLimit {
		out = out[:topCardLimit]
	}
	return out
}
