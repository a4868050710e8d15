package stats

import "atlasmeta/internal/core/record"

// BucketRate is a winrate with its sample count inside one bucket. Winrate
// is nil for buckets the commander never reached
type BucketRate struct {
	Winrate *float64 `json:"winrate"`
	Games   int      `json:"games"`
}

// BucketedWinrates is a per-commander winrate series over a fixed bucket axis
type BucketedWinrates struct {
	Buckets    []string                `json:"buckets"`
	Commanders map[string][]BucketRate `json:"commanders"`
}

type wlPair struct{ wins, total int }

// bucketWinrates runs the shared tally: pick selects a bucket index for one
// player-side (negative skips the observation)
func bucketWinrates(games []record.Cleaned, buckets []string, pick func(g record.Cleaned, p record.Player) int) BucketedWinrates {
	stats := map[string][]wlPair{}

	for _, g := range games {
		for _, p := range g.Players {
			if p.Commander == "" {
				continue
			}
			b := pick(g, p)
			if b < 0 {
				continue
			}
			row := stats[p.Commander]
			if row == nil {
				row = make([]wlPair, len(buckets))
				stats[p.Commander] = row
			}
			row[b].total++
			if p.Won {
				row[b].wins++
			}
		}
	}

	commanders := make(map[string][]BucketRate, len(stats))
	for cmd, row := range stats {
		rates := make([]BucketRate, len(row))
		for i, b := range row {
			rates[i] = BucketRate{Winrate: rate4(b.wins, b.total), Games: b.total}
		}
		commanders[cmd] = rates
	}
	return BucketedWinrates{Buckets: buckets, Commanders: commanders}
}

// DurationWinrates buckets winrates by game length in minutes. Games without
// a recorded duration are skipped
func DurationWinrates(games []record.Cleaned) BucketedWinrates {
	buckets := []string{"0-10", "10-20", "20-30", "30+"}
	return bucketWinrates(games, buckets, func(g record.Cleaned, _ record.Player) int {
		if g.DurationMinutes == nil {
			return -1
		}
		switch d := *g.DurationMinutes; {
		case d < 10:
			return 0
		case d < 20:
			return 1
		case d < 30:
			return 2
		default:
			return 3
		}
	})
}

// ActionWinrates buckets winrates by a player's action count. Sides with no
// recorded actions are skipped
func ActionWinrates(games []record.Cleaned) BucketedWinrates {
	buckets := []string{"0-30", "30-60", "60-90", "90-120", "120+"}
	return bucketWinrates(games, buckets, func(_ record.Cleaned, p record.Player) int {
		switch a := p.Actions; {
		case a == 0:
			return -1
		case a < 30:
			return 0
		case a < 60:
			return 1
		case a < 90:
			return 2
		case a < 120:
			return 3
		default:
			return 4
		}
	})
}

// TurnWinrates buckets winrates by a player's turn count. Sides with no
// recorded turns are skipped
func TurnWinrates(games []record.Cleaned) BucketedWinrates {
	buckets := []string{"1-5", "5-8", "8-11", "11-14", "14+"}
	return bucketWinrates(games, buckets, func(_ record.Cleaned, p record.Player) int {
		switch t := p.Turns; {
		case t == 0:
			return -1
		case t < 5:
			return 0
		case t < 8:
			return 1
		case t < 11:
			return 2
		case t < 14:
			return 3
		default:
			return 4
		}
	})
}
