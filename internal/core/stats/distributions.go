package stats

import (
	"fmt"

	"atlasmeta/internal/core/record"
)

// Histogram is a pre-bucketed count series with a fixed label axis
type Histogram struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
	Total  int      `json:"total"`
}

// Distributions carries the three game-shape histograms
type Distributions struct {
	Duration Histogram `json:"duration"`
	Turns    Histogram `json:"turns"`
	Actions  Histogram `json:"actions"`
}

// rangeLabels builds ["0-w", "w-2w", ...] up to max exclusive
func rangeLabels(width, max int) []string {
	out := make([]string, 0, max/width)
	for i := 0; i < max; i += width {
		out = append(out, fmt.Sprintf("%d-%d", i, i+width))
	}
	return out
}

// GameDistributions histograms game duration (2-minute buckets to 50), total
// turns (2-turn buckets to 42), and total actions (20-action buckets to 240).
// Values past the last bucket clamp into it; duration counts only games with
// a recorded non-negative duration
func GameDistributions(games []record.Cleaned) Distributions {
	dur := Histogram{Labels: rangeLabels(2, 50)}
	trn := Histogram{Labels: rangeLabels(2, 42)}
	act := Histogram{Labels: rangeLabels(20, 240)}
	dur.Counts = make([]int, len(dur.Labels))
	trn.Counts = make([]int, len(trn.Labels))
	act.Counts = make([]int, len(act.Labels))

	clamp := func(bucket, n int) int {
		if bucket >= n {
			return n - 1
		}
		return bucket
	}

	for _, g := range games {
		if g.DurationMinutes != nil && *g.DurationMinutes >= 0 {
			dur.Counts[clamp(int(*g.DurationMinutes/2), len(dur.Counts))]++
			dur.Total++
		}

		turns := g.Players[0].Turns + g.Players[1].Turns
		trn.Counts[clamp(turns/2, len(trn.Counts))]++
		trn.Total++

		actions := g.Players[0].Actions + g.Players[1].Actions
		act.Counts[clamp(actions/20, len(act.Counts))]++
		act.Total++
	}

	return Distributions{Duration: dur, Turns: trn, Actions: act}
}
