// Package slice selects the subset of cleaned records belonging to one
// (time window, map) pair. Filters never mutate or reorder the corpus
package slice

import (
	"time"

	"atlasmeta/internal/core/record"
)

// Window is one trailing time window. Days zero means all time
type Window struct {
	Key  string
	Days int
}

// Windows returns the four aggregation windows in output order
func Windows() []Window {
	return []Window{
		{Key: "all", Days: 0},
		{Key: "6m", Days: 180},
		{Key: "3m", Days: 90},
		{Key: "1m", Days: 30},
	}
}

// MapNames returns the map filters in output order; "all" matches every map
func MapNames() []string {
	return []string{"all", "Dunes", "Snowmelt", "Tropics"}
}

// ByWindow returns the records inside the trailing window ending at now.
// Records without a start time only belong to the all-time window
func ByWindow(corpus []record.Cleaned, w Window, now time.Time) []record.Cleaned {
	if w.Days <= 0 {
		return corpus
	}
	cutoff := now.UTC().AddDate(0, 0, -w.Days)
	out := make([]record.Cleaned, 0, len(corpus))
	for _, g := range corpus {
		if g.StartTime == nil {
			continue
		}
		if !g.StartTime.Before(cutoff) {
			out = append(out, g)
		}
	}
	return out
}

// ByMap returns the records played on mapName; "all" passes everything through
func ByMap(corpus []record.Cleaned, mapName string) []record.Cleaned {
	if mapName == "all" {
		return corpus
	}
	out := make([]record.Cleaned, 0, len(corpus))
	for _, g := range corpus {
		if g.Map == mapName {
			out = append(out, g)
		}
	}
	return out
}

// Filter composes ByWindow and ByMap for one slice of the 4x4 grid
func Filter(corpus []record.Cleaned, w Window, mapName string, now time.Time) []record.Cleaned {
	return ByMap(ByWindow(corpus, w, now), mapName)
}
