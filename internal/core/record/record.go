// Package record defines the raw and cleaned match record shapes and the
// total coercion helpers that bridge them
package record

import "time"

// Raw is an untrusted record exactly as received from the remote store.
// No invariants hold here; every field access goes through a coercion helper
type Raw map[string]any

// GameID returns the record's unique id, or "" when absent
func (r Raw) GameID() string {
	if v, ok := r["gameid"].(string); ok {
		return v
	}
	return ""
}

// CardCount is one card name with its copy count, order-preserving
type CardCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Player is one validated player-side of a cleaned match
type Player struct {
	Name      string `json:"name"`
	Won       bool   `json:"winner"`
	Commander string `json:"commander"`
	DeckName  string `json:"deck_name"`
	Turns     int    `json:"turns"`
	Actions   int    `json:"actions"`

	// WinnerMissing marks records where the winner flag was absent and the
	// documented missing-winner-counts-as-loss default applied
	WinnerMissing bool `json:"winner_missing,omitempty"`

	Deck   []CardCount `json:"cards_in_deck"`
	Drawn  []CardCount `json:"cards_drawn"`
	Played []CardCount `json:"cards_played"`
}

// Cleaned is the canonical validated match record. Exactly two player sides,
// both with Turns above the configured floor
type Cleaned struct {
	GameID          string      `json:"game_id"`
	StartTime       *time.Time  `json:"start_time,omitempty"`
	DurationMinutes *float64    `json:"duration_minutes,omitempty"`
	Map             string      `json:"map"`
	First           FirstPlayer `json:"first_player"`
	Players         [2]Player   `json:"players"`
}
