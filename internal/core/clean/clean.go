// Package clean validates and coerces raw store records into canonical
// cleaned match records, or rejects them with a typed reason
package clean

import (
	"math"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/text/unicode/norm"

	"atlasmeta/internal/core/record"
	ptime "atlasmeta/internal/platform/time"
)

// Normalizer turns one Raw record into one Cleaned record. Pure; no side
// effects and no escaping errors
type Normalizer struct {
	cfg Config
}

// New builds a Normalizer from cfg, filling the turn floor default
func New(cfg Config) *Normalizer {
	if cfg.MinTurns <= 0 {
		cfg.MinTurns = DefaultMinTurns
	}
	return &Normalizer{cfg: cfg}
}

// Commander canonicalizes a commander name: NFC fold then rename table
func (n *Normalizer) Commander(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if canon, ok := n.cfg.CommanderRenames[name]; ok {
		return canon
	}
	return name
}

// Card canonicalizes a card name: NFC fold then rename table
func (n *Normalizer) Card(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if canon, ok := n.cfg.CardRenames[name]; ok {
		return canon
	}
	return name
}

// Normalize applies the rejection rules in order (first match wins), then
// coerces the surviving fields into a Cleaned record.
//
// Rejections: zero first-player marker, unparseable player payload, fewer
// than two players, either player under the turn floor. Everything else is
// coerced with documented defaults, never rejected
func (n *Normalizer) Normalize(raw record.Raw) (record.Cleaned, Reject) {
	first := record.ParseFirstPlayer(raw["firstPlayer"])
	if first == record.FirstNone {
		return record.Cleaned{}, RejectNeverStarted
	}

	endAt, _ := record.ParseClock(stringField(raw, "datetime"))
	startAt, _ := record.ParseClock(stringField(raw, "datetimeStarted"))

	payload := parsePlayers(raw["players"])
	if payload == nil {
		return record.Cleaned{}, RejectCorruptPlayers
	}

	if record.CoerceInt(payload["numPlayers"], 0) < 2 {
		return record.Cleaned{}, RejectNotDuel
	}
	list, ok := payload["players"].([]any)
	if !ok || len(list) < 2 {
		return record.Cleaned{}, RejectNotDuel
	}

	var players [2]record.Player
	for i := 0; i < 2; i++ {
		pm, ok := list[i].(map[string]any)
		if !ok {
			return record.Cleaned{}, RejectCorruptPlayers
		}
		p := n.player(pm)
		if p.Turns < n.cfg.MinTurns {
			return record.Cleaned{}, RejectTooShort
		}
		players[i] = p
	}

	out := record.Cleaned{
		GameID:  raw.GameID(),
		Map:     stringField(raw, "map"),
		First:   first,
		Players: players,
	}

	// Started timestamp drives time-window membership; fall back to the end
	// timestamp when the start was never recorded
	if !startAt.IsZero() {
		out.StartTime = ptime.Ptr(startAt)
	} else {
		out.StartTime = ptime.Ptr(endAt)
	}

	if d := ptime.MinutesBetween(startAt, endAt); d != nil {
		r := math.Round(*d*10) / 10
		out.DurationMinutes = &r
	}

	return out, RejectNone
}

// player coerces one raw player-side. Missing winner defaults to a loss and
// is flagged so diagnostics can count the policy's reach
func (n *Normalizer) player(pm map[string]any) record.Player {
	decklist, _ := pm["decklist"].(map[string]any)

	won, present := record.CoerceBool(pm["winner"])

	name := stringField(pm, "name")
	if name == "" {
		name = "Unknown"
	}

	return record.Player{
		Name:          name,
		Won:           won,
		WinnerMissing: !present,
		Commander:     n.Commander(stringField(decklist, "_commander")),
		DeckName:      stringField(decklist, "_name"),
		Turns:         record.CoerceInt(pm["turnsTaken"], 0),
		Actions:       record.CoerceInt(pm["actionsTaken"], 0),
		Deck:          n.cards(decklist["_cards"]),
		Drawn:         n.cards(pm["cardsDrawn"]),
		Played:        n.cards(pm["cardsPlayed"]),
	}
}

// cards coerces a raw card-count list, dropping entries with empty names
func (n *Normalizer) cards(v any) []record.CardCount {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]record.CardCount, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		name := n.Card(stringField(m, "CardName"))
		if name == "" {
			continue
		}
		out = append(out, record.CardCount{
			Name:  name,
			Count: record.CoerceInt(m["Count"], 1),
		})
	}
	return out
}

// parsePlayers unwraps the player payload. The store sometimes hands the
// nested JSON back double-encoded: the whole document wrapped in quotes with
// every inner quote doubled
func parsePlayers(v any) map[string]any {
	switch x := v.(type) {
	case map[string]any:
		return x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		unwrapped := s
		if len(unwrapped) >= 2 && strings.HasPrefix(unwrapped, `"`) && strings.HasSuffix(unwrapped, `"`) {
			unwrapped = unwrapped[1 : len(unwrapped)-1]
		}
		unwrapped = strings.ReplaceAll(unwrapped, `""`, `"`)

		var m map[string]any
		if err := json.Unmarshal([]byte(unwrapped), &m); err == nil {
			return m
		}
		if err := json.Unmarshal([]byte(s), &m); err == nil {
			return m
		}
		return nil
	default:
		return nil
	}
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
