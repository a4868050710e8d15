package clean

// Reject is the typed reason a raw record was dropped. Rejections are
// diagnostics, never pipeline failures
type Reject uint8

const (
	// RejectNone means the record was accepted
	RejectNone Reject = iota

	// RejectNeverStarted covers the first-player zero sentinel
	RejectNeverStarted

	// RejectCorruptPlayers covers missing or unparseable player payloads
	RejectCorruptPlayers

	// RejectNotDuel covers records with fewer than two player sides
	RejectNotDuel

	// RejectTooShort covers abandoned games under the turn floor
	RejectTooShort
)

// String returns the diagnostic label for the reason
func (r Reject) String() string {
	switch r {
	case RejectNeverStarted:
		return "never_started"
	case RejectCorruptPlayers:
		return "corrupt_players"
	case RejectNotDuel:
		return "not_duel"
	case RejectTooShort:
		return "too_short"
	default:
		return "accepted"
	}
}

// Reasons lists every rejection reason in a stable order for reporting
func Reasons() []Reject {
	return []Reject{RejectNeverStarted, RejectCorruptPlayers, RejectNotDuel, RejectTooShort}
}

// DefaultMinTurns is the floor both players must clear for a real game
const DefaultMinTurns = 3

// Config is the immutable normalization table set. Passed in at construction
// so tests can run with alternate tables
type Config struct {
	// CommanderRenames maps old/misspelled commander names to canonical ones
	CommanderRenames map[string]string

	// CardRenames maps old card names to canonical ones
	CardRenames map[string]string

	// MinTurns is the per-player turn floor; zero means DefaultMinTurns
	MinTurns int
}

// Default returns the production table set
func Default() Config {
	return Config{
		CommanderRenames: map[string]string{
			"Elber, Jungle Emmisary":       "Elber, Jungle Emissary",
			"Layna, Soulcatcher":           "Soultaker Viessa",
			"Lyre, Tactician of the Order": "Elyse of the Order",
		},
		CardRenames: map[string]string{},
		MinTurns:    DefaultMinTurns,
	}
}
