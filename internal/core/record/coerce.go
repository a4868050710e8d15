package record

import (
	"strconv"
	"strings"
	"time"
)

// FirstPlayer is the resolved first-player marker. The raw field arrives as
// an int, a numeric string, or garbage; parsing is total and every consumer
// switches on the resolved value instead of re-deriving validity
type FirstPlayer uint8

const (
	// FirstUnknown covers random/unreadable markers. Such games still count
	// toward overall win/loss stats but are excluded from first-turn stats
	FirstUnknown FirstPlayer = iota

	// FirstSeat1 and FirstSeat2 are explicit seat assignments
	FirstSeat1
	FirstSeat2

	// FirstNone is the never-started sentinel (marker 0); the record is dropped
	FirstNone
)

// String renders the marker in its wire form
func (f FirstPlayer) String() string {
	switch f {
	case FirstSeat1:
		return "1"
	case FirstSeat2:
		return "2"
	case FirstNone:
		return "0"
	default:
		return "unknown"
	}
}

// MarshalText keeps cache round-trips stable
func (f FirstPlayer) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText accepts the wire forms produced by MarshalText
func (f *FirstPlayer) UnmarshalText(b []byte) error {
	switch string(b) {
	case "1":
		*f = FirstSeat1
	case "2":
		*f = FirstSeat2
	case "0":
		*f = FirstNone
	default:
		*f = FirstUnknown
	}
	return nil
}

// Seated reports whether the marker names an explicit seat
func (f FirstPlayer) Seated() bool { return f == FirstSeat1 || f == FirstSeat2 }

// Index returns the player slice index for the seat, or -1
func (f FirstPlayer) Index() int {
	switch f {
	case FirstSeat1:
		return 0
	case FirstSeat2:
		return 1
	default:
		return -1
	}
}

// ParseFirstPlayer resolves the raw marker. Absent markers mean the game
// never recorded a first turn, which reads the same as never started
func ParseFirstPlayer(v any) FirstPlayer {
	if v == nil {
		return FirstNone
	}
	switch n := CoerceInt(v, -1); n {
	case 0:
		return FirstNone
	case 1:
		return FirstSeat1
	case 2:
		return FirstSeat2
	default:
		return FirstUnknown
	}
}

// CoerceInt accepts int-ish values: native ints, JSON floats, and
// digit-strings. Anything else yields def
func CoerceInt(v any, def int) int {
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case float64:
		if x == float64(int(x)) {
			return int(x)
		}
		return def
	case string:
		s := strings.TrimSpace(x)
		if s == "" || !isDigits(s) {
			return def
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

// CoerceBool accepts bools and bool-like strings ("true" case-insensitive).
// present reports whether the field carried any value at all
func CoerceBool(v any) (val, present bool) {
	switch x := v.(type) {
	case nil:
		return false, false
	case bool:
		return x, true
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true"), true
	default:
		return false, true
	}
}

// ClockLayout is the wire timestamp layout used by the store
const ClockLayout = "01/02/2006 15:04:05"

// ParseClock parses a store timestamp; blank or malformed inputs yield ok=false
func ParseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
