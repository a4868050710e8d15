package record

import (
	"testing"
	"time"
)

func TestParseFirstPlayer(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want FirstPlayer
	}{
		{"int zero", 0, FirstNone},
		{"string zero", "0", FirstNone},
		{"absent", nil, FirstNone},
		{"int one", 1, FirstSeat1},
		{"string one", "1", FirstSeat1},
		{"json float two", 2.0, FirstSeat2},
		{"random marker", "99", FirstUnknown},
		{"int random marker", 99, FirstUnknown},
		{"garbage", "abc", FirstUnknown},
		{"bool garbage", true, FirstUnknown},
	}
	for _, c := range cases {
		if got := ParseFirstPlayer(c.in); got != c.want {
			t.Fatalf("%s: ParseFirstPlayer(%v) = %v, want %v", c.name, c.in, got, c.want)
		}
	}
}

func TestFirstPlayerSeatedAndIndex(t *testing.T) {
	if !FirstSeat1.Seated() || !FirstSeat2.Seated() {
		t.Fatalf("explicit seats must report Seated")
	}
	if FirstUnknown.Seated() || FirstNone.Seated() {
		t.Fatalf("unknown/none must not report Seated")
	}
	if FirstSeat1.Index() != 0 || FirstSeat2.Index() != 1 {
		t.Fatalf("seat indexes wrong: %d %d", FirstSeat1.Index(), FirstSeat2.Index())
	}
	if FirstUnknown.Index() != -1 || FirstNone.Index() != -1 {
		t.Fatalf("non-seat indexes must be -1")
	}
}

func TestFirstPlayerTextRoundTrip(t *testing.T) {
	for _, f := range []FirstPlayer{FirstUnknown, FirstSeat1, FirstSeat2, FirstNone} {
		b, err := f.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", f, err)
		}
		var back FirstPlayer
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if back != f {
			t.Fatalf("round trip %v -> %q -> %v", f, b, back)
		}
	}
}

func TestCoerceInt(t *testing.T) {
	cases := []struct {
		name string
		in   any
		def  int
		want int
	}{
		{"native int", 7, 0, 7},
		{"int64", int64(9), 0, 9},
		{"json float", 12.0, 0, 12},
		{"fractional float falls back", 12.5, 3, 3},
		{"digit string", "42", 0, 42},
		{"padded digit string", "  8 ", 0, 8},
		{"negative string falls back", "-5", 1, 1},
		{"garbage string", "12x", 1, 1},
		{"empty string", "", 2, 2},
		{"nil", nil, 4, 4},
		{"bool", true, 5, 5},
	}
	for _, c := range cases {
		if got := CoerceInt(c.in, c.def); got != c.want {
			t.Fatalf("%s: CoerceInt(%v, %d) = %d, want %d", c.name, c.in, c.def, got, c.want)
		}
	}
}

func TestCoerceBool(t *testing.T) {
	cases := []struct {
		name        string
		in          any
		want        bool
		wantPresent bool
	}{
		{"bool true", true, true, true},
		{"bool false", false, false, true},
		{"string true", "true", true, true},
		{"string TRUE", "TRUE", true, true},
		{"string false", "false", false, true},
		{"string garbage", "yes", false, true},
		{"absent", nil, false, false},
		{"numeric garbage", 1, false, true},
	}
	for _, c := range cases {
		got, present := CoerceBool(c.in)
		if got != c.want || present != c.wantPresent {
			t.Fatalf("%s: CoerceBool(%v) = (%v, %v), want (%v, %v)",
				c.name, c.in, got, present, c.want, c.wantPresent)
		}
	}
}

func TestParseClock(t *testing.T) {
	got, ok := ParseClock("03/15/2025 14:30:00")
	if !ok {
		t.Fatalf("ParseClock valid input not ok")
	}
	want := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ParseClock = %v, want %v", got, want)
	}

	for _, bad := range []string{"", "   ", "2025-03-15 14:30:00", "13/45/2025 99:00:00", "garbage"} {
		if _, ok := ParseClock(bad); ok {
			t.Fatalf("ParseClock(%q) should fail", bad)
		}
	}
}

func TestRawGameID(t *testing.T) {
	if got := (Raw{"gameid": "g-1"}).GameID(); got != "g-1" {
		t.Fatalf("GameID = %q", got)
	}
	if got := (Raw{}).GameID(); got != "" {
		t.Fatalf("missing GameID = %q, want empty", got)
	}
	if got := (Raw{"gameid": 42}).GameID(); got != "" {
		t.Fatalf("non-string GameID = %q, want empty", got)
	}
}
