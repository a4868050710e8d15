package time

import (
	"testing"
	"time"
)

func TestPtr(t *testing.T) {
	if Ptr(time.Time{}) != nil {
		t.Fatal("Ptr(zero) should be nil")
	}
	now := time.Now()
	p := Ptr(now)
	if p == nil || !p.Equal(now) {
		t.Fatalf("Ptr(now) = %v", p)
	}
}

func TestMinutesBetween(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  *float64
	}{
		{"zero start", time.Time{}, base, nil},
		{"zero end", base, time.Time{}, nil},
		{"negative span", base, base.Add(-time.Minute), nil},
		{"zero span", base, base, nil},
	}
	for _, c := range cases {
		if got := MinutesBetween(c.start, c.end); got != nil {
			t.Fatalf("%s: want nil, got %v", c.name, *got)
		}
	}

	got := MinutesBetween(base, base.Add(90*time.Second))
	if got == nil || *got != 1.5 {
		t.Fatalf("MinutesBetween = %v, want 1.5", got)
	}
}
