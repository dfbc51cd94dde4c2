package timeutil

import (
	"math"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []float64{0, 1, 5, 59.5, 100, 3600, 86400, 0.001, 123456.789}
	for _, sec := range cases {
		abs := ToAbsoluteTimestamp(sec, base)
		got := ToRelativeSeconds(abs, base)
		if math.Abs(got-sec) > 0.0005 {
			t.Fatalf("round trip %v: got %v", sec, got)
		}
	}
}

func TestNegativeSeconds(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	abs := ToAbsoluteTimestamp(-30, base)
	if !abs.Before(base) {
		t.Fatalf("expected timestamp before base, got %v", abs)
	}
	if got := ToRelativeSeconds(abs, base); math.Abs(got+30) > 0.0005 {
		t.Fatalf("expected -30, got %v", got)
	}
}

func TestToAbsoluteEndNil(t *testing.T) {
	base := time.Now()
	if got := ToAbsoluteEnd(nil, base); got != nil {
		t.Fatalf("live clip must not get an absolute end, got %v", got)
	}
	v := 10.0
	got := ToAbsoluteEnd(&v, base)
	if got == nil {
		t.Fatalf("expected non-nil end")
	}
	if math.Abs(ToRelativeSeconds(*got, base)-10) > 0.0005 {
		t.Fatalf("expected 10s from base, got %v", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	if _, ok := ParseTimestamp("not-a-timestamp"); ok {
		t.Fatalf("expected malformed input to fail")
	}
	ts, ok := ParseTimestamp("2026-03-01T12:00:00.250Z")
	if !ok {
		t.Fatalf("expected valid timestamp to parse")
	}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := ToRelativeSeconds(ts, base); math.Abs(got-0.25) > 0.0005 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}

func TestRelativeSecondsOfZeroTime(t *testing.T) {
	if got := ToRelativeSeconds(time.Time{}, time.Now()); !math.IsNaN(got) {
		t.Fatalf("expected NaN for zero time, got %v", got)
	}
}

func TestDurationAndWithinRange(t *testing.T) {
	a := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := a.Add(90 * time.Second)
	if got := Duration(a, b); got != 90 {
		t.Fatalf("expected 90, got %v", got)
	}
	if !IsWithinRange(a.Add(time.Second), a, b) {
		t.Fatalf("expected in range")
	}
	if !IsWithinRange(a, a, b) || !IsWithinRange(b, a, b) {
		t.Fatalf("range must be inclusive")
	}
	if IsWithinRange(b.Add(time.Second), a, b) {
		t.Fatalf("expected out of range")
	}
}
