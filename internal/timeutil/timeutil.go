// Package timeutil converts between the timeline's relative-seconds arithmetic
// domain and absolute RFC 3339 timestamps used for stable identity.
package timeutil

import (
	"math"
	"time"
)

// ParseTimestamp parses an RFC 3339 / ISO-8601 timestamp. Malformed input
// returns the zero time and false; callers must guard before converting.
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ToRelativeSeconds maps an absolute timestamp to seconds from base.
// Millisecond precision survives the round trip with ToAbsoluteTimestamp.
func ToRelativeSeconds(ts, base time.Time) float64 {
	if ts.IsZero() {
		return math.NaN()
	}
	return float64(ts.Sub(base)) / float64(time.Second)
}

// ToAbsoluteTimestamp maps seconds-from-base back to an absolute timestamp.
func ToAbsoluteTimestamp(seconds float64, base time.Time) time.Time {
	return base.Add(time.Duration(math.Round(seconds * 1000)) * time.Millisecond)
}

// ToAbsoluteEnd converts an optional relative end. A nil end is a live clip
// and never gets an absolute end.
func ToAbsoluteEnd(seconds *float64, base time.Time) *time.Time {
	if seconds == nil {
		return nil
	}
	t := ToAbsoluteTimestamp(*seconds, base)
	return &t
}

// Duration returns b-a in seconds.
func Duration(a, b time.Time) float64 {
	return float64(b.Sub(a)) / float64(time.Second)
}

// IsWithinRange reports whether t lies in [start, end] inclusive.
func IsWithinRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
