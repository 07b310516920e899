package duration

import "time"

// Minutes converts d to whole minutes, rounding down. Negative spans are 0.
func Minutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// WallMinutes returns the whole minutes between start and end.
// A zero start or an end before start yields 0.
func WallMinutes(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return Minutes(end.Sub(start))
}

// SecondsToMinutes converts an elapsed-seconds counter to whole minutes.
func SecondsToMinutes(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return seconds / 60
}

// CeilDiv divides a by b rounding up. b <= 0 or a <= 0 yields 0.
func CeilDiv(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StartOfDay returns local midnight of the calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBounds returns [start, end) of the calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	y, m, d := start.Date()
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
