// Package streak tracks consecutive calendar days of learner activity.
package streak

import "time"

// dayKey truncates a timestamp to its calendar date in the timestamp's
// location. Streak continuity is judged on calendar days, not 24h windows.
func dayKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Tracker holds the daily-activity streak state.
type Tracker struct {
	LastActive time.Time // zero when no activity has ever been recorded
	Count      int
}

// RecordActivity registers activity on the given day and returns the
// resulting streak count. Repeat calls for the same calendar day are
// idempotent; the day after the last activity extends the streak; any
// larger gap (or the first activity ever) resets it to 1.
func (t *Tracker) RecordActivity(today time.Time) int {
	day := dayKey(today)

	if !t.LastActive.IsZero() && t.LastActive.Equal(day) {
		return t.Count
	}

	yesterday := day.AddDate(0, 0, -1)
	if !t.LastActive.IsZero() && t.LastActive.Equal(yesterday) {
		t.Count++
	} else {
		t.Count = 1
	}
	t.LastActive = day
	return t.Count
}
