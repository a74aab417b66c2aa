// Package achievements keeps the append-only log of unlocked
// achievements.
package achievements

import (
	"time"
)

// Achievement is one unlocked entry. Never mutated or deleted once
// recorded.
type Achievement struct {
	ID          string
	Title       string
	Description string
	UnlockedAt  time.Time
}

// Recorder is the append-only unlock log. The first unlock of an ID
// wins; later unlocks of the same ID are ignored.
type Recorder struct {
	byID map[string]int
	log  []Achievement
}

// NewRecorder returns an empty log.
func NewRecorder() *Recorder {
	return &Recorder{byID: make(map[string]int)}
}

// Restore seeds the log from persisted entries in order, applying the
// same duplicate rule.
func (r *Recorder) Restore(entries []Achievement) {
	for _, a := range entries {
		r.Unlock(a)
	}
}

// Unlock records an achievement. Returns true if it was newly recorded,
// false if the ID was already unlocked.
func (r *Recorder) Unlock(a Achievement) bool {
	if _, ok := r.byID[a.ID]; ok {
		return false
	}
	r.byID[a.ID] = len(r.log)
	r.log = append(r.log, a)
	return true
}

// Unlocked reports whether an achievement ID has been recorded.
func (r *Recorder) Unlocked(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Get returns the recorded entry for an ID.
func (r *Recorder) Get(id string) (Achievement, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Achievement{}, false
	}
	return r.log[i], true
}

// All returns the unlock log in insertion order.
func (r *Recorder) All() []Achievement {
	out := make([]Achievement, len(r.log))
	copy(out, r.log)
	return out
}

// Count returns the number of unlocked achievements.
func (r *Recorder) Count() int {
	return len(r.log)
}
