package store

import (
	"log"
	"time"
)

// Autosaver debounces persistence: mutations mark the state dirty, and the
// write happens once no further mutation arrived for Delay. The clock is
// injected so timing is deterministic in tests. Last write wins; a failed
// write is logged and dropped, since the in-memory state stays correct and
// only durability is at risk.
type Autosaver struct {
	Store Store
	Delay time.Duration
	Now   func() time.Time

	dirty    bool
	deadline time.Time
}

const DefaultAutosaveDelay = 500 * time.Millisecond

func NewAutosaver(s Store) *Autosaver {
	return &Autosaver{Store: s, Delay: DefaultAutosaveDelay, Now: time.Now}
}

// MarkDirty records a mutation and resets the debounce timer.
func (a *Autosaver) MarkDirty() {
	a.dirty = true
	a.deadline = a.Now().Add(a.Delay)
}

func (a *Autosaver) Dirty() bool { return a.dirty }

// MaybeFlush writes the state if it is dirty and the debounce window elapsed.
// Returns true when a write was attempted.
func (a *Autosaver) MaybeFlush(db *DB) bool {
	if !a.dirty || a.Now().Before(a.deadline) {
		return false
	}
	a.flush(db)
	return true
}

// Flush writes immediately regardless of the debounce window (shutdown path).
func (a *Autosaver) Flush(db *DB) {
	if !a.dirty {
		return
	}
	a.flush(db)
}

func (a *Autosaver) flush(db *DB) {
	a.dirty = false
	if err := a.Store.Save(db); err != nil {
		log.Printf("syncline: autosave failed: %v", err)
	}
}
