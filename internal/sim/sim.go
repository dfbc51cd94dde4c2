// Package sim drives mock sync progress for demos and the TUI. A started
// clip walks uploading -> processing -> complete, with progress climbing
// 0-100 inside each stage. Time is injected so tests advance it directly.
package sim

import (
	"time"

	"syncline/internal/model"
	"syncline/internal/mutate"
	"syncline/internal/store"
)

// Stage durations for the mock run.
const (
	uploadDuration  = 5 * time.Second
	processDuration = 3 * time.Second
)

type run struct {
	clipID    string
	startedAt time.Time
}

// Runner advances the sync state of started clips against the store.
type Runner struct {
	db    *store.DB
	jobID string

	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time

	runs []run
}

func NewRunner(db *store.DB, jobID string) *Runner {
	return &Runner{db: db, jobID: jobID, Now: time.Now}
}

// Start queues a clip for simulated sync. Unknown clips are ignored on the
// next Tick; an already-running clip restarts from zero.
func (r *Runner) Start(clipID string) {
	for i := range r.runs {
		if r.runs[i].clipID == clipID {
			r.runs[i].startedAt = r.Now()
			mutate.SetClipState(r.db, r.jobID, clipID, model.ClipStateUploading, 0)
			return
		}
	}
	r.runs = append(r.runs, run{clipID: clipID, startedAt: r.Now()})
	mutate.SetClipState(r.db, r.jobID, clipID, model.ClipStateUploading, 0)
}

// Running reports whether any clip still has a sim in flight.
func (r *Runner) Running() bool { return len(r.runs) > 0 }

// Tick advances every running clip to its state at the current clock reading
// and drops the ones that completed. Returns true when anything changed.
func (r *Runner) Tick() bool {
	now := r.Now()
	changed := false
	kept := r.runs[:0]
	for _, ru := range r.runs {
		state, progress, done := stageAt(now.Sub(ru.startedAt))
		if !mutate.SetClipState(r.db, r.jobID, ru.clipID, state, progress) {
			// Clip was deleted mid-run.
			continue
		}
		changed = true
		if !done {
			kept = append(kept, ru)
		}
	}
	r.runs = kept
	return changed
}

// Cancel drops a clip's run and resets it to idle.
func (r *Runner) Cancel(clipID string) {
	for i := range r.runs {
		if r.runs[i].clipID == clipID {
			r.runs = append(r.runs[:i], r.runs[i+1:]...)
			mutate.SetClipState(r.db, r.jobID, clipID, model.ClipStateIdle, 0)
			return
		}
	}
}

func stageAt(elapsed time.Duration) (model.ClipState, float64, bool) {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed < uploadDuration {
		return model.ClipStateUploading, pct(elapsed, uploadDuration), false
	}
	elapsed -= uploadDuration
	if elapsed < processDuration {
		return model.ClipStateProcessing, pct(elapsed, processDuration), false
	}
	return model.ClipStateComplete, 100, true
}

func pct(elapsed, total time.Duration) float64 {
	return 100 * float64(elapsed) / float64(total)
}
