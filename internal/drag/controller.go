package drag

import (
	"syncline/internal/model"
	"syncline/internal/mutate"
	"syncline/internal/selection"
	"syncline/internal/store"
)

type Type int

const (
	None Type = iota
	Move
	ResizeLeft
	ResizeRight
)

// Config carries the view parameters a gesture needs. Snap and movement
// thresholds are in pixels and converted to seconds through PxPerSecond, so
// the snap feel is zoom-independent.
type Config struct {
	PxPerSecond     float64
	SnapThresholdPx float64
	MoveThresholdPx float64
	PlayheadSeconds float64
	// NowSeconds is the current time in relative seconds, bounding live clips.
	NowSeconds float64
}

const (
	DefaultSnapThresholdPx = 8.0
	DefaultMoveThresholdPx = 4.0
)

// Preview is the transient gesture state a renderer draws each frame.
type Preview struct {
	Active  bool
	Type    Type
	Copying bool
	// Incompatible marks the current target as refused: unit/dataType
	// mismatch, or any cross-track attempt with a multi-selection.
	Incompatible bool
	// TargetTrackID is the pending cross-track destination; empty while the
	// pointer stays on the origin track. Reassignment commits on release.
	TargetTrackID string
	// Ghosts are non-committing previews keyed by clip id: the copy ghost,
	// or the would-be position of a cross-track move.
	Ghosts map[string]model.TimeRange
	// SnapTarget is the time an edge locked onto, for the snap indicator.
	SnapTarget *float64
	Delta      float64
}

// Controller runs one pointer gesture against the store. Same-track moves
// and resizes commit live on every update; cross-track moves and copies stay
// ghosts until End. Cancel restores the pre-drag snapshot, so Escape reverts
// live-committed moves too.
type Controller struct {
	cfg   Config
	db    *store.DB
	jobID string

	typ      Type
	clipID   string
	isMaster bool
	originTrackID string

	moves  []mutate.ClipMove
	origin model.TimeRange

	startX, startY int
	started        bool
	copying        bool

	lastDelta  float64
	lastTarget string
	refused    bool

	snapshot map[string]model.TimeRange
}

func NewController(cfg Config, db *store.DB, jobID string) *Controller {
	if cfg.SnapThresholdPx == 0 {
		cfg.SnapThresholdPx = DefaultSnapThresholdPx
	}
	if cfg.MoveThresholdPx == 0 {
		cfg.MoveThresholdPx = DefaultMoveThresholdPx
	}
	if cfg.PxPerSecond <= 0 {
		cfg.PxPerSecond = 1
	}
	return &Controller{cfg: cfg, db: db, jobID: jobID}
}

func (c *Controller) Active() bool { return c.typ != None }

// Begin starts a gesture on a clip or one of its edge handles. Returns false
// when the gesture is not offered: unknown clip, right-edge resize of a live
// clip, locked track.
func (c *Controller) Begin(clipID string, typ Type, x, y int, sel *selection.Selection) bool {
	job, ok := c.db.FindJob(c.jobID)
	if !ok || typ == None {
		return false
	}
	clip, ok := job.FindClip(clipID)
	if !ok {
		return false
	}
	if typ == ResizeRight && clip.TimeRange.Live() {
		return false
	}
	isMaster := job.IsMasterClip(clipID)
	if !isMaster {
		if t, ok := job.FindTrack(clip.TrackID); ok && t.Locked {
			return false
		}
	}

	c.typ = typ
	c.clipID = clipID
	c.isMaster = isMaster
	c.originTrackID = clip.TrackID
	c.origin = clip.TimeRange
	c.startX, c.startY = x, y
	c.started = false
	c.copying = false
	c.lastDelta = 0
	c.lastTarget = ""
	c.refused = false

	// Multi-select move: all selected clips share one delta, each offset from
	// its own pre-drag position. Masters always drag alone.
	c.moves = []mutate.ClipMove{{ClipID: clipID, Original: clip.TimeRange}}
	if typ == Move && !isMaster && sel != nil && sel.IsSelected(clipID) && sel.Count() > 1 {
		c.moves = c.moves[:0]
		for _, s := range sel.SelectedClips(job) {
			if job.IsMasterClip(s.ID) {
				continue
			}
			c.moves = append(c.moves, mutate.ClipMove{ClipID: s.ID, Original: s.TimeRange})
		}
	}

	// Full pre-drag snapshot for Escape: link sync can touch clips far from
	// the dragged set, so every clip's range is recorded.
	c.snapshot = map[string]model.TimeRange{}
	for i := range job.MasterClips {
		c.snapshot[job.MasterClips[i].ID] = job.MasterClips[i].TimeRange
	}
	for _, rc := range job.AllClips() {
		c.snapshot[rc.ID] = rc.TimeRange
	}
	return true
}

// Update processes pointer movement. copying reflects the modifier key state
// and may toggle mid-gesture.
func (c *Controller) Update(x, y int, copying bool) Preview {
	if c.typ == None {
		return Preview{}
	}
	job, ok := c.db.FindJob(c.jobID)
	if !ok {
		return Preview{}
	}

	dx := float64(x - c.startX)
	dy := y - c.startY
	if !c.started {
		// A pure click must not mutate position.
		if abs(dx) < c.cfg.MoveThresholdPx && absInt(dy) < int(c.cfg.MoveThresholdPx) {
			return Preview{}
		}
		c.started = true
	}

	// Copy mode: masters never copy, resizes never copy.
	c.copying = copying && c.typ == Move && !c.isMaster

	delta := dx / c.cfg.PxPerSecond
	thresholdSec := c.cfg.SnapThresholdPx / c.cfg.PxPerSecond

	switch c.typ {
	case Move:
		return c.updateMove(job, delta, y, thresholdSec)
	case ResizeLeft, ResizeRight:
		return c.updateResize(job, delta, thresholdSec)
	}
	return Preview{}
}

func (c *Controller) updateMove(job *model.Job, delta float64, y int, thresholdSec float64) Preview {
	p := Preview{Active: true, Type: Move, Copying: c.copying}

	// In copy mode nothing is excluded: copies may snap to their originals.
	exclude := map[string]bool{}
	if !c.copying {
		for _, mv := range c.moves {
			exclude[mv.ClipID] = true
		}
	}
	points := CollectSnapPoints(job, c.cfg.PlayheadSeconds, c.cfg.NowSeconds, exclude)

	start := c.origin.Start + delta
	var end *float64
	if c.origin.End != nil {
		end = model.EndAt(*c.origin.End + delta)
	}
	if adjust, ok := RangeSnap(start, end, points, thresholdSec); ok {
		delta += adjust
		target := c.origin.Start + delta
		p.SnapTarget = &target
	}
	p.Delta = delta
	c.lastDelta = delta

	// Resolve the lane under the pointer.
	targetTrack := c.originTrackID
	if trackID, ok := TrackAt(Rows(job), y); ok {
		targetTrack = trackID
	}

	if c.isMaster {
		// Master clips only move within the master lane; the pointer's lane
		// is ignored. Commits live.
		_, _ = mutate.MoveClips(c.db, c.jobID, c.moves, delta, "", c.cfg.NowSeconds)
		return p
	}

	crossTrack := targetTrack != c.originTrackID && targetTrack != model.MasterTrackID

	if c.copying {
		// Original stays frozen; the ghost tracks the candidate target.
		p.TargetTrackID = targetTrack
		if targetTrack == model.MasterTrackID {
			p.TargetTrackID = c.originTrackID
			targetTrack = c.originTrackID
		}
		if len(c.moves) > 1 && targetTrack != c.originTrackID {
			// Cross-track multi-select copies are disallowed outright; one
			// incompatible state covers the whole selection.
			p.TargetTrackID = ""
			p.Incompatible = true
			p.Ghosts = c.ghostRanges(delta)
			c.refused = true
			return p
		}
		c.refused = false
		p.Incompatible = !c.trackCompatible(job, targetTrack)
		p.Ghosts = c.ghostRanges(delta)
		c.lastTarget = targetTrack
		return p
	}
	c.refused = false

	if len(c.moves) > 1 {
		// Cross-track multi-select moves are disallowed outright; surfaced as
		// one incompatible state covering the whole selection.
		if crossTrack {
			p.Incompatible = true
			p.Ghosts = c.ghostRanges(delta)
			return p
		}
		_, _ = mutate.MoveClips(c.db, c.jobID, c.moves, delta, "", c.cfg.NowSeconds)
		return p
	}

	if crossTrack {
		// Non-committing ghost; reassignment happens on release.
		p.TargetTrackID = targetTrack
		p.Incompatible = !c.trackCompatible(job, targetTrack)
		p.Ghosts = c.ghostRanges(delta)
		c.lastTarget = targetTrack
		return p
	}

	// Same-track move commits live.
	c.lastTarget = ""
	_, _ = mutate.MoveClips(c.db, c.jobID, c.moves, delta, "", c.cfg.NowSeconds)
	return p
}

func (c *Controller) updateResize(job *model.Job, delta float64, thresholdSec float64) Preview {
	p := Preview{Active: true, Type: c.typ}

	exclude := map[string]bool{c.clipID: true}
	points := CollectSnapPoints(job, c.cfg.PlayheadSeconds, c.cfg.NowSeconds, exclude)

	var edge float64
	var which mutate.Edge
	if c.typ == ResizeLeft {
		edge = c.origin.Start + delta
		which = mutate.EdgeLeft
	} else {
		edge = *c.origin.End + delta
		which = mutate.EdgeRight
	}
	if adjust, ok := EdgeSnap(edge, points, thresholdSec); ok {
		edge += adjust
		p.SnapTarget = &edge
	}
	p.Delta = delta

	if _, err := mutate.ResizeClip(c.db, c.jobID, c.clipID, which, edge, c.cfg.NowSeconds); err != nil {
		p.Incompatible = true
	}
	return p
}

// End commits any pending cross-track or copy result and closes the gesture.
func (c *Controller) End() error {
	defer c.reset()
	if c.typ == None || !c.started {
		return nil
	}
	job, ok := c.db.FindJob(c.jobID)
	if !ok {
		return nil
	}

	if c.copying {
		if c.refused {
			return mutate.CompatibilityError{Reason: "a multi-clip selection cannot copy to another track"}
		}
		ghosts := c.ghostRanges(c.lastDelta)
		if len(c.moves) > 1 {
			// Every previewed ghost commits: one copy per selected clip, each
			// onto its own track.
			for _, mv := range c.moves {
				if _, err := mutate.DuplicateClip(c.db, c.jobID, mv.ClipID, "", ghosts[mv.ClipID]); err != nil {
					return err
				}
			}
			return nil
		}
		target := c.lastTarget
		if target == "" {
			target = c.originTrackID
		}
		_, err := mutate.DuplicateClip(c.db, c.jobID, c.clipID, target, ghosts[c.clipID])
		return err
	}

	if c.typ == Move && c.lastTarget != "" && c.lastTarget != c.originTrackID {
		if _, ok := job.FindClip(c.clipID); !ok {
			return nil
		}
		_, err := mutate.MoveClips(c.db, c.jobID, c.moves, c.lastDelta, c.lastTarget, c.cfg.NowSeconds)
		return err
	}
	return nil
}

// Cancel reverts every transient effect of the gesture, including
// live-committed same-track moves, from the pre-drag snapshot.
func (c *Controller) Cancel() {
	if c.typ == None {
		return
	}
	mutate.RestoreClipRanges(c.db, c.jobID, c.snapshot)
	c.reset()
}

func (c *Controller) reset() {
	c.typ = None
	c.clipID = ""
	c.moves = nil
	c.snapshot = nil
	c.started = false
	c.copying = false
	c.lastDelta = 0
	c.lastTarget = ""
	c.refused = false
}

func (c *Controller) trackCompatible(job *model.Job, targetTrackID string) bool {
	if targetTrackID == c.originTrackID {
		return true
	}
	src, ok := job.FindTrack(c.originTrackID)
	if !ok {
		return false
	}
	dst, ok := job.FindTrack(targetTrackID)
	if !ok {
		return false
	}
	return mutate.TracksCompatible(src, dst)
}

func (c *Controller) ghostRanges(delta float64) map[string]model.TimeRange {
	out := make(map[string]model.TimeRange, len(c.moves))
	for _, mv := range c.moves {
		tr := model.TimeRange{Start: mv.Original.Start + delta}
		if mv.Original.End != nil {
			tr.End = model.EndAt(*mv.Original.End + delta)
		}
		out[mv.ClipID] = tr
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
