package mutate

import (
	"syncline/internal/model"
	"syncline/internal/store"
)

// ClipMove carries a clip's pre-drag range. Deltas always apply to the
// original, never to the current position, so repeated updates within one
// gesture cannot drift.
type ClipMove struct {
	ClipID   string
	Original model.TimeRange
}

type Edge string

const (
	EdgeLeft  Edge = "left"
	EdgeRight Edge = "right"
)

// MoveClips applies one shared delta to the given clips. targetTrackID moves
// the clip to another track and is only allowed for single-clip moves; the
// unit/dataType gate applies. Clips on locked tracks and clips pinned to a
// master (source/destination role) are skipped. Moving a master clip in
// incremental mode rewrites the start of every ordinary clip in the job.
//
// now is the current time in relative seconds, for measuring live spans.
func MoveClips(db *store.DB, jobID string, moves []ClipMove, delta float64, targetTrackID string, now float64) (bool, error) {
	job, ok := db.FindJob(jobID)
	if !ok || len(moves) == 0 {
		return false, nil
	}
	if targetTrackID != "" && len(moves) > 1 {
		return false, incompatible("clips on different tracks cannot change tracks together")
	}

	// Validate the cross-track gate before mutating anything.
	if targetTrackID != "" {
		c, ok := job.FindClip(moves[0].ClipID)
		if !ok {
			return false, nil
		}
		if job.IsMasterClip(c.ID) {
			return false, incompatible("master lane clips stay in the master lane")
		}
		if c.TrackID != targetTrackID {
			target, ok := job.FindTrack(targetTrackID)
			if !ok {
				return false, nil
			}
			src, ok := job.FindTrack(c.TrackID)
			if !ok {
				return false, nil
			}
			if !TracksCompatible(src, target) {
				return false, incompatible("track %q (%s %s) does not accept clips from %q (%s %s)",
					target.Name, target.Unit, target.DataType, src.Name, src.Unit, src.DataType)
			}
		}
	}

	changed := false
	for _, mv := range moves {
		c, ok := job.FindClip(mv.ClipID)
		if !ok {
			continue
		}

		if job.IsMasterClip(c.ID) {
			applyDelta(job, c, mv.Original, delta)
			changed = true
			if job.SyncMode == model.SyncModeIncremental {
				for _, rc := range job.AllClips() {
					shiftClipTo(job, rc, c.TimeRange.Start)
				}
			}
			SyncLinkedClipDurations(db, jobID, c.ID, now)
			continue
		}

		// Pinned: a source/destination-linked clip mirrors its master exactly
		// and never moves on its own.
		if c.LinkType == model.LinkTypeSource || c.LinkType == model.LinkTypeDestination {
			continue
		}
		if t, ok := job.FindTrack(c.TrackID); ok && t.Locked {
			continue
		}

		applyDelta(job, c, mv.Original, delta)
		changed = true
		linked := c.LinkedToClipID != ""

		if targetTrackID != "" && c.TrackID != targetTrackID {
			reassignTrack(job, c.ID, targetTrackID)
		}

		if linked {
			SyncLinkedClipPositions(db, jobID, mv.ClipID)
		}
	}
	return changed, nil
}

func applyDelta(job *model.Job, c *model.Clip, original model.TimeRange, delta float64) {
	c.TimeRange.Start = original.Start + delta
	if original.End != nil {
		c.TimeRange.End = model.EndAt(*original.End + delta)
	} else {
		c.TimeRange.End = nil
	}
	refreshClipAbsolutes(job, c)
}

// reassignTrack commits a cross-track move: the clip value transfers between
// track slices and inherits the target's unit/dataType.
func reassignTrack(job *model.Job, clipID, targetTrackID string) {
	var detached *model.Clip
	job.ForEachTrack(func(_ *model.Group, _ *model.Aspect, t *model.Track) {
		for i := range t.Clips {
			if t.Clips[i].ID == clipID {
				c := t.Clips[i]
				t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
				detached = &c
				return
			}
		}
	})
	if detached == nil {
		return
	}
	if target, ok := job.FindTrack(targetTrackID); ok {
		detached.TrackID = target.ID
		detached.Unit = target.Unit
		detached.DataType = target.DataType
		target.Clips = append(target.Clips, *detached)
	}
}

// RestoreClipRanges rewrites clip ranges wholesale. This is the drag-cancel
// path: live-committed same-track moves revert from the pre-drag snapshot.
// No link synchronization runs; the snapshot already holds consistent state.
func RestoreClipRanges(db *store.DB, jobID string, ranges map[string]model.TimeRange) {
	job, ok := db.FindJob(jobID)
	if !ok {
		return
	}
	for id, tr := range ranges {
		if c, ok := job.FindClip(id); ok {
			c.TimeRange = tr
			refreshClipAbsolutes(job, c)
		}
	}
}

// ResizeClip moves one edge of a clip to newSeconds. Live clips only resize
// from the left; clips pinned to a master refuse direct resizing.
func ResizeClip(db *store.DB, jobID, clipID string, edge Edge, newSeconds, now float64) (bool, error) {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false, nil
	}
	c, ok := job.FindClip(clipID)
	if !ok {
		return false, nil
	}
	isMaster := job.IsMasterClip(clipID)
	if !isMaster {
		if c.LinkType == model.LinkTypeSource || c.LinkType == model.LinkTypeDestination {
			return false, incompatible("clip %q follows its master and cannot be resized directly", c.Name)
		}
		if t, ok := job.FindTrack(c.TrackID); ok && t.Locked {
			return false, nil
		}
	}

	switch edge {
	case EdgeLeft:
		end := now
		if c.TimeRange.End != nil {
			end = *c.TimeRange.End
		}
		if newSeconds >= end {
			return false, nil
		}
		if newSeconds == c.TimeRange.Start {
			return false, nil
		}
		c.TimeRange.Start = newSeconds
	case EdgeRight:
		if c.TimeRange.Live() {
			return false, incompatible("live clip %q can only be resized from its left edge", c.Name)
		}
		if newSeconds <= c.TimeRange.Start {
			return false, nil
		}
		if *c.TimeRange.End == newSeconds {
			return false, nil
		}
		c.TimeRange.End = model.EndAt(newSeconds)
	default:
		return false, nil
	}
	refreshClipAbsolutes(job, c)

	if isMaster {
		SyncLinkedClipDurations(db, jobID, clipID, now)
	}
	return true, nil
}
