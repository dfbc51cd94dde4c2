package mutate

import (
	"strings"

	"syncline/internal/model"
	"syncline/internal/store"
	"syncline/internal/timeutil"
)

// clipPalette cycles as clips are created; copies always advance the palette
// so a duplicate is visually distinct from its original.
var clipPalette = []string{
	"#4f8fea", "#e0823d", "#53a86a", "#c75d5d", "#8e6fc8",
	"#3aa7a3", "#c9a227", "#b05f8a", "#6b8f3c", "#5a7d9a",
}

func nextClipColor(job *model.Job) string {
	n := len(job.MasterClips)
	job.ForEachTrack(func(_ *model.Group, _ *model.Aspect, t *model.Track) {
		n += len(t.Clips)
	})
	return clipPalette[n%len(clipPalette)]
}

func refreshClipAbsolutes(job *model.Job, c *model.Clip) {
	abs := timeutil.ToAbsoluteTimestamp(c.TimeRange.Start, job.StartTime)
	c.AbsoluteStartTime = &abs
	c.AbsoluteEndTime = timeutil.ToAbsoluteEnd(c.TimeRange.End, job.StartTime)
}

// AddClip creates a clip on a track, inheriting the track's unit and dataType.
func AddClip(db *store.DB, jobID, trackID, name string, tr model.TimeRange) (*model.Clip, bool) {
	job, ok := db.FindJob(jobID)
	if !ok {
		return nil, false
	}
	t, ok := job.FindTrack(trackID)
	if !ok {
		return nil, false
	}
	c := model.Clip{
		ID:        db.NextID("clip"),
		TrackID:   t.ID,
		Name:      strings.TrimSpace(name),
		TimeRange: tr,
		State:     model.ClipStateIdle,
		Color:     nextClipColor(job),
		Unit:      t.Unit,
		DataType:  t.DataType,
	}
	refreshClipAbsolutes(job, &c)
	t.Clips = append(t.Clips, c)
	return &t.Clips[len(t.Clips)-1], true
}

// AddMasterClip creates a master-lane clip. Full mode holds at most one
// source and one destination; incremental mode holds exactly one live clip
// acting as both roles.
func AddMasterClip(db *store.DB, jobID string, role model.LinkType, tr model.TimeRange) (*model.Clip, error) {
	job, ok := db.FindJob(jobID)
	if !ok {
		return nil, nil
	}
	if job.SyncMode == model.SyncModeIncremental {
		if len(job.MasterClips) > 0 {
			return nil, incompatible("incremental job already has its master clip")
		}
		tr.End = nil // incremental master is always live
		role = model.LinkTypeSource
	} else {
		if role != model.LinkTypeSource && role != model.LinkTypeDestination {
			return nil, incompatible("master clip role must be source or destination")
		}
		if _, taken := job.MasterClipByRole(role); taken {
			return nil, incompatible("master lane already has a %s clip", role)
		}
	}
	c := model.Clip{
		ID:        db.NextID("clip"),
		TrackID:   model.MasterTrackID,
		Name:      string(role),
		TimeRange: tr,
		State:     model.ClipStateIdle,
		LinkType:  role,
	}
	refreshClipAbsolutes(job, &c)
	job.MasterClips = append(job.MasterClips, c)
	return &job.MasterClips[len(job.MasterClips)-1], nil
}

// RemoveClip deletes a clip. Removing a master-lane clip first unlinks every
// clip that referenced it; the dependents themselves are kept.
func RemoveClip(db *store.DB, jobID, clipID string) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	for i := range job.MasterClips {
		if job.MasterClips[i].ID == clipID {
			for _, c := range job.ClipsLinkedTo(clipID) {
				c.LinkedToClipID = ""
				c.LinkType = model.LinkTypeNone
				c.SourceClipID = ""
			}
			job.MasterClips = append(job.MasterClips[:i], job.MasterClips[i+1:]...)
			return true
		}
	}
	removed := false
	job.ForEachTrack(func(_ *model.Group, _ *model.Aspect, t *model.Track) {
		if removed {
			return
		}
		for i := range t.Clips {
			if t.Clips[i].ID == clipID {
				t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
				removed = true
				return
			}
		}
	})
	return removed
}

// DuplicateClip is the shared duplication path for drag-copy and paste:
// new id, next palette color, "(Copy)" name suffix, link state cleared.
func DuplicateClip(db *store.DB, jobID, clipID, targetTrackID string, tr model.TimeRange) (*model.Clip, error) {
	job, ok := db.FindJob(jobID)
	if !ok {
		return nil, nil
	}
	src, ok := job.FindClip(clipID)
	if !ok {
		return nil, nil
	}
	if job.IsMasterClip(clipID) {
		return nil, incompatible("master lane clips cannot be copied")
	}
	if targetTrackID == "" {
		targetTrackID = src.TrackID
	}
	return duplicateFromSnapshot(db, job, *src, targetTrackID, tr)
}

func copyName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "(Copy)"
	}
	return name + " (Copy)"
}

// CopyClips snapshots clips into the clipboard. The snapshot is detached:
// later edits to the originals do not affect it.
func CopyClips(db *store.DB, jobID string, clipIDs []string) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	var clips []model.Clip
	sourceTrack := ""
	for _, id := range clipIDs {
		c, ok := job.FindClip(id)
		if !ok || job.IsMasterClip(id) {
			continue
		}
		clips = append(clips, *c)
		if sourceTrack == "" {
			sourceTrack = c.TrackID
		}
	}
	if len(clips) == 0 {
		return false
	}
	db.Clipboard = &store.Clipboard{Clips: clips, SourceTrackID: sourceTrack}
	return true
}

// PasteClipboard pastes the clipboard at the given time, preserving the
// copied clips' mutual offsets (the earliest start lands on atSeconds).
// An empty targetTrackID pastes each clip back onto its originating track.
func PasteClipboard(db *store.DB, jobID, targetTrackID string, atSeconds float64) ([]*model.Clip, error) {
	job, ok := db.FindJob(jobID)
	if !ok || db.Clipboard == nil || len(db.Clipboard.Clips) == 0 {
		return nil, nil
	}
	if targetTrackID != "" && len(db.Clipboard.Clips) > 1 {
		return nil, incompatible("multiple clips can only be pasted onto their own tracks")
	}

	anchor := db.Clipboard.Clips[0].TimeRange.Start
	for _, c := range db.Clipboard.Clips[1:] {
		if c.TimeRange.Start < anchor {
			anchor = c.TimeRange.Start
		}
	}

	var out []*model.Clip
	for i := range db.Clipboard.Clips {
		src := db.Clipboard.Clips[i]
		offset := src.TimeRange.Start - anchor
		tr := model.TimeRange{Start: atSeconds + offset}
		if src.TimeRange.End != nil {
			d := *src.TimeRange.End - src.TimeRange.Start
			tr.End = model.EndAt(tr.Start + d)
		}
		target := targetTrackID
		if target == "" {
			target = src.TrackID
		}
		// The source clip may have been deleted since the copy; the detached
		// snapshot still pastes as long as the tracks resolve.
		pasted, err := duplicateFromSnapshot(db, job, src, target, tr)
		if err != nil {
			return nil, err
		}
		if pasted != nil {
			out = append(out, pasted)
		}
	}
	return out, nil
}

func duplicateFromSnapshot(db *store.DB, job *model.Job, src model.Clip, targetTrackID string, tr model.TimeRange) (*model.Clip, error) {
	target, ok := job.FindTrack(targetTrackID)
	if !ok {
		return nil, nil
	}
	if !unitsCompatible(src.Unit, target.Unit) || !dataTypesCompatible(src.DataType, target.DataType) {
		return nil, incompatible("track %q (%s %s) does not accept a %s %s clip",
			target.Name, target.Unit, target.DataType, src.Unit, src.DataType)
	}
	c := src
	c.ID = db.NextID("clip")
	c.TrackID = target.ID
	c.Name = copyName(src.Name)
	c.TimeRange = tr
	c.Color = nextClipColor(job)
	c.Selected = false
	c.State = model.ClipStateIdle
	c.Progress = 0
	c.LinkedToClipID = ""
	c.LinkType = model.LinkTypeNone
	c.SourceClipID = ""
	c.Unit = target.Unit
	c.DataType = target.DataType
	refreshClipAbsolutes(job, &c)
	target.Clips = append(target.Clips, c)
	return &target.Clips[len(target.Clips)-1], nil
}

// SetClipState updates state/progress, clamping progress to 0-100.
func SetClipState(db *store.DB, jobID, clipID string, state model.ClipState, progress float64) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	c, ok := job.FindClip(clipID)
	if !ok {
		return false
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	c.State = state
	c.Progress = progress
	return true
}
