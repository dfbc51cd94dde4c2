package mutate

import (
	"syncline/internal/model"
	"syncline/internal/store"
)

// TracksCompatible reports whether clips may move between the two tracks:
// unit and dataType must both match, where unset on either side matches.
func TracksCompatible(a, b *model.Track) bool {
	return unitsCompatible(a.Unit, b.Unit) && dataTypesCompatible(a.DataType, b.DataType)
}

func unitsCompatible(a, b string) bool {
	return a == "" || b == "" || a == b
}

func dataTypesCompatible(a, b model.DataType) bool {
	return a == "" || b == "" || a == b
}

// SetClipAsSource links a clip to the source master: the clip's time range is
// forced to exactly match the master's from then on.
func SetClipAsSource(db *store.DB, jobID, clipID string) error {
	return setClipRole(db, jobID, clipID, model.LinkTypeSource)
}

// SetClipAsDestination links a clip to the destination master.
func SetClipAsDestination(db *store.DB, jobID, clipID string) error {
	return setClipRole(db, jobID, clipID, model.LinkTypeDestination)
}

func setClipRole(db *store.DB, jobID, clipID string, role model.LinkType) error {
	job, ok := db.FindJob(jobID)
	if !ok {
		return nil
	}
	c, ok := job.FindClip(clipID)
	if !ok || job.IsMasterClip(clipID) {
		return nil
	}

	// One role holder per track.
	t, ok := job.FindTrack(c.TrackID)
	if !ok {
		return nil
	}
	for i := range t.Clips {
		if t.Clips[i].ID != c.ID && t.Clips[i].LinkType == role {
			return incompatible("track %q already has a %s clip", t.Name, role)
		}
	}

	master, ok := job.MasterClipByRole(role)
	if !ok {
		return incompatible("job has no %s master clip", role)
	}

	if !dataTypesCompatible(c.DataType, master.DataType) {
		return incompatible("clip dataType %s does not match master dataType %s", c.DataType, master.DataType)
	}

	// Single tenant per role across the whole job.
	tenant := ""
	if g, ok := job.GroupOfTrack(c.TrackID); ok {
		tenant = g.TenantID
	}
	for _, other := range job.AllClips() {
		if other.ID == c.ID || other.LinkType != role {
			continue
		}
		og, ok := job.GroupOfTrack(other.TrackID)
		if ok && og.TenantID != tenant {
			return incompatible("all %s clips must belong to tenant %q", role, og.TenantID)
		}
	}

	c.LinkedToClipID = master.ID
	c.LinkType = role
	if role != model.LinkTypeDestination {
		c.SourceClipID = ""
	}
	c.TimeRange = master.TimeRange
	refreshClipAbsolutes(job, c)
	return nil
}

// SetClipAsFlexible links a clip to a master with duration-only coupling:
// the clip keeps its own start, its span follows the master's duration.
func SetClipAsFlexible(db *store.DB, jobID, clipID, masterID string, now float64) error {
	job, ok := db.FindJob(jobID)
	if !ok {
		return nil
	}
	c, ok := job.FindClip(clipID)
	if !ok || job.IsMasterClip(clipID) {
		return nil
	}
	if !job.IsMasterClip(masterID) {
		return nil
	}
	master, _ := job.FindClip(masterID)
	if !dataTypesCompatible(c.DataType, master.DataType) {
		return incompatible("clip dataType %s does not match master dataType %s", c.DataType, master.DataType)
	}
	c.LinkedToClipID = masterID
	c.LinkType = model.LinkTypeFlexible
	c.SourceClipID = ""
	c.TimeRange.End = model.EndAt(c.TimeRange.Start + master.TimeRange.Duration(now))
	refreshClipAbsolutes(job, c)
	return nil
}

// SetClipAsNone clears the clip's link role and data-flow reference.
func SetClipAsNone(db *store.DB, jobID, clipID string) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	c, ok := job.FindClip(clipID)
	if !ok || job.IsMasterClip(clipID) {
		return false
	}
	if c.LinkedToClipID == "" && c.LinkType == model.LinkTypeNone && c.SourceClipID == "" {
		return false
	}
	c.LinkedToClipID = ""
	c.LinkType = model.LinkTypeNone
	c.SourceClipID = ""
	return true
}

// SetDestinationSourceClip attaches a data-flow reference from a destination
// clip to a source clip. Orthogonal to LinkedToClipID: it has no timing
// effect. Pass an empty sourceID to detach.
func SetDestinationSourceClip(db *store.DB, jobID, destID, sourceID string) error {
	job, ok := db.FindJob(jobID)
	if !ok {
		return nil
	}
	dest, ok := job.FindClip(destID)
	if !ok {
		return nil
	}
	if dest.LinkType != model.LinkTypeDestination {
		return incompatible("clip %q is not a destination clip", dest.Name)
	}
	if sourceID == "" {
		dest.SourceClipID = ""
		return nil
	}
	src, ok := job.FindClip(sourceID)
	if !ok {
		return nil
	}
	if src.LinkType != model.LinkTypeSource {
		return incompatible("clip %q is not a source clip", src.Name)
	}
	if !dataTypesCompatible(dest.DataType, src.DataType) {
		return incompatible("dataType %s does not match source dataType %s", dest.DataType, src.DataType)
	}
	dest.SourceClipID = src.ID
	return nil
}

// SyncLinkedClipDurations propagates a master's time-range change: clips
// linked with a source/destination role are rewritten to the master's exact
// range, flexible links take the master's duration while keeping their own
// start. In full mode a change to the source master also mirrors onto the
// destination master, whose own dependents then re-sync.
//
// now is the current time in relative seconds, used to measure live spans.
func SyncLinkedClipDurations(db *store.DB, jobID, masterID string, now float64) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	if !job.IsMasterClip(masterID) {
		return false
	}
	syncMasterDependents(job, masterID, now)

	master, _ := job.FindClip(masterID)
	if job.SyncMode == model.SyncModeFull && master.LinkType == model.LinkTypeSource {
		if dest, ok := job.MasterClipByRole(model.LinkTypeDestination); ok && !dest.TimeRange.Equal(master.TimeRange) {
			dest.TimeRange = master.TimeRange
			refreshClipAbsolutes(job, dest)
			syncMasterDependents(job, dest.ID, now)
		}
	}
	return true
}

func syncMasterDependents(job *model.Job, masterID string, now float64) {
	master, ok := job.FindClip(masterID)
	if !ok {
		return
	}
	for _, c := range job.ClipsLinkedTo(masterID) {
		switch c.LinkType {
		case model.LinkTypeSource, model.LinkTypeDestination:
			c.TimeRange = master.TimeRange
		case model.LinkTypeFlexible:
			c.TimeRange.End = model.EndAt(c.TimeRange.Start + master.TimeRange.Duration(now))
		default:
			continue
		}
		refreshClipAbsolutes(job, c)
	}
}

// SyncLinkedClipPositions re-aligns every clip linked to the same master as
// the moved clip to the moved clip's start, each preserving its own duration.
// Only active when the job's sync-positions flag is on.
func SyncLinkedClipPositions(db *store.DB, jobID, movedID string) bool {
	job, ok := db.FindJob(jobID)
	if !ok || !job.SyncLinkedClipPositions {
		return false
	}
	moved, ok := job.FindClip(movedID)
	if !ok || moved.LinkedToClipID == "" {
		return false
	}
	changed := false
	for _, c := range job.ClipsLinkedTo(moved.LinkedToClipID) {
		if c.ID == moved.ID || c.TimeRange.Start == moved.TimeRange.Start {
			continue
		}
		shiftClipTo(job, c, moved.TimeRange.Start)
		changed = true
	}
	return changed
}
