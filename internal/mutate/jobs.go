package mutate

import (
	"strings"
	"time"

	"syncline/internal/model"
	"syncline/internal/store"
	"syncline/internal/timeutil"
)

// CreateJob adds a new job and makes it active.
func CreateJob(db *store.DB, name string, mode model.SyncMode, startTime time.Time) *model.Job {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled Job"
	}
	if mode != model.SyncModeIncremental {
		mode = model.SyncModeFull
	}
	job := model.Job{
		ID:        db.NextID("job"),
		Name:      name,
		SyncMode:  mode,
		StartTime: startTime.UTC(),
		CreatedAt: time.Now().UTC(),
		Groups:    []model.Group{},
	}
	db.Jobs = append(db.Jobs, job)
	db.ActiveJobID = job.ID
	j, _ := db.FindJob(job.ID)
	return j
}

func RemoveJob(db *store.DB, jobID string) bool {
	for i := range db.Jobs {
		if db.Jobs[i].ID == jobID {
			db.Jobs = append(db.Jobs[:i], db.Jobs[i+1:]...)
			if db.ActiveJobID == jobID {
				db.ActiveJobID = ""
			}
			return true
		}
	}
	return false
}

func SetActiveJob(db *store.DB, jobID string) bool {
	if _, ok := db.FindJob(jobID); !ok {
		return false
	}
	db.ActiveJobID = jobID
	return true
}

// SetSyncLinkedClipPositions toggles the job flag. Turning it on performs a
// one-time alignment pass: for every master, all linked clips move to the
// start of the first linked clip found, each preserving its own duration.
func SetSyncLinkedClipPositions(db *store.DB, jobID string, on bool) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	if job.SyncLinkedClipPositions == on {
		return false
	}
	job.SyncLinkedClipPositions = on
	if !on {
		return true
	}
	for mi := range job.MasterClips {
		linked := job.ClipsLinkedTo(job.MasterClips[mi].ID)
		if len(linked) < 2 {
			continue
		}
		anchor := linked[0].TimeRange.Start
		for _, c := range linked[1:] {
			shiftClipTo(job, c, anchor)
		}
	}
	return true
}

// RebaseStartTime moves the job's timeline epoch. Clip identity is fixed in
// real time: relative ranges are recomputed from the absolute shadow fields,
// so no clip shifts on the wall clock.
func RebaseStartTime(db *store.DB, jobID string, newStart time.Time) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	newStart = newStart.UTC()
	if job.StartTime.Equal(newStart) {
		return false
	}
	rebase := func(c *model.Clip) {
		if c.AbsoluteStartTime == nil {
			// No shadow yet: derive it from the old epoch first.
			refreshClipAbsolutes(job, c)
		}
		c.TimeRange.Start = timeutil.ToRelativeSeconds(*c.AbsoluteStartTime, newStart)
		if c.AbsoluteEndTime != nil {
			c.TimeRange.End = model.EndAt(timeutil.ToRelativeSeconds(*c.AbsoluteEndTime, newStart))
		}
	}
	for i := range job.MasterClips {
		rebase(&job.MasterClips[i])
	}
	for _, c := range job.AllClips() {
		rebase(c)
	}
	job.StartTime = newStart
	return true
}

// ImportJob adds a deep copy of an exported job tree. Every id is reassigned
// so an export can be imported into the workspace it came from; intra-job
// clip links are remapped to the new ids. The imported job becomes active.
func ImportJob(db *store.DB, src model.Job) *model.Job {
	idMap := map[string]string{}
	remint := func(old, prefix string) string {
		id := db.NextID(prefix)
		if old != "" {
			idMap[old] = id
		}
		return id
	}

	src.ID = remint(src.ID, "job")
	for mi := range src.MasterClips {
		m := &src.MasterClips[mi]
		m.ID = remint(m.ID, "clip")
		m.TrackID = model.MasterTrackID
	}
	for gi := range src.Groups {
		g := &src.Groups[gi]
		g.ID = remint(g.ID, "grp")
		for ai := range g.Aspects {
			a := &g.Aspects[ai]
			a.ID = remint(a.ID, "asp")
			a.GroupID = g.ID
			for ti := range a.Tracks {
				t := &a.Tracks[ti]
				t.ID = remint(t.ID, "trk")
				t.AspectID = a.ID
				for ci := range t.Clips {
					c := &t.Clips[ci]
					c.ID = remint(c.ID, "clip")
					c.TrackID = t.ID
					c.Selected = false
				}
			}
		}
	}

	// Remap clip links now that every id is known; dangling references from
	// a hand-edited file degrade to unlinked clips.
	remap := func(c *model.Clip) {
		if c.LinkedToClipID != "" {
			if mapped, ok := idMap[c.LinkedToClipID]; ok {
				c.LinkedToClipID = mapped
			} else {
				c.LinkedToClipID = ""
				c.LinkType = model.LinkTypeNone
			}
		}
		if c.SourceClipID != "" {
			if mapped, ok := idMap[c.SourceClipID]; ok {
				c.SourceClipID = mapped
			} else {
				c.SourceClipID = ""
			}
		}
	}
	for mi := range src.MasterClips {
		remap(&src.MasterClips[mi])
	}
	for _, c := range src.AllClips() {
		remap(c)
	}

	src.SortSiblings()
	db.Jobs = append(db.Jobs, src)
	db.ActiveJobID = src.ID
	j, _ := db.FindJob(src.ID)
	return j
}

// shiftClipTo moves a clip's start to the given time, preserving its duration
// (live clips keep their open end).
func shiftClipTo(job *model.Job, c *model.Clip, start float64) {
	if c.TimeRange.End != nil {
		d := *c.TimeRange.End - c.TimeRange.Start
		c.TimeRange.End = model.EndAt(start + d)
	}
	c.TimeRange.Start = start
	refreshClipAbsolutes(job, c)
}
