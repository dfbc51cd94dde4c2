package mutate

import (
	"strings"

	"syncline/internal/model"
	"syncline/internal/store"
)

// Sibling indexes stay contiguous from 0: appends take the next index,
// removals reindex the remaining siblings.

func AddGroup(db *store.DB, jobID, name, tenantID string) (*model.Group, bool) {
	job, ok := db.FindJob(jobID)
	if !ok {
		return nil, false
	}
	g := model.Group{
		ID:             db.NextID("grp"),
		Name:           strings.TrimSpace(name),
		TenantID:       strings.TrimSpace(tenantID),
		Expanded:       true,
		Visible:        true,
		VisibilityMode: model.VisibilityExplicit,
		Index:          len(job.Groups),
		Aspects:        []model.Aspect{},
	}
	job.Groups = append(job.Groups, g)
	return &job.Groups[len(job.Groups)-1], true
}

func RemoveGroup(db *store.DB, jobID, groupID string) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	for i := range job.Groups {
		if job.Groups[i].ID == groupID {
			job.Groups = append(job.Groups[:i], job.Groups[i+1:]...)
			for k := range job.Groups {
				job.Groups[k].Index = k
			}
			return true
		}
	}
	return false
}

func AddAspect(db *store.DB, jobID, groupID, name string) (*model.Aspect, bool) {
	job, ok := db.FindJob(jobID)
	if !ok {
		return nil, false
	}
	g, ok := job.FindGroup(groupID)
	if !ok {
		return nil, false
	}
	a := model.Aspect{
		ID:             db.NextID("asp"),
		GroupID:        g.ID,
		Name:           strings.TrimSpace(name),
		Expanded:       true,
		Visible:        true,
		VisibilityMode: model.VisibilityExplicit,
		Index:          len(g.Aspects),
		Tracks:         []model.Track{},
	}
	g.Aspects = append(g.Aspects, a)
	return &g.Aspects[len(g.Aspects)-1], true
}

func RemoveAspect(db *store.DB, jobID, aspectID string) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	for gi := range job.Groups {
		g := &job.Groups[gi]
		for i := range g.Aspects {
			if g.Aspects[i].ID == aspectID {
				g.Aspects = append(g.Aspects[:i], g.Aspects[i+1:]...)
				for k := range g.Aspects {
					g.Aspects[k].Index = k
				}
				return true
			}
		}
	}
	return false
}

const defaultTrackHeight = 1

func AddTrack(db *store.DB, jobID, aspectID, name, unit string, dataType model.DataType) (*model.Track, bool) {
	job, ok := db.FindJob(jobID)
	if !ok {
		return nil, false
	}
	a, ok := job.FindAspect(aspectID)
	if !ok {
		return nil, false
	}
	t := model.Track{
		ID:             db.NextID("trk"),
		AspectID:       a.ID,
		Name:           strings.TrimSpace(name),
		Unit:           strings.TrimSpace(unit),
		DataType:       dataType,
		Index:          len(a.Tracks),
		Visible:        true,
		VisibilityMode: model.VisibilityExplicit,
		Height:         defaultTrackHeight,
		Clips:          []model.Clip{},
	}
	a.Tracks = append(a.Tracks, t)
	return &a.Tracks[len(a.Tracks)-1], true
}

func RemoveTrack(db *store.DB, jobID, trackID string) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	for gi := range job.Groups {
		for ai := range job.Groups[gi].Aspects {
			a := &job.Groups[gi].Aspects[ai]
			for i := range a.Tracks {
				if a.Tracks[i].ID == trackID {
					a.Tracks = append(a.Tracks[:i], a.Tracks[i+1:]...)
					for k := range a.Tracks {
						a.Tracks[k].Index = k
					}
					return true
				}
			}
		}
	}
	return false
}

func SetTrackMuted(db *store.DB, jobID, trackID string, muted bool) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	t, ok := job.FindTrack(trackID)
	if !ok || t.Muted == muted {
		return false
	}
	t.Muted = muted
	return true
}

func SetTrackLocked(db *store.DB, jobID, trackID string, locked bool) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	t, ok := job.FindTrack(trackID)
	if !ok || t.Locked == locked {
		return false
	}
	t.Locked = locked
	return true
}

// ToggleExpanded flips the expand state of a group or aspect.
func ToggleExpanded(db *store.DB, jobID, nodeID string) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}
	if g, ok := job.FindGroup(nodeID); ok {
		g.Expanded = !g.Expanded
		return true
	}
	if a, ok := job.FindAspect(nodeID); ok {
		a.Expanded = !a.Expanded
		return true
	}
	return false
}
