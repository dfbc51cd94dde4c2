package model

import "sort"

// SortSiblings orders every sibling list in the job tree by Index. Mutations
// keep Index contiguous; this restores slice order after loads or imports.
func (j *Job) SortSiblings() {
	sort.SliceStable(j.Groups, func(a, b int) bool { return j.Groups[a].Index < j.Groups[b].Index })
	for gi := range j.Groups {
		g := &j.Groups[gi]
		sort.SliceStable(g.Aspects, func(a, b int) bool { return g.Aspects[a].Index < g.Aspects[b].Index })
		for ai := range g.Aspects {
			asp := &g.Aspects[ai]
			sort.SliceStable(asp.Tracks, func(a, b int) bool { return asp.Tracks[a].Index < asp.Tracks[b].Index })
		}
	}
}

func (j *Job) FindGroup(id string) (*Group, bool) {
	for i := range j.Groups {
		if j.Groups[i].ID == id {
			return &j.Groups[i], true
		}
	}
	return nil, false
}

func (j *Job) FindAspect(id string) (*Aspect, bool) {
	for gi := range j.Groups {
		for ai := range j.Groups[gi].Aspects {
			if j.Groups[gi].Aspects[ai].ID == id {
				return &j.Groups[gi].Aspects[ai], true
			}
		}
	}
	return nil, false
}

func (j *Job) FindTrack(id string) (*Track, bool) {
	for gi := range j.Groups {
		for ai := range j.Groups[gi].Aspects {
			tracks := j.Groups[gi].Aspects[ai].Tracks
			for ti := range tracks {
				if tracks[ti].ID == id {
					return &tracks[ti], true
				}
			}
		}
	}
	return nil, false
}

// GroupOfTrack returns the group owning the given track.
func (j *Job) GroupOfTrack(trackID string) (*Group, bool) {
	for gi := range j.Groups {
		for ai := range j.Groups[gi].Aspects {
			for ti := range j.Groups[gi].Aspects[ai].Tracks {
				if j.Groups[gi].Aspects[ai].Tracks[ti].ID == trackID {
					return &j.Groups[gi], true
				}
			}
		}
	}
	return nil, false
}

// FindClip resolves a clip id, checking the master lane first, then every track.
func (j *Job) FindClip(id string) (*Clip, bool) {
	for i := range j.MasterClips {
		if j.MasterClips[i].ID == id {
			return &j.MasterClips[i], true
		}
	}
	for gi := range j.Groups {
		for ai := range j.Groups[gi].Aspects {
			tracks := j.Groups[gi].Aspects[ai].Tracks
			for ti := range tracks {
				for ci := range tracks[ti].Clips {
					if tracks[ti].Clips[ci].ID == id {
						return &tracks[ti].Clips[ci], true
					}
				}
			}
		}
	}
	return nil, false
}

func (j *Job) IsMasterClip(id string) bool {
	for i := range j.MasterClips {
		if j.MasterClips[i].ID == id {
			return true
		}
	}
	return false
}

// MasterClipByRole returns the master-lane clip holding the given role. In
// incremental mode the single live master answers for both roles.
func (j *Job) MasterClipByRole(role LinkType) (*Clip, bool) {
	if j.SyncMode == SyncModeIncremental {
		if len(j.MasterClips) > 0 {
			return &j.MasterClips[0], true
		}
		return nil, false
	}
	for i := range j.MasterClips {
		if j.MasterClips[i].LinkType == role {
			return &j.MasterClips[i], true
		}
	}
	return nil, false
}

// ForEachTrack visits every track in display order (group, aspect, track index).
func (j *Job) ForEachTrack(fn func(g *Group, a *Aspect, t *Track)) {
	for gi := range j.Groups {
		g := &j.Groups[gi]
		for ai := range g.Aspects {
			a := &g.Aspects[ai]
			for ti := range a.Tracks {
				fn(g, a, &a.Tracks[ti])
			}
		}
	}
}

// AllClips returns pointers to every regular clip in the job, master lane excluded.
func (j *Job) AllClips() []*Clip {
	var out []*Clip
	j.ForEachTrack(func(_ *Group, _ *Aspect, t *Track) {
		for ci := range t.Clips {
			out = append(out, &t.Clips[ci])
		}
	})
	return out
}

// ClipsInDisplayOrder returns master-lane clips first, then every regular clip
// in display order (sibling Index sort at each level, visibility ignored).
// Range selection and snap collection both depend on this order being stable.
func (j *Job) ClipsInDisplayOrder() []*Clip {
	j.SortSiblings()
	out := make([]*Clip, 0, len(j.MasterClips))
	for i := range j.MasterClips {
		out = append(out, &j.MasterClips[i])
	}
	j.ForEachTrack(func(_ *Group, _ *Aspect, t *Track) {
		for ci := range t.Clips {
			out = append(out, &t.Clips[ci])
		}
	})
	return out
}

// ClipsLinkedTo returns every regular clip whose LinkedToClipID is masterID.
func (j *Job) ClipsLinkedTo(masterID string) []*Clip {
	var out []*Clip
	for _, c := range j.AllClips() {
		if c.LinkedToClipID == masterID {
			out = append(out, c)
		}
	}
	return out
}
