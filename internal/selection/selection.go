// Package selection tracks the set of selected clips plus the anchor used
// for shift-range selection. Every mutation mirrors the membership onto each
// clip's Selected flag so renderers get O(1) per-clip lookups.
package selection

import (
	"syncline/internal/model"
)

type Selection struct {
	ids map[string]bool
	// lastSelectedID anchors range selection to the previously clicked clip.
	lastSelectedID string
}

func New() *Selection {
	return &Selection{ids: map[string]bool{}}
}

func (s *Selection) IsSelected(id string) bool { return s.ids[id] }

func (s *Selection) Anchor() string { return s.lastSelectedID }

func (s *Selection) Count() int { return len(s.ids) }

// IDs returns the selected ids in the job's display order.
func (s *Selection) IDs(job *model.Job) []string {
	if job == nil {
		return nil
	}
	var out []string
	for _, c := range job.ClipsInDisplayOrder() {
		if s.ids[c.ID] {
			out = append(out, c.ID)
		}
	}
	return out
}

// SelectedClips resolves the selection against the job, master lane first.
func (s *Selection) SelectedClips(job *model.Job) []*model.Clip {
	if job == nil {
		return nil
	}
	var out []*model.Clip
	for _, c := range job.ClipsInDisplayOrder() {
		if s.ids[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// Select handles a click on a clip. multi (ctrl/cmd) unions the single id
// into the selection; rangeSel (shift) unions the inclusive display-order
// range between the anchor and the clicked clip, independent of click order.
// A plain click replaces the selection. Unknown ids clear nothing and are
// ignored. The anchor always moves to the clicked clip.
func (s *Selection) Select(job *model.Job, id string, multi, rangeSel bool) {
	if job == nil {
		return
	}
	if _, ok := job.FindClip(id); !ok {
		return
	}

	switch {
	case rangeSel && s.lastSelectedID != "":
		for _, rid := range rangeIDs(job, s.lastSelectedID, id) {
			s.ids[rid] = true
		}
	case multi:
		if s.ids[id] {
			delete(s.ids, id)
		} else {
			s.ids[id] = true
		}
	default:
		s.ids = map[string]bool{id: true}
	}
	s.lastSelectedID = id
	s.mirror(job)
}

// SelectOnly replaces the selection with the single id, if it resolves.
func (s *Selection) SelectOnly(job *model.Job, id string) {
	s.Select(job, id, false, false)
}

func (s *Selection) Clear(job *model.Job) {
	s.ids = map[string]bool{}
	s.lastSelectedID = ""
	s.mirror(job)
}

// Prune drops ids that no longer resolve (clip deleted under the selection).
func (s *Selection) Prune(job *model.Job) {
	if job == nil {
		return
	}
	for id := range s.ids {
		if _, ok := job.FindClip(id); !ok {
			delete(s.ids, id)
		}
	}
	if s.lastSelectedID != "" {
		if _, ok := job.FindClip(s.lastSelectedID); !ok {
			s.lastSelectedID = ""
		}
	}
	s.mirror(job)
}

// rangeIDs computes the inclusive display-order span between two clips,
// whichever of the two comes first. Visibility filters do not apply: the
// range runs over the full ordered clip list.
func rangeIDs(job *model.Job, fromID, toID string) []string {
	ordered := job.ClipsInDisplayOrder()
	from, to := -1, -1
	for i, c := range ordered {
		if c.ID == fromID {
			from = i
		}
		if c.ID == toID {
			to = i
		}
	}
	if from == -1 || to == -1 {
		return []string{toID}
	}
	if from > to {
		from, to = to, from
	}
	out := make([]string, 0, to-from+1)
	for _, c := range ordered[from : to+1] {
		out = append(out, c.ID)
	}
	return out
}

func (s *Selection) mirror(job *model.Job) {
	if job == nil {
		return
	}
	for _, c := range job.ClipsInDisplayOrder() {
		c.Selected = s.ids[c.ID]
	}
}
