package mutate

import (
	"syncline/internal/model"
	"syncline/internal/store"
)

// ToggleVisible flips the visibility of a group, aspect or track.
//
// Hiding cascades visible=false/explicit down to every descendant. Showing
// cascades visible=true/explicit down, and additionally marks every ancestor
// visible with implicit provenance: an ancestor is never forced explicit by a
// toggle below it, so a user can hide a whole asset and then reveal one
// buried property without re-toggling the levels in between. Implicit marks
// render dimmed and carry no cascade power of their own.
func ToggleVisible(db *store.DB, jobID, nodeID string) bool {
	job, ok := db.FindJob(jobID)
	if !ok {
		return false
	}

	if g, ok := job.FindGroup(nodeID); ok {
		g.Visible = !g.Visible
		g.VisibilityMode = model.VisibilityExplicit
		for ai := range g.Aspects {
			setAspectSubtree(&g.Aspects[ai], g.Visible)
		}
		return true
	}

	if a, ok := job.FindAspect(nodeID); ok {
		a.Visible = !a.Visible
		a.VisibilityMode = model.VisibilityExplicit
		for ti := range a.Tracks {
			setNodeVisibility(&a.Tracks[ti].Visible, &a.Tracks[ti].VisibilityMode, a.Visible, model.VisibilityExplicit)
		}
		if a.Visible {
			markAncestorsVisible(job, a.GroupID)
		}
		return true
	}

	if t, ok := job.FindTrack(nodeID); ok {
		t.Visible = !t.Visible
		t.VisibilityMode = model.VisibilityExplicit
		if t.Visible {
			if a, ok := job.FindAspect(t.AspectID); ok {
				setNodeVisibility(&a.Visible, &a.VisibilityMode, true, model.VisibilityImplicit)
				markAncestorsVisible(job, a.GroupID)
			}
		}
		return true
	}

	return false
}

func setAspectSubtree(a *model.Aspect, visible bool) {
	setNodeVisibility(&a.Visible, &a.VisibilityMode, visible, model.VisibilityExplicit)
	for ti := range a.Tracks {
		setNodeVisibility(&a.Tracks[ti].Visible, &a.Tracks[ti].VisibilityMode, visible, model.VisibilityExplicit)
	}
}

func setNodeVisibility(visible *bool, mode *model.VisibilityMode, v bool, m model.VisibilityMode) {
	*visible = v
	*mode = m
}

func markAncestorsVisible(job *model.Job, groupID string) {
	if g, ok := job.FindGroup(groupID); ok {
		setNodeVisibility(&g.Visible, &g.VisibilityMode, true, model.VisibilityImplicit)
	}
}
