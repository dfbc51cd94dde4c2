package mutate

import (
	"testing"

	"syncline/internal/model"
)

func TestHideGroupCascadesExplicit(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)
	g := &job.Groups[0]

	if !ToggleVisible(db, jobID, g.ID) {
		t.Fatalf("toggle")
	}
	if g.Visible || g.VisibilityMode != model.VisibilityExplicit {
		t.Fatalf("group must be hidden explicit, got %v/%v", g.Visible, g.VisibilityMode)
	}
	for ai := range g.Aspects {
		a := &g.Aspects[ai]
		if a.Visible || a.VisibilityMode != model.VisibilityExplicit {
			t.Fatalf("aspect must cascade hidden explicit")
		}
		for ti := range a.Tracks {
			tr := &a.Tracks[ti]
			if tr.Visible || tr.VisibilityMode != model.VisibilityExplicit {
				t.Fatalf("track must cascade hidden explicit")
			}
		}
	}
}

func TestShowTrackMarksAncestorsImplicit(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)
	g := &job.Groups[0]

	// Hide the whole group, then reveal one buried track.
	ToggleVisible(db, jobID, g.ID)
	trackID := g.Aspects[0].Tracks[0].ID
	if !ToggleVisible(db, jobID, trackID) {
		t.Fatalf("toggle track")
	}

	tr := &g.Aspects[0].Tracks[0]
	if !tr.Visible || tr.VisibilityMode != model.VisibilityExplicit {
		t.Fatalf("shown track must be visible explicit")
	}
	a := &g.Aspects[0]
	if !a.Visible || a.VisibilityMode != model.VisibilityImplicit {
		t.Fatalf("ancestor aspect must be visible implicit, got %v/%v", a.Visible, a.VisibilityMode)
	}
	if !g.Visible || g.VisibilityMode != model.VisibilityImplicit {
		t.Fatalf("ancestor group must be visible implicit, got %v/%v", g.Visible, g.VisibilityMode)
	}

	// Sibling tracks stay hidden: implicit marks carry no cascade power.
	sibling := &g.Aspects[0].Tracks[1]
	if sibling.Visible {
		t.Fatalf("sibling track must stay hidden")
	}
}

func TestToggleTrackTwiceIsIdempotent(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)
	tr := &job.Groups[0].Aspects[0].Tracks[0]
	origVisible, origMode := tr.Visible, tr.VisibilityMode

	trackID := tr.ID
	ToggleVisible(db, jobID, trackID)
	ToggleVisible(db, jobID, trackID)

	tr = &job.Groups[0].Aspects[0].Tracks[0]
	if tr.Visible != origVisible || tr.VisibilityMode != origMode {
		t.Fatalf("double toggle must restore the track, got %v/%v", tr.Visible, tr.VisibilityMode)
	}
	// The second toggle (show) may leave implicit marks on ancestors, but
	// their visible value is back to the original.
	if !job.Groups[0].Visible || !job.Groups[0].Aspects[0].Visible {
		t.Fatalf("ancestors must be visible again")
	}
}

func TestShowAspectCascadesDownAndUp(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)
	g := &job.Groups[0]

	ToggleVisible(db, jobID, g.ID) // hide everything
	aspectID := g.Aspects[0].ID
	ToggleVisible(db, jobID, aspectID) // show the aspect

	a := &g.Aspects[0]
	if !a.Visible || a.VisibilityMode != model.VisibilityExplicit {
		t.Fatalf("aspect must be visible explicit")
	}
	for ti := range a.Tracks {
		if !a.Tracks[ti].Visible || a.Tracks[ti].VisibilityMode != model.VisibilityExplicit {
			t.Fatalf("descendant tracks must cascade visible explicit")
		}
	}
	if !g.Visible || g.VisibilityMode != model.VisibilityImplicit {
		t.Fatalf("group must be visible implicit")
	}
}
