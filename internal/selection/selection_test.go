package selection

import (
	"testing"
	"time"

	"syncline/internal/model"
)

// job with 5 clips spread over 3 tracks plus one master clip, in a known
// display order: master, a1, a2, b1, c1.
func testJob() *model.Job {
	end := func(v float64) *float64 { return model.EndAt(v) }
	return &model.Job{
		ID:        "job-t",
		SyncMode:  model.SyncModeFull,
		StartTime: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		MasterClips: []model.Clip{
			{ID: "m1", TrackID: model.MasterTrackID, Name: "source", LinkType: model.LinkTypeSource, TimeRange: model.TimeRange{Start: 0, End: end(100)}},
		},
		Groups: []model.Group{
			{ID: "g1", Visible: true, VisibilityMode: model.VisibilityExplicit, Aspects: []model.Aspect{
				{ID: "as1", GroupID: "g1", Visible: true, VisibilityMode: model.VisibilityExplicit, Tracks: []model.Track{
					{ID: "ta", AspectID: "as1", Index: 0, Visible: true, VisibilityMode: model.VisibilityExplicit, Clips: []model.Clip{
						{ID: "a1", TrackID: "ta", TimeRange: model.TimeRange{Start: 0, End: end(10)}},
						{ID: "a2", TrackID: "ta", TimeRange: model.TimeRange{Start: 20, End: end(30)}},
					}},
					{ID: "tb", AspectID: "as1", Index: 1, Visible: false, VisibilityMode: model.VisibilityExplicit, Clips: []model.Clip{
						{ID: "b1", TrackID: "tb", TimeRange: model.TimeRange{Start: 0, End: end(10)}},
					}},
				}},
			}},
			{ID: "g2", Index: 1, Visible: true, VisibilityMode: model.VisibilityExplicit, Aspects: []model.Aspect{
				{ID: "as2", GroupID: "g2", Visible: true, VisibilityMode: model.VisibilityExplicit, Tracks: []model.Track{
					{ID: "tc", AspectID: "as2", Visible: true, VisibilityMode: model.VisibilityExplicit, Clips: []model.Clip{
						{ID: "c1", TrackID: "tc", TimeRange: model.TimeRange{Start: 5, End: end(15)}},
					}},
				}},
			}},
		},
	}
}

func selectedIDs(s *Selection, job *model.Job) []string {
	return s.IDs(job)
}

func eqIDs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPlainClickReplacesSelection(t *testing.T) {
	job := testJob()
	s := New()
	s.Select(job, "a1", false, false)
	s.Select(job, "b1", false, false)
	eqIDs(t, selectedIDs(s, job), []string{"b1"})
	if s.Anchor() != "b1" {
		t.Fatalf("anchor must follow the click")
	}
}

func TestMultiClickUnionsAndToggles(t *testing.T) {
	job := testJob()
	s := New()
	s.Select(job, "a1", false, false)
	s.Select(job, "c1", true, false)
	eqIDs(t, selectedIDs(s, job), []string{"a1", "c1"})

	// Ctrl-clicking a selected clip deselects it.
	s.Select(job, "a1", true, false)
	eqIDs(t, selectedIDs(s, job), []string{"c1"})
}

func TestRangeSelectionOrderIndependent(t *testing.T) {
	job := testJob()

	s := New()
	s.Select(job, "a2", false, false)
	s.Select(job, "c1", false, true)
	eqIDs(t, selectedIDs(s, job), []string{"a2", "b1", "c1"})

	// Reverse click order: Y precedes X in display order.
	s2 := New()
	s2.Select(job, "c1", false, false)
	s2.Select(job, "a2", false, true)
	eqIDs(t, selectedIDs(s2, job), []string{"a2", "b1", "c1"})
}

func TestRangeIgnoresVisibilityFilters(t *testing.T) {
	job := testJob()
	s := New()
	s.Select(job, "a2", false, false)
	s.Select(job, "c1", false, true)
	// b1 sits on a hidden track but is inside the display-order range.
	if !s.IsSelected("b1") {
		t.Fatalf("range must run over the full display order, hidden tracks included")
	}
}

func TestRangeUnionsIntoExistingSelection(t *testing.T) {
	job := testJob()
	s := New()
	s.Select(job, "m1", false, false)
	s.Select(job, "a2", true, false) // selection: m1, a2; anchor a2
	s.Select(job, "b1", false, true) // range a2..b1 unions in
	eqIDs(t, selectedIDs(s, job), []string{"m1", "a2", "b1"})
}

func TestSelectedFlagMirrored(t *testing.T) {
	job := testJob()
	s := New()
	s.Select(job, "a1", false, false)
	c, _ := job.FindClip("a1")
	if !c.Selected {
		t.Fatalf("selected flag must mirror membership")
	}
	s.Select(job, "c1", false, false)
	c, _ = job.FindClip("a1")
	if c.Selected {
		t.Fatalf("replaced clip must drop its selected flag")
	}
}

func TestSelectedClipsMasterFirst(t *testing.T) {
	job := testJob()
	s := New()
	s.Select(job, "a1", false, false)
	s.Select(job, "m1", true, false)
	clips := s.SelectedClips(job)
	if len(clips) != 2 || clips[0].ID != "m1" {
		t.Fatalf("master lane clips come first, got %v", clips)
	}
}

func TestPruneDropsStaleIDs(t *testing.T) {
	job := testJob()
	s := New()
	s.Select(job, "a1", false, false)
	s.Select(job, "a2", true, false)

	// a2 deleted behind the selection's back.
	ta, _ := job.FindTrack("ta")
	ta.Clips = ta.Clips[:1]

	s.Prune(job)
	eqIDs(t, selectedIDs(s, job), []string{"a1"})
	if s.Anchor() != "" {
		t.Fatalf("stale anchor must clear")
	}
}

func TestUnknownIDIgnored(t *testing.T) {
	job := testJob()
	s := New()
	s.Select(job, "a1", false, false)
	s.Select(job, "nope", false, false)
	eqIDs(t, selectedIDs(s, job), []string{"a1"})
}
