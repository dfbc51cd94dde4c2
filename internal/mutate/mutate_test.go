package mutate

import (
	"testing"
	"time"

	"syncline/internal/model"
	"syncline/internal/store"
)

// testDB builds a full-mode job with two tenants' worth of groups, three
// compatible °C tracks, one bar track, and a source+destination master pair
// at [0,100].
func testDB(t *testing.T) (*store.DB, string) {
	t.Helper()
	db := &store.DB{Version: 1}
	job := CreateJob(db, "Sync Pumps", model.SyncModeFull, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	g1, _ := AddGroup(db, job.ID, "Pump 4711", "acme")
	a1, _ := AddAspect(db, job.ID, g1.ID, "Temperature")
	trA, _ := AddTrack(db, job.ID, a1.ID, "inlet", "°C", model.DataTypeDouble)
	trB, _ := AddTrack(db, job.ID, a1.ID, "pressure", "bar", model.DataTypeDouble)
	trC, _ := AddTrack(db, job.ID, a1.ID, "outlet", "°C", model.DataTypeDouble)

	g2, _ := AddGroup(db, job.ID, "Pump 4712", "other")
	a2, _ := AddAspect(db, job.ID, g2.ID, "Temperature")
	trD, _ := AddTrack(db, job.ID, a2.ID, "inlet", "°C", model.DataTypeDouble)

	mustClip(t, db, job.ID, trA.ID, "a1", 0, 100)
	mustClip(t, db, job.ID, trB.ID, "b1", 20, 120)
	mustClip(t, db, job.ID, trC.ID, "c1", 50, 150)
	mustClip(t, db, job.ID, trD.ID, "d1", 10, 60)

	if _, err := AddMasterClip(db, job.ID, model.LinkTypeSource, model.TimeRange{Start: 0, End: model.EndAt(100)}); err != nil {
		t.Fatalf("add source master: %v", err)
	}
	if _, err := AddMasterClip(db, job.ID, model.LinkTypeDestination, model.TimeRange{Start: 0, End: model.EndAt(100)}); err != nil {
		t.Fatalf("add destination master: %v", err)
	}
	return db, job.ID
}

func mustClip(t *testing.T, db *store.DB, jobID, trackID, name string, start, end float64) *model.Clip {
	t.Helper()
	c, ok := AddClip(db, jobID, trackID, name, model.TimeRange{Start: start, End: model.EndAt(end)})
	if !ok {
		t.Fatalf("add clip %s", name)
	}
	return c
}

func clipByName(t *testing.T, db *store.DB, jobID, name string) *model.Clip {
	t.Helper()
	job, _ := db.FindJob(jobID)
	for _, c := range job.AllClips() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("clip %s not found", name)
	return nil
}

func trackOf(t *testing.T, db *store.DB, jobID, clipName string) *model.Track {
	t.Helper()
	c := clipByName(t, db, jobID, clipName)
	job, _ := db.FindJob(jobID)
	tr, ok := job.FindTrack(c.TrackID)
	if !ok {
		t.Fatalf("track of %s not found", clipName)
	}
	return tr
}

func rangeEq(t *testing.T, got model.TimeRange, start, end float64) {
	t.Helper()
	if got.Start != start || got.End == nil || *got.End != end {
		t.Fatalf("expected [%v,%v], got %+v", start, end, got)
	}
}

func TestSiblingIndexContiguousAfterRemoval(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)

	a := job.Groups[0].Aspects[0]
	if len(a.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(a.Tracks))
	}
	middle := a.Tracks[1].ID
	if !RemoveTrack(db, jobID, middle) {
		t.Fatalf("remove track")
	}
	a = job.Groups[0].Aspects[0]
	for k, tr := range a.Tracks {
		if tr.Index != k {
			t.Fatalf("expected contiguous indexes, track %d has index %d", k, tr.Index)
		}
	}
}

func TestMissingReferencesAreNoOps(t *testing.T) {
	db, jobID := testDB(t)

	if changed, err := MoveClips(db, jobID, []ClipMove{{ClipID: "clip-gone"}}, 5, "", 1000); err != nil || changed {
		t.Fatalf("missing clip must no-op, got changed=%v err=%v", changed, err)
	}
	if changed, err := MoveClips(db, "job-gone", []ClipMove{{ClipID: "x"}}, 5, "", 1000); err != nil || changed {
		t.Fatalf("missing job must no-op, got changed=%v err=%v", changed, err)
	}
	if err := SetClipAsSource(db, jobID, "clip-gone"); err != nil {
		t.Fatalf("missing clip link must no-op, got %v", err)
	}
	if ToggleVisible(db, jobID, "node-gone") {
		t.Fatalf("missing node must no-op")
	}
}

func TestRebaseStartTimeKeepsAbsoluteIdentity(t *testing.T) {
	db, jobID := testDB(t)
	a1 := clipByName(t, db, jobID, "a1")
	absStart := *a1.AbsoluteStartTime
	absEnd := *a1.AbsoluteEndTime

	job, _ := db.FindJob(jobID)
	newStart := job.StartTime.Add(-30 * time.Second)
	if !RebaseStartTime(db, jobID, newStart) {
		t.Fatalf("rebase")
	}

	a1 = clipByName(t, db, jobID, "a1")
	if !a1.AbsoluteStartTime.Equal(absStart) || !a1.AbsoluteEndTime.Equal(absEnd) {
		t.Fatalf("rebase must not shift clips in real time")
	}
	rangeEq(t, a1.TimeRange, 30, 130)
}

func TestDuplicateClip(t *testing.T) {
	db, jobID := testDB(t)
	orig := clipByName(t, db, jobID, "a1")
	origID, origColor := orig.ID, orig.Color

	copyClip, err := DuplicateClip(db, jobID, origID, "", model.TimeRange{Start: 200, End: model.EndAt(300)})
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if copyClip == nil || copyClip.ID == origID {
		t.Fatalf("copy must get a new id")
	}
	if copyClip.Name != "a1 (Copy)" {
		t.Fatalf("expected copy suffix, got %q", copyClip.Name)
	}
	if copyClip.Color == origColor {
		t.Fatalf("copy must get a new color")
	}
	rangeEq(t, copyClip.TimeRange, 200, 300)

	// Original untouched.
	orig = clipByName(t, db, jobID, "a1")
	rangeEq(t, orig.TimeRange, 0, 100)
}

func TestMasterCopyRefused(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)
	masterID := job.MasterClips[0].ID
	if _, err := DuplicateClip(db, jobID, masterID, "", model.TimeRange{Start: 0, End: model.EndAt(10)}); err == nil {
		t.Fatalf("expected refusal copying a master clip")
	}
}

func TestClipboardPastePreservesOffsets(t *testing.T) {
	db, jobID := testDB(t)
	a1 := clipByName(t, db, jobID, "a1") // [0,100]
	c1 := clipByName(t, db, jobID, "c1") // [50,150]

	if !CopyClips(db, jobID, []string{a1.ID, c1.ID}) {
		t.Fatalf("copy to clipboard")
	}
	pasted, err := PasteClipboard(db, jobID, "", 1000)
	if err != nil {
		t.Fatalf("paste: %v", err)
	}
	if len(pasted) != 2 {
		t.Fatalf("expected 2 pasted clips, got %d", len(pasted))
	}
	rangeEq(t, pasted[0].TimeRange, 1000, 1100)
	rangeEq(t, pasted[1].TimeRange, 1050, 1150)
	if pasted[0].Name != "a1 (Copy)" || pasted[1].Name != "c1 (Copy)" {
		t.Fatalf("paste must use the duplication path, got %q/%q", pasted[0].Name, pasted[1].Name)
	}
}

func TestClipboardSurvivesSourceDeletion(t *testing.T) {
	db, jobID := testDB(t)
	a1 := clipByName(t, db, jobID, "a1")
	if !CopyClips(db, jobID, []string{a1.ID}) {
		t.Fatalf("copy to clipboard")
	}
	if !RemoveClip(db, jobID, a1.ID) {
		t.Fatalf("remove original")
	}
	pasted, err := PasteClipboard(db, jobID, "", 500)
	if err != nil || len(pasted) != 1 {
		t.Fatalf("detached snapshot must still paste, got %v/%v", pasted, err)
	}
	rangeEq(t, pasted[0].TimeRange, 500, 600)
}
