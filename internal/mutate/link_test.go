package mutate

import (
	"errors"
	"testing"
	"time"

	"syncline/internal/model"
	"syncline/internal/store"
)

func TestSetClipAsSourceForcesAlignment(t *testing.T) {
	db, jobID := testDB(t)
	c1 := clipByName(t, db, jobID, "c1") // [50,150]

	if err := SetClipAsSource(db, jobID, c1.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	job, _ := db.FindJob(jobID)
	master, _ := job.MasterClipByRole(model.LinkTypeSource)
	c1 = clipByName(t, db, jobID, "c1")
	if !c1.TimeRange.Equal(master.TimeRange) {
		t.Fatalf("linked clip must exactly match the master, got %+v vs %+v", c1.TimeRange, master.TimeRange)
	}
	if c1.LinkedToClipID != master.ID || c1.LinkType != model.LinkTypeSource {
		t.Fatalf("link fields not set")
	}
}

func TestSingleRoleHolderPerTrack(t *testing.T) {
	db, jobID := testDB(t)
	a1 := clipByName(t, db, jobID, "a1")
	tr := trackOf(t, db, jobID, "a1")
	other := mustClip(t, db, jobID, tr.ID, "a2", 200, 300)

	if err := SetClipAsSource(db, jobID, a1.ID); err != nil {
		t.Fatalf("first link: %v", err)
	}
	err := SetClipAsSource(db, jobID, other.ID)
	var ce CompatibilityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected compatibility refusal for second source on the same track, got %v", err)
	}
}

func TestSingleTenantPerRole(t *testing.T) {
	db, jobID := testDB(t)
	a1 := clipByName(t, db, jobID, "a1") // tenant acme
	d1 := clipByName(t, db, jobID, "d1") // tenant other

	if err := SetClipAsSource(db, jobID, a1.ID); err != nil {
		t.Fatalf("first link: %v", err)
	}
	err := SetClipAsSource(db, jobID, d1.ID)
	var ce CompatibilityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected tenant mismatch refusal, got %v", err)
	}
}

func TestNoMasterRefused(t *testing.T) {
	db := &store.DB{Version: 1}
	job := CreateJob(db, "Empty", model.SyncModeFull, time.Now().UTC())
	g, _ := AddGroup(db, job.ID, "G", "acme")
	a, _ := AddAspect(db, job.ID, g.ID, "A")
	tr, _ := AddTrack(db, job.ID, a.ID, "t", "", model.DataTypeDouble)
	c := mustClip(t, db, job.ID, tr.ID, "x", 0, 10)

	var ce CompatibilityError
	if err := SetClipAsSource(db, job.ID, c.ID); !errors.As(err, &ce) {
		t.Fatalf("expected refusal without a master clip, got %v", err)
	}
}

func TestSourceMasterChangePropagates(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)

	a1 := clipByName(t, db, jobID, "a1")
	c1 := clipByName(t, db, jobID, "c1")
	if err := SetClipAsSource(db, jobID, a1.ID); err != nil {
		t.Fatalf("link a1: %v", err)
	}
	if err := SetClipAsDestination(db, jobID, c1.ID); err != nil {
		t.Fatalf("link c1: %v", err)
	}
	// A flexible link that keeps its own start.
	b1 := clipByName(t, db, jobID, "b1") // [20,120]
	srcMaster, _ := job.MasterClipByRole(model.LinkTypeSource)
	if err := SetClipAsFlexible(db, jobID, b1.ID, srcMaster.ID, 1000); err != nil {
		t.Fatalf("flexible link: %v", err)
	}

	// Change the source master to [10,140].
	if _, err := ResizeClip(db, jobID, srcMaster.ID, EdgeLeft, 10, 1000); err != nil {
		t.Fatalf("resize left: %v", err)
	}
	if _, err := ResizeClip(db, jobID, srcMaster.ID, EdgeRight, 140, 1000); err != nil {
		t.Fatalf("resize right: %v", err)
	}

	// Destination master mirrors the source exactly.
	destMaster, _ := job.MasterClipByRole(model.LinkTypeDestination)
	rangeEq(t, destMaster.TimeRange, 10, 140)

	// Role-linked clips match their masters exactly.
	rangeEq(t, clipByName(t, db, jobID, "a1").TimeRange, 10, 140)
	rangeEq(t, clipByName(t, db, jobID, "c1").TimeRange, 10, 140)

	// Flexible link keeps its start, takes the new 130s duration.
	rangeEq(t, clipByName(t, db, jobID, "b1").TimeRange, 20, 150)
}

func TestPerfectAlignmentAfterMasterMove(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)
	a1 := clipByName(t, db, jobID, "a1")
	if err := SetClipAsSource(db, jobID, a1.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	srcMaster, _ := job.MasterClipByRole(model.LinkTypeSource)

	moves := []ClipMove{{ClipID: srcMaster.ID, Original: srcMaster.TimeRange}}
	if _, err := MoveClips(db, jobID, moves, 25, "", 1000); err != nil {
		t.Fatalf("move master: %v", err)
	}
	srcMaster, _ = job.MasterClipByRole(model.LinkTypeSource)
	rangeEq(t, srcMaster.TimeRange, 25, 125)
	if !clipByName(t, db, jobID, "a1").TimeRange.Equal(srcMaster.TimeRange) {
		t.Fatalf("linked clip must follow the master move")
	}
}

func TestPinnedClipDoesNotMoveOrResize(t *testing.T) {
	db, jobID := testDB(t)
	a1 := clipByName(t, db, jobID, "a1")
	if err := SetClipAsSource(db, jobID, a1.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	moves := []ClipMove{{ClipID: a1.ID, Original: a1.TimeRange}}
	changed, err := MoveClips(db, jobID, moves, 10, "", 1000)
	if err != nil || changed {
		t.Fatalf("pinned clip move must no-op, got changed=%v err=%v", changed, err)
	}
	rangeEq(t, clipByName(t, db, jobID, "a1").TimeRange, 0, 100)

	if _, err := ResizeClip(db, jobID, a1.ID, EdgeLeft, 5, 1000); err == nil {
		t.Fatalf("expected refusal resizing a pinned clip")
	}
}

func TestSetClipAsNoneAndDestinationSource(t *testing.T) {
	db, jobID := testDB(t)
	a1 := clipByName(t, db, jobID, "a1")
	c1 := clipByName(t, db, jobID, "c1")
	if err := SetClipAsSource(db, jobID, a1.ID); err != nil {
		t.Fatalf("link source: %v", err)
	}
	if err := SetClipAsDestination(db, jobID, c1.ID); err != nil {
		t.Fatalf("link dest: %v", err)
	}

	if err := SetDestinationSourceClip(db, jobID, c1.ID, a1.ID); err != nil {
		t.Fatalf("attach data-flow ref: %v", err)
	}
	c1 = clipByName(t, db, jobID, "c1")
	if c1.SourceClipID != a1.ID {
		t.Fatalf("sourceClipId not set")
	}
	// Data-flow ref has no timing effect.
	rangeEq(t, c1.TimeRange, 0, 100)

	if !SetClipAsNone(db, jobID, c1.ID) {
		t.Fatalf("clear link")
	}
	c1 = clipByName(t, db, jobID, "c1")
	if c1.LinkedToClipID != "" || c1.LinkType != model.LinkTypeNone || c1.SourceClipID != "" {
		t.Fatalf("link fields must be cleared")
	}
}

func TestDestinationSourceRequiresRoles(t *testing.T) {
	db, jobID := testDB(t)
	a1 := clipByName(t, db, jobID, "a1")
	b1 := clipByName(t, db, jobID, "b1")
	var ce CompatibilityError
	if err := SetDestinationSourceClip(db, jobID, a1.ID, b1.ID); !errors.As(err, &ce) {
		t.Fatalf("expected refusal on non-destination clip, got %v", err)
	}
}

func TestMasterDeleteUnlinksDependents(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)
	a1 := clipByName(t, db, jobID, "a1")
	if err := SetClipAsSource(db, jobID, a1.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	srcMaster, _ := job.MasterClipByRole(model.LinkTypeSource)

	if !RemoveClip(db, jobID, srcMaster.ID) {
		t.Fatalf("remove master")
	}
	a1 = clipByName(t, db, jobID, "a1")
	if a1.LinkedToClipID != "" || a1.LinkType != model.LinkTypeNone {
		t.Fatalf("dependent must be unlinked, not deleted: %+v", a1)
	}
	if len(job.MasterClips) != 1 {
		t.Fatalf("expected 1 remaining master clip")
	}
}

func TestSyncLinkedClipPositionsToggle(t *testing.T) {
	db, jobID := testDB(t)
	job, _ := db.FindJob(jobID)
	srcMaster, _ := job.MasterClipByRole(model.LinkTypeSource)

	// Two flexible-linked clips at different starts.
	a1 := clipByName(t, db, jobID, "a1") // [0,100]
	b1 := clipByName(t, db, jobID, "b1") // [20,120]
	if err := SetClipAsFlexible(db, jobID, a1.ID, srcMaster.ID, 1000); err != nil {
		t.Fatalf("flexible a1: %v", err)
	}
	if err := SetClipAsFlexible(db, jobID, b1.ID, srcMaster.ID, 1000); err != nil {
		t.Fatalf("flexible b1: %v", err)
	}

	// Toggling on aligns everything to the first linked clip's start.
	if !SetSyncLinkedClipPositions(db, jobID, true) {
		t.Fatalf("toggle on")
	}
	a1 = clipByName(t, db, jobID, "a1")
	b1 = clipByName(t, db, jobID, "b1")
	if b1.TimeRange.Start != a1.TimeRange.Start {
		t.Fatalf("toggle-on must align starts: %v vs %v", b1.TimeRange.Start, a1.TimeRange.Start)
	}
	// Duration preserved per clip.
	if b1.TimeRange.Duration(0) != 100 {
		t.Fatalf("duration must be preserved, got %v", b1.TimeRange.Duration(0))
	}

	// With the flag on, moving one linked clip drags the other along.
	moves := []ClipMove{{ClipID: a1.ID, Original: a1.TimeRange}}
	if _, err := MoveClips(db, jobID, moves, 40, "", 1000); err != nil {
		t.Fatalf("move: %v", err)
	}
	a1 = clipByName(t, db, jobID, "a1")
	b1 = clipByName(t, db, jobID, "b1")
	if b1.TimeRange.Start != a1.TimeRange.Start {
		t.Fatalf("position sync must re-align, got %v vs %v", b1.TimeRange.Start, a1.TimeRange.Start)
	}
}
