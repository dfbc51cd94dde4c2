package store

import (
	"strings"
	"testing"
	"time"

	"syncline/internal/model"
)

func testJob(id string) model.Job {
	return model.Job{
		ID:        id,
		Name:      "Test Job",
		SyncMode:  model.SyncModeFull,
		StartTime: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Groups: []model.Group{
			{
				ID: "grp-a", Name: "Pump 4711", Visible: true, VisibilityMode: model.VisibilityExplicit,
				Aspects: []model.Aspect{
					{
						ID: "asp-a", GroupID: "grp-a", Name: "Temperature", Visible: true, VisibilityMode: model.VisibilityExplicit,
						Tracks: []model.Track{
							{
								ID: "trk-a", AspectID: "asp-a", Name: "inlet", Unit: "°C", DataType: model.DataTypeDouble,
								Visible: true, VisibilityMode: model.VisibilityExplicit, Height: 1,
								Clips: []model.Clip{
									{ID: "clip-a", TrackID: "trk-a", Name: "window", TimeRange: model.TimeRange{Start: 0, End: model.EndAt(100)}, State: model.ClipStateIdle},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	db := &DB{Version: 1, Jobs: []model.Job{testJob("job-one")}, Tenants: []model.Tenant{
		{ID: "tn-a", TenantID: "acme", ClientID: "cid", ClientSecret: "secret", Region: "eu1", IsDefault: true, CreatedAt: time.Now().UTC()},
	}}
	db.ActiveJobID = "job-one"

	if err := s.Save(db); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ActiveJobID != "job-one" {
		t.Fatalf("expected active job-one, got %q", got.ActiveJobID)
	}
	if len(got.Jobs) != 1 || len(got.Tenants) != 1 {
		t.Fatalf("expected 1 job + 1 tenant, got %d/%d", len(got.Jobs), len(got.Tenants))
	}
	j := got.Jobs[0]
	c, ok := j.FindClip("clip-a")
	if !ok {
		t.Fatalf("clip-a missing after round trip")
	}
	if c.TimeRange.Start != 0 || c.TimeRange.End == nil || *c.TimeRange.End != 100 {
		t.Fatalf("clip range corrupted: %+v", c.TimeRange)
	}
	tr, ok := j.FindTrack("trk-a")
	if !ok || tr.Unit != "°C" {
		t.Fatalf("track unit corrupted")
	}
}

func TestLoadEmptyWorkspace(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(db.Jobs) != 0 || len(db.Tenants) != 0 {
		t.Fatalf("expected empty workspace")
	}
	if db.ActiveJobID != "" {
		t.Fatalf("expected no active job")
	}
}

func TestStaleActiveJobIDResolvesToNone(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db := &DB{Version: 1, ActiveJobID: "job-gone"}
	if err := s.Save(db); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ActiveJobID != "" {
		t.Fatalf("stale active id must resolve to none, got %q", got.ActiveJobID)
	}
}

func TestNextIDUniqueAndPrefixed(t *testing.T) {
	db := &DB{Jobs: []model.Job{testJob("job-one")}}
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := db.NextID("clip")
		if !strings.HasPrefix(id, "clip-") {
			t.Fatalf("expected clip- prefix, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestAutosaverDebounce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewAutosaver(Store{Dir: t.TempDir()})
	a.Now = func() time.Time { return now }

	db := &DB{Version: 1}
	if a.MaybeFlush(db) {
		t.Fatalf("clean state must not flush")
	}

	a.MarkDirty()
	if a.MaybeFlush(db) {
		t.Fatalf("must not flush inside the debounce window")
	}

	// A later mutation resets the timer (last write wins).
	now = now.Add(400 * time.Millisecond)
	a.MarkDirty()
	now = now.Add(400 * time.Millisecond)
	if a.MaybeFlush(db) {
		t.Fatalf("reset timer must suppress the earlier deadline")
	}

	now = now.Add(200 * time.Millisecond)
	if !a.MaybeFlush(db) {
		t.Fatalf("expected flush after the debounce window")
	}
	if a.Dirty() {
		t.Fatalf("flush must clear the dirty flag")
	}
}
