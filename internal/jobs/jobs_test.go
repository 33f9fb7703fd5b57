package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/Satya7781/pdfintel/internal/docmodel"
)

func TestNewJob_Defaults(t *testing.T) {
	job := NewJob("Planner", "Plan trip", []string{"a.pdf"}, []string{"/tmp/x/a.pdf"}, "/tmp/x")

	if job.ID == "" {
		t.Error("expected non-empty job ID")
	}
	snap := job.Snapshot()
	if snap.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, snap.Status)
	}
	if snap.Persona != "Planner" || snap.Task != "Plan trip" {
		t.Errorf("unexpected persona/task: %q / %q", snap.Persona, snap.Task)
	}
	if snap.Report != nil {
		t.Error("expected no report on a fresh job")
	}
}

func TestNewJob_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		job := NewJob("p", "t", nil, nil, "")
		if seen[job.ID] {
			t.Fatalf("duplicate job ID %q", job.ID)
		}
		seen[job.ID] = true
	}
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob("p", "t", nil, nil, "")

	before := job.Snapshot().UpdatedAt
	time.Sleep(time.Millisecond)
	job.SetStatus(StatusProcessing)

	snap := job.Snapshot()
	if snap.Status != StatusProcessing {
		t.Errorf("expected status %q, got %q", StatusProcessing, snap.Status)
	}
	if !snap.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance")
	}

	report := &docmodel.CollectionReport{}
	job.Complete(report)
	snap = job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, snap.Status)
	}
	if snap.Report != report {
		t.Error("expected completed report in snapshot")
	}
	if snap.Error != "" {
		t.Errorf("expected empty error, got %q", snap.Error)
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("p", "t", nil, nil, "")
	job.Fail(errors.New("queue exploded"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if snap.Error != "queue exploded" {
		t.Errorf("unexpected error message %q", snap.Error)
	}
}

func TestJob_SnapshotDocumentsNeverNil(t *testing.T) {
	job := NewJob("p", "t", nil, nil, "")
	if job.Snapshot().Documents == nil {
		t.Error("expected non-nil documents slice in snapshot")
	}
}

func TestStore_PutGet(t *testing.T) {
	store := NewStore(time.Hour)
	job := NewJob("p", "t", nil, nil, "")
	store.Put(job)

	if got := store.Get(job.ID); got != job {
		t.Errorf("expected stored job back, got %v", got)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestStore_TTLCleanup(t *testing.T) {
	store := NewStore(50 * time.Millisecond)

	expired := NewJob("p", "t", nil, nil, "")
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := NewJob("p", "t", nil, nil, "")
	store.Put(fresh)

	store.Cleanup()

	if store.Get(expired.ID) != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestStore_CleanupEmpty(t *testing.T) {
	store := NewStore(time.Hour)
	store.Cleanup()
}
