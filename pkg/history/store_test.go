package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(&Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndQuery(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first := NewRun("a.prose")
	first.Valid = true
	first.SourceHash = HashSource(`session "x"`)
	first.Duration = 12 * time.Millisecond

	second := NewRun("b.prose")
	second.Valid = false
	second.ErrorCount = 2
	second.WarningCount = 1
	second.CheckedAt = first.CheckedAt.Add(time.Minute)

	for _, run := range []*Run{first, second} {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent = %d runs, want 2", len(recent))
	}
	if recent[0].File != "b.prose" {
		t.Errorf("newest run = %q, want b.prose", recent[0].File)
	}
	if recent[0].ErrorCount != 2 || recent[0].WarningCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", recent[0].ErrorCount, recent[0].WarningCount)
	}
	if recent[1].Duration != 12*time.Millisecond {
		t.Errorf("duration = %v, want 12ms", recent[1].Duration)
	}

	byFile, err := store.ForFile(ctx, "a.prose", 10)
	if err != nil {
		t.Fatalf("ForFile: %v", err)
	}
	if len(byFile) != 1 || !byFile[0].Valid {
		t.Errorf("byFile = %+v", byFile)
	}
	if byFile[0].SourceHash != HashSource(`session "x"`) {
		t.Errorf("SourceHash = %q, want hash of source", byFile[0].SourceHash)
	}
}

func TestStore_Prune(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	old := NewRun("old.prose")
	old.CheckedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh := NewRun("fresh.prose")

	if err := store.Record(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Prune(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	remaining, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].File != "fresh.prose" {
		t.Errorf("remaining = %+v", remaining)
	}
}
