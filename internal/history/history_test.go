package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/texforge/texforge/internal/pipeline"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(DefaultJournalOptions(filepath.Join(t.TempDir(), "history.db")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	outcomes := []pipeline.Outcome{
		{Path: "/x/wall_d.png", Format: "BC1_UNORM", Status: pipeline.StatusConverted, Message: "Converted wall_d.png"},
		{Path: "/x/wall_n.png", Format: "BC5_UNORM", Status: pipeline.StatusSkipped, Message: "Skipping wall_n.png"},
		{Path: "/x/bad.png", Format: "BC7_UNORM", Status: pipeline.StatusFailed, Message: "Failed to convert bad.png"},
	}
	for _, o := range outcomes {
		if err := j.Record(ctx, o); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].File != "/x/bad.png" || entries[0].Status != "failed" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[2].Format != "BC1_UNORM" {
		t.Errorf("entries[2].Format = %q", entries[2].Format)
	}
}

func TestRecentLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := j.Record(ctx, pipeline.Outcome{Path: "f.png", Status: pipeline.StatusConverted}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("limit ignored: got %d entries", len(entries))
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(DefaultJournalOptions("")); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := Open(nil); err == nil {
		t.Error("expected error for nil options")
	}
}
