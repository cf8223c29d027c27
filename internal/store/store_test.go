package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/argobridge/internal/capability"
	"github.com/valpere/argobridge/internal/installer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func report(id string, started time.Time, results ...installer.PairResult) *installer.Report {
	return &installer.Report{
		RunID:      id,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Results:    results,
	}
}

func result(from, to string, status installer.Status, detail string) installer.PairResult {
	return installer.PairResult{Pair: capability.Edge{From: from, To: to}, Status: status, Detail: detail}
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)
	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_SaveInstallRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	r := report("run-1", started,
		result("en", "fr", installer.StatusInstalled, ""),
		result("en", "xx", installer.StatusNotFound, "package not found"),
		result("fr", "en", installer.StatusError, "disk full"),
	)
	if err := s.SaveInstallRun(ctx, r); err != nil {
		t.Fatalf("SaveInstallRun failed: %v", err)
	}

	runs, err := s.ListInstallRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListInstallRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != "run-1" || got.Installed != 1 || got.NotFound != 1 || got.Failed != 1 {
		t.Errorf("unexpected run summary: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}

	results, err := s.InstallResults(ctx, "run-1")
	if err != nil {
		t.Fatalf("InstallResults failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range r.Results {
		if results[i] != want {
			t.Errorf("result[%d] = %+v, want %+v", i, results[i], want)
		}
	}
}

func TestStore_SaveInstallRun_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := report("run-1", time.Now(), result("en", "fr", installer.StatusInstalled, ""))
	if err := s.SaveInstallRun(ctx, r); err != nil {
		t.Fatalf("SaveInstallRun failed: %v", err)
	}
	if err := s.SaveInstallRun(ctx, r); err == nil {
		t.Error("expected error for duplicate run id")
	}

	results, err := s.InstallResults(ctx, "run-1")
	if err != nil {
		t.Fatalf("InstallResults failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("failed save must not leave partial results, got %d", len(results))
	}
}

func TestStore_ListInstallRuns_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := s.SaveInstallRun(ctx, report(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveInstallRun(%s) failed: %v", id, err)
		}
	}

	runs, err := s.ListInstallRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListInstallRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("expected newest first [c b], got [%s %s]", runs[0].ID, runs[1].ID)
	}
}

func TestStore_LastInstalled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := report("first", base,
		result("en", "fr", installer.StatusInstalled, ""),
		result("en", "de", installer.StatusInstalled, ""),
		result("en", "ja", installer.StatusError, "timeout"),
	)
	second := report("second", base.Add(time.Hour),
		result("en", "de", installer.StatusError, "checksum mismatch"),
		result("en", "ja", installer.StatusInstalled, ""),
	)
	for _, r := range []*installer.Report{first, second} {
		if err := s.SaveInstallRun(ctx, r); err != nil {
			t.Fatalf("SaveInstallRun(%s) failed: %v", r.RunID, err)
		}
	}

	pairs, err := s.LastInstalled(ctx)
	if err != nil {
		t.Fatalf("LastInstalled failed: %v", err)
	}
	want := []capability.Edge{{From: "en", To: "fr"}, {From: "en", To: "ja"}}
	if len(pairs) != len(want) {
		t.Fatalf("LastInstalled = %v, want %v", pairs, want)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair[%d] = %v, want %v", i, pairs[i], want[i])
		}
	}
}

func TestStore_ImplementsLedger(t *testing.T) {
	var _ installer.Ledger = newTestStore(t)
}
