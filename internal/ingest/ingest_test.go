package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/formfill/internal/async"
)

type recordQueue struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (q *recordQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordQueue) Shutdown(context.Context) {}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func fixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), "one")
	writeFile(t, filepath.Join(root, "b.PNG"), "two")
	writeFile(t, filepath.Join(root, "notes.md"), "skip")
	writeFile(t, filepath.Join(root, "sub", "c.heic"), "three")
	writeFile(t, filepath.Join(root, ".hidden", "d.jpg"), "four")
	writeFile(t, filepath.Join(root, "copy.jpeg"), "one")
	return root
}

func TestScanDirectory(t *testing.T) {
	root := fixtureTree(t)

	got, err := ScanDirectory(context.Background(), root, nil, true)
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	want := []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "b.PNG"),
		filepath.Join(root, "copy.jpeg"),
		filepath.Join(root, "sub", "c.heic"),
	}
	if len(got) != len(want) {
		t.Fatalf("ScanDirectory() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	all, err := ScanDirectory(context.Background(), root, nil, false)
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if len(all) != len(want)+1 {
		t.Errorf("with hidden: got %d files, want %d", len(all), len(want)+1)
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	if _, err := ScanDirectory(context.Background(), " ", nil, false); err == nil {
		t.Error("empty root: error = nil")
	}
	if _, err := ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), nil, false); err == nil {
		t.Error("missing root: error = nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ScanDirectory(ctx, t.TempDir(), nil, false); err == nil {
		t.Error("cancelled: error = nil")
	}
}

func TestIngestDirectoryDeduplicates(t *testing.T) {
	root := fixtureTree(t)
	q := &recordQueue{}
	ing := NewFSIngestor(q, nil)

	results, stats, err := ing.IngestDirectory(context.Background(), root, true)
	if err != nil {
		t.Fatalf("IngestDirectory() error = %v", err)
	}
	if stats.Matched != 4 || stats.Succeeded != 4 || stats.Deduplicated != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(results) != 4 {
		t.Errorf("got %d results, want 4", len(results))
	}
	if len(q.jobs) != 3 {
		t.Errorf("queued %d jobs, want 3", len(q.jobs))
	}

	// a second pass over unchanged files queues nothing
	_, stats, _ = ing.IngestDirectory(context.Background(), root, true)
	if stats.Deduplicated != 4 || len(q.jobs) != 3 {
		t.Errorf("second pass stats = %+v, jobs = %d", stats, len(q.jobs))
	}
}

func TestIngestPathForce(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.png")
	writeFile(t, path, "x")

	q := &recordQueue{}
	ing := NewFSIngestor(q, nil)
	ing.Force = true
	for i := 0; i < 2; i++ {
		if _, err := ing.IngestPath(context.Background(), path); err != nil {
			t.Fatalf("IngestPath() error = %v", err)
		}
	}
	if len(q.jobs) != 2 {
		t.Errorf("queued %d jobs, want 2", len(q.jobs))
	}

	if _, err := ing.IngestPath(context.Background(), filepath.Join(root, "a.pdf")); err == nil {
		t.Error("IngestPath(.pdf) error = nil")
	}
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "old.jpg")
	writeFile(t, existing, "old")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("StartWatcher() error = %v", err)
	}

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watcher event")
			return ""
		}
	}

	if p := next(); p != existing {
		t.Fatalf("initial event = %q, want %q", p, existing)
	}

	created := filepath.Join(root, "new.png")
	writeFile(t, filepath.Join(root, "ignored.txt"), "x")
	writeFile(t, created, "new")
	if p := next(); p != created {
		t.Fatalf("event = %q, want %q", p, created)
	}

	cancel()
	for range events {
	}
}

func TestStartWatcherNoRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Fatal("StartWatcher() error = nil")
	}
}
