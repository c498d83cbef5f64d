package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rulekit/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func TestInterestingFilter(t *testing.T) {
	w := New(t.TempDir(), time.Millisecond, testLogger())

	relevant := []string{"package.json", "go.mod", "sub/dir/Cargo.toml", "pyproject.toml"}
	for _, name := range relevant {
		if !w.interesting(name) {
			t.Errorf("%s should be watched", name)
		}
	}
	irrelevant := []string{"main.go", "src/app.py", "README.md", "package.json.bak"}
	for _, name := range irrelevant {
		if w.interesting(name) {
			t.Errorf("%s should be ignored", name)
		}
	}
}

func TestDebouncedBatching(t *testing.T) {
	w := New(t.TempDir(), 30*time.Millisecond, testLogger())

	var mu sync.Mutex
	var batches [][]string
	handler := func(changed []string) {
		mu.Lock()
		batches = append(batches, changed)
		mu.Unlock()
	}

	// Three rapid changes to two files collapse into one batch.
	w.record("/p/go.mod", handler)
	w.record("/p/go.sum", handler)
	w.record("/p/go.mod", handler)

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if len(batches[0]) != 2 {
		t.Errorf("batch = %v, want both files once", batches[0])
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	w := New(root, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func([]string) {})
	}()

	// Give the watcher a moment to start, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRunSeesManifestWrite(t *testing.T) {
	root := t.TempDir()
	w := New(root, 20*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan []string, 1)
	go func() {
		_ = w.Run(ctx, func(batch []string) {
			select {
			case changed <- batch:
			default:
			}
		})
	}()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "package.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-changed:
		if len(batch) == 0 || filepath.Base(batch[0]) != "package.json" {
			t.Errorf("batch = %v", batch)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("write to package.json was not observed")
	}
}
