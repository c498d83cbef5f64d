package fix

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// ArtifactWriter persists fixer output. Writes must be all-or-nothing so a
// cancelled or crashed run never leaves a half-written artifact.
type ArtifactWriter interface {
	Write(path string, data []byte) error
}

// atomicWriter writes through a temp file in the same directory and renames
// into place after fsync.
type atomicWriter struct{}

// NewAtomicWriter returns the default artifact writer.
func NewAtomicWriter() ArtifactWriter {
	return atomicWriter{}
}

func (atomicWriter) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer d.Close()
	return d.Sync()
}

// DryRunWriter records intended writes without touching the filesystem.
// Safe for concurrent use: the orchestrator's workers write through it in
// parallel.
type DryRunWriter struct {
	mu    sync.Mutex
	paths []string
}

// NewDryRunWriter returns a writer that performs no writes.
func NewDryRunWriter() *DryRunWriter {
	return &DryRunWriter{}
}

func (w *DryRunWriter) Write(path string, data []byte) error {
	w.mu.Lock()
	w.paths = append(w.paths, path)
	w.mu.Unlock()
	return nil
}

// Paths returns the artifacts a real run would have written.
func (w *DryRunWriter) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}
