// Package export writes review runs as compressed, self-describing bundles
// that can be archived or loaded back for comparison.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"rulekit/internal/aggregate"
	"rulekit/internal/detect"
	"rulekit/internal/logging"
	"rulekit/internal/rules"
	"rulekit/internal/version"
)

// Bundle is the complete serialized output of one run.
type Bundle struct {
	Metadata Metadata              `json:"metadata"`
	Matches  []detect.Match        `json:"matches,omitempty"`
	Resolved *rules.ResolvedConfig `json:"resolved,omitempty"`
	Report   *aggregate.Report     `json:"report,omitempty"`
}

// Metadata identifies the project and tool version a bundle came from.
type Metadata struct {
	Project   string `json:"project"`
	Generated string `json:"generated"`
	Version   string `json:"version"`
	RunID     string `json:"runId,omitempty"`
}

// Exporter writes bundles for one project root.
type Exporter struct {
	projectRoot string
	logger      *logging.Logger
}

// NewExporter creates an exporter.
func NewExporter(projectRoot string, logger *logging.Logger) *Exporter {
	return &Exporter{projectRoot: projectRoot, logger: logger}
}

// NewBundle assembles a bundle with metadata filled in.
func (e *Exporter) NewBundle(runID string, matches []detect.Match, resolved *rules.ResolvedConfig, report *aggregate.Report) *Bundle {
	return &Bundle{
		Metadata: Metadata{
			Project:   filepath.Base(e.projectRoot),
			Generated: time.Now().UTC().Format(time.RFC3339),
			Version:   version.Version,
			RunID:     runID,
		},
		Matches:  matches,
		Resolved: resolved,
		Report:   report,
	}
}

// Write serializes the bundle as zstd-compressed JSON. The file appears
// atomically via a temp-file rename.
func (e *Exporter) Write(path string, bundle *Bundle) error {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if err := compressTo(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to compress bundle: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	e.logger.Info("Wrote export bundle", map[string]interface{}{
		"path":       path,
		"rawBytes":   len(data),
		"compressed": true,
	})
	return nil
}

func compressTo(w io.Writer, data []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadBundle loads a bundle written by Write.
func ReadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed bundle: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress bundle: %w", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return &bundle, nil
}
