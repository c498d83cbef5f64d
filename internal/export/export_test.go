package export

import (
	"os"
	"path/filepath"
	"testing"

	"rulekit/internal/aggregate"
	"rulekit/internal/logging"
	"rulekit/internal/review"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func TestBundleRoundTrip(t *testing.T) {
	root := t.TempDir()
	e := NewExporter(root, testLogger())

	report := &aggregate.Report{
		Findings: []review.Finding{
			{Category: "structure", ID: "readme-missing", Severity: review.SeverityHigh, Title: "README is missing"},
		},
		Summary: aggregate.Summary{High: 1, Passed: 3, Failed: 1},
	}
	bundle := e.NewBundle("run-1", nil, nil, report)

	path := filepath.Join(root, "out", "bundle.json.zst")
	if err := e.Write(path, bundle); err != nil {
		t.Fatal(err)
	}

	loaded, err := ReadBundle(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Metadata.Project != filepath.Base(root) {
		t.Errorf("project = %q", loaded.Metadata.Project)
	}
	if loaded.Metadata.RunID != "run-1" {
		t.Errorf("run id = %q", loaded.Metadata.RunID)
	}
	if len(loaded.Report.Findings) != 1 || loaded.Report.Findings[0].ID != "readme-missing" {
		t.Errorf("report lost in round trip: %+v", loaded.Report)
	}
}

func TestBundleIsCompressed(t *testing.T) {
	root := t.TempDir()
	e := NewExporter(root, testLogger())

	// Repetitive findings compress well; the file should be much smaller
	// than the raw JSON.
	var findings []review.Finding
	for i := 0; i < 200; i++ {
		findings = append(findings, review.Finding{
			Category: "docs",
			ID:       "readme-too-thin",
			Severity: review.SeverityLow,
			Title:    "README lacks enough content to be useful",
		})
	}
	bundle := e.NewBundle("", nil, nil, &aggregate.Report{Findings: findings})

	path := filepath.Join(root, "bundle.json.zst")
	if err := e.Write(path, bundle); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() > 10*1024 {
		t.Errorf("bundle is %d bytes, expected heavy compression", info.Size())
	}

	// Not plain JSON on disk.
	head := make([]byte, 1)
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Read(head); err != nil {
		t.Fatal(err)
	}
	if head[0] == '{' {
		t.Error("bundle is stored uncompressed")
	}
}

func TestReadBundleRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.zst")
	if err := os.WriteFile(path, []byte("not a bundle"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBundle(path); err == nil {
		t.Error("garbage input should fail to load")
	}
}
