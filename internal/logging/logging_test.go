package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: WarnLevel, Output: &buf})

	logger.Debug("debug msg", nil)
	logger.Info("info msg", nil)
	logger.Warn("warn msg", nil)
	logger.Error("error msg", nil)

	out := buf.String()
	if strings.Contains(out, "debug msg") || strings.Contains(out, "info msg") {
		t.Errorf("messages below warn level should be filtered, got: %s", out)
	}
	if !strings.Contains(out, "warn msg") || !strings.Contains(out, "error msg") {
		t.Errorf("warn and error messages should be logged, got: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("hello", map[string]interface{}{"key": "value"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	fields, ok := entry["fields"].(map[string]interface{})
	if !ok || fields["key"] != "value" {
		t.Errorf("fields = %v, want key=value", entry["fields"])
	}
}

func TestHumanFieldsStableOrder(t *testing.T) {
	fields := map[string]interface{}{"zebra": 1, "alpha": 2, "mid": 3}

	var first string
	for i := 0; i < 5; i++ {
		var buf bytes.Buffer
		logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})
		logger.Info("msg", fields)
		if i == 0 {
			first = buf.String()
			if !strings.Contains(first, "alpha=2, mid=3, zebra=1") {
				t.Fatalf("fields not sorted: %s", first)
			}
			continue
		}
		if buf.String() != first {
			t.Fatalf("human output not stable across runs")
		}
	}
}

func TestDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Output: &buf})

	logger.Debug("hidden", nil)
	logger.Info("shown", nil)

	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug should be filtered at default level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("info should be logged at default level")
	}
}
