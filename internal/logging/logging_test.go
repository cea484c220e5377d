package logging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meikan/internal/logging"
)

func newFileLogger(t *testing.T, opts logging.Options) (*slog.Logger, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.log")
	opts.OutputPaths = []string{path}
	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return logger, path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestConsoleFormat(t *testing.T) {
	logger, path := newFileLogger(t, logging.Options{Format: "console"})
	logger = logging.NewComponentLogger(logger, "scheduler")

	logger.Info("run complete", logging.Int("rows", 12), logging.String("institution", "早稲田大学"))

	line := readLog(t, path)
	for _, fragment := range []string{"INFO", "scheduler: run complete", "rows=12", "institution=早稲田大学"} {
		if !strings.Contains(line, fragment) {
			t.Errorf("expected %q in %q", fragment, line)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	logger, path := newFileLogger(t, logging.Options{Format: "json"})

	logger.Warn("cache unreadable", logging.String(logging.FieldEventType, "cache_corrupt"))

	var record map[string]any
	if err := json.Unmarshal([]byte(readLog(t, path)), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "cache unreadable" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record[logging.FieldEventType] != "cache_corrupt" {
		t.Errorf("event_type = %v", record[logging.FieldEventType])
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, path := newFileLogger(t, logging.Options{Format: "console", Level: "warn"})

	logger.Info("suppressed")
	logger.Warn("kept")

	content := readLog(t, path)
	if strings.Contains(content, "suppressed") {
		t.Errorf("info record written at warn level: %q", content)
	}
	if !strings.Contains(content, "kept") {
		t.Errorf("warn record missing: %q", content)
	}
}

func TestUnknownFormatRejected(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger should report disabled at every level")
	}
	logger.Error("ignored", logging.Error(nil))
}

func TestComponentLoggerNilBase(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "api")
	if logger == nil {
		t.Fatal("expected a usable logger from a nil base")
	}
	logger.Info("ignored")
}
