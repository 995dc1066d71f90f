package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "logs", "archived.log")

	logger, err := New(logPath, "work")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("archive opened")
	_ = logger.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["msg"] != "archive opened" || entry["profile"] != "work" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["pid"]; !ok {
		t.Error("entry has no pid field")
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("entry has no ts field")
	}
}

func TestNewConsoleLevel(t *testing.T) {
	if NewConsole(false).Core().Enabled(zapcore.DebugLevel) {
		t.Error("quiet console logger should not enable debug")
	}
	if !NewConsole(true).Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose console logger should enable debug")
	}
}
