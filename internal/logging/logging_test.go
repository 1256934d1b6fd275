package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetState clears package state directly rather than through Init(""),
// which would create a "logs" directory relative to the test's working
// directory.
func resetState() {
	mu.Lock()
	logger = nil
	cacheDir = ""
	mu.Unlock()
}

func TestInitWritesJSONLogLines(t *testing.T) {
	dir := t.TempDir()
	Init(dir)
	defer resetState()

	Info("hello world", "key", "value")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "git-ai.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Errorf("log should contain message, got: %s", content)
	}
	if !strings.Contains(content, `"key":"value"`) {
		t.Errorf("log should contain structured field, got: %s", content)
	}
}

func TestEmitFallsBackToDebugLogWithoutInit(t *testing.T) {
	dir := t.TempDir()
	defer resetState()
	resetState()
	cacheDir = dir // simulate a cacheDir known without a successfully opened file logger

	Warn("fallback message")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "git-ai.log"))
	if err != nil {
		t.Fatalf("reading fallback log file: %v", err)
	}
	if !strings.Contains(string(data), "fallback message") {
		t.Errorf("fallback log should contain message, got: %s", string(data))
	}
}
