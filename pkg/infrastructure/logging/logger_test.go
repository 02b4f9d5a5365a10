package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{"defaults", Config{}, false},
		{"json debug", Config{Level: "debug", Encoding: "json"}, false},
		{"console warn", Config{Level: "warn", Encoding: "console", DisableCaller: true}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad encoding", Config{Encoding: "xml"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.cfg)
			if tc.expectError {
				if err == nil {
					t.Fatal("Expected error, but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if logger == nil {
				t.Fatal("Expected a logger")
			}
		})
	}
}

func TestNew_LevelFilteringToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procure.log")

	logger, err := New(Config{Level: "warn", Encoding: "json", File: path})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "hidden") {
		t.Error("Expected info entry to be filtered at warn level")
	}
	if !strings.Contains(content, `"msg":"shown"`) {
		t.Errorf("Expected warn entry in json output, got %s", content)
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error("discarded")
}
