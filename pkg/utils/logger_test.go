package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLogger(t *testing.T) {
	t.Run("debug mode returns development logger", func(t *testing.T) {
		logger, err := NewLogger(true)
		if err != nil {
			t.Fatalf("NewLogger(true) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(true) returned nil logger")
		}
		_ = logger.Sync()
	})

	t.Run("production mode returns production logger", func(t *testing.T) {
		logger, err := NewLogger(false)
		if err != nil {
			t.Fatalf("NewLogger(false) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(false) returned nil logger")
		}
		_ = logger.Sync()
	})
}

func TestNewFileLogger_WritesDebugToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, closeFn, err := NewFileLogger(false, dir)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	logger.Debug("debug line for file")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, LogFileName(time.Now())))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "debug line for file") {
		t.Errorf("log file missing debug line: %q", string(data))
	}
}

func TestLogFileName(t *testing.T) {
	got := LogFileName(time.Date(2026, 1, 14, 15, 30, 0, 0, time.UTC))
	if got != "app_20260114.log" {
		t.Errorf("LogFileName = %q", got)
	}
}
