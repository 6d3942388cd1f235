package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewInvalidLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "chatty"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	log, closer, err := New(Options{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info().Str("guild", "42").Msg("joined")
	log.Debug().Msg("filtered")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"guild":"42"`) || !strings.Contains(out, `"message":"joined"`) {
		t.Errorf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "filtered") {
		t.Error("debug line should be filtered at info level")
	}
}
