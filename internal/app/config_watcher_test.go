package app

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

func TestConfigWatcherReloadsLogLevel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := writeConfig(t, "log:\n  level: info\n")
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	reloaded := make(chan Config, 4)
	w := NewConfigWatcher(log, path, func(cfg Config) { reloaded <- cfg })
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before the write.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Log.Level != "warn" {
			t.Fatalf("reloaded level = %q", cfg.Log.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no reload after config write")
	}
	if log.Level() != "warn" {
		t.Fatalf("logger level = %q, want warn", log.Level())
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}
