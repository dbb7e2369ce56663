package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

// ConfigWatcher reloads the config file when it changes and applies the
// settings that can change without a restart. Today that is the log level.
type ConfigWatcher struct {
	log      *logger.Logger
	path     string
	debounce time.Duration
	onReload func(Config)
}

func NewConfigWatcher(log *logger.Logger, path string, onReload func(Config)) *ConfigWatcher {
	return &ConfigWatcher{
		log:      log.With("component", "ConfigWatcher"),
		path:     filepath.Clean(path),
		debounce: 250 * time.Millisecond,
		onReload: onReload,
	}
}

// Run watches until ctx is done. The parent directory is watched so editors
// that replace the file on save are still seen.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("config watcher: watch %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Info("watching config", "path", w.path)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watcher error", "error", err)
		case <-timerCh:
			timerCh = nil
			w.reload()
		}
	}
}

func (w *ConfigWatcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.log.Warn("config reload failed, keeping current settings", "error", err)
		return
	}
	if err := w.log.SetLevel(cfg.Log.Level); err != nil {
		w.log.Warn("config reload: bad log level", "level", cfg.Log.Level, "error", err)
	} else {
		w.log.Info("config reloaded", "log_level", cfg.Log.Level)
	}
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
