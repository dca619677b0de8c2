package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/vmweaver/vmweaver/pkg/telemetry"
)

// WatchLogLevel watches the config file and applies log-level changes to
// the given logger without a restart. It returns once the watcher is
// installed; watching stops when ctx is cancelled. Reload errors are
// logged and the previous level stays in effect.
func WatchLogLevel(ctx context.Context, path string, logger *telemetry.Logger) error {
	if path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return err
	}

	log := logger.NewComponentLogger("config")
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					log.WithError(err).Warn("config reload failed, keeping current log level")
					continue
				}
				logger.SetLevel(cfg.Logging.Level)
				log.Infof("log level set to %s", cfg.Logging.Level)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("config watcher error")
			}
		}
	}()

	return nil
}
