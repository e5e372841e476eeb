package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/teachsync/internal/model"
)

// DefaultWatchDebounce collapses bursts of file events into one reload.
const DefaultWatchDebounce = 300 * time.Millisecond

// Watch calls fn with a fresh snapshot, or the load error, each time the
// document file is written or replaced. It blocks until ctx is done.
//
// The document's directory is watched rather than the file itself so
// atomic replacements (rename over the old file) are seen.
func (s *Store) Watch(ctx context.Context, fn func(*Snapshot, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return model.Wrap(model.CodeInternal, "watch", err, "create watcher")
	}
	defer watcher.Close()

	target := filepath.Clean(s.cfg.DocumentPath)
	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		return model.Wrap(model.CodePersistence, "watch", err, "watch %s", dir)
	}
	s.log.Info().Str("path", target).Msg("watching document")

	var (
		timer *time.Timer
		fire  <-chan time.Time
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

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("document changed")
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			sn, err := s.Reload(ctx)
			fn(sn, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Error().Err(err).Msg("watcher error")
		}
	}
}
