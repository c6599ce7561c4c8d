package zotero

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last write before reloading.
const DefaultDebounce = 500 * time.Millisecond

// WatchLibrary reloads b whenever its CSV export changes, until ctx is done.
// The parent directory is watched so that exports replaced by rename are
// picked up. onReload, if set, is called after each reload attempt.
func WatchLibrary(ctx context.Context, b *Bridge, debounce time.Duration, onReload func(error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path, err := filepath.Abs(b.lib.Path())
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Stop()
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				err := b.Reload()
				if err != nil {
					b.logger.Warn("library reload failed", "path", path, "error", err)
				} else {
					b.logger.Info("library reloaded", "path", path)
				}
				if onReload != nil {
					onReload(err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				b.logger.Warn("library watcher error", "error", err)
			}
		}
	}()
	return nil
}
