package persist

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const externalEditDebounce = 200 * time.Millisecond

// WatchExternal watches the snapshot file and reports writes whose content
// does not match the last snapshot written by this process. Such edits are
// not loaded: the in-memory ledger stays authoritative and the next save
// overwrites them. known returns the digest of our last write; onExternal
// may be nil.
func WatchExternal(ctx context.Context, path string, known func() string, logger *slog.Logger, onExternal func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: atomic saves replace the file, which would drop
	// a watch placed on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	logger.Info("persist: watching snapshot", slog.String("path", path))

	var timer *time.Timer
	var timerCh <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timerCh:
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				continue
			}
			if sum := digest(data); sum != known() {
				logger.Warn("persist: snapshot edited outside the service; it will be overwritten on the next save",
					slog.String("path", path))
				if onExternal != nil {
					onExternal()
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(externalEditDebounce)
				timerCh = timer.C
			} else {
				timer.Reset(externalEditDebounce)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("persist: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
