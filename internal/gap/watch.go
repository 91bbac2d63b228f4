package gap

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce batches the event burst a publish run produces into one
// rescan.
const defaultDebounce = 500 * time.Millisecond

// Watch blocks, rescanning the corpus whenever files under dir change.
// Events are debounced; each settled burst triggers one Scan whose result is
// passed to onScan. Returns when the context is cancelled or the watcher
// breaks.
func (d *Detector) Watch(ctx context.Context, dir string, debounce time.Duration, onScan func([]Concept, error)) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("gap: creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("gap: watching %s: %w", dir, err)
	}
	d.logger.Info("watching for corpus changes", "dir", dir, "debounce", debounce)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			d.logger.Debug("corpus changed", "file", event.Name, "op", event.Op)
			if pending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer.Reset(debounce)
			pending = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("watch error", "error", err)

		case <-timer.C:
			pending = false
			onScan(d.Scan(ctx))
		}
	}
}
