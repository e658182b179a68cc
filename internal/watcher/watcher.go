package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/router"
)

type implWatcher struct {
	inboxDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	sem           *semaphore
	// settle is how long to wait after CREATE before the file is handed off.
	settle time.Duration
	wg     sync.WaitGroup
}

func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inboxDir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !w.routable(event.Name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New file detected: %s", event.Name)
			if err := w.dispatch(ctx, event.Name); err != nil {
				w.wg.Wait()
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// dispatch waits for the file to settle and a free slot, then runs the
// handler in its own goroutine.
func (w *implWatcher) dispatch(ctx context.Context, path string) error {
	select {
	case <-time.After(w.settle):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := w.sem.acquire(ctx); err != nil {
		return err
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.sem.release()

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
	return nil
}

func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// routable skips hidden and partial files as well as anything the router
// cannot classify.
func (w *implWatcher) routable(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return router.Supported(path)
}
