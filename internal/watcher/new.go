package watcher

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

const defaultSettle = 500 * time.Millisecond

// New watches inboxDir, creating it if needed. At most maxConcurrent
// handlers run at once.
func New(inboxDir string, handler EventHandler, log logger.Logger, maxConcurrent int) (Watcher, error) {
	if err := os.MkdirAll(inboxDir, 0755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(inboxDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	return &implWatcher{
		inboxDir:      inboxDir,
		handler:       handler,
		logger:        log,
		watcher:       fsw,
		maxConcurrent: maxConcurrent,
		sem:           newSemaphore(maxConcurrent),
		settle:        defaultSettle,
	}, nil
}
