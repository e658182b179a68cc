package watcher

import "context"

// Watcher routes files dropped into the inbox directory.
type Watcher interface {
	// Start blocks until ctx is cancelled, then waits for in-flight handlers.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one newly created, routable file.
type EventHandler func(ctx context.Context, filePath string) error
