package watcher

import "context"

// Watcher monitors the input directory for new transcript files.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one newly created transcript file.
type EventHandler func(ctx context.Context, filePath string) error
