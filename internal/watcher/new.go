package watcher

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/lgdlong/ttt/internal/logger"
)

// New creates a Watcher over inputDir. inputExt filters which created
// files are handed to the handler; maxConcurrent bounds in-flight
// handler calls, matching the batch pipeline's worker bound.
func New(inputDir, inputExt string, handler EventHandler, log logger.Logger, maxConcurrent int) (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := w.Add(inputDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}

	return &implWatcher{
		inputDir:  inputDir,
		inputExt:  inputExt,
		handler:   handler,
		logger:    log,
		watcher:   w,
		semaphore: make(chan struct{}, maxConcurrent),
	}, nil
}
