package metrics

import (
	"encoding/json"
	"fmt"
	"sync"

	"ddogreen/internal/fsutil"
	"ddogreen/internal/logging"
)

// Writer appends transitions to a JSONL history file
type Writer struct {
	mu     sync.Mutex
	path   string
	logger *logging.Logger
}

// NewWriter creates a history writer; an empty path disables writing
func NewWriter(path string, logger *logging.Logger) *Writer {
	return &Writer{
		path:   path,
		logger: logger,
	}
}

// Write appends one transition
func (w *Writer) Write(t Transition) error {
	if w.path == "" {
		return nil
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transition: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := fsutil.AppendLine(w.path, data); err != nil {
		w.logger.Warn("metrics.history.write_failed", "Failed to append transition history", map[string]interface{}{
			"path":  w.path,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Path returns the history file location
func (w *Writer) Path() string {
	return w.path
}
