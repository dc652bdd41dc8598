package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"ddogreen/internal/fsutil"
	"ddogreen/internal/logging"
)

// ErrNoStatus is returned by Load when no status file exists
var ErrNoStatus = errors.New("no status file")

// Store handles status persistence
type Store struct {
	filePath string
	logger   *logging.Logger
}

// NewStore creates a store writing to filePath; an empty path disables persistence
func NewStore(filePath string, logger *logging.Logger) *Store {
	return &Store{
		filePath: filePath,
		logger:   logger,
	}
}

// Save writes the document atomically
func (s *Store) Save(doc Document) error {
	if s.filePath == "" {
		return nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	if err := fsutil.AtomicWriteFile(s.filePath, data, fsutil.DefaultFilePermissions, s.logger); err != nil {
		return err
	}

	s.logger.Debug("status.saved", "Status saved", map[string]interface{}{
		"path":   s.filePath,
		"active": doc.Active,
	})
	return nil
}

// Load reads the document written by a running agent
func (s *Store) Load() (Document, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, fmt.Errorf("%w at %s", ErrNoStatus, s.filePath)
		}
		return Document{}, fmt.Errorf("failed to read status file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return doc, nil
}

// MarkStopped rewrites the stored document with running=false
func (s *Store) MarkStopped() error {
	if s.filePath == "" {
		return nil
	}
	doc, err := s.Load()
	if err != nil {
		return err
	}
	doc.Running = false
	return s.Save(doc)
}

// Path returns the status file location
func (s *Store) Path() string {
	return s.filePath
}
