package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jpalmerr/linkmonitor/internal/atomicfile"
)

// FileStore is a [Store] backed by a pretty-printed JSON file.
//
// Writes go to a temp file that is renamed over the target path, so a reader
// in another process sees either the previous list or the new one. FileStore
// serialises its own writers but provides no locking against other
// processes writing the same file.
type FileStore struct {
	hub

	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a [FileStore] for path. The file is not touched until
// the first Load or Save.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		hub:    newHub(),
		path:   path,
		logger: logger,
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Initialized reports whether the backing file exists.
func (s *FileStore) Initialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the backing file.
//
// A missing, empty or unparseable file yields an empty list; parse failures
// are logged at WARN and never returned.
func (s *FileStore) Load() []Target {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read target list", "path", s.path, "error", err)
		}
		return []Target{}
	}

	if len(data) == 0 {
		return []Target{}
	}

	var targets []Target
	if err := json.Unmarshal(data, &targets); err != nil {
		s.logger.Warn("target list is corrupt, treating as empty", "path", s.path, "error", err)
		return []Target{}
	}
	if targets == nil {
		return []Target{}
	}
	return targets
}

// Save atomically replaces the backing file and notifies subscribers.
func (s *FileStore) Save(targets []Target) error {
	if targets == nil {
		targets = []Target{}
	}

	s.mu.Lock()
	err := s.write(targets)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(targets)
	return nil
}

// Update implements [Store]. A nil result from fn skips the write.
func (s *FileStore) Update(fn func([]Target) []Target) ([]Target, error) {
	s.mu.Lock()
	targets := fn(s.Load())
	if targets == nil {
		s.mu.Unlock()
		return nil, nil
	}
	err := s.write(targets)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.publish(targets)
	return targets, nil
}

// write encodes targets to the backing file. Callers hold mu.
func (s *FileStore) write(targets []Target) error {
	data, err := json.MarshalIndent(targets, "", "  ")
	if err != nil {
		return fmt.Errorf("encode targets: %w", err)
	}
	data = append(data, '\n')

	if err := atomicfile.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}
	return nil
}
