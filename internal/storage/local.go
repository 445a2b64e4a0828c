package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmalmgren/repodeck/internal/logger"
)

const stateDir = ".repodeck"

// Local is a file-backed KV: one file per key inside a state directory.
type Local struct {
	dir string
	mu  sync.RWMutex
}

// NewLocal creates a Local store rooted at dir, creating the directory if
// needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// DefaultDir returns the per-user state directory.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, stateDir), nil
}

func (s *Local) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey keeps keys usable as file names.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, key)
}

func (s *Local) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.path(key)
	logger.LogFileOpen(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		logger.LogError("LOAD", path, err)
		return "", false, err
	}
	return string(data), true, nil
}

func (s *Local) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	logger.LogFileWrite(path)

	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		logger.LogError("SAVE", path, err)
		return err
	}
	return nil
}

func (s *Local) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogError("REMOVE", path, err)
		return err
	}
	return nil
}
