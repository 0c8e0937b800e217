package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jchen2215/promptforge/domain"
)

// FileStore persists each session's history as one JSON file under dir, named
// by the sanitized session id.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates the sessions directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create sessions dir: %v", domain.ErrStorageUnavailable, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) sessionPath(sessionID string) (string, error) {
	safe, err := SanitizeSessionID(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, safe+".json"), nil
}

// GetHistory returns the stored turn sequence; an unknown session yields an
// empty slice.
func (s *FileStore) GetHistory(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	path, err := s.sessionPath(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read session file: %v", domain.ErrStorageUnavailable, err)
	}

	var turns []domain.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("%w: stored history must be a list: %v", domain.ErrCorruptState, err)
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	return turns, nil
}

// SaveHistory replaces the session file with the given turn sequence. The
// write goes through a temp file and rename so readers never see a partial
// file.
func (s *FileStore) SaveHistory(ctx context.Context, sessionID, userID string, turns []domain.Turn) error {
	path, err := s.sessionPath(sessionID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode history: %v", domain.ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write session file: %v", domain.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replace session file: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// DeleteHistory removes the session file, reporting whether it existed.
func (s *FileStore) DeleteHistory(ctx context.Context, sessionID string) (bool, error) {
	path, err := s.sessionPath(sessionID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: delete session file: %v", domain.ErrStorageUnavailable, err)
	}
	return true, nil
}

// SessionExists reports whether a session file is present.
func (s *FileStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	path, err := s.sessionPath(sessionID)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat session file: %v", domain.ErrStorageUnavailable, err)
	}
	return true, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
