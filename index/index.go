// Package index keeps the denormalized per-session summary list used for
// fast listing. It is a derived cache of the session store, persisted as a
// single JSON file.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jchen2215/promptforge/domain"
)

// Index is the metadata index. A missing, empty, or malformed backing file is
// treated as an empty index rather than an error.
type Index struct {
	mu      sync.RWMutex
	path    string
	entries map[string]domain.SessionMeta
}

// New loads the index at path, creating its directory if needed.
func New(path string) (*Index, error) {
	idx := &Index{
		path:    path,
		entries: make(map[string]domain.SessionMeta),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create index dir: %v", domain.ErrStorageUnavailable, err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read index: %v", domain.ErrStorageUnavailable, err)
	}

	var entries []domain.SessionMeta
	if err := json.Unmarshal(data, &entries); err != nil {
		// Unreadable index: start over, the store remains the source of truth.
		return idx, nil
	}
	for _, e := range entries {
		idx.entries[e.ID] = e
	}
	return idx, nil
}

// Upsert updates the entry for a session or inserts a new one. An empty title
// preserves the existing title; new entries without a title get the default.
func (x *Index) Upsert(sessionID, title, preview string, updatedAt time.Time) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry, ok := x.entries[sessionID]
	if !ok {
		entry = domain.SessionMeta{ID: sessionID, Title: domain.DefaultSessionTitle}
	}
	if title != "" {
		entry.Title = title
	}
	entry.Preview = preview
	entry.UpdatedAt = updatedAt

	x.entries[sessionID] = entry
	return x.saveLocked()
}

// List returns all entries sorted by UpdatedAt descending.
func (x *Index) List() []domain.SessionMeta {
	x.mu.RLock()
	defer x.mu.RUnlock()

	entries := make([]domain.SessionMeta, 0, len(x.entries))
	for _, e := range x.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries
}

// Remove drops a session's entry, reporting whether it existed.
func (x *Index) Remove(sessionID string) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.entries[sessionID]; !ok {
		return false, nil
	}
	delete(x.entries, sessionID)
	return true, x.saveLocked()
}

func (x *Index) saveLocked() error {
	entries := make([]domain.SessionMeta, 0, len(x.entries))
	for _, e := range x.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode index: %v", domain.ErrStorageUnavailable, err)
	}

	tmp := x.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write index: %v", domain.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, x.path); err != nil {
		return fmt.Errorf("%w: replace index: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
