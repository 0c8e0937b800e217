// Package helpers provides shared test constructors.
package helpers

import (
	"testing"

	"github.com/jchen2215/promptforge/store"
)

func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func NewTestFileStore(t *testing.T) *store.FileStore {
	t.Helper()

	s, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}

	return s
}
