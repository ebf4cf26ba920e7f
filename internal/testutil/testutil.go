// Package testutil provides shared test helpers for databases, asset
// directories and caller contexts.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/webcraft/internal/identity"
	"github.com/starford/webcraft/internal/storage"
	"github.com/starford/webcraft/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "webcraft-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestAssets creates a temporary asset directory with a storage.Provider.
func TestAssets(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { fs.Close() })
	return dir, fs
}

// As returns a background context acting as principal.
func As(principal string) context.Context {
	return identity.WithPrincipal(context.Background(), principal)
}
