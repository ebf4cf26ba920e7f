package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/webcraft/internal/checksum"
)

const tmpPrefix = ".webcraft-tmp-"

// FS implements Provider on a directory opened as an os.Root, so every
// operation is confined to it: "..", absolute paths and symlinks that
// leave the directory all fail.
type FS struct {
	dir  string
	root *os.Root
}

var _ Provider = (*FS)(nil)

// NewFS opens dir, which must already exist.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: open root: %w", err)
	}
	return &FS{dir: abs, root: root}, nil
}

// Dir returns the absolute directory the provider serves.
func (f *FS) Dir() string { return f.dir }

// Close releases the directory handle.
func (f *FS) Close() error { return f.root.Close() }

func clean(p string) string {
	if p == "" {
		return "."
	}
	return path.Clean(filepath.ToSlash(p))
}

// List walks dir and returns metadata for every file ending in ext.
// Temporary files left by Write are skipped.
func (f *FS) List(dir, ext string) ([]FileMeta, error) {
	fsys := f.root.FS()
	out := []FileMeta{}
	err := fs.WalkDir(fsys, clean(dir), func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tmpPrefix) || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		out = append(out, FileMeta{
			Path:      p,
			Checksum:  checksum.Sum(data),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a stored file.
func (f *FS) Read(p string) ([]byte, error) {
	data, err := f.root.ReadFile(clean(p))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}

// Write replaces p atomically: temp file, fsync, rename.
func (f *FS) Write(p string, content []byte) error {
	name := clean(p)
	dir := path.Dir(name)
	if dir != "." {
		if err := f.root.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage: mkdir: %w", err)
		}
	}

	tmpName := path.Join(dir, tmpPrefix+uuid.NewString())
	tmp, err := f.root.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = f.root.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := f.root.Rename(tmpName, name); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a stored file.
func (f *FS) Delete(p string) error {
	if err := f.root.Remove(clean(p)); err != nil {
		return fmt.Errorf("storage: delete %s: %w", p, err)
	}
	return nil
}
