package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/starford/webcraft/internal/checksum"
)

// ErrReadOnly is returned by writes to a read-only provider.
var ErrReadOnly = errors.New("storage: read-only")

// Embedded is a read-only Provider over an fs.FS such as an embed.FS.
type Embedded struct {
	fsys fs.FS
}

var _ Provider = (*Embedded)(nil)

// NewEmbedded serves files below root in fsys.
func NewEmbedded(fsys fs.FS, root string) (*Embedded, error) {
	sub, err := fs.Sub(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("storage: embedded root: %w", err)
	}
	return &Embedded{fsys: sub}, nil
}

func (e *Embedded) List(dir, ext string) ([]FileMeta, error) {
	if dir == "" {
		dir = "."
	}
	out := []FileMeta{}
	err := fs.WalkDir(e.fsys, dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		data, err := fs.ReadFile(e.fsys, p)
		if err != nil {
			return err
		}
		out = append(out, FileMeta{Path: path.Clean(p), Checksum: checksum.Sum(data), Size: int64(len(data))})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

func (e *Embedded) Read(p string) ([]byte, error) {
	data, err := fs.ReadFile(e.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}

func (e *Embedded) Write(string, []byte) error { return ErrReadOnly }

func (e *Embedded) Delete(string) error { return ErrReadOnly }
