// Package storage defines the flat-file abstraction used for uploaded
// assets and template documents.
package storage

import "time"

// FileMeta describes a stored file.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Provider is the interface for file operations relative to a root.
type Provider interface {
	// List returns metadata for every file under dir whose name ends in ext.
	// An empty ext matches every file.
	List(dir, ext string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
