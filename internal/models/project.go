// Package models defines the domain types for WebCraft.
package models

import "time"

// ProjectStatus is the lifecycle flag of a project.
type ProjectStatus string

const (
	StatusDraft    ProjectStatus = "draft"
	StatusBuilding ProjectStatus = "building"
	StatusLive     ProjectStatus = "live"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusBuilding, StatusLive:
		return true
	}
	return false
}

// Project is the top-level user-owned unit being built.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Prompt      string        `json:"prompt"`
	Status      ProjectStatus `json:"status"`
	Owner       string        `json:"owner"`
	PreviewURL  string        `json:"previewUrl"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
