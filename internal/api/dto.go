package api

import (
	"encoding/json"
	"time"

	"github.com/starford/webcraft/internal/blocks"
	"github.com/starford/webcraft/internal/editor"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/studio"
)

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Name   string `json:"name" example:"Coffee shop"`
	Prompt string `json:"prompt" example:"A landing page for a neighbourhood coffee shop"`
}

// UpdateProjectRequest is the request body for updating a project.
type UpdateProjectRequest struct {
	Name        string `json:"name" example:"Coffee shop" validate:"required"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// StatusRequest sets a project's status.
type StatusRequest struct {
	Status models.ProjectStatus `json:"status" example:"live" validate:"required"`
}

// ProjectListResponse wraps project listings.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects" validate:"required"`
	Total    int              `json:"total" example:"3" validate:"required"`
}

// SavePageRequest replaces a page's blocks.
type SavePageRequest struct {
	Blocks []editor.Block `json:"blocks" validate:"required"`
}

// AddBlockRequest appends a block with default content.
type AddBlockRequest struct {
	Type string `json:"type" example:"hero" validate:"required"`
}

// AddBlockResponse returns the page and the block that was added.
type AddBlockResponse struct {
	Page  *studio.Page `json:"page"`
	Block editor.Block `json:"block"`
}

// MoveBlockRequest moves a block one step.
type MoveBlockRequest struct {
	Direction studio.Direction `json:"direction" example:"up" validate:"required"`
}

// UpdateBlockRequest replaces a block's content.
type UpdateBlockRequest struct {
	Content json.RawMessage `json:"content" swaggertype:"object" validate:"required"`
}

// ReorderBlockRequest drops a dragged block next to a target.
type ReorderBlockRequest struct {
	Dragged  string          `json:"dragged" validate:"required"`
	Target   string          `json:"target" validate:"required"`
	Position editor.Position `json:"position" example:"before" validate:"required"`
}

// BlockDefaultsResponse describes the default content of a block type.
type BlockDefaultsResponse struct {
	Type       blocks.BlockType `json:"type"`
	Label      string           `json:"label"`
	Content    blocks.Content   `json:"content"`
	Serialized string           `json:"serialized"`
}

// SendChatRequest posts a chat message.
type SendChatRequest struct {
	Content string `json:"content" example:"Add a pricing section" validate:"required"`
	Surface string `json:"surface" example:"editor"`
}

// TemplateListResponse wraps template listings.
type TemplateListResponse struct {
	Templates []models.Template `json:"templates" validate:"required"`
}

// SettingsRequest is the request body for saving settings.
type SettingsRequest struct {
	models.UserSettings
}

// ProfileRequest is the request body for saving a profile.
type ProfileRequest struct {
	DisplayName string `json:"displayName" example:"Ada Lovelace" validate:"required"`
	AvatarURL   string `json:"avatarUrl" example:"https://example.com/ada.png"`
}

// RoleRequest assigns a role to a user.
type RoleRequest struct {
	User string          `json:"user"`
	Role models.UserRole `json:"role" example:"admin" validate:"required"`
}

// AssetResponse describes an uploaded asset.
type AssetResponse struct {
	Filename  string    `json:"filename" example:"hero.png" validate:"required"`
	Size      int64     `json:"size" example:"12345" validate:"required"`
	URL       string    `json:"url" example:"/assets/hero.png" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}
