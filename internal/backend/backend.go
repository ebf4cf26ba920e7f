// Package backend declares the CRUD surface the application consumes and
// provides a caller-scoped implementation over the SQLite store.
package backend

import (
	"context"

	"github.com/starford/webcraft/internal/models"
)

// Backend is the remote CRUD interface. The caller is taken from ctx.
// Absent projects, templates, settings and profiles are returned as nil
// with a nil error.
type Backend interface {
	CreateProject(ctx context.Context, name, description, prompt string) (string, error)
	DeleteProject(ctx context.Context, id string) error
	UpdateProject(ctx context.Context, id, name, description, prompt string) error
	UpdateProjectStatus(ctx context.Context, id string, status models.ProjectStatus) error
	GetUserProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)

	SendMessage(ctx context.Context, projectID, role, content string) (string, error)
	GetChatHistory(ctx context.Context, projectID string) ([]models.ChatMessage, error)

	GetAllTemplates(ctx context.Context) ([]models.Template, error)
	GetTemplatesByCategory(ctx context.Context, category string) ([]models.Template, error)
	GetTemplate(ctx context.Context, id string) (*models.Template, error)

	GetUserSettings(ctx context.Context) (*models.UserSettings, error)
	SaveUserSettings(ctx context.Context, settings models.UserSettings) error
	GetCallerUserProfile(ctx context.Context) (*models.UserProfile, error)
	CreateOrUpdateProfile(ctx context.Context, displayName, avatarURL string) error

	AssignCallerUserRole(ctx context.Context, user string, role models.UserRole) error
	GetCallerUserRole(ctx context.Context) (models.UserRole, error)
	IsCallerAdmin(ctx context.Context) (bool, error)
}
