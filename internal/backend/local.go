package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/identity"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/render"
)

// Datastore is the persistence surface Local needs. *store.DB satisfies it.
type Datastore interface {
	CreateProject(ctx context.Context, p models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, owner string) ([]models.Project, error)
	UpdateProject(ctx context.Context, id, name, description, prompt, previewURL string, now time.Time) error
	UpdateProjectStatus(ctx context.Context, id string, status models.ProjectStatus, now time.Time) error
	DeleteProject(ctx context.Context, id string) error

	AppendMessage(ctx context.Context, m models.ChatMessage) error
	ChatHistory(ctx context.Context, projectID string) ([]models.ChatMessage, error)

	ListTemplates(ctx context.Context) ([]models.Template, error)
	TemplatesByCategory(ctx context.Context, category string) ([]models.Template, error)
	GetTemplate(ctx context.Context, id string) (*models.Template, error)

	GetSettings(ctx context.Context, principal string) (*models.UserSettings, error)
	SaveSettings(ctx context.Context, principal string, s models.UserSettings) error
	GetProfile(ctx context.Context, principal string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, principal string, p models.UserProfile) error
	GetRole(ctx context.Context, principal string) (models.UserRole, error)
	SetRole(ctx context.Context, principal string, role models.UserRole) error
	HasAdmin(ctx context.Context) (bool, error)
}

// Local implements Backend over a Datastore. Every project operation is
// scoped to the caller: projects owned by someone else look absent.
type Local struct {
	db    Datastore
	now   func() time.Time
	newID func() string
}

var _ Backend = (*Local)(nil)

// NewLocal creates a backend over db.
func NewLocal(db Datastore) *Local {
	return &Local{
		db:    db,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// owned loads project id and checks it belongs to the caller.
func (l *Local) owned(ctx context.Context, id string) (*models.Project, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	p, err := l.db.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Owner != caller {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func validateProject(name, description, prompt string) error {
	return apperr.Invalid(validation.Errors{
		"name":        validation.Validate(name, validation.Required, validation.RuneLength(1, 120)),
		"description": validation.Validate(description, validation.RuneLength(0, 2000)),
		"prompt":      validation.Validate(prompt, validation.RuneLength(0, 10000)),
	}.Filter())
}

func (l *Local) CreateProject(ctx context.Context, name, description, prompt string) (string, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if err := validateProject(name, description, prompt); err != nil {
		return "", err
	}
	now := l.now()
	p := models.Project{
		ID:          l.newID(),
		Name:        name,
		Description: description,
		Prompt:      prompt,
		Status:      models.StatusDraft,
		Owner:       caller,
		PreviewURL:  render.PreviewURL(name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.db.CreateProject(ctx, p); err != nil {
		return "", err
	}
	return p.ID, nil
}

func (l *Local) DeleteProject(ctx context.Context, id string) error {
	if _, err := l.owned(ctx, id); err != nil {
		return err
	}
	return l.db.DeleteProject(ctx, id)
}

func (l *Local) UpdateProject(ctx context.Context, id, name, description, prompt string) error {
	if _, err := l.owned(ctx, id); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := validateProject(name, description, prompt); err != nil {
		return err
	}
	return l.db.UpdateProject(ctx, id, name, description, prompt, render.PreviewURL(name), l.now())
}

func (l *Local) UpdateProjectStatus(ctx context.Context, id string, status models.ProjectStatus) error {
	if !status.Valid() {
		return apperr.Invalid(errors.New("status: must be draft, building or live"))
	}
	if _, err := l.owned(ctx, id); err != nil {
		return err
	}
	return l.db.UpdateProjectStatus(ctx, id, status, l.now())
}

func (l *Local) GetUserProjects(ctx context.Context) ([]models.Project, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	return l.db.ListProjects(ctx, caller)
}

func (l *Local) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := l.owned(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (l *Local) SendMessage(ctx context.Context, projectID, role, content string) (string, error) {
	if role != models.RoleUser && role != models.RoleAssistant {
		return "", apperr.Invalid(errors.New("role: must be user or assistant"))
	}
	if _, err := l.owned(ctx, projectID); err != nil {
		return "", err
	}
	m := models.ChatMessage{
		ID:        l.newID(),
		ProjectID: projectID,
		Role:      role,
		Content:   content,
		Timestamp: l.now(),
	}
	if err := l.db.AppendMessage(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

func (l *Local) GetChatHistory(ctx context.Context, projectID string) ([]models.ChatMessage, error) {
	if _, err := l.owned(ctx, projectID); err != nil {
		return nil, err
	}
	return l.db.ChatHistory(ctx, projectID)
}

func (l *Local) GetAllTemplates(ctx context.Context) ([]models.Template, error) {
	return l.db.ListTemplates(ctx)
}

func (l *Local) GetTemplatesByCategory(ctx context.Context, category string) ([]models.Template, error) {
	return l.db.TemplatesByCategory(ctx, category)
}

func (l *Local) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	t, err := l.db.GetTemplate(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return t, err
}

func (l *Local) GetUserSettings(ctx context.Context) (*models.UserSettings, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	s, err := l.db.GetSettings(ctx, caller)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return s, err
}

// SaveUserSettings stores settings, filling an empty theme or plan with
// the defaults.
func (l *Local) SaveUserSettings(ctx context.Context, settings models.UserSettings) error {
	caller, err := identity.Require(ctx)
	if err != nil {
		return err
	}
	if settings.Theme == "" {
		settings.Theme = models.DefaultTheme
	}
	if settings.Plan == "" {
		settings.Plan = models.DefaultPlan
	}
	themes := make([]any, len(models.Themes))
	for i, t := range models.Themes {
		themes[i] = t
	}
	if err := validation.ValidateStruct(&settings,
		validation.Field(&settings.Theme, validation.In(themes...)),
		validation.Field(&settings.Plan, validation.RuneLength(1, 32)),
	); err != nil {
		return apperr.Invalid(err)
	}
	return l.db.SaveSettings(ctx, caller, settings)
}

func (l *Local) GetCallerUserProfile(ctx context.Context) (*models.UserProfile, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	p, err := l.db.GetProfile(ctx, caller)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (l *Local) CreateOrUpdateProfile(ctx context.Context, displayName, avatarURL string) error {
	caller, err := identity.Require(ctx)
	if err != nil {
		return err
	}
	displayName = strings.TrimSpace(displayName)
	if err := apperr.Invalid(validation.Errors{
		"displayName": validation.Validate(displayName, validation.Required, validation.RuneLength(1, 80)),
		"avatarUrl":   validation.Validate(avatarURL, is.URL),
	}.Filter()); err != nil {
		return err
	}
	return l.db.SaveProfile(ctx, caller, models.UserProfile{
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   l.now(),
	})
}

// AssignCallerUserRole sets user's role. The caller must be an admin,
// unless no admin exists yet.
func (l *Local) AssignCallerUserRole(ctx context.Context, user string, role models.UserRole) error {
	if !role.Valid() {
		return apperr.Invalid(errors.New("role: must be admin, user or guest"))
	}
	if strings.TrimSpace(user) == "" {
		return apperr.Invalid(errors.New("user: cannot be blank"))
	}
	admin, err := l.IsCallerAdmin(ctx)
	if err != nil {
		return err
	}
	if !admin {
		exists, err := l.db.HasAdmin(ctx)
		if err != nil {
			return err
		}
		if exists {
			return apperr.ErrForbidden
		}
	}
	return l.db.SetRole(ctx, user, role)
}

// GetCallerUserRole returns the caller's role, UserRoleUser when none
// has been assigned.
func (l *Local) GetCallerUserRole(ctx context.Context) (models.UserRole, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return "", err
	}
	role, err := l.db.GetRole(ctx, caller)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.UserRoleUser, nil
	}
	return role, err
}

func (l *Local) IsCallerAdmin(ctx context.Context) (bool, error) {
	role, err := l.GetCallerUserRole(ctx)
	if err != nil {
		return false, err
	}
	return role == models.UserRoleAdmin, nil
}
