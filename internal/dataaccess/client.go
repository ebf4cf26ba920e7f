// Package dataaccess wraps a backend with a query cache. Reads are served
// from the cache under per-query keys and successful writes invalidate the
// keys they affect. Failed writes leave the cache untouched.
package dataaccess

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/webcraft/internal/backend"
	"github.com/starford/webcraft/internal/cache"
	"github.com/starford/webcraft/internal/identity"
	"github.com/starford/webcraft/internal/models"
)

// Query keys.
const (
	KeyUserProjects = "userProjects"
	KeyUserSettings = "userSettings"
	KeyUserProfile  = "userProfile"
	KeyAllTemplates = "allTemplates"

	// AllCategories is the category value that selects the whole catalogue.
	AllCategories = "all"
)

// ProjectKey is the query key of a single project.
func ProjectKey(id string) string { return "project/" + id }

// ChatHistoryKey is the query key of a project's remote chat log.
func ChatHistoryKey(projectID string) string { return "chatHistory/" + projectID }

// TemplatesKey is the query key of one template category.
func TemplatesKey(category string) string { return "templates/" + category }

// TemplateKey is the query key of one template.
func TemplateKey(id string) string { return "template/" + id }

// Client is a caching Backend.
type Client struct {
	backend backend.Backend
	cache   cache.Cache
	ttl     time.Duration
	log     *slog.Logger
}

var _ backend.Backend = (*Client)(nil)

// New creates a client over b. Entries expire after ttl (0 keeps them until
// invalidated).
func New(b backend.Backend, c cache.Cache, ttl time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{backend: b, cache: c, ttl: ttl, log: log}
}

// callerKey scopes key to the caller. ok is false for anonymous contexts,
// which bypass the cache.
func callerKey(ctx context.Context, key string) (string, bool) {
	p, ok := identity.Principal(ctx)
	if !ok {
		return "", false
	}
	return "u:" + p + ":" + key, true
}

func cached[T any](ctx context.Context, c *Client, key string, fetch func(context.Context) (T, error)) (T, error) {
	if b, err := c.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		c.log.Warn("dataaccess: drop undecodable cache entry", slog.String("key", key))
	} else if !errors.Is(err, cache.ErrMiss) {
		c.log.Warn("dataaccess: cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
			c.log.Warn("dataaccess: cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return v, nil
}

func cachedForCaller[T any](ctx context.Context, c *Client, key string, fetch func(context.Context) (T, error)) (T, error) {
	full, ok := callerKey(ctx, key)
	if !ok {
		return fetch(ctx)
	}
	return cached(ctx, c, full, fetch)
}

// invalidate drops the caller-scoped keys. Failures are logged.
func (c *Client) invalidate(ctx context.Context, keys ...string) {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		if fk, ok := callerKey(ctx, k); ok {
			full = append(full, fk)
		}
	}
	if len(full) == 0 {
		return
	}
	if err := c.cache.Delete(ctx, full...); err != nil {
		c.log.Warn("dataaccess: invalidate failed", slog.Any("keys", full), slog.String("error", err.Error()))
	}
}

// Invalidate drops caller-scoped query keys.
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	c.invalidate(ctx, keys...)
}

// InvalidateTemplates drops every cached catalogue query.
func (c *Client) InvalidateTemplates(ctx context.Context) {
	var errs []error
	errs = append(errs, c.cache.Delete(ctx, KeyAllTemplates))
	errs = append(errs, c.cache.DeletePrefix(ctx, TemplatesKey("")))
	errs = append(errs, c.cache.DeletePrefix(ctx, TemplateKey("")))
	if err := errors.Join(errs...); err != nil {
		c.log.Warn("dataaccess: invalidate templates failed", slog.String("error", err.Error()))
	}
}

func (c *Client) CreateProject(ctx context.Context, name, description, prompt string) (string, error) {
	id, err := c.backend.CreateProject(ctx, name, description, prompt)
	if err != nil {
		return "", err
	}
	c.invalidate(ctx, KeyUserProjects)
	return id, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if err := c.backend.DeleteProject(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, KeyUserProjects, ProjectKey(id), ChatHistoryKey(id))
	return nil
}

func (c *Client) UpdateProject(ctx context.Context, id, name, description, prompt string) error {
	if err := c.backend.UpdateProject(ctx, id, name, description, prompt); err != nil {
		return err
	}
	c.invalidate(ctx, KeyUserProjects, ProjectKey(id))
	return nil
}

func (c *Client) UpdateProjectStatus(ctx context.Context, id string, status models.ProjectStatus) error {
	if err := c.backend.UpdateProjectStatus(ctx, id, status); err != nil {
		return err
	}
	c.invalidate(ctx, KeyUserProjects, ProjectKey(id))
	return nil
}

func (c *Client) GetUserProjects(ctx context.Context) ([]models.Project, error) {
	return cachedForCaller(ctx, c, KeyUserProjects, c.backend.GetUserProjects)
}

func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return cachedForCaller(ctx, c, ProjectKey(id), func(ctx context.Context) (*models.Project, error) {
		return c.backend.GetProject(ctx, id)
	})
}

func (c *Client) SendMessage(ctx context.Context, projectID, role, content string) (string, error) {
	id, err := c.backend.SendMessage(ctx, projectID, role, content)
	if err != nil {
		return "", err
	}
	c.invalidate(ctx, ChatHistoryKey(projectID))
	return id, nil
}

func (c *Client) GetChatHistory(ctx context.Context, projectID string) ([]models.ChatMessage, error) {
	return cachedForCaller(ctx, c, ChatHistoryKey(projectID), func(ctx context.Context) ([]models.ChatMessage, error) {
		return c.backend.GetChatHistory(ctx, projectID)
	})
}

func (c *Client) GetAllTemplates(ctx context.Context) ([]models.Template, error) {
	return cached(ctx, c, KeyAllTemplates, c.backend.GetAllTemplates)
}

// GetTemplatesByCategory treats AllCategories as the whole catalogue.
func (c *Client) GetTemplatesByCategory(ctx context.Context, category string) ([]models.Template, error) {
	if category == AllCategories {
		return c.GetAllTemplates(ctx)
	}
	return cached(ctx, c, TemplatesKey(category), func(ctx context.Context) ([]models.Template, error) {
		return c.backend.GetTemplatesByCategory(ctx, category)
	})
}

func (c *Client) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	return cached(ctx, c, TemplateKey(id), func(ctx context.Context) (*models.Template, error) {
		return c.backend.GetTemplate(ctx, id)
	})
}

func (c *Client) GetUserSettings(ctx context.Context) (*models.UserSettings, error) {
	return cachedForCaller(ctx, c, KeyUserSettings, c.backend.GetUserSettings)
}

func (c *Client) SaveUserSettings(ctx context.Context, settings models.UserSettings) error {
	if err := c.backend.SaveUserSettings(ctx, settings); err != nil {
		return err
	}
	c.invalidate(ctx, KeyUserSettings)
	return nil
}

func (c *Client) GetCallerUserProfile(ctx context.Context) (*models.UserProfile, error) {
	return cachedForCaller(ctx, c, KeyUserProfile, c.backend.GetCallerUserProfile)
}

func (c *Client) CreateOrUpdateProfile(ctx context.Context, displayName, avatarURL string) error {
	if err := c.backend.CreateOrUpdateProfile(ctx, displayName, avatarURL); err != nil {
		return err
	}
	c.invalidate(ctx, KeyUserProfile)
	return nil
}

// Role accessors are not cached.

func (c *Client) AssignCallerUserRole(ctx context.Context, user string, role models.UserRole) error {
	return c.backend.AssignCallerUserRole(ctx, user, role)
}

func (c *Client) GetCallerUserRole(ctx context.Context) (models.UserRole, error) {
	return c.backend.GetCallerUserRole(ctx)
}

func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	return c.backend.IsCallerAdmin(ctx)
}
