package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/cache"
	"github.com/starford/webcraft/internal/identity"
)

// DefaultSession names the session of clients that send no session id.
const DefaultSession = "default"

// Prefs are per-session UI preferences. They are kept in the cache only and
// expire with it.
type Prefs struct {
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
	ProjectsView     string `json:"projectsView"`
	EditorTab        string `json:"editorTab"`
	PreviewViewport  string `json:"previewViewport"`
}

// PrefsPatch carries the fields of Prefs to change; nil fields are kept.
type PrefsPatch struct {
	SidebarCollapsed *bool   `json:"sidebarCollapsed"`
	ProjectsView     *string `json:"projectsView"`
	EditorTab        *string `json:"editorTab"`
	PreviewViewport  *string `json:"previewViewport"`
}

// DefaultPrefs is what a fresh session sees.
func DefaultPrefs() Prefs {
	return Prefs{ProjectsView: "grid", EditorTab: "preview", PreviewViewport: "desktop"}
}

// Validate checks every field against its allowed values.
func (p Prefs) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ProjectsView, validation.Required, validation.In("grid", "list")),
		validation.Field(&p.EditorTab, validation.Required, validation.In("preview", "code")),
		validation.Field(&p.PreviewViewport, validation.Required, validation.In("desktop", "mobile")),
	)
}

func prefsKey(ctx context.Context, session string) (string, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return "", err
	}
	if session == "" {
		session = DefaultSession
	}
	return "prefs:" + caller + ":" + session, nil
}

// Prefs returns the preferences of the caller's session. Unreadable
// entries fall back to the defaults.
func (s *Service) Prefs(ctx context.Context, session string) (Prefs, error) {
	key, err := prefsKey(ctx, session)
	if err != nil {
		return Prefs{}, err
	}
	p := DefaultPrefs()
	raw, err := s.prefs.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("studio: prefs read failed", slog.String("error", err.Error()))
		}
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.Validate() != nil {
		s.log.Warn("studio: discarding malformed prefs", slog.String("key", key))
		return DefaultPrefs(), nil
	}
	return p, nil
}

// UpdatePrefs applies patch to the session's preferences and refreshes
// their expiry.
func (s *Service) UpdatePrefs(ctx context.Context, session string, patch PrefsPatch) (Prefs, error) {
	key, err := prefsKey(ctx, session)
	if err != nil {
		return Prefs{}, err
	}
	p, err := s.Prefs(ctx, session)
	if err != nil {
		return Prefs{}, err
	}
	if patch.SidebarCollapsed != nil {
		p.SidebarCollapsed = *patch.SidebarCollapsed
	}
	if patch.ProjectsView != nil {
		p.ProjectsView = *patch.ProjectsView
	}
	if patch.EditorTab != nil {
		p.EditorTab = *patch.EditorTab
	}
	if patch.PreviewViewport != nil {
		p.PreviewViewport = *patch.PreviewViewport
	}
	if err := p.Validate(); err != nil {
		return Prefs{}, apperr.Invalid(err)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return Prefs{}, fmt.Errorf("studio: encode prefs: %w", err)
	}
	if err := s.prefs.Set(ctx, key, raw, s.prefsTTL); err != nil {
		return Prefs{}, fmt.Errorf("studio: store prefs: %w", err)
	}
	return p, nil
}
