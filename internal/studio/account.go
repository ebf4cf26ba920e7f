package studio

import (
	"context"

	"github.com/starford/webcraft/internal/identity"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/sse"
)

// DefaultSettings is shown until the caller saves their own.
func DefaultSettings() models.UserSettings {
	return models.UserSettings{
		Theme:                models.DefaultTheme,
		NotificationsEnabled: true,
		Plan:                 models.DefaultPlan,
	}
}

// Settings returns the caller's settings, or the defaults.
func (s *Service) Settings(ctx context.Context) (models.UserSettings, error) {
	st, err := s.backend.GetUserSettings(ctx)
	if err != nil {
		return models.UserSettings{}, err
	}
	if st == nil {
		return DefaultSettings(), nil
	}
	return *st, nil
}

// SaveSettings stores the caller's settings and returns them as stored.
func (s *Service) SaveSettings(ctx context.Context, st models.UserSettings) (models.UserSettings, error) {
	if err := s.backend.SaveUserSettings(ctx, st); err != nil {
		return models.UserSettings{}, err
	}
	saved, err := s.Settings(ctx)
	if err != nil {
		return models.UserSettings{}, err
	}
	s.publish(ctx, sse.SettingsUpdated, saved)
	return saved, nil
}

// Profile returns the caller's profile; nil when none was created.
func (s *Service) Profile(ctx context.Context) (*models.UserProfile, error) {
	return s.backend.GetCallerUserProfile(ctx)
}

// SaveProfile creates or updates the caller's profile.
func (s *Service) SaveProfile(ctx context.Context, displayName, avatarURL string) (*models.UserProfile, error) {
	if err := s.backend.CreateOrUpdateProfile(ctx, displayName, avatarURL); err != nil {
		return nil, err
	}
	p, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, sse.ProfileUpdated, p)
	return p, nil
}

// Role describes the caller's access level.
type Role struct {
	Role    models.UserRole `json:"role"`
	IsAdmin bool            `json:"isAdmin"`
}

// Role returns the caller's role.
func (s *Service) Role(ctx context.Context) (Role, error) {
	r, err := s.backend.GetCallerUserRole(ctx)
	if err != nil {
		return Role{}, err
	}
	return Role{Role: r, IsAdmin: r == models.UserRoleAdmin}, nil
}

// AssignRole gives user a role; an empty user means the caller.
func (s *Service) AssignRole(ctx context.Context, user string, role models.UserRole) error {
	if user == "" {
		caller, err := identity.Require(ctx)
		if err != nil {
			return err
		}
		user = caller
	}
	return s.backend.AssignCallerUserRole(ctx, user, role)
}
