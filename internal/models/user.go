package models

import "time"

// UserSettings holds per-user preferences persisted in the backend.
type UserSettings struct {
	Theme                string `json:"theme"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	Plan                 string `json:"plan"`
}

// Setting defaults applied when a field is not supplied.
const (
	DefaultTheme = "light"
	DefaultPlan  = "free"
)

// Themes accepted by SaveUserSettings.
var Themes = []string{"light", "dark", "system"}

// UserProfile is the caller's public profile.
type UserProfile struct {
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserRole is an access-control role.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
	UserRoleGuest UserRole = "guest"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleUser, UserRoleGuest:
		return true
	}
	return false
}
