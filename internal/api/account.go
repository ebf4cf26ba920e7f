package api

import (
	"net/http"

	"github.com/starford/webcraft/internal/studio"
)

// SessionHeader identifies the browser session whose preferences are read
// and written. Requests without it share the default session.
const SessionHeader = "X-Webcraft-Session"

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings(r.Context())
	if err != nil {
		writeError(w, r, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SaveSettings handles PUT /api/settings.
//
//	@Summary		Save the caller's settings
//	@Tags			account
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.UserSettings	true	"Settings; empty theme or plan take the defaults"
//	@Success		200		{object}	models.UserSettings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.svc.SaveSettings(r.Context(), req.UserSettings)
	if err != nil {
		writeError(w, r, "save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetProfile handles GET /api/profile. A caller without a profile gets
// null.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Profile(r.Context())
	if err != nil {
		writeError(w, r, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveProfile handles PUT /api/profile.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.SaveProfile(r.Context(), req.DisplayName, req.AvatarURL)
	if err != nil {
		writeError(w, r, "save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetPrefs handles GET /api/preferences.
func (h *Handler) GetPrefs(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Prefs(r.Context(), r.Header.Get(SessionHeader))
	if err != nil {
		writeError(w, r, "get preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdatePrefs handles PUT /api/preferences. Omitted fields keep their
// values.
func (h *Handler) UpdatePrefs(w http.ResponseWriter, r *http.Request) {
	var patch studio.PrefsPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	p, err := h.svc.UpdatePrefs(r.Context(), r.Header.Get(SessionHeader), patch)
	if err != nil {
		writeError(w, r, "update preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetRole handles GET /api/role.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.svc.Role(r.Context())
	if err != nil {
		writeError(w, r, "get role", err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

// AssignRole handles PUT /api/role.
//
//	@Summary		Assign a role
//	@Description	Requires an admin caller once any admin exists. An empty user targets the caller.
//	@Tags			account
//	@Accept			json
//	@Param			body	body	RoleRequest	true	"User and role"
//	@Success		204		"Role assigned"
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/role [put]
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.AssignRole(r.Context(), req.User, req.Role); err != nil {
		writeError(w, r, "assign role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
