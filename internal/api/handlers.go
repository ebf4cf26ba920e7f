package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/studio"
)

// Handler holds API route handlers.
type Handler struct {
	svc *studio.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *studio.Service) *Handler {
	return &Handler{svc: svc}
}

// ListProjects handles GET /api/projects.
//
//	@Summary		List the caller's projects, most recently updated first
//	@Tags			projects
//	@Produce		json
//	@Param			filter	query		string	false	"Status filter"	Enums(all, live, draft)
//	@Param			q		query		string	false	"Case-insensitive name search"
//	@Success		200		{object}	ProjectListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	filter, err := studio.ParseProjectFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, r, "list projects", err)
		return
	}
	projects, err := h.svc.ListProjects(r.Context(), filter, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: projects, Total: len(projects)})
}

// CreateProject handles POST /api/projects.
//
// A request with a prompt starts a building project from it; an empty body
// creates an untitled draft.
//
//	@Summary		Create a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateProjectRequest	false	"Prompt and optional name"
//	@Success		201		{object}	models.Project
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	var (
		p   *models.Project
		err error
	)
	if req.Prompt == "" && req.Name == "" {
		p, err = h.svc.CreateBlank(r.Context())
	} else {
		p, err = h.svc.CreateFromPrompt(r.Context(), req.Name, req.Prompt)
	}
	if err != nil {
		writeError(w, r, "create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// CreateChatProject handles POST /api/projects/chat.
func (h *Handler) CreateChatProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.CreateChatProject(r.Context())
	if err != nil {
		writeError(w, r, "create chat project", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// CreateFromTemplate handles POST /api/projects/from-template/{templateID}.
//
//	@Summary		Start a project from a catalogue template
//	@Tags			projects
//	@Produce		json
//	@Param			templateID	path		string	true	"Template id"
//	@Success		201			{object}	models.Project
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/from-template/{templateID} [post]
func (h *Handler) CreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.CreateFromTemplate(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		writeError(w, r, "create from template", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /api/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get project", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProject handles PUT /api/projects/{id}.
//
//	@Summary		Rename or re-describe a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Project id"
//	@Param			body	body		UpdateProjectRequest	true	"New fields"
//	@Success		200		{object}	models.Project
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [put]
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProject(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description, req.Prompt)
	if err != nil {
		writeError(w, r, "update project", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{id}.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus handles PUT /api/projects/{id}/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, "set status", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// TogglePublish handles POST /api/projects/{id}/publish.
//
//	@Summary		Publish a draft or unpublish a live project
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project id"
//	@Success		200	{object}	models.Project
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/publish [post]
func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.TogglePublish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "toggle publish", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Dashboard handles GET /api/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
