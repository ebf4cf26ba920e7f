package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/webcraft/internal/studio"
)

// ListTemplates handles GET /api/templates.
//
//	@Summary		List catalogue templates
//	@Tags			templates
//	@Produce		json
//	@Param			category	query		string	false	"Category, All for any"
//	@Param			q			query		string	false	"Case-insensitive search over name and category"
//	@Success		200			{object}	TemplateListResponse
//	@Security		BearerAuth
//	@Router			/templates [get]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.ListTemplates(r.Context(), q.Get("category"), q.Get("q"))
	if err != nil {
		writeError(w, r, "list templates", err)
		return
	}
	writeJSON(w, http.StatusOK, TemplateListResponse{Templates: list})
}

// TemplateCategories handles GET /api/templates/categories.
func (h *Handler) TemplateCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": studio.Categories})
}

// SearchTemplates handles GET /api/templates/search.
func (h *Handler) SearchTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.svc.SearchTemplates(r.Context(), q, limit)
	if err != nil {
		writeError(w, r, "search templates", err)
		return
	}
	writeJSON(w, http.StatusOK, TemplateListResponse{Templates: list})
}

// GetTemplate handles GET /api/templates/{id}.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get template", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
