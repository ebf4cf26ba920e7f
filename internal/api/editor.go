package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/blocks"
	"github.com/starford/webcraft/internal/studio"
)

func writePage(w http.ResponseWriter, status int, p *studio.Page) {
	w.Header().Set("ETag", strconv.Quote(p.ETag))
	writeJSON(w, status, p)
}

// LoadPage handles GET /api/projects/{id}/blocks.
//
//	@Summary		Get the block list of a project
//	@Tags			editor
//	@Produce		json
//	@Param			id	path		string	true	"Project id"
//	@Success		200	{object}	studio.Page
//	@Header			200	{string}	ETag	"Version tag for If-Match"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/blocks [get]
func (h *Handler) LoadPage(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.LoadPage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "load page", err)
		return
	}
	writePage(w, http.StatusOK, p)
}

// SavePage handles PUT /api/projects/{id}/blocks.
//
//	@Summary		Replace the block list with optimistic concurrency
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string			true	"Project id"
//	@Param			If-Match	header		string			false	"ETag of the page being replaced"
//	@Param			body		body		SavePageRequest	true	"Ordered blocks"
//	@Success		200			{object}	studio.Page
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/blocks [put]
func (h *Handler) SavePage(w http.ResponseWriter, r *http.Request) {
	var req SavePageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.SavePage(r.Context(), chi.URLParam(r, "id"), req.Blocks, ifMatch(r))
	if err != nil {
		writeError(w, r, "save page", err)
		return
	}
	writePage(w, http.StatusOK, p)
}

// AddBlock handles POST /api/projects/{id}/blocks.
func (h *Handler) AddBlock(w http.ResponseWriter, r *http.Request) {
	var req AddBlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, b, err := h.svc.AddBlock(r.Context(), chi.URLParam(r, "id"), req.Type, ifMatch(r))
	if err != nil {
		writeError(w, r, "add block", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(p.ETag))
	writeJSON(w, http.StatusCreated, AddBlockResponse{Page: p, Block: b})
}

// MoveBlock handles POST /api/projects/{id}/blocks/{blockID}/move.
func (h *Handler) MoveBlock(w http.ResponseWriter, r *http.Request) {
	var req MoveBlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.MoveBlock(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "blockID"), req.Direction, ifMatch(r))
	if err != nil {
		writeError(w, r, "move block", err)
		return
	}
	writePage(w, http.StatusOK, p)
}

// UpdateBlock handles PUT /api/projects/{id}/blocks/{blockID}.
//
// The body's content is either a JSON object with the block's fields or
// the block's serialized content as a JSON string.
func (h *Handler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	var req UpdateBlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	raw := string(req.Content)
	var serialized string
	if err := json.Unmarshal(req.Content, &serialized); err == nil {
		raw = serialized
	}
	p, err := h.svc.UpdateBlock(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "blockID"), raw, ifMatch(r))
	if err != nil {
		writeError(w, r, "update block", err)
		return
	}
	writePage(w, http.StatusOK, p)
}

// RemoveBlock handles DELETE /api/projects/{id}/blocks/{blockID}.
func (h *Handler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.RemoveBlock(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "blockID"), ifMatch(r))
	if err != nil {
		writeError(w, r, "remove block", err)
		return
	}
	writePage(w, http.StatusOK, p)
}

// ReorderBlock handles POST /api/projects/{id}/blocks/reorder.
//
//	@Summary		Drop a dragged block before or after a target block
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Project id"
//	@Param			body	body		ReorderBlockRequest	true	"Drag and drop"
//	@Success		200		{object}	studio.Page
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/blocks/reorder [post]
func (h *Handler) ReorderBlock(w http.ResponseWriter, r *http.Request) {
	var req ReorderBlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.ReorderBlock(r.Context(), chi.URLParam(r, "id"), req.Dragged, req.Target, req.Position, ifMatch(r))
	if err != nil {
		writeError(w, r, "reorder block", err)
		return
	}
	writePage(w, http.StatusOK, p)
}

// Preview handles GET /api/projects/{id}/preview?viewport=desktop|mobile.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	html, err := h.svc.Preview(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("viewport"))
	if err != nil {
		writeError(w, r, "preview", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

// BlockLibrary handles GET /api/blocks/library.
func (h *Handler) BlockLibrary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"blocks": blocks.Library})
}

// BlockDefaults handles GET /api/blocks/defaults/{type}.
func (h *Handler) BlockDefaults(w http.ResponseWriter, r *http.Request) {
	t, err := blocks.ParseBlockType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, r, "block defaults", apperr.Invalid(err))
		return
	}
	writeJSON(w, http.StatusOK, BlockDefaultsResponse{
		Type:       t,
		Label:      blocks.Label(t),
		Content:    blocks.DefaultContent(t),
		Serialized: blocks.DefaultSerialized(t),
	})
}
