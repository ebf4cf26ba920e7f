package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/webcraft/internal/studio"
)

// ChatLog handles GET /api/projects/{id}/messages.
func (h *Handler) ChatLog(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.ChatLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "chat log", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// Transcript handles GET /api/projects/{id}/transcript. With refresh=true
// the remote log is reloaded first.
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	var (
		t   *studio.Transcript
		err error
	)
	id := chi.URLParam(r, "id")
	if r.URL.Query().Get("refresh") == "true" {
		t, err = h.svc.RefreshTranscript(r.Context(), id)
	} else {
		t, err = h.svc.Transcript(r.Context(), id)
	}
	if err != nil {
		writeError(w, r, "transcript", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// SendChat handles POST /api/projects/{id}/transcript.
//
// The user message is echoed at once; the assistant's answer follows as a
// chat.message event.
//
//	@Summary		Send a chat message
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Project id"
//	@Param			body	body		SendChatRequest	true	"Message"
//	@Success		202		{object}	studio.Transcript
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse	"An answer is still pending"
//	@Failure		429		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/transcript [post]
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	var req SendChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	surface, err := studio.ParseSurface(req.Surface)
	if err != nil {
		writeError(w, r, "send chat", err)
		return
	}
	t, err := h.svc.SendChat(r.Context(), chi.URLParam(r, "id"), surface, req.Content)
	if err != nil {
		writeError(w, r, "send chat", err)
		return
	}
	writeJSON(w, http.StatusAccepted, t)
}
