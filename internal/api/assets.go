package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/webcraft/internal/storage"
)

const maxUploadBytes = 10 << 20 // 10 MB

// imageTypes maps accepted upload extensions to their content type.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// AssetHandler serves and accepts image assets.
type AssetHandler struct {
	store storage.Provider
}

// NewAssetHandler creates a handler over a flat asset directory.
func NewAssetHandler(store storage.Provider) *AssetHandler {
	return &AssetHandler{store: store}
}

// safeName validates that name is a plain file name with an image
// extension.
func safeName(name string) (string, error) {
	if name == "" {
		return "", errors.New("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(cleaned, ".") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if _, ok := imageTypes[strings.ToLower(filepath.Ext(cleaned))]; !ok {
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(cleaned))
	}
	return cleaned, nil
}

func assetURL(name string) string { return "/assets/" + name }

// ServeFile handles GET /assets/{filename}.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name, err := safeName(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := h.store.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = imageTypes[strings.ToLower(filepath.Ext(name))]
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
}

// List handles GET /api/assets.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	metas, err := h.store.List("", "")
	if err != nil {
		writeError(w, r, "list assets", err)
		return
	}
	out := make([]AssetResponse, 0, len(metas))
	for _, m := range metas {
		if _, err := safeName(m.Path); err != nil {
			continue
		}
		out = append(out, AssetResponse{Filename: m.Path, Size: m.Size, URL: assetURL(m.Path), UpdatedAt: m.UpdatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": out})
}

// Upload handles POST /api/assets (multipart/form-data, field "file").
//
//	@Summary		Upload an image asset
//	@Tags			assets
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"Image file"
//	@Success		201		{object}	AssetResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assets [post]
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name, err := safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if !isImage(name, data) {
		writeJSON(w, http.StatusBadRequest, errorBody("file content is not an image"))
		return
	}

	if err := h.store.Write(name, data); err != nil {
		writeError(w, r, "upload asset", err)
		return
	}

	writeJSON(w, http.StatusCreated, AssetResponse{
		Filename: name,
		Size:     int64(len(data)),
		URL:      assetURL(name),
	})
}

// Delete handles DELETE /api/assets/{filename}.
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := safeName(chi.URLParam(r, "filename"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.store.Delete(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeError(w, r, "delete asset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// isImage reports whether data sniffs as the image type its name claims.
func isImage(name string, data []byte) bool {
	return http.DetectContentType(data) == imageTypes[strings.ToLower(filepath.Ext(name))]
}
