package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/dukerupert/garagebook/internal/archive"
	"github.com/dukerupert/garagebook/internal/auth"
)

// FileHandler serves restored uploads from the caller's organization
// directory.
type FileHandler struct {
	files *archive.Restorer
}

func NewFileHandler(files *archive.Restorer) *FileHandler {
	return &FileHandler{files: files}
}

// Serve handles GET /api/protected/files/{org}/{category}/{filename}.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org")
	category := r.PathValue("category")
	filename := r.PathValue("filename")

	// Another organization's files are reported as missing, not forbidden.
	if orgID != auth.OrganizationID(r.Context()) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if !archive.ValidFile(category, filename) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	root, err := h.files.UploadRoot(orgID)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	path := filepath.Join(root, category, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, path)
}
