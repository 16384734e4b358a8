package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/garagebook/internal/auth"
	"github.com/dukerupert/garagebook/internal/backup"
	"github.com/dukerupert/garagebook/internal/model"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// snapshotImporter is satisfied by *backup.Importer.
type snapshotImporter interface {
	Import(ctx context.Context, body []byte, contentType, orgID, actorID string) (*backup.Result, error)
	History(orgID string, limit int) ([]model.BackupImport, error)
}

// snapshotFetcher is satisfied by *backup.RemoteSource.
type snapshotFetcher interface {
	Fetch(ctx context.Context, orgID, key, passphrase string) ([]byte, error)
}

type BackupHandler struct {
	importer  snapshotImporter
	remote    snapshotFetcher
	maxUpload int64
	logger    *slog.Logger
}

func NewBackupHandler(importer snapshotImporter, remote snapshotFetcher, maxUpload int64, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{
		importer:  importer,
		remote:    remote,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Import restores the caller's organization from the request body, either a
// JSON snapshot or a ZIP archive.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "backup too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	h.runImport(w, r, body, r.Header.Get("Content-Type"), ac)
}

type remoteImportRequest struct {
	Key        string `json:"key"`
	Passphrase string `json:"passphrase"`
}

// ImportRemote downloads a snapshot from object storage, decrypts it when a
// passphrase is given, and imports it.
func (h *BackupHandler) ImportRemote(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req remoteImportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	body, err := h.remote.Fetch(r.Context(), ac.OrganizationID, req.Key, req.Passphrase)
	if err != nil {
		status, msg := remoteStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("fetch remote snapshot", "org_id", ac.OrganizationID, "key", req.Key, "error", err)
		}
		writeError(w, status, msg)
		return
	}

	// Remote objects carry no trustworthy content type; let the classifier sniff.
	h.runImport(w, r, body, "", ac)
}

func (h *BackupHandler) runImport(w http.ResponseWriter, r *http.Request, body []byte, contentType string, ac auth.AuthContext) {
	if _, err := h.importer.Import(r.Context(), body, contentType, ac.OrganizationID, ac.UserID); err != nil {
		status, msg := importStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// History lists the caller's organization's recent imports.
func (h *BackupHandler) History(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrganizationID(r.Context())
	if orgID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	imports, err := h.importer.History(orgID, limit)
	if err != nil {
		h.logger.Error("list backup imports", "org_id", orgID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list imports")
		return
	}
	if imports == nil {
		imports = []model.BackupImport{}
	}
	writeJSON(w, http.StatusOK, imports)
}

func importStatus(err error) (int, string) {
	if backup.IsRejected(err) {
		return http.StatusBadRequest, err.Error()
	}
	var ie *backup.ImportError
	if !errors.As(err, &ie) {
		return http.StatusInternalServerError, "import failed"
	}
	if ie.Phase == backup.PhaseFiles {
		return http.StatusInternalServerError, "data restored but files may be incomplete, re-submit the archive to repair them: " + ie.Err.Error()
	}
	return http.StatusInternalServerError, "import failed: " + ie.Err.Error()
}

func remoteStatus(err error) (int, string) {
	switch {
	case errors.Is(err, backup.ErrRemoteNotConfigured):
		return http.StatusServiceUnavailable, "remote storage not configured"
	case errors.Is(err, backup.ErrRemoteNotFound):
		return http.StatusNotFound, "snapshot not found"
	case errors.Is(err, backup.ErrInvalidKey):
		return http.StatusBadRequest, "invalid snapshot key"
	case errors.Is(err, backup.ErrDecrypt):
		return http.StatusBadRequest, "failed to decrypt snapshot"
	case errors.Is(err, backup.ErrSnapshotTooLarge):
		return http.StatusRequestEntityTooLarge, "snapshot too large"
	default:
		return http.StatusBadGateway, "failed to fetch snapshot"
	}
}
