package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dukerupert/garagebook/internal/archive"
	"github.com/dukerupert/garagebook/internal/backup"
	"github.com/dukerupert/garagebook/internal/config"
	"github.com/dukerupert/garagebook/internal/handler"
	"github.com/dukerupert/garagebook/internal/middleware"
	"github.com/dukerupert/garagebook/internal/store"
	ws "github.com/dukerupert/garagebook/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import endpoints allow this many requests per organization per window.
const (
	importRateLimit  = 5
	importRateWindow = time.Minute
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	backupH      *handler.BackupHandler
	fileH        *handler.FileHandler
	sessionStore *store.SessionStore
	orgStore     *store.OrganizationStore
	rateLimiter  *middleware.RateLimiter
	registry     *prometheus.Registry
	logger       *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	files := archive.NewRestorer(filepath.Clean(cfg.DataDir), cfg.MaxFileBytes, logger)
	importer := backup.NewImporter(db, files, backup.NewMetrics(registry), logger, ws.BackupImported(hub))
	remote := backup.NewRemoteSource(backup.S3Config{
		Endpoint:  cfg.S3.Endpoint,
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	}, cfg.MaxUploadBytes)
	if !remote.Enabled() {
		logger.Info("remote snapshot import disabled, s3 not configured")
	}

	return &Server{
		db:           db,
		hub:          hub,
		backupH:      handler.NewBackupHandler(importer, remote, cfg.MaxUploadBytes, logger.With("component", "backup_handler")),
		fileH:        handler.NewFileHandler(files),
		sessionStore: store.NewSessionStore(db),
		orgStore:     store.NewOrganizationStore(db),
		rateLimiter:  middleware.NewRateLimiter(importRateLimit, importRateWindow),
		registry:     registry,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.orgStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// adminImport wraps an import endpoint with the admin check and the
// per-organization rate limit.
func (s *Server) adminImport(h http.HandlerFunc) http.Handler {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ByOrganization)
	return middleware.RequireAdmin(rl(h))
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Backup import
	mux.Handle("POST /api/backup/import", s.adminImport(s.backupH.Import))
	mux.Handle("POST /api/backup/import/remote", s.adminImport(s.backupH.ImportRemote))
	mux.Handle("GET /api/backup/imports", middleware.RequireAdmin(http.HandlerFunc(s.backupH.History)))

	// Restored uploads
	mux.HandleFunc("GET /api/protected/files/{org}/{category}/{filename}", s.fileH.Serve)

	// Realtime notifications
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
