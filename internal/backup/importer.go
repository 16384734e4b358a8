package backup

import (
	"archive/zip"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/dukerupert/garagebook/internal/archive"
	"github.com/dukerupert/garagebook/internal/model"
	"github.com/dukerupert/garagebook/internal/snapshot"
	"github.com/dukerupert/garagebook/internal/store"
	"github.com/im7mortal/kmutex"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result summarizes a successful import.
type Result struct {
	ImportID int64              `json:"import_id"`
	Version  int                `json:"version"`
	Counts   Counts             `json:"counts"`
	Files    archive.FileReport `json:"files"`
	Archive  bool               `json:"archive"`
}

// ImportCallback is called after an import finished both phases.
type ImportCallback func(orgID string, result Result)

// Importer runs an import end to end: classify, gate, replace the relational
// data, then replay bundled files.
type Importer struct {
	replacer *Replacer
	files    *archive.Restorer
	history  *store.BackupImportStore
	locks    *kmutex.Kmutex
	metrics  *Metrics
	logger   *slog.Logger
	callback ImportCallback
}

// NewImporter creates an Importer. metrics and callback may be nil.
func NewImporter(db *sql.DB, files *archive.Restorer, metrics *Metrics, logger *slog.Logger, callback ImportCallback) *Importer {
	return &Importer{
		replacer: NewReplacer(db),
		files:    files,
		history:  store.NewBackupImportStore(db),
		locks:    kmutex.New(),
		metrics:  metrics,
		logger:   logger.With("component", "backup"),
		callback: callback,
	}
}

// Import replaces orgID's data with the snapshot in body.
//
// Classification and gate errors (snapshot.ErrInvalidPayload and friends) are
// returned before anything is touched. Later failures are *ImportError: a
// relational failure leaves the organization unchanged, a files failure leaves
// the new relational data committed.
//
// Imports for the same organization are serialized. Once the relational phase
// starts it is not cancelled by ctx.
func (im *Importer) Import(ctx context.Context, body []byte, contentType, orgID, actorID string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "backup.Import", trace.WithAttributes(
		attribute.String("org_id", orgID),
		attribute.Int("payload_bytes", len(body)),
	))
	defer span.End()

	start := time.Now()
	env, zr, err := snapshot.Classify(body, contentType)
	if err == nil {
		err = snapshot.Gate(env)
	}
	im.metrics.observePhase("classify", start)
	if err != nil {
		im.metrics.recordOutcome(outcomeRejected)
		span.RecordError(err)
		span.SetStatus(codes.Error, "payload rejected")
		im.logger.Warn("backup payload rejected", "org_id", orgID, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("version", env.Version), attribute.Bool("archive", zr != nil))

	im.locks.Lock(orgID)
	defer im.locks.Unlock(orgID)

	ctx = context.WithoutCancel(ctx)

	var importID int64
	if rec, err := im.history.Start(orgID, actorID, env.Version, zr != nil); err != nil {
		im.logger.Warn("record backup import", "org_id", orgID, "error", err)
	} else {
		importID = rec.ID
	}

	start = time.Now()
	counts, err := im.replacer.Replace(ctx, env.Data, orgID, actorID)
	im.metrics.observePhase(PhaseRelational, start)
	if err != nil {
		im.metrics.recordOutcome(outcomeRelationalErr)
		span.SetStatus(codes.Error, "relational phase failed")
		im.logger.Error("backup import failed", "org_id", orgID, "phase", PhaseRelational, "error", err)
		im.recordFailure(importID, orgID, PhaseRelational, err, 0, 0)
		return nil, &ImportError{Phase: PhaseRelational, Err: err}
	}
	im.metrics.recordRows(counts)

	result := Result{ImportID: importID, Version: env.Version, Counts: counts, Archive: zr != nil}

	if zr != nil {
		report, err := im.restoreFiles(ctx, zr, orgID)
		result.Files = report
		im.metrics.recordFiles(report)
		if err != nil {
			im.metrics.recordOutcome(outcomeFilesErr)
			span.SetStatus(codes.Error, "files phase failed")
			im.logger.Error("backup import failed", "org_id", orgID, "phase", PhaseFiles, "error", err,
				"files_written", report.Written)
			im.recordFailure(importID, orgID, PhaseFiles, err, counts.Total(), report.Written)
			return nil, &ImportError{Phase: PhaseFiles, Err: err}
		}
	}

	if importID != 0 {
		if err := im.history.Complete(importID, counts.Total(), result.Files.Written, result.Files.Skipped); err != nil {
			im.logger.Warn("record backup import", "org_id", orgID, "import_id", importID, "error", err)
		}
	}

	im.metrics.recordOutcome(outcomeSuccess)
	im.logger.Info("backup imported",
		"org_id", orgID,
		"actor_id", actorID,
		"version", env.Version,
		"rows", counts.Total(),
		"files_written", result.Files.Written,
		"files_skipped", result.Files.Skipped,
		"duration", time.Since(start),
	)

	if im.callback != nil {
		im.callback(orgID, result)
	}
	return &result, nil
}

func (im *Importer) recordFailure(importID int64, orgID, phase string, cause error, rows, filesWritten int) {
	if importID == 0 {
		return
	}
	if err := im.history.Fail(importID, phase, cause.Error(), rows, filesWritten); err != nil {
		im.logger.Warn("record backup import", "org_id", orgID, "import_id", importID, "error", err)
	}
}

// History lists the organization's most recent imports.
func (im *Importer) History(orgID string, limit int) ([]model.BackupImport, error) {
	return im.history.List(orgID, limit)
}

func (im *Importer) restoreFiles(ctx context.Context, zr *zip.Reader, orgID string) (archive.FileReport, error) {
	ctx, span := tracer.Start(ctx, "backup.RestoreFiles")
	defer span.End()

	start := time.Now()
	report, err := im.files.Restore(ctx, zr, orgID)
	im.metrics.observePhase(PhaseFiles, start)
	span.SetAttributes(attribute.Int("written", report.Written), attribute.Int("skipped", report.Skipped))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "restore files failed")
	}
	return report, err
}

// IsRejected reports whether err means the payload was refused before any
// data was touched.
func IsRejected(err error) bool {
	return errors.Is(err, snapshot.ErrInvalidPayload) ||
		errors.Is(err, snapshot.ErrMissingManifest) ||
		errors.Is(err, snapshot.ErrUnsupportedVersion) ||
		errors.Is(err, snapshot.ErrMissingData)
}
