package model

import "time"

type BackupImportStatus string

const (
	BackupImportRunning   BackupImportStatus = "running"
	BackupImportCompleted BackupImportStatus = "completed"
	BackupImportFailed    BackupImportStatus = "failed"
)

// BackupImport is one accepted import attempt. Payloads rejected before the
// relational phase are not recorded.
type BackupImport struct {
	ID             int64              `json:"id"`
	OrganizationID string             `json:"organization_id"`
	ActorID        string             `json:"actor_id"`
	Version        int                `json:"version"`
	Archive        bool               `json:"archive"`
	Status         BackupImportStatus `json:"status"`
	Phase          string             `json:"phase,omitempty"`
	ErrorMessage   string             `json:"error_message,omitempty"`
	RowsRestored   int                `json:"rows_restored"`
	FilesWritten   int                `json:"files_written"`
	FilesSkipped   int                `json:"files_skipped"`
	StartedAt      time.Time          `json:"started_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}
