package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/garagebook/internal/model"
)

// BackupImportStore keeps the import history of each organization. It lives
// outside the replaced tables, so an import never erases its own record.
type BackupImportStore struct {
	db *sql.DB
}

func NewBackupImportStore(db *sql.DB) *BackupImportStore {
	return &BackupImportStore{db: db}
}

const backupImportCols = `id, organization_id, actor_id, version, archive, status, phase, error_message,
	rows_restored, files_written, files_skipped, started_at, completed_at`

func scanBackupImport(scanner interface{ Scan(...any) error }) (*model.BackupImport, error) {
	var b model.BackupImport
	var archive int
	var phase, errMsg sql.NullString
	var completedAt sql.NullTime
	err := scanner.Scan(&b.ID, &b.OrganizationID, &b.ActorID, &b.Version, &archive, &b.Status, &phase, &errMsg,
		&b.RowsRestored, &b.FilesWritten, &b.FilesSkipped, &b.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	b.Archive = archive != 0
	b.Phase = phase.String
	b.ErrorMessage = errMsg.String
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return &b, nil
}

// Start records a running import and returns it.
func (s *BackupImportStore) Start(orgID, actorID string, version int, archive bool) (*model.BackupImport, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO backup_imports (organization_id, actor_id, version, archive, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		orgID, actorID, version, boolInt(archive), model.BackupImportRunning, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create backup import: %w", err)
	}
	id, _ := result.LastInsertId()
	return &model.BackupImport{
		ID:             id,
		OrganizationID: orgID,
		ActorID:        actorID,
		Version:        version,
		Archive:        archive,
		Status:         model.BackupImportRunning,
		StartedAt:      now,
	}, nil
}

// Complete marks the import finished with its row and file totals.
func (s *BackupImportStore) Complete(id int64, rows, filesWritten, filesSkipped int) error {
	_, err := s.db.Exec(
		`UPDATE backup_imports SET status = ?, rows_restored = ?, files_written = ?, files_skipped = ?, completed_at = ?
		 WHERE id = ?`,
		model.BackupImportCompleted, rows, filesWritten, filesSkipped, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("complete backup import: %w", err)
	}
	return nil
}

// Fail marks the import failed in phase. rows is what the relational phase
// committed, zero when it was the phase that failed.
func (s *BackupImportStore) Fail(id int64, phase, errorMsg string, rows, filesWritten int) error {
	_, err := s.db.Exec(
		`UPDATE backup_imports SET status = ?, phase = ?, error_message = ?, rows_restored = ?, files_written = ?, completed_at = ?
		 WHERE id = ?`,
		model.BackupImportFailed, phase, errorMsg, rows, filesWritten, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("fail backup import: %w", err)
	}
	return nil
}

func (s *BackupImportStore) GetByID(id int64, orgID string) (*model.BackupImport, error) {
	row := s.db.QueryRow(`SELECT `+backupImportCols+` FROM backup_imports WHERE id = ? AND organization_id = ?`, id, orgID)
	b, err := scanBackupImport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup import %d: %w", id, err)
	}
	return b, nil
}

// List returns the organization's most recent imports, newest first.
func (s *BackupImportStore) List(orgID string, limit int) ([]model.BackupImport, error) {
	rows, err := s.db.Query(
		`SELECT `+backupImportCols+` FROM backup_imports WHERE organization_id = ?
		 ORDER BY id DESC LIMIT ?`, orgID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list backup imports: %w", err)
	}
	defer rows.Close()

	var imports []model.BackupImport
	for rows.Next() {
		b, err := scanBackupImport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup import: %w", err)
		}
		imports = append(imports, *b)
	}
	return imports, rows.Err()
}

// DeleteOlderThan prunes history started before the cutoff.
func (s *BackupImportStore) DeleteOlderThan(before time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM backup_imports WHERE started_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old backup imports: %w", err)
	}
	return result.RowsAffected()
}
