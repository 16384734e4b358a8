package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dukerupert/garagebook/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestOrg(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	org, err := NewOrganizationStore(db).Create(name)
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}
	return org.ID
}
