package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/garagebook/internal/model"
)

type SettingsStore struct {
	db DBTX
}

func NewSettingsStore(db DBTX) *SettingsStore {
	return &SettingsStore{db: db}
}

const settingCols = `organization_id, id, key, value, created_by, updated_at`

func (s *SettingsStore) Get(ctx context.Context, orgID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE organization_id = ? AND key = ?`, orgID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) List(ctx context.Context, orgID string) ([]model.Setting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+settingCols+` FROM settings WHERE organization_id = ? ORDER BY key`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var st model.Setting
		if err := rows.Scan(&st.OrganizationID, &st.ID, &st.Key, &st.Value, &st.CreatedBy, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

func (s *SettingsStore) InsertMany(ctx context.Context, settings []model.Setting) error {
	rows := make([][]any, 0, len(settings))
	for _, st := range settings {
		rows = append(rows, []any{st.OrganizationID, st.ID, st.Key, st.Value, st.CreatedBy, st.UpdatedAt})
	}
	return insertRows(ctx, s.db, "settings", splitCols(settingCols), rows)
}

func (s *SettingsStore) DeleteByOrganization(ctx context.Context, orgID string) error {
	return deleteByOrganization(ctx, s.db, "settings", orgID)
}
