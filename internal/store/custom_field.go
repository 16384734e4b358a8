package store

import (
	"context"
	"fmt"

	"github.com/dukerupert/garagebook/internal/model"
)

type CustomFieldStore struct {
	db DBTX
}

func NewCustomFieldStore(db DBTX) *CustomFieldStore {
	return &CustomFieldStore{db: db}
}

const customFieldDefinitionCols = `organization_id, id, name, entity_type, field_type, options, required, sort_order, created_by, created_at`
const customFieldValueCols = `organization_id, id, definition_id, entity_id, value, created_by`

func (s *CustomFieldStore) InsertDefinition(ctx context.Context, d model.CustomFieldDefinition) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO custom_field_definitions (`+customFieldDefinitionCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.OrganizationID, d.ID, d.Name, d.EntityType, d.FieldType, d.Options,
		boolInt(d.Required), d.SortOrder, d.CreatedBy, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert custom field definition %q: %w", d.ID, err)
	}
	return nil
}

func (s *CustomFieldStore) InsertValues(ctx context.Context, values []model.CustomFieldValue) error {
	rows := make([][]any, 0, len(values))
	for _, v := range values {
		rows = append(rows, []any{v.OrganizationID, v.ID, v.DefinitionID, v.EntityID, v.Value, v.CreatedBy})
	}
	return insertRows(ctx, s.db, "custom_field_values", splitCols(customFieldValueCols), rows)
}

func (s *CustomFieldStore) ListDefinitions(ctx context.Context, orgID string) ([]model.CustomFieldDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+customFieldDefinitionCols+` FROM custom_field_definitions
		 WHERE organization_id = ? ORDER BY sort_order ASC, name ASC`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list custom field definitions: %w", err)
	}
	defer rows.Close()

	var defs []model.CustomFieldDefinition
	for rows.Next() {
		var d model.CustomFieldDefinition
		var required int
		if err := rows.Scan(
			&d.OrganizationID, &d.ID, &d.Name, &d.EntityType, &d.FieldType, &d.Options,
			&required, &d.SortOrder, &d.CreatedBy, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan custom field definition: %w", err)
		}
		d.Required = required != 0
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

func (s *CustomFieldStore) ListValues(ctx context.Context, orgID, definitionID string) ([]model.CustomFieldValue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+customFieldValueCols+` FROM custom_field_values
		 WHERE organization_id = ? AND definition_id = ? ORDER BY id ASC`, orgID, definitionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list custom field values: %w", err)
	}
	defer rows.Close()

	var values []model.CustomFieldValue
	for rows.Next() {
		var v model.CustomFieldValue
		if err := rows.Scan(&v.OrganizationID, &v.ID, &v.DefinitionID, &v.EntityID, &v.Value, &v.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan custom field value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// DeleteByOrganization removes definitions; their values go with them via ON DELETE CASCADE.
func (s *CustomFieldStore) DeleteByOrganization(ctx context.Context, orgID string) error {
	return deleteByOrganization(ctx, s.db, "custom_field_definitions", orgID)
}
