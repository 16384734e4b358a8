package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/garagebook/internal/model"
)

type InventoryStore struct {
	db DBTX
}

func NewInventoryStore(db DBTX) *InventoryStore {
	return &InventoryStore{db: db}
}

func scanInventoryPart(scanner interface{ Scan(...any) error }) (*model.InventoryPart, error) {
	var p model.InventoryPart
	var imagePath sql.NullString
	err := scanner.Scan(
		&p.OrganizationID, &p.ID, &p.Name, &p.PartNumber, &p.Description, &p.Category,
		&p.Quantity, &p.MinQuantity, &p.UnitCost, &p.RetailPrice, &p.Supplier, &p.Location,
		&imagePath, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ImagePath = stringPtr(imagePath)
	return &p, nil
}

const inventoryPartCols = `organization_id, id, name, part_number, description, category, quantity, min_quantity, unit_cost, retail_price, supplier, location, image_path, created_by, created_at, updated_at`

func (s *InventoryStore) GetByID(ctx context.Context, orgID, id string) (*model.InventoryPart, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+inventoryPartCols+` FROM inventory_parts WHERE organization_id = ? AND id = ?`, orgID, id,
	)
	p, err := scanInventoryPart(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory part: %w", err)
	}
	return p, nil
}

func (s *InventoryStore) List(ctx context.Context, orgID string) ([]model.InventoryPart, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+inventoryPartCols+` FROM inventory_parts WHERE organization_id = ? ORDER BY name ASC, id ASC`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inventory parts: %w", err)
	}
	defer rows.Close()

	var parts []model.InventoryPart
	for rows.Next() {
		p, err := scanInventoryPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory part: %w", err)
		}
		parts = append(parts, *p)
	}
	return parts, rows.Err()
}

func (s *InventoryStore) InsertMany(ctx context.Context, parts []model.InventoryPart) error {
	rows := make([][]any, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, []any{
			p.OrganizationID, p.ID, p.Name, p.PartNumber, p.Description, p.Category,
			p.Quantity, p.MinQuantity, p.UnitCost, p.RetailPrice, p.Supplier, p.Location,
			nullString(p.ImagePath), p.CreatedBy, p.CreatedAt, p.UpdatedAt,
		})
	}
	return insertRows(ctx, s.db, "inventory_parts", splitCols(inventoryPartCols), rows)
}

func (s *InventoryStore) DeleteByOrganization(ctx context.Context, orgID string) error {
	return deleteByOrganization(ctx, s.db, "inventory_parts", orgID)
}
