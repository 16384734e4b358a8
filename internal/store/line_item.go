package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/garagebook/internal/model"
)

// Part and labor lines share a shape between service records and quotes;
// only the table and parent column differ.

func partItemCols(parentCol string) string {
	return `organization_id, id, ` + parentCol + `, inventory_part_id, name, part_number, quantity, unit_price, total, created_by`
}

func laborItemCols(parentCol string) string {
	return `organization_id, id, ` + parentCol + `, description, hours, rate, total, created_by`
}

func insertPartItems(ctx context.Context, db DBTX, table, parentCol string, items []model.PartItem) error {
	rows := make([][]any, 0, len(items))
	for _, p := range items {
		rows = append(rows, []any{
			p.OrganizationID, p.ID, p.ParentID, nullString(p.InventoryPartID),
			p.Name, p.PartNumber, p.Quantity, p.UnitPrice, p.Total, p.CreatedBy,
		})
	}
	return insertRows(ctx, db, table, splitCols(partItemCols(parentCol)), rows)
}

func insertLaborItems(ctx context.Context, db DBTX, table, parentCol string, items []model.LaborItem) error {
	rows := make([][]any, 0, len(items))
	for _, l := range items {
		rows = append(rows, []any{
			l.OrganizationID, l.ID, l.ParentID, l.Description, l.Hours, l.Rate, l.Total, l.CreatedBy,
		})
	}
	return insertRows(ctx, db, table, splitCols(laborItemCols(parentCol)), rows)
}

func listPartItems(ctx context.Context, db DBTX, table, parentCol, orgID, parentID string) ([]model.PartItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+partItemCols(parentCol)+` FROM `+table+` WHERE organization_id = ? AND `+parentCol+` = ? ORDER BY id ASC`,
		orgID, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var items []model.PartItem
	for rows.Next() {
		var p model.PartItem
		var inventoryPartID sql.NullString
		if err := rows.Scan(
			&p.OrganizationID, &p.ID, &p.ParentID, &inventoryPartID,
			&p.Name, &p.PartNumber, &p.Quantity, &p.UnitPrice, &p.Total, &p.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		p.InventoryPartID = stringPtr(inventoryPartID)
		items = append(items, p)
	}
	return items, rows.Err()
}

func listLaborItems(ctx context.Context, db DBTX, table, parentCol, orgID, parentID string) ([]model.LaborItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+laborItemCols(parentCol)+` FROM `+table+` WHERE organization_id = ? AND `+parentCol+` = ? ORDER BY id ASC`,
		orgID, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var items []model.LaborItem
	for rows.Next() {
		var l model.LaborItem
		if err := rows.Scan(
			&l.OrganizationID, &l.ID, &l.ParentID, &l.Description, &l.Hours, &l.Rate, &l.Total, &l.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		items = append(items, l)
	}
	return items, rows.Err()
}
