package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/garagebook/internal/model"
)

type CustomerStore struct {
	db DBTX
}

func NewCustomerStore(db DBTX) *CustomerStore {
	return &CustomerStore{db: db}
}

func scanCustomer(scanner interface{ Scan(...any) error }) (*model.Customer, error) {
	var c model.Customer
	err := scanner.Scan(
		&c.OrganizationID, &c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Notes,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const customerCols = `organization_id, id, name, email, phone, address, notes, created_by, created_at, updated_at`

func (s *CustomerStore) GetByID(ctx context.Context, orgID, id string) (*model.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+customerCols+` FROM customers WHERE organization_id = ? AND id = ?`, orgID, id,
	)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (s *CustomerStore) List(ctx context.Context, orgID string) ([]model.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+customerCols+` FROM customers WHERE organization_id = ? ORDER BY name ASC, id ASC`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (s *CustomerStore) InsertMany(ctx context.Context, customers []model.Customer) error {
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{
			c.OrganizationID, c.ID, c.Name, c.Email, c.Phone, c.Address, c.Notes,
			c.CreatedBy, c.CreatedAt, c.UpdatedAt,
		})
	}
	return insertRows(ctx, s.db, "customers", splitCols(customerCols), rows)
}

func (s *CustomerStore) DeleteByOrganization(ctx context.Context, orgID string) error {
	return deleteByOrganization(ctx, s.db, "customers", orgID)
}
