package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/garagebook/internal/model"
)

type QuoteStore struct {
	db DBTX
}

func NewQuoteStore(db DBTX) *QuoteStore {
	return &QuoteStore{db: db}
}

func scanQuote(scanner interface{ Scan(...any) error }) (*model.Quote, error) {
	var q model.Quote
	var customerID, vehicleID sql.NullString
	var validUntil sql.NullTime
	err := scanner.Scan(
		&q.OrganizationID, &q.ID, &customerID, &vehicleID, &q.QuoteNumber, &q.Title, &q.Status,
		&q.Notes, &q.Total, &validUntil, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	q.CustomerID = stringPtr(customerID)
	q.VehicleID = stringPtr(vehicleID)
	q.ValidUntil = timePtr(validUntil)
	return &q, nil
}

const quoteCols = `organization_id, id, customer_id, vehicle_id, quote_number, title, status, notes, total, valid_until, created_by, created_at, updated_at`

func (s *QuoteStore) Insert(ctx context.Context, q model.Quote) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (`+quoteCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.OrganizationID, q.ID, nullString(q.CustomerID), nullString(q.VehicleID), q.QuoteNumber, q.Title, q.Status,
		q.Notes, q.Total, nullTime(q.ValidUntil), q.CreatedBy, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote %q: %w", q.ID, err)
	}
	return nil
}

func (s *QuoteStore) GetByID(ctx context.Context, orgID, id string) (*model.Quote, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+quoteCols+` FROM quotes WHERE organization_id = ? AND id = ?`, orgID, id,
	)
	q, err := scanQuote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

func (s *QuoteStore) List(ctx context.Context, orgID string) ([]model.Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quoteCols+` FROM quotes WHERE organization_id = ? ORDER BY created_at DESC, id ASC`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []model.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}

func (s *QuoteStore) InsertPartItems(ctx context.Context, items []model.PartItem) error {
	return insertPartItems(ctx, s.db, "quote_part_items", "quote_id", items)
}

func (s *QuoteStore) InsertLaborItems(ctx context.Context, items []model.LaborItem) error {
	return insertLaborItems(ctx, s.db, "quote_labor_items", "quote_id", items)
}

func (s *QuoteStore) ListPartItems(ctx context.Context, orgID, quoteID string) ([]model.PartItem, error) {
	return listPartItems(ctx, s.db, "quote_part_items", "quote_id", orgID, quoteID)
}

func (s *QuoteStore) ListLaborItems(ctx context.Context, orgID, quoteID string) ([]model.LaborItem, error) {
	return listLaborItems(ctx, s.db, "quote_labor_items", "quote_id", orgID, quoteID)
}

// DeleteByOrganization removes quotes; their part and labor lines cascade.
func (s *QuoteStore) DeleteByOrganization(ctx context.Context, orgID string) error {
	return deleteByOrganization(ctx, s.db, "quotes", orgID)
}
