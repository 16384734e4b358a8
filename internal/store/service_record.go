package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/garagebook/internal/model"
)

type ServiceRecordStore struct {
	db DBTX
}

func NewServiceRecordStore(db DBTX) *ServiceRecordStore {
	return &ServiceRecordStore{db: db}
}

func scanServiceRecord(scanner interface{ Scan(...any) error }) (*model.ServiceRecord, error) {
	var r model.ServiceRecord
	var serviceDate sql.NullTime
	var mileage sql.NullInt64
	err := scanner.Scan(
		&r.OrganizationID, &r.ID, &r.VehicleID, &r.Title, &r.Description, &serviceDate, &mileage,
		&r.Status, &r.Technician, &r.InvoiceNumber, &r.TotalCost, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ServiceDate = timePtr(serviceDate)
	r.Mileage = intPtr(mileage)
	return &r, nil
}

const serviceRecordCols = `organization_id, id, vehicle_id, title, description, service_date, mileage, status, technician, invoice_number, total_cost, created_by, created_at, updated_at`
const attachmentCols = `organization_id, id, service_record_id, file_name, file_path, mime_type, size, created_by, created_at`
const paymentCols = `organization_id, id, service_record_id, amount, method, reference, notes, paid_at, created_by`

func (s *ServiceRecordStore) Insert(ctx context.Context, r model.ServiceRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO service_records (`+serviceRecordCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.OrganizationID, r.ID, r.VehicleID, r.Title, r.Description, nullTime(r.ServiceDate), nullInt(r.Mileage),
		r.Status, r.Technician, r.InvoiceNumber, r.TotalCost, r.CreatedBy, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service record %q: %w", r.ID, err)
	}
	return nil
}

func (s *ServiceRecordStore) GetByID(ctx context.Context, orgID, id string) (*model.ServiceRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+serviceRecordCols+` FROM service_records WHERE organization_id = ? AND id = ?`, orgID, id,
	)
	r, err := scanServiceRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get service record: %w", err)
	}
	return r, nil
}

// ListByVehicle returns the service history for one vehicle, newest first.
func (s *ServiceRecordStore) ListByVehicle(ctx context.Context, orgID, vehicleID string) ([]model.ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+serviceRecordCols+` FROM service_records
		 WHERE organization_id = ? AND vehicle_id = ?
		 ORDER BY service_date DESC, id ASC`,
		orgID, vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list service records: %w", err)
	}
	defer rows.Close()

	var records []model.ServiceRecord
	for rows.Next() {
		r, err := scanServiceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func (s *ServiceRecordStore) InsertPartItems(ctx context.Context, items []model.PartItem) error {
	return insertPartItems(ctx, s.db, "service_part_items", "service_record_id", items)
}

func (s *ServiceRecordStore) InsertLaborItems(ctx context.Context, items []model.LaborItem) error {
	return insertLaborItems(ctx, s.db, "service_labor_items", "service_record_id", items)
}

func (s *ServiceRecordStore) ListPartItems(ctx context.Context, orgID, recordID string) ([]model.PartItem, error) {
	return listPartItems(ctx, s.db, "service_part_items", "service_record_id", orgID, recordID)
}

func (s *ServiceRecordStore) ListLaborItems(ctx context.Context, orgID, recordID string) ([]model.LaborItem, error) {
	return listLaborItems(ctx, s.db, "service_labor_items", "service_record_id", orgID, recordID)
}

func (s *ServiceRecordStore) InsertAttachments(ctx context.Context, attachments []model.Attachment) error {
	rows := make([][]any, 0, len(attachments))
	for _, a := range attachments {
		rows = append(rows, []any{
			a.OrganizationID, a.ID, a.ServiceRecordID, a.FileName, a.FilePath, a.MimeType, a.Size, a.CreatedBy, a.CreatedAt,
		})
	}
	return insertRows(ctx, s.db, "service_attachments", splitCols(attachmentCols), rows)
}

func (s *ServiceRecordStore) ListAttachments(ctx context.Context, orgID, recordID string) ([]model.Attachment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attachmentCols+` FROM service_attachments WHERE organization_id = ? AND service_record_id = ? ORDER BY id ASC`,
		orgID, recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []model.Attachment
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(
			&a.OrganizationID, &a.ID, &a.ServiceRecordID, &a.FileName, &a.FilePath, &a.MimeType, &a.Size, &a.CreatedBy, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (s *ServiceRecordStore) InsertPayments(ctx context.Context, payments []model.Payment) error {
	rows := make([][]any, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []any{
			p.OrganizationID, p.ID, p.ServiceRecordID, p.Amount, p.Method, p.Reference, p.Notes, nullTime(p.PaidAt), p.CreatedBy,
		})
	}
	return insertRows(ctx, s.db, "service_payments", splitCols(paymentCols), rows)
}

func (s *ServiceRecordStore) ListPayments(ctx context.Context, orgID, recordID string) ([]model.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paymentCols+` FROM service_payments WHERE organization_id = ? AND service_record_id = ? ORDER BY id ASC`,
		orgID, recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		var paidAt sql.NullTime
		if err := rows.Scan(
			&p.OrganizationID, &p.ID, &p.ServiceRecordID, &p.Amount, &p.Method, &p.Reference, &p.Notes, &paidAt, &p.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.PaidAt = timePtr(paidAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
