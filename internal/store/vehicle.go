package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/garagebook/internal/model"
)

// VehicleStore owns vehicles and the per-vehicle logs: notes, fuel logs and reminders.
type VehicleStore struct {
	db DBTX
}

func NewVehicleStore(db DBTX) *VehicleStore {
	return &VehicleStore{db: db}
}

func scanVehicle(scanner interface{ Scan(...any) error }) (*model.Vehicle, error) {
	var v model.Vehicle
	var customerID, imagePath sql.NullString
	err := scanner.Scan(
		&v.OrganizationID, &v.ID, &customerID, &v.Make, &v.Model, &v.Year, &v.VIN,
		&v.LicensePlate, &v.Color, &v.Mileage, &imagePath, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.CustomerID = stringPtr(customerID)
	v.ImagePath = stringPtr(imagePath)
	return &v, nil
}

const vehicleCols = `organization_id, id, customer_id, make, model, year, vin, license_plate, color, mileage, image_path, created_by, created_at, updated_at`
const vehicleNoteCols = `organization_id, id, vehicle_id, content, created_by, created_at`
const fuelLogCols = `organization_id, id, vehicle_id, date, odometer, gallons, price_per_gallon, total_cost, full_tank, notes, created_by`
const reminderCols = `organization_id, id, vehicle_id, title, description, due_date, due_mileage, completed, completed_at, created_by`

func (s *VehicleStore) Insert(ctx context.Context, v model.Vehicle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicles (`+vehicleCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.OrganizationID, v.ID, nullString(v.CustomerID), v.Make, v.Model, v.Year, v.VIN,
		v.LicensePlate, v.Color, v.Mileage, nullString(v.ImagePath), v.CreatedBy, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert vehicle %q: %w", v.ID, err)
	}
	return nil
}

func (s *VehicleStore) GetByID(ctx context.Context, orgID, id string) (*model.Vehicle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+vehicleCols+` FROM vehicles WHERE organization_id = ? AND id = ?`, orgID, id,
	)
	v, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func (s *VehicleStore) List(ctx context.Context, orgID string) ([]model.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+vehicleCols+` FROM vehicles WHERE organization_id = ? ORDER BY id ASC`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

// DeleteByOrganization removes vehicles. Notes, fuel logs, reminders and
// service records (with their items) cascade.
func (s *VehicleStore) DeleteByOrganization(ctx context.Context, orgID string) error {
	return deleteByOrganization(ctx, s.db, "vehicles", orgID)
}

// --- Notes ---

func (s *VehicleStore) InsertNotes(ctx context.Context, notes []model.VehicleNote) error {
	rows := make([][]any, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []any{n.OrganizationID, n.ID, n.VehicleID, n.Content, n.CreatedBy, n.CreatedAt})
	}
	return insertRows(ctx, s.db, "vehicle_notes", splitCols(vehicleNoteCols), rows)
}

func (s *VehicleStore) ListNotes(ctx context.Context, orgID, vehicleID string) ([]model.VehicleNote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+vehicleNoteCols+` FROM vehicle_notes WHERE organization_id = ? AND vehicle_id = ? ORDER BY created_at ASC, id ASC`,
		orgID, vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list vehicle notes: %w", err)
	}
	defer rows.Close()

	var notes []model.VehicleNote
	for rows.Next() {
		var n model.VehicleNote
		if err := rows.Scan(&n.OrganizationID, &n.ID, &n.VehicleID, &n.Content, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// --- Fuel logs ---

func (s *VehicleStore) InsertFuelLogs(ctx context.Context, logs []model.FuelLog) error {
	rows := make([][]any, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []any{
			l.OrganizationID, l.ID, l.VehicleID, nullTime(l.Date), l.Odometer, l.Gallons,
			l.PricePerGallon, l.TotalCost, boolInt(l.FullTank), l.Notes, l.CreatedBy,
		})
	}
	return insertRows(ctx, s.db, "fuel_logs", splitCols(fuelLogCols), rows)
}

func (s *VehicleStore) ListFuelLogs(ctx context.Context, orgID, vehicleID string) ([]model.FuelLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fuelLogCols+` FROM fuel_logs WHERE organization_id = ? AND vehicle_id = ? ORDER BY date ASC, id ASC`,
		orgID, vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list fuel logs: %w", err)
	}
	defer rows.Close()

	var logs []model.FuelLog
	for rows.Next() {
		var l model.FuelLog
		var date sql.NullTime
		var fullTank int
		if err := rows.Scan(
			&l.OrganizationID, &l.ID, &l.VehicleID, &date, &l.Odometer, &l.Gallons,
			&l.PricePerGallon, &l.TotalCost, &fullTank, &l.Notes, &l.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan fuel log: %w", err)
		}
		l.Date = timePtr(date)
		l.FullTank = fullTank != 0
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// --- Reminders ---

func (s *VehicleStore) InsertReminders(ctx context.Context, reminders []model.Reminder) error {
	rows := make([][]any, 0, len(reminders))
	for _, r := range reminders {
		rows = append(rows, []any{
			r.OrganizationID, r.ID, r.VehicleID, r.Title, r.Description, nullTime(r.DueDate),
			nullInt(r.DueMileage), boolInt(r.Completed), nullTime(r.CompletedAt), r.CreatedBy,
		})
	}
	return insertRows(ctx, s.db, "reminders", splitCols(reminderCols), rows)
}

func (s *VehicleStore) ListReminders(ctx context.Context, orgID, vehicleID string) ([]model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reminderCols+` FROM reminders WHERE organization_id = ? AND vehicle_id = ? ORDER BY id ASC`,
		orgID, vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var r model.Reminder
		var dueDate, completedAt sql.NullTime
		var dueMileage sql.NullInt64
		var completed int
		if err := rows.Scan(
			&r.OrganizationID, &r.ID, &r.VehicleID, &r.Title, &r.Description, &dueDate,
			&dueMileage, &completed, &completedAt, &r.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		r.DueDate = timePtr(dueDate)
		r.DueMileage = intPtr(dueMileage)
		r.Completed = completed != 0
		r.CompletedAt = timePtr(completedAt)
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}
