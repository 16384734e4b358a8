package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dukerupert/garagebook/internal/model"
)

func strPtr(s string) *string { return &s }

func seedVehicle(t *testing.T, db *sql.DB, orgID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := NewCustomerStore(db).InsertMany(ctx, []model.Customer{{
		OrganizationID: orgID, ID: "cust-1", Name: "Ada", CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	}}); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	if err := NewVehicleStore(db).Insert(ctx, model.Vehicle{
		OrganizationID: orgID, ID: "veh-1", CustomerID: strPtr("cust-1"), Make: "Honda", Model: "Civic",
		Year: 2009, CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("insert vehicle: %v", err)
	}
}

func TestVehicleRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	orgID := createTestOrg(t, db, "Shop")
	seedVehicle(t, db, orgID)
	ctx := context.Background()
	vs := NewVehicleStore(db)

	v, err := vs.GetByID(ctx, orgID, "veh-1")
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	if v == nil {
		t.Fatal("expected vehicle, got nil")
	}
	if v.CustomerID == nil || *v.CustomerID != "cust-1" {
		t.Errorf("customer_id = %v, want cust-1", v.CustomerID)
	}
	if v.ImagePath != nil {
		t.Errorf("image_path = %q, want nil", *v.ImagePath)
	}

	due := 120000
	if err := vs.InsertReminders(ctx, []model.Reminder{{
		OrganizationID: orgID, ID: "rem-1", VehicleID: "veh-1", Title: "Timing belt", DueMileage: &due, CreatedBy: "u1",
	}}); err != nil {
		t.Fatalf("insert reminders: %v", err)
	}
	reminders, err := vs.ListReminders(ctx, orgID, "veh-1")
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(reminders) != 1 {
		t.Fatalf("len = %d, want 1", len(reminders))
	}
	if reminders[0].DueMileage == nil || *reminders[0].DueMileage != due {
		t.Errorf("due_mileage = %v, want %d", reminders[0].DueMileage, due)
	}
	if reminders[0].DueDate != nil {
		t.Errorf("due_date = %v, want nil", reminders[0].DueDate)
	}

	missing, err := vs.GetByID(ctx, orgID, "veh-2")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing vehicle")
	}
}

func TestVehicleDanglingCustomerRejected(t *testing.T) {
	db := setupTestDB(t)
	orgID := createTestOrg(t, db, "Shop")
	now := time.Now().UTC()

	err := NewVehicleStore(db).Insert(context.Background(), model.Vehicle{
		OrganizationID: orgID, ID: "veh-1", CustomerID: strPtr("ghost"), CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	})
	if err == nil {
		t.Fatal("expected foreign key error for unknown customer")
	}
}

func TestVehicleCustomerLinkIsOrganizationScoped(t *testing.T) {
	db := setupTestDB(t)
	orgA := createTestOrg(t, db, "A")
	orgB := createTestOrg(t, db, "B")
	seedVehicle(t, db, orgA)
	now := time.Now().UTC()

	// cust-1 exists only in orgA.
	err := NewVehicleStore(db).Insert(context.Background(), model.Vehicle{
		OrganizationID: orgB, ID: "veh-1", CustomerID: strPtr("cust-1"), CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	})
	if err == nil {
		t.Fatal("expected foreign key error for customer in another organization")
	}
}

func TestServiceRecordItems(t *testing.T) {
	db := setupTestDB(t)
	orgID := createTestOrg(t, db, "Shop")
	seedVehicle(t, db, orgID)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	srs := NewServiceRecordStore(db)

	if err := srs.Insert(ctx, model.ServiceRecord{
		OrganizationID: orgID, ID: "sr-1", VehicleID: "veh-1", Title: "Oil change", Status: "completed",
		ServiceDate: &now, CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("insert service record: %v", err)
	}
	if err := srs.InsertPartItems(ctx, []model.PartItem{{
		OrganizationID: orgID, ID: "sp-1", ParentID: "sr-1", Name: "Filter", Quantity: 1, UnitPrice: 9.5, Total: 9.5, CreatedBy: "u1",
	}}); err != nil {
		t.Fatalf("insert part items: %v", err)
	}
	if err := srs.InsertLaborItems(ctx, []model.LaborItem{{
		OrganizationID: orgID, ID: "sl-1", ParentID: "sr-1", Description: "Drain", Hours: 0.5, Rate: 80, Total: 40, CreatedBy: "u1",
	}}); err != nil {
		t.Fatalf("insert labor items: %v", err)
	}

	parts, err := srs.ListPartItems(ctx, orgID, "sr-1")
	if err != nil {
		t.Fatalf("list part items: %v", err)
	}
	if len(parts) != 1 || parts[0].ID != "sp-1" || parts[0].ParentID != "sr-1" {
		t.Errorf("parts = %+v, want one sp-1 under sr-1", parts)
	}
	if parts[0].InventoryPartID != nil {
		t.Errorf("inventory_part_id = %q, want nil", *parts[0].InventoryPartID)
	}

	records, err := srs.ListByVehicle(ctx, orgID, "veh-1")
	if err != nil {
		t.Fatalf("list by vehicle: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	if records[0].ServiceDate == nil || !records[0].ServiceDate.Equal(now) {
		t.Errorf("service_date = %v, want %v", records[0].ServiceDate, now)
	}
	if records[0].Mileage != nil {
		t.Errorf("mileage = %v, want nil", records[0].Mileage)
	}
}

func TestVehicleDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	orgID := createTestOrg(t, db, "Shop")
	seedVehicle(t, db, orgID)
	ctx := context.Background()
	now := time.Now().UTC()

	srs := NewServiceRecordStore(db)
	if err := srs.Insert(ctx, model.ServiceRecord{
		OrganizationID: orgID, ID: "sr-1", VehicleID: "veh-1", Status: "completed", CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("insert service record: %v", err)
	}
	if err := srs.InsertPayments(ctx, []model.Payment{{
		OrganizationID: orgID, ID: "pay-1", ServiceRecordID: "sr-1", Amount: 50, CreatedBy: "u1",
	}}); err != nil {
		t.Fatalf("insert payments: %v", err)
	}
	if err := NewVehicleStore(db).InsertNotes(ctx, []model.VehicleNote{{
		OrganizationID: orgID, ID: "n-1", VehicleID: "veh-1", Content: "rattle", CreatedBy: "u1", CreatedAt: now,
	}}); err != nil {
		t.Fatalf("insert notes: %v", err)
	}

	if err := NewVehicleStore(db).DeleteByOrganization(ctx, orgID); err != nil {
		t.Fatalf("delete vehicles: %v", err)
	}

	for _, table := range []string{"vehicles", "vehicle_notes", "service_records", "service_payments"} {
		n, err := CountByOrganization(ctx, db, table, orgID)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s count = %d, want 0", table, n)
		}
	}
	n, _ := CountByOrganization(ctx, db, "customers", orgID)
	if n != 1 {
		t.Errorf("customers count = %d, want 1", n)
	}
}

func TestQuoteOptionalLinks(t *testing.T) {
	db := setupTestDB(t)
	orgID := createTestOrg(t, db, "Shop")
	seedVehicle(t, db, orgID)
	ctx := context.Background()
	now := time.Now().UTC()
	qs := NewQuoteStore(db)

	if err := qs.Insert(ctx, model.Quote{
		OrganizationID: orgID, ID: "q-1", Status: "draft", CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("insert unlinked quote: %v", err)
	}
	if err := qs.Insert(ctx, model.Quote{
		OrganizationID: orgID, ID: "q-2", CustomerID: strPtr("cust-1"), VehicleID: strPtr("veh-1"),
		Status: "sent", CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("insert linked quote: %v", err)
	}
	if err := qs.Insert(ctx, model.Quote{
		OrganizationID: orgID, ID: "q-3", VehicleID: strPtr("veh-404"), Status: "draft", CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	}); err == nil {
		t.Error("expected foreign key error for unknown vehicle")
	}

	q, err := qs.GetByID(ctx, orgID, "q-1")
	if err != nil {
		t.Fatalf("get quote: %v", err)
	}
	if q.CustomerID != nil || q.VehicleID != nil {
		t.Errorf("links = %v/%v, want nil/nil", q.CustomerID, q.VehicleID)
	}
}

func TestInsertRowsChunks(t *testing.T) {
	db := setupTestDB(t)
	orgID := createTestOrg(t, db, "Shop")
	ctx := context.Background()
	now := time.Now().UTC()

	// 250 customers x 10 columns needs three statements.
	customers := make([]model.Customer, 250)
	for i := range customers {
		customers[i] = model.Customer{
			OrganizationID: orgID, ID: fmt.Sprintf("cust-%03d", i), CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
		}
	}
	if err := NewCustomerStore(db).InsertMany(ctx, customers); err != nil {
		t.Fatalf("insert many: %v", err)
	}
	n, err := CountByOrganization(ctx, db, "customers", orgID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 250 {
		t.Errorf("count = %d, want 250", n)
	}
}

func TestInTxRollsBack(t *testing.T) {
	db := setupTestDB(t)
	orgID := createTestOrg(t, db, "Shop")
	ctx := context.Background()
	now := time.Now().UTC()
	errBoom := errors.New("boom")

	err := InTx(ctx, db, func(tx *sql.Tx) error {
		if err := NewCustomerStore(tx).InsertMany(ctx, []model.Customer{{
			OrganizationID: orgID, ID: "cust-1", CreatedBy: "u1", CreatedAt: now, UpdatedAt: now,
		}}); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want %v", err, errBoom)
	}
	n, _ := CountByOrganization(ctx, db, "customers", orgID)
	if n != 0 {
		t.Errorf("customers count = %d, want 0 after rollback", n)
	}
}

func TestSettingsInsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	orgID := createTestOrg(t, db, "Shop")
	ctx := context.Background()
	ss := NewSettingsStore(db)

	if err := ss.InsertMany(ctx, []model.Setting{
		{OrganizationID: orgID, ID: "s1", Key: "currency", Value: "USD", CreatedBy: "u1", UpdatedAt: time.Now().UTC()},
	}); err != nil {
		t.Fatalf("insert settings: %v", err)
	}
	v, err := ss.Get(ctx, orgID, "currency")
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	if v != "USD" {
		t.Errorf("value = %q, want %q", v, "USD")
	}
	if _, err := ss.Get(ctx, orgID, "missing"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestBackupImportStoreLifecycle(t *testing.T) {
	db := setupTestDB(t)
	orgID := createTestOrg(t, db, "Shop")
	s := NewBackupImportStore(db)

	rec, err := s.Start(orgID, "user-1", 2, true)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rec.Status != model.BackupImportRunning {
		t.Errorf("Status = %q, want running", rec.Status)
	}

	if err := s.Fail(rec.ID, "files", "disk full", 12, 3); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	got, err := s.GetByID(rec.ID, orgID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.BackupImportFailed || got.Phase != "files" || got.ErrorMessage != "disk full" {
		t.Errorf("got %+v, want failed files-phase record", got)
	}
	if got.RowsRestored != 12 || got.FilesWritten != 3 || !got.Archive {
		t.Errorf("got rows=%d files=%d archive=%v", got.RowsRestored, got.FilesWritten, got.Archive)
	}

	// Scoped to the organization.
	other := createTestOrg(t, db, "Other")
	if got, _ := s.GetByID(rec.ID, other); got != nil {
		t.Error("record visible to another organization")
	}

	second, err := s.Start(orgID, "user-1", 1, false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Complete(second.ID, 5, 0, 0); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	list, err := s.List(orgID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("List = %+v, want newest first", list)
	}
	if list[0].CompletedAt == nil || list[0].RowsRestored != 5 {
		t.Errorf("completed record = %+v", list[0])
	}

	n, err := s.DeleteOlderThan(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
}
