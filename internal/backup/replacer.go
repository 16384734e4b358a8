package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/garagebook/internal/fileref"
	"github.com/dukerupert/garagebook/internal/model"
	"github.com/dukerupert/garagebook/internal/snapshot"
	"github.com/dukerupert/garagebook/internal/store"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/dukerupert/garagebook/internal/backup")

// stage is one step of the relational replacement. Stages run in slice order
// inside a single transaction; each may rely on rows created by earlier ones.
type stage struct {
	name string
	run  func(ctx context.Context, r *replacement) error
}

// stages lists the recreation order: parents before children.
var stages = []stage{
	{"settings", func(ctx context.Context, r *replacement) error { return r.settings(ctx) }},
	{"customers", func(ctx context.Context, r *replacement) error { return r.customers(ctx) }},
	{"custom-fields", func(ctx context.Context, r *replacement) error { return r.customFields(ctx) }},
	{"inventory", func(ctx context.Context, r *replacement) error { return r.inventory(ctx) }},
	{"vehicles", func(ctx context.Context, r *replacement) error { return r.vehicles(ctx) }},
	{"service-records", func(ctx context.Context, r *replacement) error { return r.serviceRecords(ctx) }},
	{"quotes", func(ctx context.Context, r *replacement) error { return r.quotes(ctx) }},
}

// StageNames returns the replacement stages in the order they run.
func StageNames() []string {
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = st.name
	}
	return names
}

// Counts is the number of rows recreated per table.
type Counts map[string]int

// Replacer swaps an organization's relational data for the contents of a snapshot.
type Replacer struct {
	db  *sql.DB
	now func() time.Time
}

func NewReplacer(db *sql.DB) *Replacer {
	return &Replacer{db: db, now: time.Now}
}

// Replace deletes every row owned by orgID and recreates the document's
// entities with their original ids, owned by orgID and actorID. It runs in one
// transaction: on any error nothing is changed.
func (rp *Replacer) Replace(ctx context.Context, doc *snapshot.Document, orgID, actorID string) (Counts, error) {
	ctx, span := tracer.Start(ctx, "backup.Replace", trace.WithAttributes(attribute.String("org_id", orgID)))
	defer span.End()

	var counts Counts
	err := store.InTx(ctx, rp.db, func(tx *sql.Tx) error {
		r := newReplacement(tx, doc, orgID, actorID, rp.now().UTC())
		if err := r.deleteExisting(ctx); err != nil {
			return err
		}
		for _, st := range stages {
			if err := runStage(ctx, r, st); err != nil {
				return err
			}
		}
		counts = r.counts
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace failed")
		return nil, err
	}
	return counts, nil
}

func runStage(ctx context.Context, r *replacement, st stage) error {
	ctx, span := tracer.Start(ctx, "backup.stage."+st.name)
	defer span.End()
	if err := st.run(ctx, r); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, st.name+" failed")
		return fmt.Errorf("%s: %w", st.name, err)
	}
	return nil
}

// replacement is the state of one Replace call. Every store is bound to the
// same transaction.
type replacement struct {
	doc     *snapshot.Document
	orgID   string
	actorID string
	now     time.Time

	settingsStore *store.SettingsStore
	customerStore *store.CustomerStore
	fieldStore    *store.CustomFieldStore
	partStore     *store.InventoryStore
	vehicleStore  *store.VehicleStore
	recordStore   *store.ServiceRecordStore
	quoteStore    *store.QuoteStore

	counts Counts
	// service records already created through a vehicle
	createdRecords map[string]bool
}

func newReplacement(tx store.DBTX, doc *snapshot.Document, orgID, actorID string, now time.Time) *replacement {
	return &replacement{
		doc:            doc,
		orgID:          orgID,
		actorID:        actorID,
		now:            now,
		settingsStore:  store.NewSettingsStore(tx),
		customerStore:  store.NewCustomerStore(tx),
		fieldStore:     store.NewCustomFieldStore(tx),
		partStore:      store.NewInventoryStore(tx),
		vehicleStore:   store.NewVehicleStore(tx),
		recordStore:    store.NewServiceRecordStore(tx),
		quoteStore:     store.NewQuoteStore(tx),
		counts:         make(Counts),
		createdRecords: make(map[string]bool),
	}
}

// deleteExisting clears the organization. Quotes and vehicles go first: they
// reference customers and inventory parts, and their children cascade.
func (r *replacement) deleteExisting(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"quotes", r.quoteStore.DeleteByOrganization},
		{"vehicles", r.vehicleStore.DeleteByOrganization},
		{"custom field definitions", r.fieldStore.DeleteByOrganization},
		{"inventory parts", r.partStore.DeleteByOrganization},
		{"customers", r.customerStore.DeleteByOrganization},
		{"settings", r.settingsStore.DeleteByOrganization},
	}
	for _, step := range steps {
		if err := step.fn(ctx, r.orgID); err != nil {
			return fmt.Errorf("clear %s: %w", step.name, err)
		}
	}
	return nil
}

func (r *replacement) settings(ctx context.Context) error {
	settings := make([]model.Setting, 0, len(r.doc.Settings))
	for i, s := range r.doc.Settings {
		if s.Key == "" {
			return fmt.Errorf("setting #%d: missing key", i)
		}
		id := settingID(r.orgID, s.Key)
		if s.ID != nil && *s.ID != "" {
			id = *s.ID
		}
		value := ""
		if s.Value != nil {
			value = fileref.RewriteString(*s.Value, r.orgID)
		}
		settings = append(settings, model.Setting{
			OrganizationID: r.orgID,
			ID:             id,
			Key:            s.Key,
			Value:          value,
			CreatedBy:      r.actorID,
			UpdatedAt:      r.now,
		})
	}
	if err := r.settingsStore.InsertMany(ctx, settings); err != nil {
		return err
	}
	r.counts["settings"] += len(settings)
	return nil
}

// settingID derives a stable id for a setting exported without one, so
// re-importing the same document yields the same rows.
func settingID(orgID, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(orgID+"/"+key)).String()
}

func (r *replacement) customers(ctx context.Context) error {
	customers := make([]model.Customer, 0, len(r.doc.Customers))
	for _, c := range r.doc.Customers {
		if err := requireID("customer", c.ID); err != nil {
			return err
		}
		createdAt, updatedAt, err := r.timestamps("customer", c.ID, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return err
		}
		customers = append(customers, model.Customer{
			OrganizationID: r.orgID,
			ID:             c.ID,
			Name:           c.Name,
			Email:          c.Email,
			Phone:          c.Phone,
			Address:        c.Address,
			Notes:          c.Notes,
			CreatedBy:      r.actorID,
			CreatedAt:      createdAt,
			UpdatedAt:      updatedAt,
		})
	}
	if err := r.customerStore.InsertMany(ctx, customers); err != nil {
		return err
	}
	r.counts["customers"] += len(customers)
	return nil
}

// customFields inserts definitions one at a time; each definition must exist
// before its values.
func (r *replacement) customFields(ctx context.Context) error {
	for _, d := range r.doc.CustomFieldDefinitions {
		if err := requireID("custom field definition", d.ID); err != nil {
			return err
		}
		if d.Name == "" {
			return fmt.Errorf("custom field definition %q: missing name", d.ID)
		}
		options := d.Options
		if options == nil {
			options = []string{}
		}
		encoded, err := json.Marshal(options)
		if err != nil {
			return fmt.Errorf("custom field definition %q: encode options: %w", d.ID, err)
		}
		createdAt, err := r.timestamp("custom field definition", d.ID, "createdAt", d.CreatedAt)
		if err != nil {
			return err
		}
		fieldType := d.FieldType
		if fieldType == "" {
			fieldType = "text"
		}
		if err := r.fieldStore.InsertDefinition(ctx, model.CustomFieldDefinition{
			OrganizationID: r.orgID,
			ID:             d.ID,
			Name:           d.Name,
			EntityType:     d.EntityType,
			FieldType:      fieldType,
			Options:        string(encoded),
			Required:       d.Required,
			SortOrder:      d.SortOrder,
			CreatedBy:      r.actorID,
			CreatedAt:      createdAt,
		}); err != nil {
			return err
		}

		values := make([]model.CustomFieldValue, 0, len(d.Values))
		for _, v := range d.Values {
			if err := requireID("custom field value", v.ID); err != nil {
				return err
			}
			values = append(values, model.CustomFieldValue{
				OrganizationID: r.orgID,
				ID:             v.ID,
				DefinitionID:   d.ID,
				EntityID:       v.EntityID,
				Value:          v.Value,
				CreatedBy:      r.actorID,
			})
		}
		if err := r.fieldStore.InsertValues(ctx, values); err != nil {
			return err
		}
		r.counts["custom_field_definitions"]++
		r.counts["custom_field_values"] += len(values)
	}
	return nil
}

func (r *replacement) inventory(ctx context.Context) error {
	parts := make([]model.InventoryPart, 0, len(r.doc.InventoryParts))
	for _, p := range r.doc.InventoryParts {
		if err := requireID("inventory part", p.ID); err != nil {
			return err
		}
		createdAt, updatedAt, err := r.timestamps("inventory part", p.ID, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return err
		}
		parts = append(parts, model.InventoryPart{
			OrganizationID: r.orgID,
			ID:             p.ID,
			Name:           p.Name,
			PartNumber:     p.PartNumber,
			Description:    p.Description,
			Category:       p.Category,
			Quantity:       p.Quantity,
			MinQuantity:    p.MinQuantity,
			UnitCost:       p.UnitCost,
			RetailPrice:    p.RetailPrice,
			Supplier:       p.Supplier,
			Location:       p.Location,
			ImagePath:      fileref.Rewrite(p.ImagePath, r.orgID),
			CreatedBy:      r.actorID,
			CreatedAt:      createdAt,
			UpdatedAt:      updatedAt,
		})
	}
	if err := r.partStore.InsertMany(ctx, parts); err != nil {
		return err
	}
	r.counts["inventory_parts"] += len(parts)
	return nil
}

// vehicles inserts each vehicle, then its logs, then its nested service records.
func (r *replacement) vehicles(ctx context.Context) error {
	for _, v := range r.doc.Vehicles {
		if err := requireID("vehicle", v.ID); err != nil {
			return err
		}
		createdAt, updatedAt, err := r.timestamps("vehicle", v.ID, v.CreatedAt, v.UpdatedAt)
		if err != nil {
			return err
		}
		if err := r.vehicleStore.Insert(ctx, model.Vehicle{
			OrganizationID: r.orgID,
			ID:             v.ID,
			CustomerID:     emptyAsNil(v.CustomerID),
			Make:           v.Make,
			Model:          v.Model,
			Year:           v.Year,
			VIN:            v.VIN,
			LicensePlate:   v.LicensePlate,
			Color:          v.Color,
			Mileage:        v.Mileage,
			ImagePath:      fileref.Rewrite(v.ImagePath, r.orgID),
			CreatedBy:      r.actorID,
			CreatedAt:      createdAt,
			UpdatedAt:      updatedAt,
		}); err != nil {
			return err
		}
		r.counts["vehicles"]++

		if err := r.vehicleNotes(ctx, v); err != nil {
			return err
		}
		if err := r.fuelLogs(ctx, v); err != nil {
			return err
		}
		if err := r.reminders(ctx, v); err != nil {
			return err
		}
		for _, sr := range v.ServiceRecords {
			if err := r.serviceRecord(ctx, v.ID, sr); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *replacement) vehicleNotes(ctx context.Context, v snapshot.Vehicle) error {
	notes := make([]model.VehicleNote, 0, len(v.Notes))
	for _, n := range v.Notes {
		if err := requireID("vehicle note", n.ID); err != nil {
			return err
		}
		createdAt, err := r.timestamp("vehicle note", n.ID, "createdAt", n.CreatedAt)
		if err != nil {
			return err
		}
		notes = append(notes, model.VehicleNote{
			OrganizationID: r.orgID,
			ID:             n.ID,
			VehicleID:      v.ID,
			Content:        n.Content,
			CreatedBy:      r.actorID,
			CreatedAt:      createdAt,
		})
	}
	if err := r.vehicleStore.InsertNotes(ctx, notes); err != nil {
		return err
	}
	r.counts["vehicle_notes"] += len(notes)
	return nil
}

func (r *replacement) fuelLogs(ctx context.Context, v snapshot.Vehicle) error {
	logs := make([]model.FuelLog, 0, len(v.FuelLogs))
	for _, l := range v.FuelLogs {
		if err := requireID("fuel log", l.ID); err != nil {
			return err
		}
		date, err := r.optionalDate("fuel log", l.ID, "date", l.Date)
		if err != nil {
			return err
		}
		logs = append(logs, model.FuelLog{
			OrganizationID: r.orgID,
			ID:             l.ID,
			VehicleID:      v.ID,
			Date:           date,
			Odometer:       l.Odometer,
			Gallons:        l.Gallons,
			PricePerGallon: l.PricePerGallon,
			TotalCost:      l.TotalCost,
			FullTank:       l.FullTank,
			Notes:          l.Notes,
			CreatedBy:      r.actorID,
		})
	}
	if err := r.vehicleStore.InsertFuelLogs(ctx, logs); err != nil {
		return err
	}
	r.counts["fuel_logs"] += len(logs)
	return nil
}

func (r *replacement) reminders(ctx context.Context, v snapshot.Vehicle) error {
	reminders := make([]model.Reminder, 0, len(v.Reminders))
	for _, rem := range v.Reminders {
		if err := requireID("reminder", rem.ID); err != nil {
			return err
		}
		dueDate, err := r.optionalDate("reminder", rem.ID, "dueDate", rem.DueDate)
		if err != nil {
			return err
		}
		completedAt, err := r.optionalDate("reminder", rem.ID, "completedAt", rem.CompletedAt)
		if err != nil {
			return err
		}
		reminders = append(reminders, model.Reminder{
			OrganizationID: r.orgID,
			ID:             rem.ID,
			VehicleID:      v.ID,
			Title:          rem.Title,
			Description:    rem.Description,
			DueDate:        dueDate,
			DueMileage:     rem.DueMileage,
			Completed:      rem.Completed,
			CompletedAt:    completedAt,
			CreatedBy:      r.actorID,
		})
	}
	if err := r.vehicleStore.InsertReminders(ctx, reminders); err != nil {
		return err
	}
	r.counts["reminders"] += len(reminders)
	return nil
}

// serviceRecords handles the legacy layout where service records sit at the
// top level of the document. Records already created through their vehicle
// are skipped.
func (r *replacement) serviceRecords(ctx context.Context) error {
	for _, sr := range r.doc.ServiceRecords {
		if err := requireID("service record", sr.ID); err != nil {
			return err
		}
		if r.createdRecords[sr.ID] {
			continue
		}
		if sr.VehicleID == nil || *sr.VehicleID == "" {
			return fmt.Errorf("service record %q: missing vehicleId", sr.ID)
		}
		if err := r.serviceRecord(ctx, *sr.VehicleID, sr); err != nil {
			return err
		}
	}
	return nil
}

// serviceRecord inserts one record under vehicleID followed by its part items,
// labor items, attachments and payments.
func (r *replacement) serviceRecord(ctx context.Context, vehicleID string, sr snapshot.ServiceRecord) error {
	if err := requireID("service record", sr.ID); err != nil {
		return err
	}
	createdAt, updatedAt, err := r.timestamps("service record", sr.ID, sr.CreatedAt, sr.UpdatedAt)
	if err != nil {
		return err
	}
	serviceDate, err := r.optionalDate("service record", sr.ID, "serviceDate", sr.ServiceDate)
	if err != nil {
		return err
	}
	status := sr.Status
	if status == "" {
		status = "completed"
	}
	if err := r.recordStore.Insert(ctx, model.ServiceRecord{
		OrganizationID: r.orgID,
		ID:             sr.ID,
		VehicleID:      vehicleID,
		Title:          sr.Title,
		Description:    sr.Description,
		ServiceDate:    serviceDate,
		Mileage:        sr.Mileage,
		Status:         status,
		Technician:     sr.Technician,
		InvoiceNumber:  sr.InvoiceNumber,
		TotalCost:      sr.TotalCost,
		CreatedBy:      r.actorID,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}); err != nil {
		return err
	}
	r.createdRecords[sr.ID] = true
	r.counts["service_records"]++

	parts, err := r.partItems(sr.ID, sr.PartItems)
	if err != nil {
		return err
	}
	if err := r.recordStore.InsertPartItems(ctx, parts); err != nil {
		return err
	}
	r.counts["service_part_items"] += len(parts)

	labor, err := r.laborItems(sr.ID, sr.LaborItems)
	if err != nil {
		return err
	}
	if err := r.recordStore.InsertLaborItems(ctx, labor); err != nil {
		return err
	}
	r.counts["service_labor_items"] += len(labor)

	attachments := make([]model.Attachment, 0, len(sr.Attachments))
	for _, a := range sr.Attachments {
		if err := requireID("attachment", a.ID); err != nil {
			return err
		}
		attachedAt, err := r.timestamp("attachment", a.ID, "createdAt", a.CreatedAt)
		if err != nil {
			return err
		}
		filePath := fileref.RewriteString(a.FilePath, r.orgID)
		if filePath == "" {
			filePath = a.FilePath
		}
		attachments = append(attachments, model.Attachment{
			OrganizationID:  r.orgID,
			ID:              a.ID,
			ServiceRecordID: sr.ID,
			FileName:        a.FileName,
			FilePath:        filePath,
			MimeType:        a.MimeType,
			Size:            a.Size,
			CreatedBy:       r.actorID,
			CreatedAt:       attachedAt,
		})
	}
	if err := r.recordStore.InsertAttachments(ctx, attachments); err != nil {
		return err
	}
	r.counts["service_attachments"] += len(attachments)

	payments := make([]model.Payment, 0, len(sr.Payments))
	for _, p := range sr.Payments {
		if err := requireID("payment", p.ID); err != nil {
			return err
		}
		paidAt, err := r.optionalDate("payment", p.ID, "paidAt", p.PaidAt)
		if err != nil {
			return err
		}
		payments = append(payments, model.Payment{
			OrganizationID:  r.orgID,
			ID:              p.ID,
			ServiceRecordID: sr.ID,
			Amount:          p.Amount,
			Method:          p.Method,
			Reference:       p.Reference,
			Notes:           p.Notes,
			PaidAt:          paidAt,
			CreatedBy:       r.actorID,
		})
	}
	if err := r.recordStore.InsertPayments(ctx, payments); err != nil {
		return err
	}
	r.counts["service_payments"] += len(payments)
	return nil
}

func (r *replacement) quotes(ctx context.Context) error {
	for _, q := range r.doc.Quotes {
		if err := requireID("quote", q.ID); err != nil {
			return err
		}
		createdAt, updatedAt, err := r.timestamps("quote", q.ID, q.CreatedAt, q.UpdatedAt)
		if err != nil {
			return err
		}
		validUntil, err := r.optionalDate("quote", q.ID, "validUntil", q.ValidUntil)
		if err != nil {
			return err
		}
		status := q.Status
		if status == "" {
			status = "draft"
		}
		if err := r.quoteStore.Insert(ctx, model.Quote{
			OrganizationID: r.orgID,
			ID:             q.ID,
			CustomerID:     emptyAsNil(q.CustomerID),
			VehicleID:      emptyAsNil(q.VehicleID),
			QuoteNumber:    q.QuoteNumber,
			Title:          q.Title,
			Status:         status,
			Notes:          q.Notes,
			Total:          q.Total,
			ValidUntil:     validUntil,
			CreatedBy:      r.actorID,
			CreatedAt:      createdAt,
			UpdatedAt:      updatedAt,
		}); err != nil {
			return err
		}
		r.counts["quotes"]++

		parts, err := r.partItems(q.ID, q.PartItems)
		if err != nil {
			return err
		}
		if err := r.quoteStore.InsertPartItems(ctx, parts); err != nil {
			return err
		}
		r.counts["quote_part_items"] += len(parts)

		labor, err := r.laborItems(q.ID, q.LaborItems)
		if err != nil {
			return err
		}
		if err := r.quoteStore.InsertLaborItems(ctx, labor); err != nil {
			return err
		}
		r.counts["quote_labor_items"] += len(labor)
	}
	return nil
}

// partItems converts part lines for parentID. The enclosing parent wins over
// any serviceRecordId or quoteId carried by the line itself.
func (r *replacement) partItems(parentID string, in []snapshot.PartItem) ([]model.PartItem, error) {
	items := make([]model.PartItem, 0, len(in))
	for _, p := range in {
		if err := requireID("part item", p.ID); err != nil {
			return nil, err
		}
		items = append(items, model.PartItem{
			OrganizationID:  r.orgID,
			ID:              p.ID,
			ParentID:        parentID,
			InventoryPartID: emptyAsNil(p.InventoryPartID),
			Name:            p.Name,
			PartNumber:      p.PartNumber,
			Quantity:        p.Quantity,
			UnitPrice:       p.UnitPrice,
			Total:           p.Total,
			CreatedBy:       r.actorID,
		})
	}
	return items, nil
}

func (r *replacement) laborItems(parentID string, in []snapshot.LaborItem) ([]model.LaborItem, error) {
	items := make([]model.LaborItem, 0, len(in))
	for _, l := range in {
		if err := requireID("labor item", l.ID); err != nil {
			return nil, err
		}
		items = append(items, model.LaborItem{
			OrganizationID: r.orgID,
			ID:             l.ID,
			ParentID:       parentID,
			Description:    l.Description,
			Hours:          l.Hours,
			Rate:           l.Rate,
			Total:          l.Total,
			CreatedBy:      r.actorID,
		})
	}
	return items, nil
}

// timestamp parses a createdAt/updatedAt style field, defaulting to the import time.
func (r *replacement) timestamp(kind, id, field string, s *string) (time.Time, error) {
	t, err := r.optionalDate(kind, id, field, s)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return r.now, nil
	}
	return *t, nil
}

func (r *replacement) timestamps(kind, id string, createdAt, updatedAt *string) (time.Time, time.Time, error) {
	created, err := r.timestamp(kind, id, "createdAt", createdAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	updated, err := r.timestamp(kind, id, "updatedAt", updatedAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return created, updated, nil
}

func (r *replacement) optionalDate(kind, id, field string, s *string) (*time.Time, error) {
	t, err := snapshot.ParseOptionalDate(s)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %s: %w", kind, id, field, err)
	}
	return t, nil
}

func requireID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s: missing id", kind)
	}
	return nil
}

// emptyAsNil treats an empty optional reference as absent.
func emptyAsNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Total is the number of rows across all tables.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
