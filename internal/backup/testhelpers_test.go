package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dukerupert/garagebook/internal/archive"
	"github.com/dukerupert/garagebook/internal/database"
	"github.com/dukerupert/garagebook/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

type testEnv struct {
	db       *sql.DB
	dataDir  string
	importer *Importer
	metrics  *Metrics

	mu       sync.Mutex
	imported []string
}

func setupImportTest(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{db: db, dataDir: t.TempDir()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.metrics = NewMetrics(prometheus.NewRegistry())
	files := archive.NewRestorer(env.dataDir, 1<<20, logger)
	env.importer = NewImporter(db, files, env.metrics, logger, func(orgID string, _ Result) {
		env.mu.Lock()
		env.imported = append(env.imported, orgID)
		env.mu.Unlock()
	})
	return env
}

func (e *testEnv) createOrg(t *testing.T, name string) string {
	t.Helper()
	org, err := store.NewOrganizationStore(e.db).Create(name)
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}
	return org.ID
}

func (e *testEnv) importJSON(t *testing.T, orgID, body string) (*Result, error) {
	t.Helper()
	return e.importer.Import(context.Background(), []byte(body), "application/json", orgID, "actor-1")
}

func (e *testEnv) mustImportJSON(t *testing.T, orgID, body string) *Result {
	t.Helper()
	res, err := e.importJSON(t, orgID, body)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	return res
}

func (e *testEnv) count(t *testing.T, table, orgID string) int {
	t.Helper()
	n, err := store.CountByOrganization(context.Background(), e.db, table, orgID)
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

var allTables = []string{
	"settings", "customers", "custom_field_definitions", "custom_field_values",
	"inventory_parts", "vehicles", "vehicle_notes", "fuel_logs", "reminders",
	"service_records", "service_part_items", "service_labor_items",
	"service_attachments", "service_payments",
	"quotes", "quote_part_items", "quote_labor_items",
}

// tableCounts returns row counts for every organization-owned table.
func (e *testEnv) tableCounts(t *testing.T, orgID string) map[string]int {
	t.Helper()
	counts := make(map[string]int, len(allTables))
	for _, table := range allTables {
		counts[table] = e.count(t, table, orgID)
	}
	return counts
}

func zipBody(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const endToEndSnapshot = `{
  "version": 2,
  "data": {
    "customers": [{"id": "cust-1", "name": "Ada Lovelace"}],
    "vehicles": [{
      "id": "veh-1",
      "customerId": "cust-1",
      "make": "Honda",
      "model": "Civic",
      "year": 2009,
      "serviceRecords": [{
        "id": "sr-1",
        "vehicleId": "veh-1",
        "title": "Oil change",
        "partItems": [{"id": "sp-1", "serviceRecordId": "sr-1", "name": "Oil filter", "quantity": 1, "unitPrice": 9.5, "total": 9.5}]
      }]
    }]
  }
}`

const fullSnapshot = `{
  "version": 2,
  "data": {
    "settings": [
      {"id": "set-1", "key": "shop_name", "value": "Old Shop"},
      {"key": "shop_logo", "value": "/api/protected/files/org-OLD/logos/logo.png"}
    ],
    "customers": [
      {"id": "cust-1", "name": "Ada", "createdAt": "2023-01-02T03:04:05Z"},
      {"id": "cust-2", "name": "Grace"}
    ],
    "customFieldDefinitions": [{
      "id": "cf-1", "name": "Paint code", "entityType": "vehicle", "fieldType": "select",
      "options": ["red", "blue"], "required": true, "sortOrder": 2,
      "values": [{"id": "cfv-1", "definitionId": "cf-other", "entityId": "veh-1", "value": "red"}]
    }],
    "inventoryParts": [
      {"id": "inv-1", "name": "Oil filter", "quantity": 12, "unitCost": 4.25, "imagePath": "/uploads/inventory/filter.jpg"}
    ],
    "vehicles": [{
      "id": "veh-1", "customerId": "cust-1", "make": "Honda", "model": "Civic", "year": 2009,
      "imagePath": "/api/files/org-OLD/vehicles/civic.png",
      "notes": [{"id": "note-1", "content": "Rattle on cold start"}],
      "fuelLogs": [{"id": "fuel-1", "date": "2024-02-01", "odometer": 150000, "gallons": 10.5, "fullTank": true}],
      "reminders": [{"id": "rem-1", "title": "Timing belt", "dueMileage": 180000}],
      "serviceRecords": [{
        "id": "sr-1", "title": "Oil change", "serviceDate": "2024-02-03T10:00:00",
        "partItems": [{"id": "sp-1", "inventoryPartId": "inv-1", "name": "Oil filter", "quantity": 1, "total": 9.5}],
        "laborItems": [{"id": "sl-1", "description": "Drain and fill", "hours": 0.5, "rate": 80, "total": 40}],
        "attachments": [{"id": "att-1", "fileName": "invoice.pdf", "filePath": "/api/protected/files/org-OLD/services/invoice.pdf", "size": 1024}],
        "payments": [{"id": "pay-1", "amount": 49.5, "method": "card", "paidAt": "2024-02-03T11:00:00Z"}]
      }]
    }],
    "quotes": [{
      "id": "q-1", "customerId": "cust-2", "quoteNumber": "Q-001", "title": "Brakes",
      "partItems": [{"id": "qp-1", "name": "Pads", "quantity": 2, "unitPrice": 30, "total": 60}],
      "laborItems": [{"id": "ql-1", "description": "Fit pads", "hours": 1, "rate": 80, "total": 80}]
    }]
  }
}`
