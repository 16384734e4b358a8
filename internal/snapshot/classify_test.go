package snapshot

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func zipBytes(t *testing.T, entries map[string]string) []byte {
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

const minimalEnvelope = `{"version":2,"data":{"customers":[{"id":"cust-1","name":"Ada"}]}}`

func TestClassifyJSON(t *testing.T) {
	env, zr, err := Classify([]byte(minimalEnvelope), "application/json; charset=utf-8")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if zr != nil {
		t.Error("expected no archive for JSON payload")
	}
	if env.Version != 2 {
		t.Errorf("version = %d, want 2", env.Version)
	}
	if len(env.Data.Customers) != 1 || env.Data.Customers[0].ID != "cust-1" {
		t.Errorf("customers = %+v, want one cust-1", env.Data.Customers)
	}
}

func TestClassifyZip(t *testing.T) {
	body := zipBytes(t, map[string]string{
		"data.json":              minimalEnvelope,
		"files/vehicles/pic.png": "png",
	})

	env, zr, err := Classify(body, "application/zip")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if zr == nil {
		t.Fatal("expected archive reader")
	}
	if len(zr.File) != 2 {
		t.Errorf("archive entries = %d, want 2", len(zr.File))
	}
	if env.Data == nil || len(env.Data.Customers) != 1 {
		t.Errorf("data = %+v, want one customer", env.Data)
	}
}

func TestClassifyZipMissingManifest(t *testing.T) {
	body := zipBytes(t, map[string]string{
		"backup/data.json":       minimalEnvelope,
		"files/vehicles/pic.png": "png",
	})

	_, _, err := Classify(body, "application/octet-stream")
	if !errors.Is(err, ErrMissingManifest) {
		t.Errorf("err = %v, want ErrMissingManifest", err)
	}
}

func TestClassifyMislabeledJSON(t *testing.T) {
	env, zr, err := Classify([]byte(minimalEnvelope), "application/octet-stream")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if zr != nil {
		t.Error("expected no archive")
	}
	if env.Version != 2 {
		t.Errorf("version = %d, want 2", env.Version)
	}
}

func TestClassifyCorruptZipFallsBackToJSON(t *testing.T) {
	body := append([]byte("PK\x03\x04"), []byte("not really a zip")...)
	_, _, err := Classify(body, "")
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("err = %v, want ErrInvalidPayload", err)
	}
}

func TestClassifyBOM(t *testing.T) {
	body := append([]byte{0xEF, 0xBB, 0xBF}, []byte(minimalEnvelope)...)
	if _, _, err := Classify(body, "text/plain"); err != nil {
		t.Errorf("classify with BOM: %v", err)
	}
}

func TestClassifyInvalid(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		contentType string
	}{
		{"garbage json", []byte("{not json"), "application/json"},
		{"empty body", nil, "application/json"},
		{"garbage bytes", []byte("hello"), "application/octet-stream"},
		{"invalid utf8", []byte{'{', 0xff, 0xfe, '}'}, ""},
		{"string version", []byte(`{"version":"2","data":{}}`), "application/json"},
		{"string year", []byte(`{"version":2,"data":{"vehicles":[{"id":"v","year":"2009"}]}}`), "application/json"},
		{"object customers", []byte(`{"version":2,"data":{"customers":{}}}`), "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Classify(tt.body, tt.contentType)
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("err = %v, want ErrInvalidPayload", err)
			}
		})
	}
}

func TestClassifyZipManifestInvalid(t *testing.T) {
	body := zipBytes(t, map[string]string{"data.json": "{broken"})
	_, _, err := Classify(body, "application/zip")
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("err = %v, want ErrInvalidPayload", err)
	}
}
