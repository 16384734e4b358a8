package fileref

import "testing"

func TestRewriteString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"canonical other org", "/api/protected/files/org-OLD/vehicles/pic.png", "/api/protected/files/org-NEW/vehicles/pic.png"},
		{"canonical same org", "/api/protected/files/org-NEW/vehicles/pic.png", "/api/protected/files/org-NEW/vehicles/pic.png"},
		{"deprecated", "/api/files/org-OLD/logos/logo.png", "/api/protected/files/org-NEW/logos/logo.png"},
		{"legacy", "/uploads/vehicles/pic.png", "/api/protected/files/org-NEW/vehicles/pic.png"},
		{"empty", "", ""},
		{"external url", "https://cdn.example.com/pic.png", "https://cdn.example.com/pic.png"},
		{"plain value", "USD", "USD"},
		{"canonical without tail", "/api/protected/files/org-OLD", "/api/protected/files/org-OLD"},
		{"canonical trailing slash only", "/api/protected/files/org-OLD/", "/api/protected/files/org-OLD/"},
		{"deprecated without tail", "/api/files/org-OLD", "/api/files/org-OLD"},
		{"legacy bare prefix", "/uploads/", "/uploads/"},
		{"prefix must be at start", "x/uploads/a.png", "x/uploads/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteString(tt.in, "org-NEW"); got != tt.want {
				t.Errorf("RewriteString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewriteIdempotent(t *testing.T) {
	inputs := []string{
		"/api/protected/files/org-OLD/vehicles/pic.png",
		"/api/files/org-OLD/logos/logo.png",
		"/uploads/services/invoice.pdf",
		"plain",
	}
	for _, in := range inputs {
		once := RewriteString(in, "org-NEW")
		twice := RewriteString(once, "org-NEW")
		if once != twice {
			t.Errorf("RewriteString not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestRewriteNil(t *testing.T) {
	if got := Rewrite(nil, "org-NEW"); got != nil {
		t.Errorf("Rewrite(nil) = %q, want nil", *got)
	}
	in := "/uploads/vehicles/pic.png"
	got := Rewrite(&in, "org-NEW")
	if got == nil || *got != "/api/protected/files/org-NEW/vehicles/pic.png" {
		t.Errorf("Rewrite(%q) = %v", in, got)
	}
	if in != "/uploads/vehicles/pic.png" {
		t.Errorf("input mutated to %q", in)
	}
}

func TestURL(t *testing.T) {
	if got, want := URL("org-1", "logos", "a.png"), "/api/protected/files/org-1/logos/a.png"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
