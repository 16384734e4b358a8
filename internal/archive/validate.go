// Package archive guards and replays the binary files bundled in a backup
// archive.
package archive

import (
	"slices"
	"strings"
)

const ManifestName = "data.json"

// Categories is the allow-list of upload subdirectories.
var Categories = []string{"logos", "vehicles", "inventory", "services"}

// roots are the archive prefixes files may live under. "uploads" is the layout
// written by older exports.
var roots = []string{"files", "uploads"}

// IsManifest reports whether name is the root manifest entry. Only the literal
// root name is trusted; nested or differently cased copies are ignored.
func IsManifest(name string) bool {
	return name == ManifestName
}

// ValidateEntry checks an archive entry name of the form
// <root>/<category>/<filename> and returns its category and filename. Directory
// entries, unknown roots or categories, and filenames that could escape the
// category directory are rejected.
func ValidateEntry(name string) (category, filename string, ok bool) {
	if name == "" || strings.HasSuffix(name, "/") {
		return "", "", false
	}
	parts := strings.Split(name, "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if !slices.Contains(roots, parts[0]) {
		return "", "", false
	}
	category, filename = parts[1], parts[2]
	if !ValidFile(category, filename) {
		return "", "", false
	}
	return category, filename, true
}

// ValidFile reports whether category is allowed and filename stays inside the
// category directory.
func ValidFile(category, filename string) bool {
	return slices.Contains(Categories, category) && safeFilename(filename)
}

func safeFilename(name string) bool {
	if name == "" || name == "." {
		return false
	}
	return !strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.ContainsRune(name, 0)
}
