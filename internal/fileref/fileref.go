// Package fileref rewrites stored file references so they point into a given
// organization's file namespace.
package fileref

import "strings"

const (
	// CanonicalPrefix is the protected file-serving route: /api/protected/files/<org>/<category>/<filename>.
	CanonicalPrefix = "/api/protected/files/"

	deprecatedPrefix = "/api/files/"
	legacyPrefix     = "/uploads/"
)

// URL returns the canonical reference for a file owned by orgID.
func URL(orgID, category, filename string) string {
	return CanonicalPrefix + orgID + "/" + category + "/" + filename
}

// Rewrite returns path with its organization segment set to orgID. Nil stays nil.
func Rewrite(path *string, orgID string) *string {
	if path == nil {
		return nil
	}
	s := RewriteString(*path, orgID)
	return &s
}

// RewriteString applies the first matching rule:
//
//	/api/protected/files/<org>/<rest>  ->  /api/protected/files/<orgID>/<rest>
//	/api/files/<org>/<rest>            ->  /api/protected/files/<orgID>/<rest>
//	/uploads/<rest>                    ->  /api/protected/files/<orgID>/<rest>
//
// Anything else, including a prefix with nothing after the organization
// segment, is returned unchanged. Applying it twice gives the same result.
func RewriteString(s, orgID string) string {
	if rest, ok := strings.CutPrefix(s, CanonicalPrefix); ok {
		if tail, ok := afterOrgSegment(rest); ok {
			return CanonicalPrefix + orgID + "/" + tail
		}
		return s
	}
	if rest, ok := strings.CutPrefix(s, deprecatedPrefix); ok {
		if tail, ok := afterOrgSegment(rest); ok {
			return CanonicalPrefix + orgID + "/" + tail
		}
		return s
	}
	if rest, ok := strings.CutPrefix(s, legacyPrefix); ok && rest != "" {
		return CanonicalPrefix + orgID + "/" + rest
	}
	return s
}

// afterOrgSegment splits "<org>/<tail>" and returns tail. Both parts must be
// non-empty.
func afterOrgSegment(rest string) (string, bool) {
	org, tail, found := strings.Cut(rest, "/")
	if !found || org == "" || tail == "" {
		return "", false
	}
	return tail, true
}
