package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/garagebook/internal/auth"
	"github.com/dukerupert/garagebook/internal/store"
)

const SessionCookieName = "garagebook_session"

// RequireAuth resolves the session token from the session cookie or an
// "Authorization: Bearer" header, checks the user still belongs to the
// session's organization, and populates AuthContext. Failures get a JSON 401.
func RequireAuth(sessionStore *store.SessionStore, orgStore *store.OrganizationStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(token)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			member, err := orgStore.GetMember(sess.OrganizationID, sess.UserID)
			if err != nil || member == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserID:         sess.UserID,
				OrganizationID: sess.OrganizationID,
				Role:           member.Role,
				SessionID:      sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the authenticated user has the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "authentication required")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
