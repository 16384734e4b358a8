package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/garagebook/internal/auth"
)

// HandleWebSocket returns an HTTP handler that upgrades authenticated
// connections and runs them as Hub clients of the caller's organization.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := auth.OrganizationID(r.Context())
		if orgID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			hub.logger.Warn("accept", "error", err)
			return
		}

		client := NewClient(hub, conn, orgID)
		client.Run(r.Context())
	}
}
