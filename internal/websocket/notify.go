package websocket

import "github.com/dukerupert/garagebook/internal/backup"

// BackupImported returns an import callback that tells the organization's
// connected clients their data was replaced.
func BackupImported(hub *Hub) backup.ImportCallback {
	return func(orgID string, result backup.Result) {
		extra := map[string]any{
			"version": result.Version,
			"rows":    result.Counts.Total(),
			"archive": result.Archive,
		}
		if result.Archive {
			extra["files_written"] = result.Files.Written
			extra["files_skipped"] = result.Files.Skipped
		}
		hub.BroadcastOrg(orgID, NewMessage("backup", "imported", orgID, extra))
	}
}
