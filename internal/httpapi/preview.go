package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oin/wood-inspector/internal/frame"
)

var previewUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handlePreview streams the newest frame's sequence number and timestamp
// to a connected viewer every tick, giving an operator a lightweight
// live-feed heartbeat without shipping full frame bytes over the wire.
func (s *Server) handlePreview(buf *frame.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := previewUpgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Printf("preview upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()

		for range ticker.C {
			snap := buf.Snapshot()
			if len(snap) == 0 {
				continue
			}
			latest := snap[len(snap)-1]
			msg := map[string]any{
				"seq":       latest.Seq,
				"timestamp": latest.Timestamp,
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
