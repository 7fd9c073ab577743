package realtime

import (
	"encoding/json"
	"log/slog"

	"go-inbox/internal/infrastructure/changefeed/port"
)

// Fanout returns a change feed handler that routes each event to the
// local connections entitled to it: message inserts go to the
// conversation room, upload progress goes to the uploading user.
func Fanout(router *Router, logger *slog.Logger) func(port.Event) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e port.Event) {
		payload, err := json.Marshal(e)
		if err != nil {
			logger.Error("realtime: encode event", "type", e.Type, "err", err)
			return
		}
		switch e.Type {
		case port.EventMessageInserted:
			if e.ConversationID == "" {
				return
			}
			n := router.Broadcast(e.ConversationID, payload, "")
			logger.Debug("realtime: message fan-out", "conversation_id", e.ConversationID, "delivered", n)
		case port.EventUploadProgress:
			if e.UserID == "" {
				return
			}
			router.NotifyUser(e.UserID, payload)
		default:
			logger.Warn("realtime: unknown event type", "type", e.Type)
		}
	}
}
