package chat

import (
	"log/slog"
	"time"

	"github.com/wtask/relay/internal/chat/registry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// connectionLogger - attaches connection identity to log records.
func connectionLogger(l *slog.Logger, c registry.Connection) *slog.Logger {
	return l.With(
		"client", c.ID,
		"slot", c.Slot,
		"session", c.Session.String(),
		"peer", c.PeerString(),
		"joined_at", c.JoinedAt.Format(time.RFC3339),
	)
}
