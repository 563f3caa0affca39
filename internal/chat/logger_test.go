package chat

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wtask/relay/internal/chat/registry"
)

func TestConnectionLogger(t *testing.T) {
	req := require.New(t)
	buf := bytes.Buffer{}
	base := slog.New(slog.NewTextHandler(&buf, nil))
	joined := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	connectionLogger(base, registry.Connection{
		ID:       7,
		Slot:     2,
		Session:  uuid.Nil,
		JoinedAt: joined,
	}).Info("Message")

	out := buf.String()
	req.Contains(out, "client=7")
	req.Contains(out, "slot=2")
	req.Contains(out, "session="+uuid.Nil.String())
	req.Contains(out, "peer=unknown")
	req.Contains(out, "joined_at=2024-05-01T12:30:00Z")
}
