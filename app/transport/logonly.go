package transport

import (
	"context"
	"log/slog"
)

// LogOnly writes digests to the log instead of sending them. Used when no
// bot token is configured, so the pipeline stays observable in development.
type LogOnly struct{}

func NewLogOnly() *LogOnly {
	return &LogOnly{}
}

func (l *LogOnly) SendBatch(_ context.Context, externalID string, messages []string) error {
	for _, text := range messages {
		slog.Info("Digest message (log-only transport)", "recipient", externalID, "text", text)
	}
	return nil
}
