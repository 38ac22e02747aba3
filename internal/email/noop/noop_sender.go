package noop

import (
	"context"
	"log"
	"strings"

	"veridoc/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs review alerts to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendReviewAlert(_ context.Context, recipients []string, alert port.ReviewAlert) error {
	log.Printf("[NOOP EMAIL] Review alert for document %s (%d critical, %d warnings) to %s: %s",
		alert.DocumentID, alert.CriticalCount, alert.WarningCount, strings.Join(recipients, ", "), alert.ReviewURL)
	return nil
}
