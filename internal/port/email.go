package port

import "context"

// ReviewAlert summarizes why a document needs human review.
type ReviewAlert struct {
	DocumentID     string
	DocumentType   string
	CriticalCount  int
	WarningCount   int
	ConflictFields []string
	ReviewURL      string
}

// EmailSender defines the contract for sending review notifications.
type EmailSender interface {
	SendReviewAlert(ctx context.Context, recipients []string, alert ReviewAlert) error
}
