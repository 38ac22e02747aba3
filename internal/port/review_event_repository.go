package port

import (
	"context"

	"github.com/google/uuid"

	"veridoc/internal/domain"
)

// ReviewEventRepository defines the contract for the per-document review
// trail: parse completions, auto-approvals and human decisions.
type ReviewEventRepository interface {
	Create(ctx context.Context, event *domain.ReviewEvent) error
	ListByDocument(ctx context.Context, documentID uuid.UUID, offset, limit int) ([]domain.ReviewEvent, int, error)
}
