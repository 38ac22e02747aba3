package port

import (
	"context"

	"github.com/google/uuid"

	"veridoc/internal/domain"
)

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	ApprovalStatus domain.ApprovalStatus
	ParsingStatus  domain.ParsingStatus
	DocumentType   string
}

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	GetByFileID(ctx context.Context, fileID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, filter DocumentFilter, offset, limit int) ([]domain.Document, int, error)
	// ClaimPending atomically marks up to limit pending documents as
	// processing and returns them; concurrent workers never claim the same
	// document twice.
	ClaimPending(ctx context.Context, limit int) ([]domain.Document, error)
	UpdateParseResults(ctx context.Context, doc *domain.Document) error
	UpdateReview(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, docID uuid.UUID) error
}
