package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"veridoc/internal/domain"
	"veridoc/internal/port"
)

type reviewEventRepo struct {
	db *sqlx.DB
}

// NewReviewEventRepo creates a new PostgreSQL-backed ReviewEventRepository.
func NewReviewEventRepo(db *sqlx.DB) port.ReviewEventRepository {
	return &reviewEventRepo{db: db}
}

func (r *reviewEventRepo) Create(ctx context.Context, event *domain.ReviewEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO review_events (id, document_id, actor, action, notes, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.DocumentID, event.Actor, event.Action, event.Notes, event.Details, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("reviewEventRepo.Create: %w", err)
	}
	return nil
}

func (r *reviewEventRepo) ListByDocument(ctx context.Context, documentID uuid.UUID, offset, limit int) ([]domain.ReviewEvent, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM review_events WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, 0, fmt.Errorf("reviewEventRepo.ListByDocument count: %w", err)
	}

	var events []domain.ReviewEvent
	err = r.db.SelectContext(ctx, &events,
		`SELECT * FROM review_events
		 WHERE document_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		documentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("reviewEventRepo.ListByDocument: %w", err)
	}
	return events, total, nil
}
