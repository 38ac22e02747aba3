package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"veridoc/internal/domain"
	"veridoc/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, file_id, document_type,
		fast_model, expert_model, consensus_kind,
		extraction, audit_report, conflict_report,
		critical_count, warning_count,
		parsing_status, parsing_error, parsed_at,
		approval_status, reviewed_by, reviewed_at, reviewer_notes,
		created_by, created_at, updated_at
	) VALUES (
		$1, $2, $3,
		$4, $5, $6,
		$7, $8, $9,
		$10, $11,
		$12, $13, $14,
		$15, $16, $17, $18,
		$19, $20, $21
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.FileID, doc.DocumentType,
		doc.FastModel, doc.ExpertModel, doc.ConsensusKind,
		doc.Extraction, doc.AuditReport, doc.ConflictReport,
		doc.CriticalCount, doc.WarningCount,
		doc.ParsingStatus, doc.ParsingError, doc.ParsedAt,
		doc.ApprovalStatus, doc.ReviewedBy, doc.ReviewedAt, doc.ReviewerNotes,
		doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) GetByFileID(ctx context.Context, fileID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE file_id = $1", fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByFileID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	n := 0
	addArg := func(clause string, val interface{}) {
		n++
		where += fmt.Sprintf(" AND %s = $%d", clause, n)
		args = append(args, val)
	}
	if filter.ApprovalStatus != "" {
		addArg("approval_status", filter.ApprovalStatus)
	}
	if filter.ParsingStatus != "" {
		addArg("parsing_status", filter.ParsingStatus)
	}
	if filter.DocumentType != "" {
		addArg("document_type", filter.DocumentType)
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	listQuery := fmt.Sprintf(
		"SELECT * FROM documents %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, n+1, n+2)
	args = append(args, limit, offset)

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) ClaimPending(ctx context.Context, limit int) ([]domain.Document, error) {
	// SKIP LOCKED keeps concurrent workers from claiming the same rows.
	query := `UPDATE documents SET parsing_status = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM documents
			WHERE parsing_status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs, query,
		domain.ParsingStatusProcessing, domain.ParsingStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimPending: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) UpdateParseResults(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	query := `UPDATE documents SET
		document_type = $1, fast_model = $2, expert_model = $3, consensus_kind = $4,
		extraction = $5, audit_report = $6, conflict_report = $7,
		critical_count = $8, warning_count = $9,
		parsing_status = $10, parsing_error = $11, parsed_at = $12,
		approval_status = $13, updated_at = $14
		WHERE id = $15`
	result, err := r.db.ExecContext(ctx, query,
		doc.DocumentType, doc.FastModel, doc.ExpertModel, doc.ConsensusKind,
		doc.Extraction, doc.AuditReport, doc.ConflictReport,
		doc.CriticalCount, doc.WarningCount,
		doc.ParsingStatus, doc.ParsingError, doc.ParsedAt,
		doc.ApprovalStatus, doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateParseResults: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) UpdateReview(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	query := `UPDATE documents SET
		approval_status = $1, reviewed_by = $2, reviewed_at = $3, reviewer_notes = $4, updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		doc.ApprovalStatus, doc.ReviewedBy, doc.ReviewedAt, doc.ReviewerNotes,
		doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateReview: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
