package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated user.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents an extracted and audited document linked to an
// uploaded file. Extraction, AuditReport and ConflictReport hold the JSON
// renderings of the merged extraction, the validator findings and the
// model disagreements.
type Document struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	FileID         uuid.UUID       `db:"file_id" json:"file_id"`
	DocumentType   string          `db:"document_type" json:"document_type"`
	FastModel      string          `db:"fast_model" json:"fast_model"`
	ExpertModel    string          `db:"expert_model" json:"expert_model"`
	ConsensusKind  string          `db:"consensus_kind" json:"consensus_kind"`
	Extraction     json.RawMessage `db:"extraction" json:"extraction"`
	AuditReport    json.RawMessage `db:"audit_report" json:"audit_report"`
	ConflictReport json.RawMessage `db:"conflict_report" json:"conflict_report"`
	CriticalCount  int             `db:"critical_count" json:"critical_count"`
	WarningCount   int             `db:"warning_count" json:"warning_count"`
	ParsingStatus  ParsingStatus   `db:"parsing_status" json:"parsing_status"`
	ParsingError   string          `db:"parsing_error" json:"parsing_error"`
	ParsedAt       *time.Time      `db:"parsed_at" json:"parsed_at"`
	ApprovalStatus ApprovalStatus  `db:"approval_status" json:"approval_status"`
	ReviewedBy     *uuid.UUID      `db:"reviewed_by" json:"reviewed_by"`
	ReviewedAt     *time.Time      `db:"reviewed_at" json:"reviewed_at"`
	ReviewerNotes  string          `db:"reviewer_notes" json:"reviewer_notes"`
	CreatedBy      uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// ReviewEvent is one entry in a document's review trail.
type ReviewEvent struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	DocumentID uuid.UUID       `db:"document_id" json:"document_id"`
	// Actor is nil for events the pipeline generated itself.
	Actor   *uuid.UUID      `db:"actor" json:"actor"`
	Action  ReviewAction    `db:"action" json:"action"`
	Notes   string          `db:"notes" json:"notes"`
	Details json.RawMessage `db:"details" json:"details"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// FileMeta stores metadata about an uploaded file.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UploadedBy   uuid.UUID  `db:"uploaded_by" json:"uploaded_by"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
