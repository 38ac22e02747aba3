package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"veridoc/internal/audit"
	"veridoc/internal/consensus"
	"veridoc/internal/domain"
	"veridoc/internal/extraction"
	"veridoc/internal/parser"
	"veridoc/internal/port"
)

const defaultMaxParseRetries = 2

// CreateDocumentInput is the DTO for enqueueing a document for extraction.
type CreateDocumentInput struct {
	FileID    uuid.UUID
	CreatedBy uuid.UUID
}

// ReviewInput is the DTO for recording a human review decision.
type ReviewInput struct {
	DocumentID uuid.UUID
	ReviewerID uuid.UUID
	Approve    bool
	Notes      string
}

// DocumentService defines the document management contract.
type DocumentService interface {
	Create(ctx context.Context, input *CreateDocumentInput) (*domain.Document, error)
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	GetByFileID(ctx context.Context, fileID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error)
	ReviewTrail(ctx context.Context, docID uuid.UUID, offset, limit int) ([]domain.ReviewEvent, int, error)
	Review(ctx context.Context, input *ReviewInput) (*domain.Document, error)
	Delete(ctx context.Context, docID uuid.UUID) error
	ParseDocument(ctx context.Context, doc *domain.Document, maxRetries int)
}

type documentService struct {
	docRepo     port.DocumentRepository
	fileRepo    port.FileMetaRepository
	eventRepo   port.ReviewEventRepository
	storage     port.ObjectStorage
	ensemble    *parser.Ensemble
	weight      consensus.ModelWeight
	email       port.EmailSender
	reviewers   []string
	frontendURL string
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	fileRepo port.FileMetaRepository,
	eventRepo port.ReviewEventRepository,
	storage port.ObjectStorage,
	ensemble *parser.Ensemble,
	weight consensus.ModelWeight,
	email port.EmailSender,
	reviewers []string,
	frontendURL string,
) DocumentService {
	return &documentService{
		docRepo:     docRepo,
		fileRepo:    fileRepo,
		eventRepo:   eventRepo,
		storage:     storage,
		ensemble:    ensemble,
		weight:      weight,
		email:       email,
		reviewers:   reviewers,
		frontendURL: frontendURL,
	}
}

// recordEvent appends to the document's review trail. Failures are logged
// but never block business logic.
func (s *documentService) recordEvent(ctx context.Context, docID uuid.UUID, actor *uuid.UUID, action domain.ReviewAction, notes string, details json.RawMessage) {
	if s.eventRepo == nil {
		return
	}
	if details == nil {
		details = json.RawMessage("{}")
	}
	event := &domain.ReviewEvent{
		ID:         uuid.New(),
		DocumentID: docID,
		Actor:      actor,
		Action:     action,
		Notes:      notes,
		Details:    details,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		log.Printf("documentService.recordEvent: failed to write %s event for %s: %v", action, docID, err)
	}
}

func (s *documentService) Create(ctx context.Context, input *CreateDocumentInput) (*domain.Document, error) {
	file, err := s.fileRepo.GetByID(ctx, input.FileID)
	if err != nil {
		return nil, fmt.Errorf("looking up file: %w", err)
	}
	if file.Status != domain.FileStatusUploaded {
		return nil, domain.ErrUploadFailed
	}

	doc := &domain.Document{
		ID:             uuid.New(),
		FileID:         input.FileID,
		Extraction:     json.RawMessage("{}"),
		AuditReport:    json.RawMessage("{}"),
		ConflictReport: json.RawMessage("{}"),
		ParsingStatus:  domain.ParsingStatusPending,
		ApprovalStatus: domain.ApprovalStatusPendingReview,
		CreatedBy:      input.CreatedBy,
	}

	log.Printf("documentService.Create: enqueueing document %s for file %s", doc.ID, input.FileID)

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return doc, nil
}

// ParseDocument performs the core pipeline for one claimed document: S3
// download, dual-model extraction, consensus merge, verification, and the
// approval decision. Critical verification failures trigger a re-extraction
// with targeted correction hints, up to maxRetries extra rounds.
// The doc must already be in processing status.
func (s *documentService) ParseDocument(ctx context.Context, doc *domain.Document, maxRetries int) {
	file, err := s.fileRepo.GetByID(ctx, doc.FileID)
	if err != nil {
		s.failParsing(ctx, doc, fmt.Sprintf("looking up file: %v", err))
		return
	}

	fileBytes, err := s.storage.Download(ctx, file.S3Bucket, file.S3Key)
	if err != nil {
		s.failParsing(ctx, doc, fmt.Sprintf("downloading file: %v", err))
		return
	}

	if maxRetries < 0 {
		maxRetries = defaultMaxParseRetries
	}

	var (
		out    *parser.EnsembleOutput
		res    consensus.ConsensusResult[extraction.FinancialExtraction]
		report audit.Report
		hints  []string
	)
	rounds := 1 + maxRetries
	round := 0
	for round = 1; round <= rounds; round++ {
		out, err = s.ensemble.Parse(ctx, port.ParseInput{
			FileBytes:   fileBytes,
			ContentType: file.ContentType,
			RetryHints:  hints,
		})
		if err != nil {
			s.failParsing(ctx, doc, fmt.Sprintf("parsing document: %v", err))
			return
		}

		res = consensus.Merge(out.Result, s.weight)
		if res.Kind == consensus.KindNoData {
			s.failParsing(ctx, doc, "no model produced structured data")
			return
		}

		report = audit.AuditExtraction(res.Data)
		if report.Criticals() == 0 {
			break
		}
		if round < rounds {
			hints = correctionHints(report)
			log.Printf("documentService.ParseDocument: document %s has %d critical findings on round %d, re-extracting with %d hints",
				doc.ID, report.Criticals(), round, len(hints))
		}
	}
	if round > rounds {
		round = rounds
	}

	extractionJSON, err := json.Marshal(res.Data)
	if err != nil {
		s.failParsing(ctx, doc, fmt.Sprintf("encoding extraction: %v", err))
		return
	}
	reportJSON, _ := json.Marshal(report)
	conflictJSON, _ := json.Marshal(res.Report)

	criticalConflicts := res.Report.CriticalConflicts()
	now := time.Now().UTC()
	doc.DocumentType = string(res.Data.DocumentType)
	doc.FastModel = out.FastModel
	doc.ExpertModel = out.ExpertModel
	doc.ConsensusKind = string(res.Kind)
	doc.Extraction = extractionJSON
	doc.AuditReport = reportJSON
	doc.ConflictReport = conflictJSON
	doc.CriticalCount = report.Criticals() + len(criticalConflicts)
	doc.WarningCount = report.Warnings() + len(res.Report.WarningConflicts())
	doc.ParsingStatus = domain.ParsingStatusCompleted
	doc.ParsingError = ""
	doc.ParsedAt = &now

	if doc.CriticalCount == 0 {
		doc.ApprovalStatus = domain.ApprovalStatusAutoApproved
	} else {
		doc.ApprovalStatus = domain.ApprovalStatusPendingReview
	}

	if err := s.docRepo.UpdateParseResults(ctx, doc); err != nil {
		log.Printf("documentService.ParseDocument: failed to save results for %s: %v", doc.ID, err)
		return
	}

	parseDetails, _ := json.Marshal(map[string]interface{}{
		"fast_model":   doc.FastModel,
		"expert_model": doc.ExpertModel,
		"consensus":    doc.ConsensusKind,
		"rounds":       round,
	})
	s.recordEvent(ctx, doc.ID, nil, domain.ReviewActionParsed, "", parseDetails)

	outcomeDetails, _ := json.Marshal(map[string]interface{}{
		"critical_count": doc.CriticalCount,
		"warning_count":  doc.WarningCount,
	})
	if doc.ApprovalStatus == domain.ApprovalStatusAutoApproved {
		s.recordEvent(ctx, doc.ID, nil, domain.ReviewActionAutoApproved, "", outcomeDetails)
		log.Printf("documentService.ParseDocument: document %s auto-approved (%s, %s)",
			doc.ID, doc.DocumentType, doc.ConsensusKind)
		return
	}

	s.recordEvent(ctx, doc.ID, nil, domain.ReviewActionFlagged, "", outcomeDetails)
	log.Printf("documentService.ParseDocument: document %s flagged for review (%d critical, %d warnings)",
		doc.ID, doc.CriticalCount, doc.WarningCount)

	s.sendReviewAlert(ctx, doc, criticalConflicts)
}

// sendReviewAlert notifies the configured reviewers that a document did not
// pass verification. Email failure never fails the parse.
func (s *documentService) sendReviewAlert(ctx context.Context, doc *domain.Document, criticalConflicts []consensus.FieldConflict) {
	if s.email == nil || len(s.reviewers) == 0 {
		return
	}
	fields := make([]string, 0, len(criticalConflicts))
	for _, c := range criticalConflicts {
		fields = append(fields, c.Field)
	}
	alert := port.ReviewAlert{
		DocumentID:     doc.ID.String(),
		DocumentType:   doc.DocumentType,
		CriticalCount:  doc.CriticalCount,
		WarningCount:   doc.WarningCount,
		ConflictFields: fields,
		ReviewURL:      fmt.Sprintf("%s/documents/%s", s.frontendURL, doc.ID),
	}
	if err := s.email.SendReviewAlert(ctx, s.reviewers, alert); err != nil {
		log.Printf("documentService.sendReviewAlert: failed to notify reviewers for %s: %v", doc.ID, err)
	}
}

// correctionHints turns the critical findings of a verification report into
// re-extraction hints for the next model round.
func correctionHints(report audit.Report) []string {
	var hints []string
	for _, c := range report.FailedChecks() {
		if c.Severity != domain.SeverityCritical {
			continue
		}
		hint := fmt.Sprintf("Field %q: %s.", c.Field, c.Message)
		if c.Hint != "" {
			hint += " " + c.Hint
		}
		hints = append(hints, hint)
	}
	return hints
}

func (s *documentService) failParsing(ctx context.Context, doc *domain.Document, errMsg string) {
	log.Printf("documentService.failParsing: document %s failed: %s", doc.ID, errMsg)
	doc.ParsingStatus = domain.ParsingStatusFailed
	doc.ParsingError = errMsg
	if err := s.docRepo.UpdateParseResults(ctx, doc); err != nil {
		log.Printf("documentService.failParsing: failed to update status for %s: %v", doc.ID, err)
	}
	details, _ := json.Marshal(map[string]string{"error": errMsg})
	s.recordEvent(ctx, doc.ID, nil, domain.ReviewActionParseFailed, "", details)
}

func (s *documentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, docID)
}

func (s *documentService) GetByFileID(ctx context.Context, fileID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByFileID(ctx, fileID)
}

func (s *documentService) List(ctx context.Context, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.List(ctx, filter, offset, limit)
}

func (s *documentService) ReviewTrail(ctx context.Context, docID uuid.UUID, offset, limit int) ([]domain.ReviewEvent, int, error) {
	if _, err := s.docRepo.GetByID(ctx, docID); err != nil {
		return nil, 0, err
	}
	return s.eventRepo.ListByDocument(ctx, docID, offset, limit)
}

func (s *documentService) Review(ctx context.Context, input *ReviewInput) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}

	if doc.ParsingStatus != domain.ParsingStatusCompleted {
		return nil, domain.ErrNotParsed
	}
	if doc.ApprovalStatus == domain.ApprovalStatusApproved || doc.ApprovalStatus == domain.ApprovalStatusRejected {
		return nil, domain.ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	action := domain.ReviewActionRejected
	doc.ApprovalStatus = domain.ApprovalStatusRejected
	if input.Approve {
		action = domain.ReviewActionApproved
		doc.ApprovalStatus = domain.ApprovalStatusApproved
	}
	doc.ReviewedBy = &input.ReviewerID
	doc.ReviewedAt = &now
	doc.ReviewerNotes = input.Notes

	if err := s.docRepo.UpdateReview(ctx, doc); err != nil {
		return nil, fmt.Errorf("updating review: %w", err)
	}

	s.recordEvent(ctx, doc.ID, &input.ReviewerID, action, input.Notes, nil)
	log.Printf("documentService.Review: document %s %s by %s", doc.ID, action, input.ReviewerID)
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, docID uuid.UUID) error {
	return s.docRepo.Delete(ctx, docID)
}
