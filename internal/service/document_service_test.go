package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"veridoc/internal/consensus"
	"veridoc/internal/domain"
	"veridoc/internal/extraction"
	"veridoc/internal/money"
	"veridoc/internal/parser"
	"veridoc/internal/port"
	"veridoc/internal/service"
	"veridoc/mocks"
)

func mc(minor int64) *money.Money {
	m := money.Money(minor)
	return &m
}

func f(v float64) *float64 { return &v }

// cleanInvoice builds an extraction that passes every verification check.
func cleanInvoice() *extraction.FinancialExtraction {
	return &extraction.FinancialExtraction{
		DocumentType: extraction.DocTypeInvoice,
		DocumentDate: "2024-03-15",
		Subtotal:     mc(15000),
		VATAmount:    mc(3150),
		Total:        mc(18150),
		LineItems: []extraction.LineItem{
			{Description: "consulting", Quantity: f(2), UnitPrice: mc(5000), LineTotal: mc(10000)},
			{Description: "hosting", Quantity: f(1), UnitPrice: mc(5000), LineTotal: mc(5000)},
		},
		VATBreakdown: []extraction.VATEntry{
			{Rate: 2100, Base: 15000, Amount: 3150},
		},
		IBAN:             "BE68 5390 0754 7034",
		PaymentReference: "+++098/2345/67496+++",
	}
}

func uploadedFile(fileID uuid.UUID) *domain.FileMeta {
	return &domain.FileMeta{
		ID:          fileID,
		FileName:    "invoice.pdf",
		FileType:    domain.FileTypePDF,
		S3Bucket:    "test-bucket",
		S3Key:       "files/user/invoice.pdf",
		ContentType: "application/pdf",
		Status:      domain.FileStatusUploaded,
	}
}

func newDocService(
	docRepo *mocks.MockDocumentRepo,
	fileRepo *mocks.MockFileMetaRepo,
	eventRepo *mocks.MockReviewEventRepo,
	storage *mocks.MockObjectStorage,
	fast, expert *mocks.MockDocumentParser,
	email *mocks.MockEmailSender,
) service.DocumentService {
	return service.NewDocumentService(
		docRepo, fileRepo, eventRepo, storage,
		parser.NewEnsemble(fast, expert),
		consensus.PreferExpert,
		email, []string{"reviewer@example.com"}, "http://localhost:3000",
	)
}

func TestDocumentService_Create_Success(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	svc := newDocService(docRepo, fileRepo, new(mocks.MockReviewEventRepo),
		new(mocks.MockObjectStorage), new(mocks.MockDocumentParser), new(mocks.MockDocumentParser),
		new(mocks.MockEmailSender))

	fileID := uuid.New()
	userID := uuid.New()

	fileRepo.On("GetByID", mock.Anything, fileID).Return(uploadedFile(fileID), nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	doc, err := svc.Create(context.Background(), &service.CreateDocumentInput{
		FileID:    fileID,
		CreatedBy: userID,
	})

	require.NoError(t, err)
	assert.Equal(t, fileID, doc.FileID)
	assert.Equal(t, domain.ParsingStatusPending, doc.ParsingStatus)
	assert.Equal(t, domain.ApprovalStatusPendingReview, doc.ApprovalStatus)
	assert.JSONEq(t, "{}", string(doc.Extraction))
	docRepo.AssertExpectations(t)
}

func TestDocumentService_Create_FileNotUploaded(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	svc := newDocService(docRepo, fileRepo, new(mocks.MockReviewEventRepo),
		new(mocks.MockObjectStorage), new(mocks.MockDocumentParser), new(mocks.MockDocumentParser),
		new(mocks.MockEmailSender))

	fileID := uuid.New()
	pending := uploadedFile(fileID)
	pending.Status = domain.FileStatusPending
	fileRepo.On("GetByID", mock.Anything, fileID).Return(pending, nil)

	_, err := svc.Create(context.Background(), &service.CreateDocumentInput{
		FileID:    fileID,
		CreatedBy: uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_ParseDocument_AutoApproved(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	eventRepo := new(mocks.MockReviewEventRepo)
	storage := new(mocks.MockObjectStorage)
	fast := new(mocks.MockDocumentParser)
	expert := new(mocks.MockDocumentParser)
	email := new(mocks.MockEmailSender)
	svc := newDocService(docRepo, fileRepo, eventRepo, storage, fast, expert, email)

	fileID := uuid.New()
	doc := &domain.Document{
		ID:            uuid.New(),
		FileID:        fileID,
		ParsingStatus: domain.ParsingStatusProcessing,
	}

	fileRepo.On("GetByID", mock.Anything, fileID).Return(uploadedFile(fileID), nil)
	storage.On("Download", mock.Anything, "test-bucket", "files/user/invoice.pdf").
		Return([]byte("%PDF-1.4 content"), nil)
	fast.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(&port.ParseOutput{Extraction: cleanInvoice(), ModelUsed: "gpt-4o-mini"}, nil)
	expert.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(&port.ParseOutput{Extraction: cleanInvoice(), ModelUsed: "claude-sonnet"}, nil)
	docRepo.On("UpdateParseResults", mock.Anything, doc).Return(nil)
	eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ReviewEvent")).Return(nil)

	svc.ParseDocument(context.Background(), doc, 2)

	assert.Equal(t, domain.ParsingStatusCompleted, doc.ParsingStatus)
	assert.Equal(t, domain.ApprovalStatusAutoApproved, doc.ApprovalStatus)
	assert.Equal(t, string(consensus.KindUnanimous), doc.ConsensusKind)
	assert.Equal(t, "invoice", doc.DocumentType)
	assert.Equal(t, "gpt-4o-mini", doc.FastModel)
	assert.Equal(t, "claude-sonnet", doc.ExpertModel)
	assert.Zero(t, doc.CriticalCount)
	assert.NotNil(t, doc.ParsedAt)
	// One parse at most: the clean result never triggers a retry round.
	fast.AssertNumberOfCalls(t, "Parse", 1)
	email.AssertNotCalled(t, "SendReviewAlert", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_ParseDocument_FlaggedAfterRetries(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	eventRepo := new(mocks.MockReviewEventRepo)
	storage := new(mocks.MockObjectStorage)
	fast := new(mocks.MockDocumentParser)
	expert := new(mocks.MockDocumentParser)
	email := new(mocks.MockEmailSender)
	svc := newDocService(docRepo, fileRepo, eventRepo, storage, fast, expert, email)

	badInvoice := cleanInvoice()
	badInvoice.Total = mc(19000) // subtotal + VAT disagrees

	fileID := uuid.New()
	doc := &domain.Document{
		ID:            uuid.New(),
		FileID:        fileID,
		ParsingStatus: domain.ParsingStatusProcessing,
	}

	fileRepo.On("GetByID", mock.Anything, fileID).Return(uploadedFile(fileID), nil)
	storage.On("Download", mock.Anything, mock.Anything, mock.Anything).
		Return([]byte("%PDF-1.4 content"), nil)
	fast.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(&port.ParseOutput{Extraction: badInvoice, ModelUsed: "gpt-4o-mini"}, nil)
	expert.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(&port.ParseOutput{Extraction: badInvoice, ModelUsed: "claude-sonnet"}, nil)
	docRepo.On("UpdateParseResults", mock.Anything, doc).Return(nil)
	eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ReviewEvent")).Return(nil)
	email.On("SendReviewAlert", mock.Anything, []string{"reviewer@example.com"},
		mock.AnythingOfType("port.ReviewAlert")).Return(nil)

	svc.ParseDocument(context.Background(), doc, 1)

	assert.Equal(t, domain.ParsingStatusCompleted, doc.ParsingStatus)
	assert.Equal(t, domain.ApprovalStatusPendingReview, doc.ApprovalStatus)
	assert.Equal(t, 1, doc.CriticalCount)
	// Initial round plus one hinted retry.
	fast.AssertNumberOfCalls(t, "Parse", 2)
	email.AssertExpectations(t)
}

func TestDocumentService_ParseDocument_DownloadFailure(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	eventRepo := new(mocks.MockReviewEventRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newDocService(docRepo, fileRepo, eventRepo, storage,
		new(mocks.MockDocumentParser), new(mocks.MockDocumentParser), new(mocks.MockEmailSender))

	fileID := uuid.New()
	doc := &domain.Document{ID: uuid.New(), FileID: fileID, ParsingStatus: domain.ParsingStatusProcessing}

	fileRepo.On("GetByID", mock.Anything, fileID).Return(uploadedFile(fileID), nil)
	storage.On("Download", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)
	docRepo.On("UpdateParseResults", mock.Anything, doc).Return(nil)
	eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ReviewEvent")).Return(nil)

	svc.ParseDocument(context.Background(), doc, 0)

	assert.Equal(t, domain.ParsingStatusFailed, doc.ParsingStatus)
	assert.Contains(t, doc.ParsingError, "downloading file")
}

func TestDocumentService_Review_Approve(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	eventRepo := new(mocks.MockReviewEventRepo)
	svc := newDocService(docRepo, new(mocks.MockFileMetaRepo), eventRepo,
		new(mocks.MockObjectStorage), new(mocks.MockDocumentParser), new(mocks.MockDocumentParser),
		new(mocks.MockEmailSender))

	docID := uuid.New()
	reviewerID := uuid.New()
	docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID:             docID,
		ParsingStatus:  domain.ParsingStatusCompleted,
		ApprovalStatus: domain.ApprovalStatusPendingReview,
	}, nil)
	docRepo.On("UpdateReview", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ReviewEvent")).Return(nil)

	doc, err := svc.Review(context.Background(), &service.ReviewInput{
		DocumentID: docID,
		ReviewerID: reviewerID,
		Approve:    true,
		Notes:      "checked against the source",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalStatusApproved, doc.ApprovalStatus)
	require.NotNil(t, doc.ReviewedBy)
	assert.Equal(t, reviewerID, *doc.ReviewedBy)
	assert.Equal(t, "checked against the source", doc.ReviewerNotes)
	docRepo.AssertExpectations(t)
}

func TestDocumentService_Review_RejectAutoApproved(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	eventRepo := new(mocks.MockReviewEventRepo)
	svc := newDocService(docRepo, new(mocks.MockFileMetaRepo), eventRepo,
		new(mocks.MockObjectStorage), new(mocks.MockDocumentParser), new(mocks.MockDocumentParser),
		new(mocks.MockEmailSender))

	docID := uuid.New()
	docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID:             docID,
		ParsingStatus:  domain.ParsingStatusCompleted,
		ApprovalStatus: domain.ApprovalStatusAutoApproved,
	}, nil)
	docRepo.On("UpdateReview", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ReviewEvent")).Return(nil)

	doc, err := svc.Review(context.Background(), &service.ReviewInput{
		DocumentID: docID,
		ReviewerID: uuid.New(),
		Approve:    false,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalStatusRejected, doc.ApprovalStatus)
}

func TestDocumentService_Review_NotParsed(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	svc := newDocService(docRepo, new(mocks.MockFileMetaRepo), new(mocks.MockReviewEventRepo),
		new(mocks.MockObjectStorage), new(mocks.MockDocumentParser), new(mocks.MockDocumentParser),
		new(mocks.MockEmailSender))

	docID := uuid.New()
	docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID:            docID,
		ParsingStatus: domain.ParsingStatusPending,
	}, nil)

	_, err := svc.Review(context.Background(), &service.ReviewInput{
		DocumentID: docID,
		ReviewerID: uuid.New(),
		Approve:    true,
	})

	assert.ErrorIs(t, err, domain.ErrNotParsed)
}

func TestDocumentService_Review_AlreadyReviewed(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	svc := newDocService(docRepo, new(mocks.MockFileMetaRepo), new(mocks.MockReviewEventRepo),
		new(mocks.MockObjectStorage), new(mocks.MockDocumentParser), new(mocks.MockDocumentParser),
		new(mocks.MockEmailSender))

	docID := uuid.New()
	docRepo.On("GetByID", mock.Anything, docID).Return(&domain.Document{
		ID:             docID,
		ParsingStatus:  domain.ParsingStatusCompleted,
		ApprovalStatus: domain.ApprovalStatusApproved,
	}, nil)

	_, err := svc.Review(context.Background(), &service.ReviewInput{
		DocumentID: docID,
		ReviewerID: uuid.New(),
		Approve:    false,
	})

	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
}
