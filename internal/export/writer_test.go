package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"veridoc/internal/domain"
	"veridoc/internal/extraction"
	"veridoc/internal/money"
)

func completedDocument(t *testing.T) domain.Document {
	t.Helper()

	sub := money.FromMinor(15000)
	vat := money.FromMinor(3150)
	total := money.FromMinor(18150)
	x := extraction.FinancialExtraction{
		DocumentType:     extraction.DocTypeInvoice,
		DocumentNumber:   "INV-2024-0042",
		DocumentDate:     "2024-12-15",
		DueDate:          "2025-01-15",
		Currency:         "EUR",
		CounterpartyName: "Acme BV",
		CounterpartyVAT:  "BE0123456749",
		Subtotal:         &sub,
		VATAmount:        &vat,
		Total:            &total,
		LineItems: []extraction.LineItem{
			{Description: "Consulting"},
			{Description: "Travel"},
		},
		VATBreakdown:     []extraction.VATEntry{{Rate: 2100, Base: 15000, Amount: 3150}},
		IBAN:             "BE68 5390 0754 7034",
		PaymentReference: "+++098/2345/67496+++",
	}
	raw, err := json.Marshal(x)
	require.NoError(t, err)

	parsedAt := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	return domain.Document{
		ID:             uuid.New(),
		FileID:         uuid.New(),
		DocumentType:   "invoice",
		FastModel:      "gpt-4o-mini",
		ExpertModel:    "claude-sonnet-4-20250514",
		ConsensusKind:  "unanimous",
		Extraction:     raw,
		ParsingStatus:  domain.ParsingStatusCompleted,
		ApprovalStatus: domain.ApprovalStatusAutoApproved,
		ParsedAt:       &parsedAt,
		CreatedAt:      parsedAt,
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 25)
	assert.Equal(t, "Document ID", row[0])
	assert.Equal(t, "Created At", row[24])
}

func TestWriteDocuments_Completed(t *testing.T) {
	doc := completedDocument(t)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteDocuments([]domain.Document{doc}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, doc.ID.String(), row[0])
	assert.Equal(t, "invoice", row[1])
	assert.Equal(t, "auto_approved", row[3])
	assert.Equal(t, "INV-2024-0042", row[7])
	assert.Equal(t, "150.00", row[13])
	assert.Equal(t, "31.50", row[14])
	assert.Equal(t, "181.50", row[15])
	assert.Equal(t, "2", row[16])
	assert.Equal(t, "1", row[17])
	assert.Equal(t, "BE68 5390 0754 7034", row[18])
	assert.Equal(t, "+++098/2345/67496+++", row[19])
}

func TestWriteDocuments_NotParsed(t *testing.T) {
	doc := domain.Document{
		ID:             uuid.New(),
		ParsingStatus:  domain.ParsingStatusPending,
		ApprovalStatus: domain.ApprovalStatusPendingReview,
		CreatedAt:      time.Now().UTC(),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteDocuments([]domain.Document{doc}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "pending", row[2])
	assert.Empty(t, row[7])
	assert.Empty(t, row[15])
}

func TestWriteXLSX(t *testing.T) {
	doc := completedDocument(t)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []domain.Document{doc}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Document ID", rows[0][0])
	assert.Equal(t, "INV-2024-0042", rows[1][7])
	assert.Equal(t, "181.50", rows[1][15])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q4_2024_Invoices", SanitizeFilename("Q4 2024 Invoices"))
	assert.Equal(t, "a_b", SanitizeFilename("a///b"))
	assert.Equal(t, "name", SanitizeFilename("__name__"))
}

func TestBuildFilename(t *testing.T) {
	name := BuildFilename("pending review", "csv")
	assert.Contains(t, name, "pending_review_")
	assert.Contains(t, name, ".csv")
}
