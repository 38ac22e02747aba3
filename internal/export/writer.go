// Package export renders audited documents as CSV and XLSX downloads.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"veridoc/internal/domain"
	"veridoc/internal/extraction"
)

// BOM holds the UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the export header row.
var columns = []string{
	"Document ID",
	"Document Type",
	"Parsing Status",
	"Approval Status",
	"Consensus",
	"Fast Model",
	"Expert Model",
	"Document Number",
	"Document Date",
	"Due Date",
	"Currency",
	"Counterparty Name",
	"Counterparty VAT",
	"Subtotal",
	"VAT Amount",
	"Total",
	"Line Item Count",
	"VAT Rate Count",
	"IBAN",
	"Payment Reference",
	"Critical Findings",
	"Warnings",
	"Reviewer Notes",
	"Parsed At",
	"Created At",
}

// Writer wraps csv.Writer for exporting documents as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteDocuments converts a batch of documents to CSV rows and writes them.
func (w *Writer) WriteDocuments(docs []domain.Document) error {
	for i := range docs {
		row := documentToRow(&docs[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// documentToRow converts a single document to a row. If the document has
// not completed parsing or its extraction JSON is invalid, metadata columns
// are filled and extraction columns are left empty.
func documentToRow(doc *domain.Document) []string {
	row := make([]string, len(columns))

	row[0] = doc.ID.String()
	row[1] = doc.DocumentType
	row[2] = string(doc.ParsingStatus)
	row[3] = string(doc.ApprovalStatus)
	row[4] = doc.ConsensusKind
	row[5] = doc.FastModel
	row[6] = doc.ExpertModel
	row[20] = strconv.Itoa(doc.CriticalCount)
	row[21] = strconv.Itoa(doc.WarningCount)
	row[22] = doc.ReviewerNotes
	row[23] = formatTime(doc.ParsedAt)
	row[24] = doc.CreatedAt.Format(time.RFC3339)

	if doc.ParsingStatus != domain.ParsingStatusCompleted || len(doc.Extraction) == 0 {
		return row
	}

	var x extraction.FinancialExtraction
	if err := json.Unmarshal(doc.Extraction, &x); err != nil {
		return row
	}

	row[7] = x.DocumentNumber
	row[8] = x.DocumentDate
	row[9] = x.DueDate
	row[10] = x.Currency
	row[11] = x.CounterpartyName
	row[12] = x.CounterpartyVAT
	if x.Subtotal != nil {
		row[13] = x.Subtotal.String()
	}
	if x.VATAmount != nil {
		row[14] = x.VATAmount.String()
	}
	if x.Total != nil {
		row[15] = x.Total.String()
	}
	row[16] = strconv.Itoa(len(x.LineItems))
	row[17] = strconv.Itoa(len(x.VATBreakdown))
	row[18] = x.IBAN
	row[19] = x.PaymentReference

	return row
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
