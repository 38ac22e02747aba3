// Package extraction defines the strongly-typed records produced by the
// extraction models. Optional fields are pointers: a nil amount means the
// model did not find the value, which the audit engine treats as a normal,
// non-error input.
package extraction

import (
	"strings"

	"veridoc/internal/money"
)

// DocumentType tags the kind of financial document an extraction came from.
type DocumentType string

const (
	DocTypeInvoice       DocumentType = "invoice"
	DocTypeBill          DocumentType = "bill"
	DocTypeCreditNote    DocumentType = "credit_note"
	DocTypeQuote         DocumentType = "quote"
	DocTypeProForma      DocumentType = "proforma"
	DocTypePurchaseOrder DocumentType = "purchase_order"
	DocTypeReceipt       DocumentType = "receipt"
)

// KnownDocumentTypes maps the document type strings accepted from the API
// and from model output to their DocumentType.
var KnownDocumentTypes = map[string]DocumentType{
	"invoice":        DocTypeInvoice,
	"bill":           DocTypeBill,
	"credit_note":    DocTypeCreditNote,
	"quote":          DocTypeQuote,
	"proforma":       DocTypeProForma,
	"purchase_order": DocTypePurchaseOrder,
	"receipt":        DocTypeReceipt,
}

// FinancialExtraction is the consensus-ready record extracted from one
// document. Amount fields are minor-unit values; VAT rates are basis points.
type FinancialExtraction struct {
	DocumentType DocumentType `json:"document_type"`

	DocumentNumber string `json:"document_number"`
	DocumentDate   string `json:"document_date"`
	DueDate        string `json:"due_date"`
	Currency       string `json:"currency"`

	CounterpartyName string `json:"counterparty_name"`
	CounterpartyVAT  string `json:"counterparty_vat"`

	Subtotal  *money.Money `json:"subtotal"`
	VATAmount *money.Money `json:"vat_amount"`
	Total     *money.Money `json:"total"`

	LineItems    []LineItem `json:"line_items"`
	VATBreakdown []VATEntry `json:"vat_breakdown"`

	// Payment collection fields. PaymentReference holds the Belgian
	// structured communication (OGM) when present, otherwise whatever
	// free-form reference the document shows.
	IBAN             string `json:"iban"`
	PaymentReference string `json:"payment_reference"`
}

// LineItem is one line on the document.
type LineItem struct {
	Description string       `json:"description"`
	Quantity    *float64     `json:"quantity"`
	UnitPrice   *money.Money `json:"unit_price"`
	LineTotal   *money.Money `json:"line_total"`
}

// VATEntry is one per-rate row of the VAT breakdown table. Base and Amount
// are minor units; Rate is the stated rate in basis points (2100 = 21%).
type VATEntry struct {
	Rate   int64 `json:"rate"`
	Base   int64 `json:"base"`
	Amount int64 `json:"amount"`
}

// NormalizeString is the comparison normalization for free-text fields:
// surrounding whitespace is ignored and comparison is case-insensitive.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeIdentifier is the comparison normalization for payment
// identifiers (IBAN, OGM): separators and spacing never count as a
// disagreement between models.
func NormalizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}
