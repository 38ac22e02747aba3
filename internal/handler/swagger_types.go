package handler

import (
	"time"

	"veridoc/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"reviewer@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RegisterRequest represents the user registration request body.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required" example:"reviewer@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
	FullName string `json:"full_name" binding:"required" example:"Jane Doe"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ReviewDocumentRequest represents the review decision request body.
type ReviewDocumentRequest struct {
	Approve bool   `json:"approve" example:"true"`
	Notes   string `json:"notes" example:"Verified IBAN and totals against the source PDF."`
}

// --- Response Types ---

// TokenResponse represents the authentication token response.
type TokenResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expires_at" example:"2025-01-15T10:30:00Z"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// FileWithDownloadURL represents a file with its download URL.
type FileWithDownloadURL struct {
	File        domain.FileMeta `json:"file"`
	DownloadURL string          `json:"download_url" example:"https://s3.amazonaws.com/veridoc-uploads/...?X-Amz-Signature=..."`
}

// UploadResult represents a file upload with its enqueued document.
type UploadResult struct {
	File     domain.FileMeta `json:"file"`
	Document domain.Document `json:"document"`
}

// ReviewTrailEntry represents one event in a document's review trail.
type ReviewTrailEntry struct {
	Action    string    `json:"action" example:"flagged"`
	Actor     *string   `json:"actor" example:"987fcdeb-51a2-3bc4-d567-890123456789"`
	Notes     string    `json:"notes" example:""`
	CreatedAt time.Time `json:"created_at" example:"2025-01-15T10:30:00Z"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// --- Extracted Document Schema (for documentation) ---

// ExtractedDocument represents the merged extraction stored on a document.
// Amounts are decimal strings in the document's currency; VAT rates are
// percentages.
type ExtractedDocument struct {
	DocumentType     string               `json:"document_type" example:"invoice"`
	DocumentNumber   string               `json:"document_number" example:"INV-2024-0042"`
	DocumentDate     string               `json:"document_date" example:"2024-12-15"`
	DueDate          string               `json:"due_date" example:"2025-01-15"`
	Currency         string               `json:"currency" example:"EUR"`
	CounterpartyName string               `json:"counterparty_name" example:"Acme BV"`
	CounterpartyVAT  string               `json:"counterparty_vat" example:"BE0123456749"`
	Subtotal         string               `json:"subtotal" example:"150.00"`
	VATAmount        string               `json:"vat_amount" example:"31.50"`
	Total            string               `json:"total" example:"181.50"`
	LineItems        []ExtractedLineItem  `json:"line_items"`
	VATBreakdown     []ExtractedVATEntry  `json:"vat_breakdown"`
	IBAN             string               `json:"iban" example:"BE68 5390 0754 7034"`
	PaymentReference string               `json:"payment_reference" example:"+++098/2345/67496+++"`
}

// ExtractedLineItem represents one extracted document line.
type ExtractedLineItem struct {
	Description string  `json:"description" example:"Consulting services"`
	Quantity    float64 `json:"quantity" example:"2"`
	UnitPrice   string  `json:"unit_price" example:"50.00"`
	LineTotal   string  `json:"line_total" example:"100.00"`
}

// ExtractedVATEntry represents one per-rate row of the VAT breakdown.
type ExtractedVATEntry struct {
	Rate   string `json:"rate" example:"21.00"`
	Base   string `json:"base" example:"150.00"`
	Amount string `json:"amount" example:"31.50"`
}

// AuditCheckEntry represents one verification finding on a document.
type AuditCheckEntry struct {
	Type       string `json:"type" example:"math"`
	Field      string `json:"field" example:"total"`
	Passed     bool   `json:"passed" example:"false"`
	Incomplete bool   `json:"incomplete" example:"false"`
	Severity   string `json:"severity" example:"critical"`
	Message    string `json:"message" example:"subtotal 150.00 + VAT 31.50 = 181.50, but total is 186.50"`
	Hint       string `json:"hint,omitempty" example:"Re-read the amounts section of the document carefully."`
	Expected   string `json:"expected,omitempty" example:"181.50"`
	Actual     string `json:"actual,omitempty" example:"186.50"`
}

// ConflictEntry represents one field where the extraction models disagreed.
type ConflictEntry struct {
	Field        string  `json:"field" example:"iban"`
	FastValue    string  `json:"fast_value" example:"BE68 5390 0754 7O34"`
	ExpertValue  string  `json:"expert_value" example:"BE68 5390 0754 7034"`
	ChosenValue  *string `json:"chosen_value" example:"BE68 5390 0754 7034"`
	ChosenSource string  `json:"chosen_source" example:"expert"`
	Severity     string  `json:"severity" example:"critical"`
}
