package port

import (
	"context"

	"veridoc/internal/extraction"
)

// ParseInput carries the data needed for document extraction.
type ParseInput struct {
	FileBytes   []byte
	ContentType string
	// RetryHints holds validator hints from a previous attempt; when set,
	// the parser asks the model to re-read the flagged fields.
	RetryHints []string
}

// ParseOutput contains the structured result from an LLM extraction model.
type ParseOutput struct {
	Extraction *extraction.FinancialExtraction
	ModelUsed  string
	PromptUsed string
}

// DocumentParser abstracts LLM-based document extraction.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
