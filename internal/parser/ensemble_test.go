package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"veridoc/internal/extraction"
	"veridoc/internal/parser"
	"veridoc/internal/port"
	"veridoc/mocks"
)

func sampleOutput(model string) *port.ParseOutput {
	return &port.ParseOutput{
		Extraction: &extraction.FinancialExtraction{DocumentType: extraction.DocTypeInvoice},
		ModelUsed:  model,
	}
}

func TestEnsemble_Parse_BothSucceed(t *testing.T) {
	fast := new(mocks.MockDocumentParser)
	expert := new(mocks.MockDocumentParser)
	e := parser.NewEnsemble(fast, expert)

	fast.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(sampleOutput("fast-model"), nil)
	expert.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(sampleOutput("expert-model"), nil)

	out, err := e.Parse(context.Background(), port.ParseInput{FileBytes: []byte("x")})

	require.NoError(t, err)
	assert.NotNil(t, out.Result.FastCandidate)
	assert.NotNil(t, out.Result.ExpertCandidate)
	assert.Equal(t, "fast-model", out.FastModel)
	assert.Equal(t, "expert-model", out.ExpertModel)
}

func TestEnsemble_Parse_OneSideFailing(t *testing.T) {
	fast := new(mocks.MockDocumentParser)
	expert := new(mocks.MockDocumentParser)
	e := parser.NewEnsemble(fast, expert)

	fast.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(nil, assert.AnError)
	expert.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(sampleOutput("expert-model"), nil)

	out, err := e.Parse(context.Background(), port.ParseInput{FileBytes: []byte("x")})

	require.NoError(t, err)
	assert.Nil(t, out.Result.FastCandidate)
	assert.Error(t, out.Result.FastErr)
	assert.NotNil(t, out.Result.ExpertCandidate)
}

func TestEnsemble_Parse_BothFailing(t *testing.T) {
	fast := new(mocks.MockDocumentParser)
	expert := new(mocks.MockDocumentParser)
	e := parser.NewEnsemble(fast, expert)

	fast.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(nil, assert.AnError)
	expert.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(nil, assert.AnError)

	_, err := e.Parse(context.Background(), port.ParseInput{FileBytes: []byte("x")})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "both models failed")
}

func TestEnsemble_Parse_RateLimitOpensCircuit(t *testing.T) {
	fast := new(mocks.MockDocumentParser)
	expert := new(mocks.MockDocumentParser)
	e := parser.NewEnsemble(fast, expert)

	fast.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(nil, parser.NewRateLimitError("openai", assert.AnError, 120))
	expert.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(sampleOutput("expert-model"), nil)

	// First call trips the fast circuit.
	out, err := e.Parse(context.Background(), port.ParseInput{FileBytes: []byte("x")})
	require.NoError(t, err)
	assert.Nil(t, out.Result.FastCandidate)

	// Second call skips the fast model entirely while the circuit is open.
	out, err = e.Parse(context.Background(), port.ParseInput{FileBytes: []byte("x")})
	require.NoError(t, err)
	assert.Nil(t, out.Result.FastCandidate)
	assert.NotNil(t, out.Result.ExpertCandidate)
	fast.AssertNumberOfCalls(t, "Parse", 1)
}
