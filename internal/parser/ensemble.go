package parser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"veridoc/internal/consensus"
	"veridoc/internal/extraction"
	"veridoc/internal/port"
)

// circuitState tracks rate-limit backoff for a single model.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpen(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// EnsembleOutput carries both model candidates plus invocation metadata.
type EnsembleOutput struct {
	Result      consensus.EnsembleResult[extraction.FinancialExtraction]
	FastModel   string
	ExpertModel string
	PromptUsed  string
}

// Ensemble invokes the fast and expert extraction models in parallel and
// hands both candidates to the consensus layer. One side failing is normal
// operation; only a double failure is an error. A rate-limited model is
// skipped until its Retry-After window elapses so the healthy side keeps
// the pipeline moving.
type Ensemble struct {
	fast          port.DocumentParser
	expert        port.DocumentParser
	fastCircuit   circuitState
	expertCircuit circuitState
}

// NewEnsemble creates an Ensemble from the fast and expert parsers.
func NewEnsemble(fast, expert port.DocumentParser) *Ensemble {
	return &Ensemble{fast: fast, expert: expert}
}

// Parse runs both models on the input. Both sides see the same retry hints.
func (e *Ensemble) Parse(ctx context.Context, input port.ParseInput) (*EnsembleOutput, error) {
	type result struct {
		output *port.ParseOutput
		err    error
	}

	now := time.Now()
	fastCh := make(chan result, 1)
	expertCh := make(chan result, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		out, err := e.invoke(ctx, e.fast, &e.fastCircuit, "fast", input, now)
		fastCh <- result{out, err}
	}()
	go func() {
		defer wg.Done()
		out, err := e.invoke(ctx, e.expert, &e.expertCircuit, "expert", input, now)
		expertCh <- result{out, err}
	}()
	wg.Wait()

	fastRes := <-fastCh
	expertRes := <-expertCh

	if fastRes.err != nil && expertRes.err != nil {
		return nil, fmt.Errorf("both models failed: fast: %v; expert: %w", fastRes.err, expertRes.err)
	}

	out := &EnsembleOutput{
		Result: consensus.EnsembleResult[extraction.FinancialExtraction]{
			FastErr:   fastRes.err,
			ExpertErr: expertRes.err,
		},
	}
	if fastRes.err == nil {
		out.Result.FastCandidate = fastRes.output.Extraction
		out.FastModel = fastRes.output.ModelUsed
		out.PromptUsed = fastRes.output.PromptUsed
	} else {
		log.Printf("parser.Ensemble: fast model failed, continuing with expert only: %v", fastRes.err)
	}
	if expertRes.err == nil {
		out.Result.ExpertCandidate = expertRes.output.Extraction
		out.ExpertModel = expertRes.output.ModelUsed
		out.PromptUsed = expertRes.output.PromptUsed
	} else {
		log.Printf("parser.Ensemble: expert model failed, continuing with fast only: %v", expertRes.err)
	}

	return out, nil
}

func (e *Ensemble) invoke(ctx context.Context, p port.DocumentParser, circuit *circuitState, side string, input port.ParseInput, now time.Time) (*port.ParseOutput, error) {
	if circuit.isOpen(now) {
		return nil, fmt.Errorf("%s model skipped: rate-limit circuit open", side)
	}

	out, err := p.Parse(ctx, input)

	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		circuit.open(now.Add(rlErr.RetryAfter))
		log.Printf("parser.Ensemble: %s model rate limited, backing off %s", side, rlErr.RetryAfter)
	}
	return out, err
}
