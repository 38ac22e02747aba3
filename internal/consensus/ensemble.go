// Package consensus reconciles extractions produced by the fast and expert
// models into a single record, tracking every field-level disagreement.
// Like the audit engine it is pure: model failures arrive as values and
// absent candidates are normal inputs, never errors.
package consensus

// Source identifies which model a value came from.
type Source string

const (
	SourceFast   Source = "fast"
	SourceExpert Source = "expert"
)

// EnsembleResult carries the outcome of invoking the fast and expert
// extraction models in parallel. Either side may have failed independently;
// a failed model is equivalent to an absent candidate.
type EnsembleResult[T any] struct {
	FastCandidate   *T
	ExpertCandidate *T
	FastErr         error
	ExpertErr       error
}

// FastSucceeded reports whether the fast model produced a candidate.
func (e EnsembleResult[T]) FastSucceeded() bool {
	return e.FastCandidate != nil
}

// ExpertSucceeded reports whether the expert model produced a candidate.
func (e EnsembleResult[T]) ExpertSucceeded() bool {
	return e.ExpertCandidate != nil
}

// HasBothCandidates reports whether both models produced candidates.
func (e EnsembleResult[T]) HasBothCandidates() bool {
	return e.FastCandidate != nil && e.ExpertCandidate != nil
}

// HasAnyCandidate reports whether at least one model produced a candidate.
func (e EnsembleResult[T]) HasAnyCandidate() bool {
	return e.FastCandidate != nil || e.ExpertCandidate != nil
}

// BestCandidate returns the expert candidate when present, falling back to
// the fast one, or nil when neither model produced data.
func (e EnsembleResult[T]) BestCandidate() *T {
	if e.ExpertCandidate != nil {
		return e.ExpertCandidate
	}
	return e.FastCandidate
}
