package consensus

// Kind discriminates the variants of a ConsensusResult. Exactly one holds
// at a time; consumers are expected to switch exhaustively on it.
type Kind string

const (
	// KindNoData: neither model produced data.
	KindNoData Kind = "no_data"
	// KindSingleSource: only one candidate was available; no merge ran.
	KindSingleSource Kind = "single_source"
	// KindUnanimous: both candidates present and agreeing on every field.
	KindUnanimous Kind = "unanimous"
	// KindWithConflicts: both candidates present, at least one disagreement.
	KindWithConflicts Kind = "with_conflicts"
)

// ConsensusResult is the outcome of merging the two model candidates.
type ConsensusResult[T any] struct {
	Kind Kind `json:"kind"`
	// Data is the merged record; nil only for KindNoData.
	Data *T `json:"data"`
	// Source is set for KindSingleSource only.
	Source Source `json:"source,omitempty"`
	// Report is non-empty only for KindWithConflicts.
	Report ConflictReport `json:"report"`
}

// NoData builds the variant for the case where neither model produced data.
func NoData[T any]() ConsensusResult[T] {
	return ConsensusResult[T]{Kind: KindNoData, Report: EmptyConflictReport()}
}

// SingleSource builds the variant for a one-candidate merge.
func SingleSource[T any](data *T, src Source) ConsensusResult[T] {
	return ConsensusResult[T]{Kind: KindSingleSource, Data: data, Source: src, Report: EmptyConflictReport()}
}

// Unanimous builds the variant for two fully agreeing candidates.
func Unanimous[T any](data *T) ConsensusResult[T] {
	return ConsensusResult[T]{Kind: KindUnanimous, Data: data, Report: EmptyConflictReport()}
}

// WithConflicts builds the variant for a merge that recorded disagreements.
func WithConflicts[T any](data *T, report ConflictReport) ConsensusResult[T] {
	return ConsensusResult[T]{Kind: KindWithConflicts, Data: data, Report: report}
}

// DataOrNil extracts the merged record; nil only for KindNoData.
func (r ConsensusResult[T]) DataOrNil() *T {
	return r.Data
}

// HasBothSources reports whether both models contributed to the result.
func (r ConsensusResult[T]) HasBothSources() bool {
	return r.Kind == KindUnanimous || r.Kind == KindWithConflicts
}
