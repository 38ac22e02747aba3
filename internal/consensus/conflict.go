package consensus

import "veridoc/internal/domain"

// FieldConflict records one field where the fast and expert extractions
// disagree. Values are string renderings for display and prompt building.
// ChosenValue is nil only under the require-match policy, where no value is
// chosen at all.
type FieldConflict struct {
	Field        string          `json:"field"`
	FastValue    string          `json:"fast_value"`
	ExpertValue  string          `json:"expert_value"`
	ChosenValue  *string         `json:"chosen_value"`
	ChosenSource Source          `json:"chosen_source,omitempty"`
	Severity     domain.Severity `json:"severity"`
}

// ConflictReport is the ordered list of field conflicts for one document.
type ConflictReport struct {
	Conflicts []FieldConflict `json:"conflicts"`
}

// EmptyConflictReport denotes no disagreement between the models.
func EmptyConflictReport() ConflictReport {
	return ConflictReport{Conflicts: []FieldConflict{}}
}

// HasConflicts reports whether any field disagreed.
func (r ConflictReport) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// CriticalConflicts returns the conflicts that block auto-approval.
func (r ConflictReport) CriticalConflicts() []FieldConflict {
	var out []FieldConflict
	for _, c := range r.Conflicts {
		if c.Severity == domain.SeverityCritical {
			out = append(out, c)
		}
	}
	return out
}

// WarningConflicts returns the conflicts that were resolved automatically.
func (r ConflictReport) WarningConflicts() []FieldConflict {
	var out []FieldConflict
	for _, c := range r.Conflicts {
		if c.Severity == domain.SeverityWarning {
			out = append(out, c)
		}
	}
	return out
}

// ByField indexes the conflicts by field path.
func (r ConflictReport) ByField() map[string]FieldConflict {
	out := make(map[string]FieldConflict, len(r.Conflicts))
	for _, c := range r.Conflicts {
		out[c.Field] = c
	}
	return out
}
