package audit

import "veridoc/internal/domain"

// Report is the ordered collection of checks produced for one document.
// Ordering within a document type is fixed so report rendering and fixtures
// stay deterministic.
type Report struct {
	Checks []Check `json:"checks"`
}

// EmptyReport is the canonical zero-checks report returned for document
// types the auditor does not cover.
func EmptyReport() Report {
	return Report{Checks: []Check{}}
}

// Passed reports whether no check failed. Incomplete checks do not count
// against the document.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if c.Failed() {
			return false
		}
	}
	return true
}

// Criticals returns the number of failed checks with critical severity.
func (r Report) Criticals() int {
	n := 0
	for _, c := range r.Checks {
		if c.Failed() && c.Severity == domain.SeverityCritical {
			n++
		}
	}
	return n
}

// Warnings returns the number of failed checks with warning severity.
func (r Report) Warnings() int {
	n := 0
	for _, c := range r.Checks {
		if c.Failed() && c.Severity == domain.SeverityWarning {
			n++
		}
	}
	return n
}

// FailedChecks returns the checks with a definite failing verdict, in
// report order.
func (r Report) FailedChecks() []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Failed() {
			out = append(out, c)
		}
	}
	return out
}
