// Package audit implements the validation engine for extracted financial
// documents: checksum, arithmetic and VAT-rate validators plus the
// per-document-type dispatcher assembling their findings into a Report.
//
// Every validator is a pure function: it never returns an error and never
// panics on missing data. Absent input yields an explicit incomplete check
// instead, so callers can always render why a check did not run.
package audit

import "veridoc/internal/domain"

// CheckType identifies the kind of verification a Check reports on.
type CheckType string

const (
	CheckMath         CheckType = "math"
	CheckTaxRate      CheckType = "tax_rate"
	CheckLineItems    CheckType = "line_items"
	CheckVATBreakdown CheckType = "vat_breakdown"
	CheckIBAN         CheckType = "checksum_iban"
	CheckOGM          CheckType = "checksum_ogm"
)

// Check is one verdict for one field of one document.
type Check struct {
	Type   CheckType `json:"type"`
	Field  string    `json:"field"`
	Passed bool      `json:"passed"`
	// Incomplete means required input was absent and nothing was verified.
	// An incomplete check is never a failure and never critical.
	Incomplete bool            `json:"incomplete"`
	Severity   domain.Severity `json:"severity"`
	Message    string          `json:"message"`
	// Hint carries correction guidance for a retry prompt, or a note about
	// corrections that were already applied.
	Hint     string `json:"hint,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Failed reports whether the check ran to a definite failing verdict.
func (c Check) Failed() bool {
	return !c.Incomplete && !c.Passed
}

func passed(t CheckType, field, message string) Check {
	return Check{Type: t, Field: field, Passed: true, Severity: domain.SeverityInfo, Message: message}
}

func failed(t CheckType, field string, sev domain.Severity, message string) Check {
	return Check{Type: t, Field: field, Severity: sev, Message: message}
}

func incomplete(t CheckType, field, message string) Check {
	return Check{Type: t, Field: field, Incomplete: true, Severity: domain.SeverityInfo, Message: message}
}
