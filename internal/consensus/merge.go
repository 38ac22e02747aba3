package consensus

import (
	"fmt"
	"strconv"

	"veridoc/internal/domain"
	"veridoc/internal/extraction"
	"veridoc/internal/money"
)

// ModelWeight is the per-document merge policy governing which model wins
// when the two candidates disagree on a field.
type ModelWeight string

const (
	PreferFast   ModelWeight = "prefer_fast"
	PreferExpert ModelWeight = "prefer_expert"
	// RequireMatch chooses no value on disagreement: every conflict is
	// critical and blocks auto-approval.
	RequireMatch ModelWeight = "require_match"
)

// ParseModelWeight maps a config string to a ModelWeight, defaulting to
// prefer_expert for unknown values.
func ParseModelWeight(s string) ModelWeight {
	switch ModelWeight(s) {
	case PreferFast, PreferExpert, RequireMatch:
		return ModelWeight(s)
	default:
		return PreferExpert
	}
}

// safetyCriticalFields conflict as critical under any policy: a payment
// identifier or total the models disagree on must never auto-approve.
var safetyCriticalFields = map[string]bool{
	"iban":             true,
	"paymentReference": true,
	"total":            true,
}

// Merge combines the two candidates of an ensemble into one record. Fields
// that match under the appropriate normalization flow into the merged
// record directly; fields that differ are recorded as conflicts and
// resolved according to the weight policy.
func Merge(e EnsembleResult[extraction.FinancialExtraction], weight ModelWeight) ConsensusResult[extraction.FinancialExtraction] {
	switch {
	case !e.HasAnyCandidate():
		return NoData[extraction.FinancialExtraction]()
	case !e.ExpertSucceeded():
		return SingleSource(e.FastCandidate, SourceFast)
	case !e.FastSucceeded():
		return SingleSource(e.ExpertCandidate, SourceExpert)
	}

	m := &merger{weight: weight}
	merged := m.merge(*e.FastCandidate, *e.ExpertCandidate)

	if len(m.conflicts) == 0 {
		return Unanimous(&merged)
	}
	return WithConflicts(&merged, ConflictReport{Conflicts: m.conflicts})
}

type merger struct {
	weight    ModelWeight
	conflicts []FieldConflict
}

func (m *merger) merge(fast, expert extraction.FinancialExtraction) extraction.FinancialExtraction {
	var out extraction.FinancialExtraction

	out.DocumentType = extraction.DocumentType(m.mergeString("documentType",
		string(fast.DocumentType), string(expert.DocumentType), extraction.NormalizeString))

	out.DocumentNumber = m.mergeString("documentNumber", fast.DocumentNumber, expert.DocumentNumber, extraction.NormalizeString)
	out.DocumentDate = m.mergeString("documentDate", fast.DocumentDate, expert.DocumentDate, extraction.NormalizeString)
	out.DueDate = m.mergeString("dueDate", fast.DueDate, expert.DueDate, extraction.NormalizeString)
	out.Currency = m.mergeString("currency", fast.Currency, expert.Currency, extraction.NormalizeString)
	out.CounterpartyName = m.mergeString("counterpartyName", fast.CounterpartyName, expert.CounterpartyName, extraction.NormalizeString)
	out.CounterpartyVAT = m.mergeString("counterpartyVAT", fast.CounterpartyVAT, expert.CounterpartyVAT, extraction.NormalizeIdentifier)

	out.Subtotal = m.mergeMoney("subtotal", fast.Subtotal, expert.Subtotal)
	out.VATAmount = m.mergeMoney("vatAmount", fast.VATAmount, expert.VATAmount)
	out.Total = m.mergeMoney("total", fast.Total, expert.Total)

	out.IBAN = m.mergeString("iban", fast.IBAN, expert.IBAN, extraction.NormalizeIdentifier)
	out.PaymentReference = m.mergeString("paymentReference", fast.PaymentReference, expert.PaymentReference, extraction.NormalizeIdentifier)

	out.LineItems = m.mergeLineItems(fast.LineItems, expert.LineItems)
	out.VATBreakdown = m.mergeVATBreakdown(fast.VATBreakdown, expert.VATBreakdown)

	return out
}

// record registers a conflict and returns which source was chosen.
// Under require-match no source is chosen at all.
func (m *merger) record(field, fastVal, expertVal string) (Source, bool) {
	sev := domain.SeverityWarning
	if safetyCriticalFields[field] || m.weight == RequireMatch {
		sev = domain.SeverityCritical
	}

	c := FieldConflict{
		Field:       field,
		FastValue:   fastVal,
		ExpertValue: expertVal,
		Severity:    sev,
	}

	if m.weight == RequireMatch {
		m.conflicts = append(m.conflicts, c)
		return "", false
	}

	src := SourceExpert
	chosen := expertVal
	if m.weight == PreferFast {
		src = SourceFast
		chosen = fastVal
	}
	c.ChosenSource = src
	c.ChosenValue = &chosen
	m.conflicts = append(m.conflicts, c)
	return src, true
}

func (m *merger) mergeString(field, fast, expert string, norm func(string) string) string {
	switch {
	case norm(fast) == norm(expert):
		if expert != "" {
			return expert
		}
		return fast
	case fast == "":
		return expert
	case expert == "":
		return fast
	}

	src, chosen := m.record(field, fast, expert)
	if chosen && src == SourceFast {
		return fast
	}
	return expert
}

func (m *merger) mergeMoney(field string, fast, expert *money.Money) *money.Money {
	switch {
	case fast == nil && expert == nil:
		return nil
	case fast == nil:
		return expert
	case expert == nil:
		return fast
	case fast.Minor() == expert.Minor():
		return expert
	}

	src, chosen := m.record(field, fast.String(), expert.String())
	if chosen && src == SourceFast {
		return fast
	}
	return expert
}

func (m *merger) mergeFloat(field string, fast, expert *float64) *float64 {
	switch {
	case fast == nil && expert == nil:
		return nil
	case fast == nil:
		return expert
	case expert == nil:
		return fast
	case *fast == *expert:
		return expert
	}

	src, chosen := m.record(field, formatFloat(*fast), formatFloat(*expert))
	if chosen && src == SourceFast {
		return fast
	}
	return expert
}

func (m *merger) mergeInt(field string, fast, expert int64) int64 {
	if fast == expert {
		return expert
	}
	src, chosen := m.record(field, strconv.FormatInt(fast, 10), strconv.FormatInt(expert, 10))
	if chosen && src == SourceFast {
		return fast
	}
	return expert
}

// mergeLineItems merges the line item arrays. Different lengths make a
// field-by-field walk meaningless, so the whole array conflicts as one.
func (m *merger) mergeLineItems(fast, expert []extraction.LineItem) []extraction.LineItem {
	switch {
	case len(fast) == 0:
		return expert
	case len(expert) == 0:
		return fast
	case len(fast) != len(expert):
		src, chosen := m.record("lineItems",
			fmt.Sprintf("%d items", len(fast)), fmt.Sprintf("%d items", len(expert)))
		if chosen && src == SourceFast {
			return fast
		}
		return expert
	}

	out := make([]extraction.LineItem, len(fast))
	for i := range fast {
		prefix := fmt.Sprintf("lineItems[%d]", i)
		out[i] = extraction.LineItem{
			Description: m.mergeString(prefix+".description", fast[i].Description, expert[i].Description, extraction.NormalizeString),
			Quantity:    m.mergeFloat(prefix+".quantity", fast[i].Quantity, expert[i].Quantity),
			UnitPrice:   m.mergeMoney(prefix+".unitPrice", fast[i].UnitPrice, expert[i].UnitPrice),
			LineTotal:   m.mergeMoney(prefix+".lineTotal", fast[i].LineTotal, expert[i].LineTotal),
		}
	}
	return out
}

func (m *merger) mergeVATBreakdown(fast, expert []extraction.VATEntry) []extraction.VATEntry {
	switch {
	case len(fast) == 0:
		return expert
	case len(expert) == 0:
		return fast
	case len(fast) != len(expert):
		src, chosen := m.record("vatBreakdown",
			fmt.Sprintf("%d entries", len(fast)), fmt.Sprintf("%d entries", len(expert)))
		if chosen && src == SourceFast {
			return fast
		}
		return expert
	}

	out := make([]extraction.VATEntry, len(fast))
	for i := range fast {
		prefix := fmt.Sprintf("vatBreakdown[%d]", i)
		out[i] = extraction.VATEntry{
			Rate:   m.mergeInt(prefix+".rate", fast[i].Rate, expert[i].Rate),
			Base:   m.mergeInt(prefix+".base", fast[i].Base, expert[i].Base),
			Amount: m.mergeInt(prefix+".amount", fast[i].Amount, expert[i].Amount),
		}
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
