package audit

import (
	"veridoc/internal/extraction"
	"veridoc/internal/money"
)

// auditPolicy captures which validators run for a document type and how.
type auditPolicy struct {
	// deriveSubtotal: the type has no explicit subtotal field; derive it as
	// total - VAT when both are present. The subtotal+VAT=total math check
	// is skipped for those types since it would verify its own derivation.
	deriveSubtotal bool
	// lineItems / vatBreakdown: whether those validators run at all.
	lineItems    bool
	vatBreakdown bool
	// breakdownRequired: a missing breakdown is a warning, not incomplete.
	breakdownRequired bool
	// payment: the type collects payment, so IBAN and OGM checksums run.
	payment bool
}

// auditPolicies is the per-document-type dispatch table. Credit notes,
// pro-forma documents and receipts have no payment-collection semantics.
var auditPolicies = map[extraction.DocumentType]auditPolicy{
	extraction.DocTypeInvoice:       {lineItems: true, vatBreakdown: true, breakdownRequired: true, payment: true},
	extraction.DocTypeCreditNote:    {lineItems: true, vatBreakdown: true, breakdownRequired: true},
	extraction.DocTypeQuote:         {lineItems: true, vatBreakdown: true, breakdownRequired: true, payment: true},
	extraction.DocTypePurchaseOrder: {lineItems: true, vatBreakdown: true, breakdownRequired: true, payment: true},
	extraction.DocTypeProForma:      {},
	extraction.DocTypeBill:          {deriveSubtotal: true, lineItems: true, vatBreakdown: true, payment: true},
	extraction.DocTypeReceipt:       {deriveSubtotal: true, lineItems: true, vatBreakdown: true},
}

// AuditExtraction runs the validators relevant to the extraction's document
// type and assembles the findings into one ordered report. The per-type
// order is fixed: math, tax rate, line items, VAT breakdown, IBAN, OGM.
func AuditExtraction(x *extraction.FinancialExtraction) Report {
	policy, ok := auditPolicies[x.DocumentType]
	if !ok {
		return EmptyReport()
	}

	subtotal := x.Subtotal
	if policy.deriveSubtotal {
		subtotal = deriveSubtotal(x.Total, x.VATAmount)
	}

	var checks []Check
	if !policy.deriveSubtotal {
		checks = append(checks, VerifyTotals(subtotal, x.VATAmount, x.Total))
	}
	checks = append(checks, VerifyTaxRate(subtotal, x.VATAmount, x.DocumentDate))

	if policy.lineItems {
		checks = append(checks, VerifyLineItems(x.LineItems, subtotal))
		for i, item := range x.LineItems {
			checks = append(checks, VerifyLineItemCalculation(item, i))
		}
	}

	if policy.vatBreakdown {
		checks = append(checks, VerifyVATBreakdown(x.VATBreakdown, subtotal, x.VATAmount, x.DocumentDate, policy.breakdownRequired)...)
	}

	if policy.payment {
		checks = append(checks, AuditIBAN(x.IBAN))
		checks = append(checks, AuditOGM(x.PaymentReference))
	}

	return Report{Checks: checks}
}

// deriveSubtotal computes total - VAT for document types without an
// explicit subtotal field. Either side missing yields nil, which the
// downstream validators report as incomplete.
func deriveSubtotal(total, vat *money.Money) *money.Money {
	if total == nil || vat == nil {
		return nil
	}
	derived := total.Sub(*vat)
	return &derived
}
