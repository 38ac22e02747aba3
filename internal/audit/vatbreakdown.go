package audit

import (
	"fmt"

	"veridoc/internal/domain"
	"veridoc/internal/extraction"
	"veridoc/internal/money"
)

// VerifyVATBreakdown checks the per-rate VAT breakdown table: the base and
// amount columns must sum to the document's subtotal and VAT amount, and
// each entry's stated rate must match the rate implied by its own amounts.
// Breakdown mismatches are informational signals, never critical.
//
// required reflects the document-type policy: a missing breakdown on a type
// that mandates one is a warning, otherwise merely incomplete.
func VerifyVATBreakdown(entries []extraction.VATEntry, subtotal, vatAmount *money.Money, docDate string, required bool) []Check {
	if len(entries) == 0 {
		if required {
			c := failed(CheckVATBreakdown, "vatBreakdown", domain.SeverityWarning,
				"this document type carries a VAT breakdown, but none was extracted")
			c.Hint = "Re-read the VAT summary table of the document."
			return []Check{c}
		}
		return []Check{incomplete(CheckVATBreakdown, "vatBreakdown",
			"no VAT breakdown was extracted; nothing to verify")}
	}

	var baseSum, amountSum int64
	for _, e := range entries {
		baseSum += e.Base
		amountSum += e.Amount
	}

	checks := []Check{
		sumCheck("vatBreakdown.base", "base", baseSum, subtotal, "subtotal", required),
		sumCheck("vatBreakdown.amount", "amount", amountSum, vatAmount, "VAT amount", required),
	}

	for i, e := range entries {
		checks = append(checks, verifyRateAgainstStatutory(
			fmt.Sprintf("vatBreakdown[%d].impliedRate", i), e.Base, e.Amount, docDate))
		checks = append(checks, verifyEntryRate(i, e))
	}

	return checks
}

// sumCheck compares a breakdown column sum against a document amount.
func sumCheck(field, column string, sum int64, docAmount *money.Money, docField string, required bool) Check {
	if docAmount == nil {
		msg := fmt.Sprintf("document %s missing; cannot verify the breakdown %s sum", docField, column)
		if required {
			c := failed(CheckVATBreakdown, field, domain.SeverityWarning, msg)
			return c
		}
		return incomplete(CheckVATBreakdown, field, msg)
	}

	sumM := money.FromMinor(sum)
	if withinTolerance(sumM, *docAmount) {
		return passed(CheckVATBreakdown, field,
			fmt.Sprintf("breakdown %s sum %s matches the document %s", column, sumM, docField))
	}

	c := failed(CheckVATBreakdown, field, domain.SeverityWarning,
		fmt.Sprintf("breakdown %s sum is %s, but the document %s is %s", column, sumM, docField, docAmount))
	c.Expected = docAmount.String()
	c.Actual = sumM.String()
	c.Hint = joinHints(
		"Re-read the VAT summary table of the document.",
		totalsDiscrepancyHint(sumM.Sub(*docAmount).Abs().Minor()),
	)
	return c
}

// verifyEntryRate checks one entry's internal consistency: the rate implied
// by amount/base must match the entry's own stated rate.
func verifyEntryRate(i int, e extraction.VATEntry) Check {
	field := fmt.Sprintf("vatBreakdown[%d].rate", i)

	implied, ok := ImpliedRateBP(e.Base, e.Amount)
	if !ok {
		return incomplete(CheckVATBreakdown, field, "cannot verify the stated rate against a zero base")
	}

	if absBP(implied-e.Rate) <= rateToleranceBP {
		return passed(CheckVATBreakdown, field,
			fmt.Sprintf("stated rate %s matches the rate implied by the entry amounts", FormatBP(e.Rate)))
	}

	c := failed(CheckVATBreakdown, field, domain.SeverityWarning,
		fmt.Sprintf("stated rate is %s, but the entry amounts imply %s", FormatBP(e.Rate), FormatBP(implied)))
	c.Expected = FormatBP(implied)
	c.Actual = FormatBP(e.Rate)
	c.Hint = "Either the stated rate or the base/amount pair of this breakdown entry is misread."
	return c
}
