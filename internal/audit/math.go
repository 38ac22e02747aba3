package audit

import (
	"fmt"
	"math"

	"veridoc/internal/domain"
	"veridoc/internal/extraction"
	"veridoc/internal/money"
)

// sumToleranceMinor is the fixed tolerance for all sum comparisons, in
// minor units. Multi-line documents accumulate rounding error; two cents
// absorbs that without masking real extraction mistakes.
const sumToleranceMinor = 2

func withinTolerance(a, b money.Money) bool {
	return a.Sub(b).Abs().Minor() <= sumToleranceMinor
}

// VerifyTotals checks subtotal + VAT = total.
func VerifyTotals(subtotal, vat, total *money.Money) Check {
	if subtotal == nil && vat == nil && total == nil {
		return incomplete(CheckMath, "total", "no amounts were extracted; nothing to verify")
	}
	if subtotal == nil || vat == nil {
		return incomplete(CheckMath, "total", "subtotal or VAT amount missing; cannot compute the expected total")
	}
	if total == nil {
		return incomplete(CheckMath, "total", "total missing; cannot verify subtotal + VAT")
	}

	expected := subtotal.Add(*vat)
	if withinTolerance(expected, *total) {
		return passed(CheckMath, "total",
			fmt.Sprintf("subtotal %s + VAT %s = total %s", subtotal, vat, total))
	}

	diff := expected.Sub(*total).Abs().Minor()
	c := failed(CheckMath, "total", domain.SeverityCritical,
		fmt.Sprintf("subtotal %s + VAT %s = %s, but total is %s", subtotal, vat, expected, total))
	c.Expected = expected.String()
	c.Actual = total.String()
	c.Hint = joinHints(hintRereadAmounts, totalsDiscrepancyHint(diff))
	return c
}

// VerifyLineItems checks that the line totals sum to the subtotal. A
// mismatch is a warning, not critical: discounts or lines the extraction
// did not capture legitimately open a gap.
func VerifyLineItems(items []extraction.LineItem, subtotal *money.Money) Check {
	if len(items) == 0 {
		return incomplete(CheckLineItems, "lineItems", "no line items were extracted; nothing to verify")
	}
	if subtotal == nil {
		return incomplete(CheckLineItems, "lineItems", "subtotal missing; cannot verify the line item sum")
	}

	var sum money.Money
	counted := 0
	for _, it := range items {
		if it.LineTotal != nil {
			sum = sum.Add(*it.LineTotal)
			counted++
		}
	}
	if counted == 0 {
		return incomplete(CheckLineItems, "lineItems", "no line item totals were extracted; nothing to sum")
	}

	if withinTolerance(sum, *subtotal) {
		return passed(CheckLineItems, "lineItems",
			fmt.Sprintf("%d line items sum to %s, matching the subtotal", counted, sum))
	}

	c := failed(CheckLineItems, "lineItems", domain.SeverityWarning,
		fmt.Sprintf("%d line items sum to %s, but the subtotal is %s", counted, sum, subtotal))
	c.Expected = subtotal.String()
	c.Actual = sum.String()
	c.Hint = joinHints(
		"The line items do not add up to the subtotal; a discount or an uncaptured line may explain the gap.",
		totalsDiscrepancyHint(sum.Sub(*subtotal).Abs().Minor()),
	)
	return c
}

// VerifyLineItemCalculation checks quantity x unit price = line total for a
// single line. index is zero-based; messages use the document's one-based
// line numbering.
func VerifyLineItemCalculation(item extraction.LineItem, index int) Check {
	field := fmt.Sprintf("lineItems[%d].lineTotal", index)
	lineNo := index + 1

	if item.Quantity == nil || item.UnitPrice == nil || item.LineTotal == nil {
		return incomplete(CheckLineItems, field,
			fmt.Sprintf("line %d: quantity, unit price or line total missing; cannot verify", lineNo))
	}

	expected := money.FromMinor(int64(math.Round(*item.Quantity * float64(item.UnitPrice.Minor()))))
	if withinTolerance(expected, *item.LineTotal) {
		return passed(CheckLineItems, field,
			fmt.Sprintf("line %d: %.4g x %s = %s", lineNo, *item.Quantity, item.UnitPrice, item.LineTotal))
	}

	c := failed(CheckLineItems, field, domain.SeverityWarning,
		fmt.Sprintf("line %d: %.4g x %s = %s, but the line total is %s",
			lineNo, *item.Quantity, item.UnitPrice, expected, item.LineTotal))
	c.Expected = expected.String()
	c.Actual = item.LineTotal.String()
	c.Hint = joinHints(hintRereadAmounts, totalsDiscrepancyHint(expected.Sub(*item.LineTotal).Abs().Minor()))
	return c
}
