package audit

import (
	"fmt"
	"strings"
	"time"

	"veridoc/internal/domain"
	"veridoc/internal/money"
)

// rateToleranceBP is the tolerance for VAT rate comparisons, in basis
// points (50 bp = 0.50%). Implied rates wobble when the base is small.
const rateToleranceBP = 50

// statutoryRateSet lists the VAT rates (basis points) in force from a date.
type statutoryRateSet struct {
	from  time.Time
	rates []int64
}

// Belgian VAT rate history. The reduced rates 0%, 6% and 12% are stable;
// the standard rate last changed in 1996.
var belgianRates = []statutoryRateSet{
	{from: time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), rates: []int64{0, 600, 1200, 2100}},
	{from: time.Date(1994, 1, 1, 0, 0, 0, 0, time.UTC), rates: []int64{0, 600, 1200, 2050}},
	{from: time.Date(1992, 4, 1, 0, 0, 0, 0, time.UTC), rates: []int64{0, 600, 1200, 1950}},
}

// statutoryRatesFor returns the rate set in force on the document date.
// An empty or unparseable date falls back to the current set.
func statutoryRatesFor(docDate string) []int64 {
	t, err := parseDocumentDate(docDate)
	if err != nil {
		return belgianRates[0].rates
	}
	for _, set := range belgianRates {
		if !t.Before(set.from) {
			return set.rates
		}
	}
	return belgianRates[len(belgianRates)-1].rates
}

// parseDocumentDate tries the date formats extraction models emit.
func parseDocumentDate(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"02-01-2006",
		"02/01/2006",
		"2006/01/02",
		"02.01.2006",
		"2 January 2006",
		"02 Jan 2006",
		"Jan 02, 2006",
		"2006-01-02T15:04:05Z07:00",
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, f := range formats {
		if t, err := time.Parse(f, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %s", s)
}

// ImpliedRateBP computes round(amount x 10000 / base) in basis points.
// ok is false when base is zero: no rate can be implied from a zero base.
func ImpliedRateBP(base, amount int64) (bp int64, ok bool) {
	if base == 0 {
		return 0, false
	}
	num := amount * 10000
	// round half away from zero
	if (num >= 0) == (base >= 0) {
		return (num + base/2) / base, true
	}
	return (num - base/2) / base, true
}

// FormatBP renders basis points as a percentage, omitting the fractional
// part when it is exactly zero: 2100 -> "21%", 2150 -> "21.50%".
func FormatBP(bp int64) string {
	sign := ""
	if bp < 0 {
		sign = "-"
		bp = -bp
	}
	if bp%100 == 0 {
		return fmt.Sprintf("%s%d%%", sign, bp/100)
	}
	return fmt.Sprintf("%s%d.%02d%%", sign, bp/100, bp%100)
}

// nearestRate returns the statutory rate closest to the implied one.
func nearestRate(rates []int64, implied int64) int64 {
	best := rates[0]
	for _, r := range rates[1:] {
		if absBP(r-implied) < absBP(best-implied) {
			best = r
		}
	}
	return best
}

func absBP(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// verifyRateAgainstStatutory checks that the rate implied by amount/base
// matches a statutory VAT rate for the document date within tolerance. The
// caller binds the field path, so the same primitive serves document-level
// totals and individual breakdown entries.
func verifyRateAgainstStatutory(field string, base, amount int64, docDate string) Check {
	implied, ok := ImpliedRateBP(base, amount)
	if !ok {
		return incomplete(CheckTaxRate, field, "cannot verify the VAT rate against a zero base")
	}

	rates := statutoryRatesFor(docDate)
	nearest := nearestRate(rates, implied)
	if absBP(nearest-implied) <= rateToleranceBP {
		return passed(CheckTaxRate, field,
			fmt.Sprintf("implied VAT rate %s matches the statutory rate %s", FormatBP(implied), FormatBP(nearest)))
	}

	c := failed(CheckTaxRate, field, domain.SeverityWarning,
		fmt.Sprintf("implied VAT rate %s does not match any statutory rate (nearest: %s)",
			FormatBP(implied), FormatBP(nearest)))
	c.Expected = FormatBP(nearest)
	c.Actual = FormatBP(implied)
	c.Hint = joinHints(
		hintRereadAmounts,
		"The VAT amount divided by the taxable base should yield a statutory VAT rate; one of the two amounts is probably misread.",
	)
	return c
}

// VerifyTaxRate checks the document-level VAT rate implied by the
// subtotal/VAT pair against the statutory rates on the document date.
func VerifyTaxRate(subtotal, vat *money.Money, docDate string) Check {
	if subtotal == nil || vat == nil {
		return incomplete(CheckTaxRate, "vatRate", "subtotal or VAT amount missing; cannot imply a VAT rate")
	}
	return verifyRateAgainstStatutory("vatRate", subtotal.Minor(), vat.Minor(), docDate)
}
