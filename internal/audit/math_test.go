package audit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/audit"
	"veridoc/internal/domain"
	"veridoc/internal/extraction"
	"veridoc/internal/money"
)

func m(major int64) *money.Money {
	v := money.FromMajor(major)
	return &v
}

func mc(minor int64) *money.Money {
	v := money.FromMinor(minor)
	return &v
}

func f(v float64) *float64 {
	return &v
}

func TestVerifyTotals_Pass(t *testing.T) {
	c := audit.VerifyTotals(m(100), m(21), m(121))
	assert.True(t, c.Passed)
	assert.Equal(t, audit.CheckMath, c.Type)
	assert.Contains(t, c.Message, "100.00")
	assert.Contains(t, c.Message, "121.00")
}

func TestVerifyTotals_WithinTolerance(t *testing.T) {
	c := audit.VerifyTotals(m(100), m(21), mc(12102))
	assert.True(t, c.Passed)

	c = audit.VerifyTotals(m(100), m(21), mc(12103))
	assert.True(t, c.Failed())
}

func TestVerifyTotals_Mismatch(t *testing.T) {
	c := audit.VerifyTotals(m(100), m(21), m(125))
	require.True(t, c.Failed())
	assert.Equal(t, domain.SeverityCritical, c.Severity)
	assert.Equal(t, "121.00", c.Expected)
	assert.Equal(t, "125.00", c.Actual)
}

func TestVerifyTotals_HintBands(t *testing.T) {
	cases := []struct {
		name       string
		totalMinor int64
		wantHint   string
	}{
		{"few_cents", 12110, "check rounding"},
		{"misread_digit", 12150, "1<->7"},
		{"decimal_point", 12600, "decimal"},
		{"generic", 99999, "Verify all extracted amounts"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := audit.VerifyTotals(m(100), m(21), mc(tc.totalMinor))
			require.True(t, c.Failed())
			assert.Contains(t, c.Hint, tc.wantHint)
		})
	}
}

func TestVerifyTotals_Incomplete(t *testing.T) {
	c := audit.VerifyTotals(nil, nil, nil)
	assert.True(t, c.Incomplete)
	assert.Contains(t, c.Message, "nothing to verify")

	c = audit.VerifyTotals(nil, nil, m(121))
	assert.True(t, c.Incomplete)
	assert.False(t, c.Failed())

	c = audit.VerifyTotals(m(100), m(21), nil)
	assert.True(t, c.Incomplete)
}

func TestVerifyLineItems_Pass(t *testing.T) {
	items := []extraction.LineItem{
		{LineTotal: m(60)},
		{LineTotal: m(40)},
	}
	c := audit.VerifyLineItems(items, m(100))
	assert.True(t, c.Passed)
	assert.Contains(t, c.Message, "2 line items")
}

func TestVerifyLineItems_MismatchIsWarning(t *testing.T) {
	items := []extraction.LineItem{{LineTotal: m(60)}}
	c := audit.VerifyLineItems(items, m(100))
	require.True(t, c.Failed())
	assert.Equal(t, domain.SeverityWarning, c.Severity)
	assert.Equal(t, "100.00", c.Expected)
	assert.Equal(t, "60.00", c.Actual)
}

func TestVerifyLineItems_Incomplete(t *testing.T) {
	assert.True(t, audit.VerifyLineItems(nil, m(100)).Incomplete)
	assert.True(t, audit.VerifyLineItems([]extraction.LineItem{{LineTotal: m(1)}}, nil).Incomplete)
	assert.True(t, audit.VerifyLineItems([]extraction.LineItem{{Description: "no total"}}, m(100)).Incomplete)
}

func TestVerifyLineItemCalculation_Pass(t *testing.T) {
	item := extraction.LineItem{Quantity: f(3), UnitPrice: m(10), LineTotal: m(30)}
	c := audit.VerifyLineItemCalculation(item, 0)
	assert.True(t, c.Passed)
	assert.Equal(t, "lineItems[0].lineTotal", c.Field)
}

func TestVerifyLineItemCalculation_FractionalQuantity(t *testing.T) {
	// 2.5 x 9.99 = 24.975, rounded to 24.98
	item := extraction.LineItem{Quantity: f(2.5), UnitPrice: mc(999), LineTotal: mc(2498)}
	c := audit.VerifyLineItemCalculation(item, 2)
	assert.True(t, c.Passed)
	assert.Equal(t, "lineItems[2].lineTotal", c.Field)
}

func TestVerifyLineItemCalculation_MismatchIsWarning(t *testing.T) {
	item := extraction.LineItem{Quantity: f(3), UnitPrice: m(10), LineTotal: m(35)}
	c := audit.VerifyLineItemCalculation(item, 1)
	require.True(t, c.Failed())
	assert.Equal(t, domain.SeverityWarning, c.Severity)
	assert.Contains(t, c.Message, "line 2")
	assert.Equal(t, "30.00", c.Expected)
	assert.Equal(t, "35.00", c.Actual)
}

func TestVerifyLineItemCalculation_Incomplete(t *testing.T) {
	item := extraction.LineItem{Quantity: f(3), LineTotal: m(30)}
	c := audit.VerifyLineItemCalculation(item, 0)
	assert.True(t, c.Incomplete)
	assert.Contains(t, c.Message, "line 1")
}
