package audit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/audit"
	"veridoc/internal/domain"
)

func TestImpliedRateBP(t *testing.T) {
	cases := []struct {
		name   string
		base   int64
		amount int64
		want   int64
		ok     bool
	}{
		{"standard_21", 10000, 2100, 2100, true},
		{"reduced_6", 10000, 600, 600, true},
		{"rounds_half_up", 10000, 2105, 2105, true},
		{"rounding", 3333, 700, 2100, true},
		{"zero_base", 0, 2100, 0, false},
		{"zero_amount", 10000, 0, 0, true},
		{"credit_note_negatives", -10000, -2100, 2100, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := audit.ImpliedRateBP(tc.base, tc.amount)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestFormatBP(t *testing.T) {
	assert.Equal(t, "21%", audit.FormatBP(2100))
	assert.Equal(t, "21.50%", audit.FormatBP(2150))
	assert.Equal(t, "0%", audit.FormatBP(0))
	assert.Equal(t, "6.05%", audit.FormatBP(605))
	assert.Equal(t, "-21%", audit.FormatBP(-2100))
}

func TestVerifyTaxRate_StatutoryMatch(t *testing.T) {
	c := audit.VerifyTaxRate(m(100), m(21), "2024-03-15")
	assert.True(t, c.Passed)
	assert.Equal(t, audit.CheckTaxRate, c.Type)
	assert.Equal(t, "vatRate", c.Field)

	c = audit.VerifyTaxRate(m(100), m(6), "15/03/2024")
	assert.True(t, c.Passed)

	c = audit.VerifyTaxRate(m(100), m(12), "")
	assert.True(t, c.Passed)
}

func TestVerifyTaxRate_WithinTolerance(t *testing.T) {
	// 20.80% implied, within 50 bp of the 21% statutory rate.
	c := audit.VerifyTaxRate(m(100), mc(2080), "2024-03-15")
	assert.True(t, c.Passed)
}

func TestVerifyTaxRate_MismatchIsWarning(t *testing.T) {
	c := audit.VerifyTaxRate(m(100), m(20), "2024-03-15")
	require.True(t, c.Failed())
	assert.Equal(t, domain.SeverityWarning, c.Severity)
	assert.Equal(t, "21%", c.Expected)
	assert.Equal(t, "20%", c.Actual)
	assert.Contains(t, c.Hint, "misread")
}

func TestVerifyTaxRate_HistoricalRates(t *testing.T) {
	// 20.50% was the standard rate in 1994-1995.
	c := audit.VerifyTaxRate(m(1000), mc(20500), "1994-06-01")
	assert.True(t, c.Passed)

	// 19.50% applied from April 1992.
	c = audit.VerifyTaxRate(m(1000), mc(19500), "1993-01-10")
	assert.True(t, c.Passed)

	c = audit.VerifyTaxRate(m(1000), mc(19500), "2024-06-01")
	require.True(t, c.Failed())
	assert.Equal(t, "21%", c.Expected)
	assert.Equal(t, "19.50%", c.Actual)
}

func TestVerifyTaxRate_Incomplete(t *testing.T) {
	c := audit.VerifyTaxRate(nil, m(21), "2024-03-15")
	assert.True(t, c.Incomplete)

	c = audit.VerifyTaxRate(m(100), nil, "2024-03-15")
	assert.True(t, c.Incomplete)

	// zero subtotal implies nothing
	c = audit.VerifyTaxRate(mc(0), m(21), "2024-03-15")
	assert.True(t, c.Incomplete)
	assert.Contains(t, c.Message, "zero base")
}
