package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/consensus"
	"veridoc/internal/domain"
	"veridoc/internal/extraction"
	"veridoc/internal/money"
)

func mc(minor int64) *money.Money {
	v := money.FromMinor(minor)
	return &v
}

func f(v float64) *float64 {
	return &v
}

func sampleExtraction() extraction.FinancialExtraction {
	return extraction.FinancialExtraction{
		DocumentType:     extraction.DocTypeInvoice,
		DocumentNumber:   "INV-2024-0042",
		DocumentDate:     "2024-03-15",
		Currency:         "EUR",
		CounterpartyName: "Acme NV",
		CounterpartyVAT:  "BE0123456749",
		Subtotal:         mc(15000),
		VATAmount:        mc(3150),
		Total:            mc(18150),
		LineItems: []extraction.LineItem{
			{Description: "consulting", Quantity: f(2), UnitPrice: mc(5000), LineTotal: mc(10000)},
			{Description: "hosting", Quantity: f(1), UnitPrice: mc(5000), LineTotal: mc(5000)},
		},
		VATBreakdown: []extraction.VATEntry{
			{Rate: 2100, Base: 15000, Amount: 3150},
		},
		IBAN:             "BE68 5390 0754 7034",
		PaymentReference: "+++098/2345/67496+++",
	}
}

func ensemble(fast, expert *extraction.FinancialExtraction) consensus.EnsembleResult[extraction.FinancialExtraction] {
	return consensus.EnsembleResult[extraction.FinancialExtraction]{
		FastCandidate:   fast,
		ExpertCandidate: expert,
	}
}

func TestMerge_NoData(t *testing.T) {
	r := consensus.Merge(ensemble(nil, nil), consensus.PreferExpert)
	assert.Equal(t, consensus.KindNoData, r.Kind)
	assert.Nil(t, r.DataOrNil())
	assert.False(t, r.Report.HasConflicts())
}

func TestMerge_SingleSource(t *testing.T) {
	expert := sampleExtraction()
	r := consensus.Merge(ensemble(nil, &expert), consensus.PreferExpert)
	assert.Equal(t, consensus.KindSingleSource, r.Kind)
	assert.Equal(t, consensus.SourceExpert, r.Source)
	require.NotNil(t, r.Data)
	assert.Equal(t, "INV-2024-0042", r.Data.DocumentNumber)
	assert.False(t, r.HasBothSources())

	fast := sampleExtraction()
	r = consensus.Merge(ensemble(&fast, nil), consensus.PreferExpert)
	assert.Equal(t, consensus.KindSingleSource, r.Kind)
	assert.Equal(t, consensus.SourceFast, r.Source)
}

func TestMerge_Unanimous(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferExpert)
	assert.Equal(t, consensus.KindUnanimous, r.Kind)
	assert.False(t, r.Report.HasConflicts())
	assert.True(t, r.HasBothSources())
	require.NotNil(t, r.Data)
	assert.Equal(t, int64(18150), r.Data.Total.Minor())
}

func TestMerge_NormalizedAgreementKeepsExpertRendering(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	fast.CounterpartyName = "ACME NV"
	expert.CounterpartyName = "Acme NV"
	fast.IBAN = "be68539007547034"
	expert.IBAN = "BE68 5390 0754 7034"

	r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferExpert)
	assert.Equal(t, consensus.KindUnanimous, r.Kind)
	assert.Equal(t, "Acme NV", r.Data.CounterpartyName)
	assert.Equal(t, "BE68 5390 0754 7034", r.Data.IBAN)
}

func TestMerge_EmptyFieldFillsWithoutConflict(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	fast.DueDate = "2024-04-14"
	expert.DueDate = ""
	expert.CounterpartyVAT = "BE0123456749"
	fast.CounterpartyVAT = ""

	r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferExpert)
	assert.Equal(t, consensus.KindUnanimous, r.Kind)
	assert.Equal(t, "2024-04-14", r.Data.DueDate)
	assert.Equal(t, "BE0123456749", r.Data.CounterpartyVAT)
}

func TestMerge_PreferExpertResolvesConflict(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	fast.DocumentNumber = "INV-2024-0042"
	expert.DocumentNumber = "INV-2024-0043"

	r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferExpert)
	assert.Equal(t, consensus.KindWithConflicts, r.Kind)
	assert.Equal(t, "INV-2024-0043", r.Data.DocumentNumber)

	require.Len(t, r.Report.Conflicts, 1)
	c := r.Report.Conflicts[0]
	assert.Equal(t, "documentNumber", c.Field)
	assert.Equal(t, "INV-2024-0042", c.FastValue)
	assert.Equal(t, "INV-2024-0043", c.ExpertValue)
	assert.Equal(t, consensus.SourceExpert, c.ChosenSource)
	require.NotNil(t, c.ChosenValue)
	assert.Equal(t, "INV-2024-0043", *c.ChosenValue)
	assert.Equal(t, domain.SeverityWarning, c.Severity)
}

func TestMerge_PreferFastResolvesConflict(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	fast.Subtotal = mc(15000)
	expert.Subtotal = mc(15100)

	r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferFast)
	assert.Equal(t, consensus.KindWithConflicts, r.Kind)
	assert.Equal(t, int64(15000), r.Data.Subtotal.Minor())

	require.Len(t, r.Report.Conflicts, 1)
	c := r.Report.Conflicts[0]
	assert.Equal(t, "subtotal", c.Field)
	assert.Equal(t, "150.00", c.FastValue)
	assert.Equal(t, "151.00", c.ExpertValue)
	assert.Equal(t, consensus.SourceFast, c.ChosenSource)
}

func TestMerge_SafetyCriticalFieldsAlwaysCritical(t *testing.T) {
	for _, field := range []string{"iban", "paymentReference", "total"} {
		t.Run(field, func(t *testing.T) {
			fast := sampleExtraction()
			expert := sampleExtraction()
			switch field {
			case "iban":
				fast.IBAN = "BE68 5390 0754 7034"
				expert.IBAN = "BE71 0961 2345 6769"
			case "paymentReference":
				fast.PaymentReference = "+++098/2345/67496+++"
				expert.PaymentReference = "+++123/4567/88897+++"
			case "total":
				fast.Total = mc(18150)
				expert.Total = mc(18250)
			}

			r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferExpert)
			require.Equal(t, consensus.KindWithConflicts, r.Kind)
			conflicts := r.Report.CriticalConflicts()
			require.Len(t, conflicts, 1)
			assert.Equal(t, field, conflicts[0].Field)
			assert.Equal(t, consensus.SourceExpert, conflicts[0].ChosenSource)
		})
	}
}

func TestMerge_RequireMatchChoosesNothing(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	fast.CounterpartyName = "Acme NV"
	expert.CounterpartyName = "Acme Group NV"

	r := consensus.Merge(ensemble(&fast, &expert), consensus.RequireMatch)
	require.Equal(t, consensus.KindWithConflicts, r.Kind)

	require.Len(t, r.Report.Conflicts, 1)
	c := r.Report.Conflicts[0]
	assert.Nil(t, c.ChosenValue)
	assert.Empty(t, c.ChosenSource)
	assert.Equal(t, domain.SeverityCritical, c.Severity)
	assert.Len(t, r.Report.CriticalConflicts(), 1)
}

func TestMerge_LineItemFieldConflict(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	expert.LineItems[1].UnitPrice = mc(5500)
	expert.LineItems[1].LineTotal = mc(5500)

	r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferExpert)
	require.Equal(t, consensus.KindWithConflicts, r.Kind)

	byField := r.Report.ByField()
	require.Contains(t, byField, "lineItems[1].unitPrice")
	require.Contains(t, byField, "lineItems[1].lineTotal")
	assert.Equal(t, "50.00", byField["lineItems[1].unitPrice"].FastValue)
	assert.Equal(t, "55.00", byField["lineItems[1].unitPrice"].ExpertValue)
	assert.Equal(t, int64(5500), r.Data.LineItems[1].UnitPrice.Minor())
}

func TestMerge_LineItemCountMismatchIsOneConflict(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	expert.LineItems = expert.LineItems[:1]

	r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferExpert)
	require.Equal(t, consensus.KindWithConflicts, r.Kind)

	require.Len(t, r.Report.Conflicts, 1)
	c := r.Report.Conflicts[0]
	assert.Equal(t, "lineItems", c.Field)
	assert.Equal(t, "2 items", c.FastValue)
	assert.Equal(t, "1 items", c.ExpertValue)
	assert.Len(t, r.Data.LineItems, 1)
}

func TestMerge_MissingLineItemsFillWithoutConflict(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	fast.LineItems = nil

	r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferExpert)
	assert.Equal(t, consensus.KindUnanimous, r.Kind)
	assert.Len(t, r.Data.LineItems, 2)
}

func TestMerge_VATBreakdownEntryConflict(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	fast.VATBreakdown[0].Rate = 2100
	expert.VATBreakdown[0].Rate = 600

	r := consensus.Merge(ensemble(&fast, &expert), consensus.PreferFast)
	require.Equal(t, consensus.KindWithConflicts, r.Kind)

	byField := r.Report.ByField()
	require.Contains(t, byField, "vatBreakdown[0].rate")
	assert.Equal(t, "2100", byField["vatBreakdown[0].rate"].FastValue)
	assert.Equal(t, "600", byField["vatBreakdown[0].rate"].ExpertValue)
	assert.Equal(t, int64(2100), r.Data.VATBreakdown[0].Rate)
}

func TestParseModelWeight(t *testing.T) {
	assert.Equal(t, consensus.PreferFast, consensus.ParseModelWeight("prefer_fast"))
	assert.Equal(t, consensus.PreferExpert, consensus.ParseModelWeight("prefer_expert"))
	assert.Equal(t, consensus.RequireMatch, consensus.ParseModelWeight("require_match"))
	assert.Equal(t, consensus.PreferExpert, consensus.ParseModelWeight(""))
	assert.Equal(t, consensus.PreferExpert, consensus.ParseModelWeight("nonsense"))
}

func TestEnsembleResult_Accessors(t *testing.T) {
	fast := sampleExtraction()
	expert := sampleExtraction()
	expert.DocumentNumber = "INV-2024-0099"

	e := ensemble(&fast, &expert)
	assert.True(t, e.HasBothCandidates())
	assert.Equal(t, "INV-2024-0099", e.BestCandidate().DocumentNumber)

	e = ensemble(&fast, nil)
	assert.False(t, e.HasBothCandidates())
	assert.True(t, e.HasAnyCandidate())
	assert.Equal(t, "INV-2024-0042", e.BestCandidate().DocumentNumber)

	e = ensemble(nil, nil)
	assert.False(t, e.HasAnyCandidate())
	assert.Nil(t, e.BestCandidate())
}
