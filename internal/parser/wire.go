package parser

import (
	"encoding/json"
	"fmt"

	"veridoc/internal/extraction"
	"veridoc/internal/money"
)

// wireExtraction mirrors the JSON schema the extraction prompt asks the
// models to emit. Amounts travel as decimal strings so no float rounding
// happens between the model and the minor-unit representation.
type wireExtraction struct {
	DocumentType     string         `json:"document_type"`
	DocumentNumber   string         `json:"document_number"`
	DocumentDate     string         `json:"document_date"`
	DueDate          string         `json:"due_date"`
	Currency         string         `json:"currency"`
	CounterpartyName string         `json:"counterparty_name"`
	CounterpartyVAT  string         `json:"counterparty_vat"`
	Subtotal         string         `json:"subtotal"`
	VATAmount        string         `json:"vat_amount"`
	Total            string         `json:"total"`
	LineItems        []wireLineItem `json:"line_items"`
	VATBreakdown     []wireVATEntry `json:"vat_breakdown"`
	IBAN             string         `json:"iban"`
	PaymentReference string         `json:"payment_reference"`
}

type wireLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   string  `json:"unit_price"`
	LineTotal   string  `json:"line_total"`
}

type wireVATEntry struct {
	Rate   string `json:"rate"`
	Base   string `json:"base"`
	Amount string `json:"amount"`
}

// DecodeExtraction turns the model's JSON output into a FinancialExtraction.
// Empty amount strings decode to nil; a malformed amount is an error so a
// hallucinated value never silently becomes zero.
func DecodeExtraction(data []byte) (*extraction.FinancialExtraction, error) {
	var w wireExtraction
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshaling extraction JSON: %w", err)
	}

	out := &extraction.FinancialExtraction{
		DocumentType:     extraction.DocumentType(extraction.NormalizeString(w.DocumentType)),
		DocumentNumber:   w.DocumentNumber,
		DocumentDate:     w.DocumentDate,
		DueDate:          w.DueDate,
		Currency:         w.Currency,
		CounterpartyName: w.CounterpartyName,
		CounterpartyVAT:  w.CounterpartyVAT,
		IBAN:             w.IBAN,
		PaymentReference: w.PaymentReference,
	}

	var err error
	if out.Subtotal, err = decodeAmount("subtotal", w.Subtotal); err != nil {
		return nil, err
	}
	if out.VATAmount, err = decodeAmount("vat_amount", w.VATAmount); err != nil {
		return nil, err
	}
	if out.Total, err = decodeAmount("total", w.Total); err != nil {
		return nil, err
	}

	for i, li := range w.LineItems {
		item := extraction.LineItem{Description: li.Description}
		if li.Quantity != 0 {
			q := li.Quantity
			item.Quantity = &q
		}
		if item.UnitPrice, err = decodeAmount(fmt.Sprintf("line_items[%d].unit_price", i), li.UnitPrice); err != nil {
			return nil, err
		}
		if item.LineTotal, err = decodeAmount(fmt.Sprintf("line_items[%d].line_total", i), li.LineTotal); err != nil {
			return nil, err
		}
		out.LineItems = append(out.LineItems, item)
	}

	for i, e := range w.VATBreakdown {
		entry := extraction.VATEntry{}
		// A percentage with two fraction digits parses to basis points with
		// the same minor-unit arithmetic as an amount: "21.00" -> 2100.
		if entry.Rate, err = decodeMinor(fmt.Sprintf("vat_breakdown[%d].rate", i), e.Rate); err != nil {
			return nil, err
		}
		if entry.Base, err = decodeMinor(fmt.Sprintf("vat_breakdown[%d].base", i), e.Base); err != nil {
			return nil, err
		}
		if entry.Amount, err = decodeMinor(fmt.Sprintf("vat_breakdown[%d].amount", i), e.Amount); err != nil {
			return nil, err
		}
		out.VATBreakdown = append(out.VATBreakdown, entry)
	}

	return out, nil
}

func decodeAmount(field, s string) (*money.Money, error) {
	if s == "" {
		return nil, nil
	}
	m, err := money.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", field, err)
	}
	return &m, nil
}

func decodeMinor(field, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	m, err := money.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", field, err)
	}
	return m.Minor(), nil
}
