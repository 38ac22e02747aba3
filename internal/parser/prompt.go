package parser

import "strings"

// BuildExtractionPrompt returns the extraction prompt for financial
// documents. retryHints, when present, carries validator findings from a
// previous attempt and asks the model to re-read the flagged fields.
func BuildExtractionPrompt(retryHints []string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	if len(retryHints) > 0 {
		b.WriteString("\n\nA previous extraction of this document failed verification. Pay special attention to the following findings:\n")
		for _, h := range retryHints {
			b.WriteString("- ")
			b.WriteString(h)
			b.WriteString("\n")
		}
	}
	return b.String()
}

const basePrompt = `You are a document data extraction assistant. Analyze the provided financial document and extract ALL data into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- The document may span multiple pages. Extract ALL line items from every page into a single flat "line_items" array. Do not skip, summarize, or omit any items.
- All monetary amounts must be decimal strings with two fraction digits and a "." separator (e.g. "1234.50"), without currency symbols or thousands separators.
- VAT rates must be decimal percentage strings (e.g. "21.00" for 21%).
- Normalize all dates to YYYY-MM-DD format. Strip timestamps and non-date annotations.
- Copy the IBAN and the structured payment reference exactly as printed, character by character, including separators. Do not correct characters that look wrong.
- "document_type" must be one of: invoice, bill, credit_note, quote, proforma, purchase_order, receipt.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.

The JSON object must follow this schema:
{
  "document_type": "",
  "document_number": "",
  "document_date": "",
  "due_date": "",
  "currency": "",
  "counterparty_name": "",
  "counterparty_vat": "",
  "subtotal": "",
  "vat_amount": "",
  "total": "",
  "line_items": [
    {
      "description": "",
      "quantity": 0,
      "unit_price": "",
      "line_total": ""
    }
  ],
  "vat_breakdown": [
    {
      "rate": "",
      "base": "",
      "amount": ""
    }
  ],
  "iban": "",
  "payment_reference": ""
}

If a field is not present in the document, use an empty string for text and amounts, 0 for numbers, and an empty array for lists.`
