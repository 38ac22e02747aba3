package audit

import (
	"fmt"
	"strings"

	"veridoc/internal/domain"
)

const (
	ogmDigits        = 12
	ogmPayloadDigits = 10

	ibanMinLength     = 15
	ibanMaxLength     = 34
	ibanBelgianLength = 16
)

// ocrSubstitutions maps letters the OCR layer commonly produces in place of
// digits. Substituting them is a correction, not a silent normalization:
// a checksum that only passes after substitution is reported as such.
var ocrSubstitutions = map[rune]rune{
	'O': '0', 'o': '0',
	'I': '1', 'l': '1', 'i': '1',
	'B': '8',
	'S': '5', 's': '5',
	'G': '6',
}

// AuditOGM validates a Belgian structured communication ("OGM",
// +++XXX/XXXX/XXXXX+++). A value that does not look like an OGM at all is
// not an error: free-form payment references are legitimate.
func AuditOGM(raw string) Check {
	if strings.TrimSpace(raw) == "" {
		return incomplete(CheckOGM, "paymentReference", "no payment reference was extracted; nothing to verify")
	}
	if !looksLikeOGM(raw) {
		return incomplete(CheckOGM, "paymentReference",
			"payment reference is free-form, not a structured communication; checksum not applicable")
	}

	res := validateOGM(raw)
	switch res.status {
	case ogmValid:
		c := passed(CheckOGM, "paymentReference",
			fmt.Sprintf("structured communication %s has a valid modulus-97 checksum", formatOGM(res.digits)))
		return c

	case ogmCorrectedValid:
		c := passed(CheckOGM, "paymentReference",
			fmt.Sprintf("structured communication %s is valid after OCR substitution corrections", formatOGM(res.digits)))
		c.Hint = "Applied OCR corrections: " + strings.Join(res.corrections, ", ") + "."
		c.Expected = formatOGM(res.digits)
		c.Actual = raw
		return c

	case ogmInvalidFormat:
		c := failed(CheckOGM, "paymentReference", domain.SeverityWarning,
			"payment reference resembles a structured communication but is malformed")
		c.Actual = raw
		c.Hint = joinHints(
			hintRereadPayment,
			res.hint,
			digitCountHint(len(res.digits), ogmDigits),
			missingSeparatorHint(raw),
		)
		return c

	default: // ogmInvalidChecksum
		c := failed(CheckOGM, "paymentReference", domain.SeverityCritical,
			"structured communication fails its modulus-97 checksum")
		c.Expected = fmt.Sprintf("%02d", res.expectedCheck)
		c.Actual = fmt.Sprintf("%02d", res.actualCheck)
		c.Hint = joinHints(
			hintRereadPayment,
			fmt.Sprintf("The last two digits must equal the first ten digits modulo 97 (remainder 0 counts as 97): expected %02d, found %02d.",
				res.expectedCheck, res.actualCheck),
			hintOCRConfusionTable,
		)
		return c
	}
}

type ogmStatus int

const (
	ogmValid ogmStatus = iota
	ogmCorrectedValid
	ogmInvalidFormat
	ogmInvalidChecksum
)

type ogmResult struct {
	status        ogmStatus
	digits        string
	corrections   []string
	expectedCheck int64
	actualCheck   int64
	hint          string
}

// looksLikeOGM applies a format heuristic: after stripping the +++ and /
// delimiters the remainder must be mostly digits (OCR confusables allowed)
// of roughly the right length.
func looksLikeOGM(raw string) bool {
	if strings.Contains(raw, "+++") || strings.Contains(raw, "***") {
		return true
	}
	stripped := stripOGMDelimiters(raw)
	if len(stripped) < ogmPayloadDigits || len(stripped) > ogmDigits+2 {
		return false
	}
	for _, r := range stripped {
		if r >= '0' && r <= '9' {
			continue
		}
		if _, ok := ocrSubstitutions[r]; ok {
			continue
		}
		return false
	}
	return true
}

func stripOGMDelimiters(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '+', '*', '/', ' ', '.', '-':
			return -1
		}
		return r
	}, raw)
}

func validateOGM(raw string) ogmResult {
	stripped := stripOGMDelimiters(raw)

	var digits strings.Builder
	var corrections []string
	for i, r := range stripped {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			continue
		}
		if sub, ok := ocrSubstitutions[r]; ok {
			digits.WriteRune(sub)
			corrections = append(corrections, fmt.Sprintf("%c->%c at position %d", r, sub, i+1))
			continue
		}
		return ogmResult{
			status: ogmInvalidFormat,
			digits: stripped,
			hint:   fmt.Sprintf("Character %q is neither a digit nor a known OCR confusion.", r),
		}
	}

	d := digits.String()
	if len(d) != ogmDigits {
		return ogmResult{status: ogmInvalidFormat, digits: d}
	}

	var payload int64
	for _, r := range d[:ogmPayloadDigits] {
		payload = payload*10 + int64(r-'0')
	}
	// Belgian convention: a remainder of 0 maps to check value 97.
	expected := payload % 97
	if expected == 0 {
		expected = 97
	}
	actual := int64(d[ogmDigits-2]-'0')*10 + int64(d[ogmDigits-1]-'0')

	if expected != actual {
		return ogmResult{status: ogmInvalidChecksum, digits: d, expectedCheck: expected, actualCheck: actual}
	}
	if len(corrections) > 0 {
		return ogmResult{status: ogmCorrectedValid, digits: d, corrections: corrections}
	}
	return ogmResult{status: ogmValid, digits: d}
}

// formatOGM renders 12 digits in the +++XXX/XXXX/XXXXX+++ display format.
func formatOGM(digits string) string {
	if len(digits) != ogmDigits {
		return digits
	}
	return "+++" + digits[:3] + "/" + digits[3:7] + "/" + digits[7:] + "+++"
}

// AuditIBAN validates an IBAN with the ISO 7064 MOD97-10 checksum. Unlike
// the OGM there is no format ambiguity: a non-blank value that fails is
// always a critical finding.
func AuditIBAN(raw string) Check {
	if strings.TrimSpace(raw) == "" {
		return incomplete(CheckIBAN, "iban", "no IBAN was extracted; nothing to verify")
	}

	cleaned := normalizeIBAN(raw)
	if ibanChecksumValid(cleaned) {
		display := chunk4(cleaned)
		c := passed(CheckIBAN, "iban",
			fmt.Sprintf("IBAN %s has a valid ISO 7064 checksum", display))
		c.Expected = display
		return c
	}

	c := failed(CheckIBAN, "iban", domain.SeverityCritical, "IBAN fails its ISO 7064 MOD97-10 checksum")
	c.Actual = raw
	c.Hint = joinHints(
		hintRereadPayment,
		ibanLengthHint(cleaned),
		hintOCRConfusionIBAN,
		belgianIBANExampleHint(cleaned),
	)
	return c
}

// normalizeIBAN strips spaces and hyphens and uppercases the value.
func normalizeIBAN(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\t':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(raw)))
}

// chunk4 re-chunks a normalized IBAN into groups of 4 separated by spaces.
func chunk4(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ibanChecksumValid implements ISO 7064 MOD97-10: move the first four
// characters to the end, expand letters to numbers (A=10 .. Z=35), and the
// whole number modulo 97 must be 1.
func ibanChecksumValid(cleaned string) bool {
	n := len(cleaned)
	if n < ibanMinLength || n > ibanMaxLength {
		return false
	}
	if !isLetter(cleaned[0]) || !isLetter(cleaned[1]) || !isDigit(cleaned[2]) || !isDigit(cleaned[3]) {
		return false
	}

	rearranged := cleaned[4:] + cleaned[:4]
	var rem int64
	for i := 0; i < len(rearranged); i++ {
		ch := rearranged[i]
		switch {
		case isDigit(ch):
			rem = (rem*10 + int64(ch-'0')) % 97
		case isLetter(ch):
			v := int64(ch-'A') + 10
			rem = (rem*100 + v) % 97
		default:
			return false
		}
	}
	return rem == 1
}

func isLetter(b byte) bool { return b >= 'A' && b <= 'Z' }
func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
