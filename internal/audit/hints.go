package audit

import (
	"fmt"
	"strings"
)

// Hint fragments. Each diagnosis branch composes its hint from these named
// pieces so the exact wording stays unit-testable fragment by fragment.

const (
	hintRereadPayment = "Re-read the payment section of the document carefully."
	hintRereadAmounts = "Re-read the amounts section of the document carefully."

	hintOCRConfusionTable = "Common OCR confusions: 0<->O, 1<->I, 1<->l, 8<->B, 5<->S, 6<->G."
	hintOCRConfusionIBAN  = "Watch for OCR confusions: 0<->O and 1<->I."

	hintCheckRounding = "The difference is a few cents; check rounding of individual amounts."
	hintMisreadDigit  = "The difference suggests a misread digit; check for 1<->7 and 0<->6 confusions."
	hintDecimalPoint  = "The difference suggests a misplaced decimal point; check the decimal position of each amount."
	hintVerifyAll     = "Verify all extracted amounts against the document."
)

// joinHints concatenates non-empty fragments into one hint string.
func joinHints(fragments ...string) string {
	var kept []string
	for _, f := range fragments {
		if f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// totalsDiscrepancyHint aims the correction hint at the most probable OCR
// failure mode for a discrepancy of the given size in minor units.
func totalsDiscrepancyHint(diffMinor int64) string {
	if diffMinor < 0 {
		diffMinor = -diffMinor
	}
	switch {
	case diffMinor <= 10:
		return hintCheckRounding
	case diffMinor <= 100:
		return hintMisreadDigit
	case diffMinor <= 1000:
		return hintDecimalPoint
	default:
		return hintVerifyAll
	}
}

// digitCountHint diagnoses a wrong number of digits in a structured
// communication, stating found versus needed.
func digitCountHint(found, needed int) string {
	if found == needed {
		return ""
	}
	return fmt.Sprintf("A structured communication has exactly %d digits; found %d.", needed, found)
}

// missingSeparatorHint flags an OGM candidate without its "/" separators.
func missingSeparatorHint(raw string) string {
	if strings.Contains(raw, "/") {
		return ""
	}
	return "The separators of the +++XXX/XXXX/XXXXX+++ format appear to be missing."
}

// ibanLengthHint diagnoses an IBAN of impossible length. Belgian IBANs are
// exactly 16 characters; any IBAN is between 15 and 34.
func ibanLengthHint(cleaned string) string {
	n := len(cleaned)
	switch {
	case n < ibanMinLength:
		return fmt.Sprintf("An IBAN has at least %d characters; found %d.", ibanMinLength, n)
	case n > ibanMaxLength:
		return fmt.Sprintf("An IBAN has at most %d characters; found %d.", ibanMaxLength, n)
	case strings.HasPrefix(cleaned, "BE") && n != ibanBelgianLength:
		return fmt.Sprintf("A Belgian IBAN has exactly %d characters; found %d.", ibanBelgianLength, n)
	default:
		return ""
	}
}

// belgianIBANExampleHint shows the worked Belgian format when the value
// claims to be a Belgian IBAN.
func belgianIBANExampleHint(cleaned string) string {
	if !strings.HasPrefix(cleaned, "BE") {
		return ""
	}
	return "A Belgian IBAN looks like BE68 5390 0754 7034: BE, two check digits, then ten digits."
}
