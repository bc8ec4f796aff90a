package cardform

import (
	"strings"

	"github.com/alovak/cardflow-cards/internal/cardgen"
	"github.com/alovak/cardflow-cards/internal/validation"
)

const (
	maxExpiryLength = 5
	maxCVVLength    = 4
)

// Normalize applies the as-you-type input mask of a field. It is a
// convenience for the user; the service validates independently.
func Normalize(field, raw string) string {
	switch field {
	case validation.FieldCardNumber:
		return truncate(cardgen.KeepDigits(raw), cardgen.PANLength)
	case validation.FieldExpirationDate:
		return normalizeExpiry(raw)
	case validation.FieldCardholderName:
		return normalizeName(raw)
	case validation.FieldCVV:
		return truncate(cardgen.KeepDigits(raw), maxCVVLength)
	}
	return raw
}

// normalizeExpiry keeps digits and inserts "/" once two are typed: "1225" → "12/25".
func normalizeExpiry(raw string) string {
	digits := cardgen.KeepDigits(raw)
	if len(digits) >= 2 {
		digits = digits[:2] + "/" + truncate(digits[2:], 2)
	}
	return truncate(digits, maxExpiryLength)
}

func normalizeName(raw string) string {
	var sb strings.Builder
	n := 0
	for _, r := range raw {
		if n == validation.MaxNameLength {
			break
		}
		if validation.IsNameRune(r) {
			sb.WriteRune(r)
			n++
		}
	}
	return sb.String()
}

// truncate is byte based; callers only pass ASCII.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
