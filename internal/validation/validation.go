// Package validation holds the field rules shared by the card service and
// its clients. Every check returns nil or a *FieldError carrying the
// user-facing message of the first rule the value breaks.
package validation

import (
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/alovak/cardflow-cards/internal/cardgen"
	"github.com/alovak/cardflow-cards/internal/expiry"
)

// Field names match the JSON keys of a card.
const (
	FieldCardNumber     = "cardNumber"
	FieldExpirationDate = "expirationDate"
	FieldCardholderName = "cardholderName"
	FieldCVV            = "cvv"
)

// Fields lists the card fields in the order they are validated.
var Fields = []string{FieldCardNumber, FieldExpirationDate, FieldCardholderName, FieldCVV}

// MaxNameLength is counted in characters, not bytes.
const MaxNameLength = 20

const (
	MsgCardNumberRequired = "El número de tarjeta es requerido"
	MsgCardNumberDigits   = "El número de tarjeta debe contener solo dígitos"
	MsgCardNumberLength   = "El número de tarjeta debe contener 16 dígitos"

	MsgExpirationRequired = "La fecha de vencimiento es requerida"
	MsgExpirationFormat   = "Formato inválido. Use MM/YY"
	MsgExpirationMonth    = "Mes inválido (01-12)"

	MsgNameRequired = "El nombre del titular es requerido"
	MsgNameCharset  = "El nombre solo puede contener letras"
	MsgNameLength   = "El nombre no puede exceder 20 caracteres"

	MsgCVVRequired = "El CVV es requerido"
	MsgCVVDigits   = "El CVV debe contener solo dígitos"
	MsgCVVLength   = "El CVV debe tener 3 o 4 dígitos"
)

// MsgExpirationYear returns the invalid-year message for the given upper bound.
func MsgExpirationYear(maxYear int) string {
	return fmt.Sprintf("Año inválido (%d-%d)", expiry.MinYear, maxYear)
}

// FieldError reports the first rule a field breaks.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func fieldErr(field, msg string) *FieldError {
	return &FieldError{Field: field, Message: msg}
}

// CardNumber checks a card number: required, digits only, 16 long.
func CardNumber(value string) error {
	switch {
	case value == "":
		return fieldErr(FieldCardNumber, MsgCardNumberRequired)
	case !cardgen.IsDigits(value):
		return fieldErr(FieldCardNumber, MsgCardNumberDigits)
	case len(value) != cardgen.PANLength:
		return fieldErr(FieldCardNumber, MsgCardNumberLength)
	}
	return nil
}

// ExpirationDate checks an MM/YY expiry against the current time.
func ExpirationDate(value string) error {
	return ExpirationDateAt(value, time.Now())
}

// ExpirationDateAt checks an MM/YY expiry with the year window computed at now.
func ExpirationDateAt(value string, now time.Time) error {
	if value == "" {
		return fieldErr(FieldExpirationDate, MsgExpirationRequired)
	}
	_, yy, err := expiry.ParseCardFace(value)
	switch {
	case err == nil:
	case errors.Is(err, expiry.ErrMonth):
		return fieldErr(FieldExpirationDate, MsgExpirationMonth)
	default:
		return fieldErr(FieldExpirationDate, MsgExpirationFormat)
	}
	if !expiry.YearInWindow(yy, now) {
		return fieldErr(FieldExpirationDate, MsgExpirationYear(expiry.MaxYear(now)))
	}
	return nil
}

// CardholderName checks a holder name: required, letters and spaces, at most 20 characters.
func CardholderName(value string) error {
	switch {
	case value == "":
		return fieldErr(FieldCardholderName, MsgNameRequired)
	case !IsNameString(value):
		return fieldErr(FieldCardholderName, MsgNameCharset)
	case utf8.RuneCountInString(value) > MaxNameLength:
		return fieldErr(FieldCardholderName, MsgNameLength)
	}
	return nil
}

// CVV checks a security code: required, digits only, 3 or 4 long.
func CVV(value string) error {
	switch {
	case value == "":
		return fieldErr(FieldCVV, MsgCVVRequired)
	case !cardgen.IsDigits(value):
		return fieldErr(FieldCVV, MsgCVVDigits)
	case len(value) != 3 && len(value) != 4:
		return fieldErr(FieldCVV, MsgCVVLength)
	}
	return nil
}

// IsNameRune reports whether r may appear in a cardholder name: ASCII
// letters, the accented letters used in Spanish, and whitespace.
func IsNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case unicode.IsSpace(r):
		return true
	}
	switch r {
	case 'á', 'é', 'í', 'ó', 'ú', 'Á', 'É', 'Í', 'Ó', 'Ú', 'ñ', 'Ñ', 'ü', 'Ü':
		return true
	}
	return false
}

// IsNameString reports whether every rune of s passes IsNameRune.
func IsNameString(s string) bool {
	for _, r := range s {
		if !IsNameRune(r) {
			return false
		}
	}
	return true
}

// Check runs the rule set of a single field at now. Unknown fields pass.
func Check(field, value string, now time.Time) error {
	switch field {
	case FieldCardNumber:
		return CardNumber(value)
	case FieldExpirationDate:
		return ExpirationDateAt(value, now)
	case FieldCardholderName:
		return CardholderName(value)
	case FieldCVV:
		return CVV(value)
	}
	return nil
}

// Card is the four user-supplied fields of a card.
type Card struct {
	CardNumber     string
	ExpirationDate string
	CardholderName string
	CVV            string
}

func (c Card) value(field string) string {
	switch field {
	case FieldCardNumber:
		return c.CardNumber
	case FieldExpirationDate:
		return c.ExpirationDate
	case FieldCardholderName:
		return c.CardholderName
	case FieldCVV:
		return c.CVV
	}
	return ""
}

// ValidateCard runs the field checks in order and returns the first failure.
func ValidateCard(c Card, now time.Time) error {
	for _, f := range Fields {
		if err := Check(f, c.value(f), now); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAll runs every field check and returns the messages keyed by field.
// The map is empty when the card is valid.
func ValidateAll(c Card, now time.Time) map[string]string {
	errs := make(map[string]string)
	for _, f := range Fields {
		if err := Check(f, c.value(f), now); err != nil {
			errs[f] = err.Error()
		}
	}
	return errs
}
