package models

import "github.com/alovak/cardflow-cards/internal/validation"

// TimeLayout is how createdAt/updatedAt are rendered: ISO-8601, UTC, milliseconds.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Card is a stored card document plus its identifier.
type Card struct {
	ID             string `json:"id"`
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CardholderName string `json:"cardholderName"`
	CVV            string `json:"cvv"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

// CardInput is the body of a create request.
type CardInput struct {
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CardholderName string `json:"cardholderName"`
	CVV            string `json:"cvv"`
}

// Fields returns the input in the shape the validation package checks.
func (in CardInput) Fields() validation.Card {
	return validation.Card{
		CardNumber:     in.CardNumber,
		ExpirationDate: in.ExpirationDate,
		CardholderName: in.CardholderName,
		CVV:            in.CVV,
	}
}

// Missing reports whether any of the four fields is empty.
func (in CardInput) Missing() bool {
	return in.CardNumber == "" || in.ExpirationDate == "" || in.CardholderName == "" || in.CVV == ""
}

// CardPatch is the body of an update request. Nil or empty fields are left untouched.
type CardPatch struct {
	CardNumber     *string `json:"cardNumber,omitempty"`
	ExpirationDate *string `json:"expirationDate,omitempty"`
	CardholderName *string `json:"cardholderName,omitempty"`
	CVV            *string `json:"cvv,omitempty"`
}

// Changes returns the fields present with a non-empty value, keyed by JSON name.
func (p CardPatch) Changes() map[string]string {
	out := make(map[string]string, 4)
	set := func(field string, v *string) {
		if v != nil && *v != "" {
			out[field] = *v
		}
	}
	set(validation.FieldCardNumber, p.CardNumber)
	set(validation.FieldExpirationDate, p.ExpirationDate)
	set(validation.FieldCardholderName, p.CardholderName)
	set(validation.FieldCVV, p.CVV)
	return out
}

// Apply overwrites the card fields named in changes.
func (c *Card) Apply(changes map[string]string) {
	for field, v := range changes {
		switch field {
		case validation.FieldCardNumber:
			c.CardNumber = v
		case validation.FieldExpirationDate:
			c.ExpirationDate = v
		case validation.FieldCardholderName:
			c.CardholderName = v
		case validation.FieldCVV:
			c.CVV = v
		case "updatedAt":
			c.UpdatedAt = v
		}
	}
}
