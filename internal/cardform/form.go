// Package cardform models the card entry form as an immutable state value.
// Every transition returns a new State; nothing is shared between calls.
package cardform

import (
	"time"

	"github.com/alovak/cardflow-cards/internal/validation"
)

// Values holds what the user has typed, already normalized.
type Values struct {
	CardNumber     string
	ExpirationDate string
	CardholderName string
	CVV            string
}

// Get returns the value of a field by its JSON name.
func (v Values) Get(field string) string {
	switch field {
	case validation.FieldCardNumber:
		return v.CardNumber
	case validation.FieldExpirationDate:
		return v.ExpirationDate
	case validation.FieldCardholderName:
		return v.CardholderName
	case validation.FieldCVV:
		return v.CVV
	}
	return ""
}

// With returns a copy of v with one field replaced.
func (v Values) With(field, value string) Values {
	switch field {
	case validation.FieldCardNumber:
		v.CardNumber = value
	case validation.FieldExpirationDate:
		v.ExpirationDate = value
	case validation.FieldCardholderName:
		v.CardholderName = value
	case validation.FieldCVV:
		v.CVV = value
	}
	return v
}

// Card converts the values to the shape the validation rules take.
func (v Values) Card() validation.Card {
	return validation.Card{
		CardNumber:     v.CardNumber,
		ExpirationDate: v.ExpirationDate,
		CardholderName: v.CardholderName,
		CVV:            v.CVV,
	}
}

// State is the form: values, which fields were blurred at least once,
// and the current message per field.
type State struct {
	Values  Values
	Touched map[string]bool
	Errors  map[string]string
}

// New returns an empty form.
func New() State {
	return State{
		Touched: map[string]bool{},
		Errors:  map[string]string{},
	}
}

func (s State) clone() State {
	next := State{
		Values:  s.Values,
		Touched: make(map[string]bool, len(s.Touched)),
		Errors:  make(map[string]string, len(s.Errors)),
	}
	for k, v := range s.Touched {
		next.Touched[k] = v
	}
	for k, v := range s.Errors {
		next.Errors[k] = v
	}
	return next
}

func (s *State) validate(field string, now time.Time) {
	if err := validation.Check(field, s.Values.Get(field), now); err != nil {
		s.Errors[field] = err.Error()
	} else {
		delete(s.Errors, field)
	}
}

// Change stores the normalized raw input. The field is re-validated only
// once it has been touched.
func (s State) Change(field, raw string, now time.Time) State {
	next := s.clone()
	next.Values = next.Values.With(field, Normalize(field, raw))
	if next.Touched[field] {
		next.validate(field, now)
	}
	return next
}

// Blur marks the field touched and validates it.
func (s State) Blur(field string, now time.Time) State {
	next := s.clone()
	next.Touched[field] = true
	next.validate(field, now)
	return next
}

// Submit validates all four fields and marks them touched. When every field
// passes it returns a state with touched and errors cleared (values kept so
// the caller can send them) and true.
func (s State) Submit(now time.Time) (State, bool) {
	next := s.clone()
	next.Errors = validation.ValidateAll(next.Values.Card(), now)
	for _, f := range validation.Fields {
		next.Touched[f] = true
	}
	if len(next.Errors) > 0 {
		return next, false
	}

	cleared := New()
	cleared.Values = s.Values
	return cleared, true
}

// Reset clears the values after the card was saved.
func (s State) Reset() State {
	return New()
}

// Cancel drops everything the user entered.
func (s State) Cancel() State {
	return New()
}

// VisibleError returns the message shown under a field: only touched fields show one.
func (s State) VisibleError(field string) string {
	if !s.Touched[field] {
		return ""
	}
	return s.Errors[field]
}
