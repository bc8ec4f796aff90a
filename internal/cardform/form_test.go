package cardform

import (
	"testing"
	"time"

	"github.com/alovak/cardflow-cards/internal/validation"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	cases := []struct {
		field string
		in    string
		out   string
	}{
		{validation.FieldCardNumber, "4111 1111-1111 1111", "4111111111111111"},
		{validation.FieldCardNumber, "41111111111111119999", "4111111111111111"},
		{validation.FieldCardNumber, "abc", ""},
		{validation.FieldExpirationDate, "1", "1"},
		{validation.FieldExpirationDate, "12", "12/"},
		{validation.FieldExpirationDate, "122", "12/2"},
		{validation.FieldExpirationDate, "1225", "12/25"},
		{validation.FieldExpirationDate, "12/25", "12/25"},
		{validation.FieldExpirationDate, "12/2599", "12/25"},
		{validation.FieldExpirationDate, "a1b2", "12/"},
		{validation.FieldCardholderName, "Juan Pérez 3rd!", "Juan Pérez rd"},
		{validation.FieldCardholderName, "Müller-Núñez", "MüllerNúñez"},
		{validation.FieldCardholderName, "abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopqrst"},
		{validation.FieldCardholderName, "ññññññññññññññññññññññ", "ññññññññññññññññññññ"},
		{validation.FieldCVV, "12a34", "1234"},
		{validation.FieldCVV, "123456", "1234"},
		{"unknown", "as is", "as is"},
	}
	for _, c := range cases {
		require.Equal(t, c.out, Normalize(c.field, c.in), "%s %q", c.field, c.in)
	}
}

func TestChange_ValidatesOnlyTouchedFields(t *testing.T) {
	s := New().Change(validation.FieldCardNumber, "123", now)
	require.Equal(t, "123", s.Values.CardNumber)
	require.Empty(t, s.Errors)
	require.Empty(t, s.VisibleError(validation.FieldCardNumber))

	s = s.Blur(validation.FieldCardNumber, now)
	require.True(t, s.Touched[validation.FieldCardNumber])
	require.Equal(t, validation.MsgCardNumberLength, s.VisibleError(validation.FieldCardNumber))

	// touched now, so typing re-validates
	s = s.Change(validation.FieldCardNumber, "4111111111111111", now)
	require.Empty(t, s.VisibleError(validation.FieldCardNumber))
	_, ok := s.Errors[validation.FieldCardNumber]
	require.False(t, ok)

	s = s.Change(validation.FieldCardNumber, "", now)
	require.Equal(t, validation.MsgCardNumberRequired, s.VisibleError(validation.FieldCardNumber))
}

func TestTransitionsDoNotMutate(t *testing.T) {
	before := New().Change(validation.FieldCVV, "12", now)
	after := before.Blur(validation.FieldCVV, now)

	require.Empty(t, before.Touched)
	require.Empty(t, before.Errors)
	require.True(t, after.Touched[validation.FieldCVV])
	require.Equal(t, validation.MsgCVVLength, after.Errors[validation.FieldCVV])
}

func TestSubmit(t *testing.T) {
	s := New().
		Change(validation.FieldCardNumber, "4111 1111 1111 1111", now).
		Change(validation.FieldExpirationDate, "1225", now)

	s, ok := s.Submit(now)
	require.False(t, ok)
	for _, f := range validation.Fields {
		require.True(t, s.Touched[f], f)
	}
	require.Equal(t, map[string]string{
		validation.FieldCardholderName: validation.MsgNameRequired,
		validation.FieldCVV:            validation.MsgCVVRequired,
	}, s.Errors)

	s = s.Change(validation.FieldCardholderName, "Juan Perez", now).
		Change(validation.FieldCVV, "123", now)
	require.Empty(t, s.Errors)

	submitted, ok := s.Submit(now)
	require.True(t, ok)
	require.Equal(t, Values{
		CardNumber:     "4111111111111111",
		ExpirationDate: "12/25",
		CardholderName: "Juan Perez",
		CVV:            "123",
	}, submitted.Values)
	require.Empty(t, submitted.Touched)
	require.Empty(t, submitted.Errors)

	require.Equal(t, New(), submitted.Reset())
}

func TestCancel(t *testing.T) {
	s := New().Change(validation.FieldCVV, "1", now).Blur(validation.FieldCVV, now)
	require.NotEmpty(t, s.Errors)
	require.Equal(t, New(), s.Cancel())
}

func TestValues(t *testing.T) {
	v := Values{}.
		With(validation.FieldCardNumber, "1").
		With(validation.FieldExpirationDate, "2").
		With(validation.FieldCardholderName, "3").
		With(validation.FieldCVV, "4").
		With("other", "5")
	require.Equal(t, Values{CardNumber: "1", ExpirationDate: "2", CardholderName: "3", CVV: "4"}, v)
	for _, f := range validation.Fields {
		require.NotEmpty(t, v.Get(f))
	}
	require.Empty(t, v.Get("other"))
}
