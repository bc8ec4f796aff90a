package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alovak/cardflow-cards/cards"
	"github.com/alovak/cardflow-cards/cards/models"
	"github.com/alovak/cardflow-cards/internal/cardgen"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCardName(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"   ", ""},
		{"john  doe", "JOHN DOE"},
		{"  Alice\tSmith  ", "ALICE SMITH"},
		{"María Núñez", "MARÍA NÚÑEZ"},
		{"j0hn d03", "JHN D"},
		{"very very very very very long name here", "VERY VERY VERY VERY"},
	}
	for _, c := range cases {
		require.Equal(t, c.out, normalizeCardName(c.in), "normalizeCardName(%q)", c.in)
	}
}

func startAPI(t *testing.T) string {
	t.Helper()
	router := chi.NewRouter()
	cards.NewAPI(cards.NewService(cards.NewRepository(), nil), nil).AppendRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func run(t *testing.T, api string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--api", api}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAdd_SavesAndListsMasked(t *testing.T) {
	api := startAPI(t)

	out, err := run(t, api, "add",
		"--number", "4111 1111 1111 1111",
		"--exp", "1228",
		"--name", "Juan Perez",
		"--cvv", "123",
	)
	require.NoError(t, err)
	require.Contains(t, out, "4111 1111 1111 1111")
	require.Contains(t, out, "Tarjeta guardada: ")
	require.Contains(t, out, "Tarjetas Guardadas")
	require.Contains(t, out, "4111********1111")
	require.Contains(t, out, "12/28")

	out, err = run(t, api, "list")
	require.NoError(t, err)
	require.Contains(t, out, "Juan Perez")
}

func TestAdd_InvalidFormIsNotSent(t *testing.T) {
	api := startAPI(t)

	out, err := run(t, api, "add", "--number", "4111", "--exp", "13/25", "--name", "Juan", "--cvv", "12")
	require.ErrorIs(t, err, errInvalidForm)
	require.Contains(t, out, "--number: El número de tarjeta debe contener 16 dígitos")
	require.Contains(t, out, "--exp: Mes inválido")
	require.Contains(t, out, "--cvv: ")

	out, err = run(t, api, "list")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestUpdateGetDelete(t *testing.T) {
	api := startAPI(t)

	out, err := run(t, api, "seed", "--count", "1", "--name", "Ana Gomez")
	require.NoError(t, err)
	var id string
	for i, r := range out {
		if r == ' ' {
			id = out[:i]
			break
		}
	}
	require.NotEmpty(t, id)

	out, err = run(t, api, "update", id, "--name", "Ana Lopez")
	require.NoError(t, err)
	require.Contains(t, out, "Ana Lopez")

	out, err = run(t, api, "get", id)
	require.NoError(t, err)
	require.Contains(t, out, "Ana Lopez")

	out, err = run(t, api, "delete", id)
	require.NoError(t, err)
	require.Contains(t, out, "Tarjeta eliminada: "+id)

	_, err = run(t, api, "get", id)
	require.EqualError(t, err, "Tarjeta no encontrada")
}

func TestSeed_PrintOnly(t *testing.T) {
	out, err := run(t, "http://127.0.0.1:1/api", "seed", "--count", "3", "--bin", "42123456", "--print")
	require.NoError(t, err)

	var inputs []models.CardInput
	require.NoError(t, json.Unmarshal([]byte(out), &inputs))
	require.Len(t, inputs, 3)
	for _, in := range inputs {
		require.Len(t, in.CardNumber, cardgen.PANLength)
		require.True(t, cardgen.IsDigits(in.CardNumber))
		require.True(t, strings.HasPrefix(in.CardNumber, "42123456"))
		require.Len(t, in.CVV, 3)
		require.Regexp(t, `^\d{2}/\d{2}$`, in.ExpirationDate)
		require.NotEmpty(t, in.CardholderName)
	}
}

func TestSeed_RejectsBadBIN(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1/api", "seed", "--bin", "12ab", "--print")
	require.Error(t, err)
}
