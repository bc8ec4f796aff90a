package cards

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alovak/cardflow-cards/cards/models"
	"github.com/alovak/cardflow-cards/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

var fixedNow = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

func TestService_CreateCard(t *testing.T) {
	svc := NewService(NewRepository(), nil).WithClock(func() time.Time { return fixedNow })

	card, err := svc.CreateCard(context.Background(), models.CardInput{
		CardNumber:     "4111111111111111",
		ExpirationDate: "12/25",
		CardholderName: "Juan Perez",
		CVV:            "123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, card.ID)
	require.Equal(t, "2026-10-17T09:30:00.000Z", card.CreatedAt)

	_, err = svc.CreateCard(context.Background(), models.CardInput{CardNumber: "4111111111111111"})
	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, validation.Fields, missing.Required)

	_, err = svc.CreateCard(context.Background(), models.CardInput{
		CardNumber:     "4111111111111111",
		ExpirationDate: "12/32",
		CardholderName: "Juan Perez",
		CVV:            "123",
	})
	var invalid *validation.FieldError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, validation.FieldExpirationDate, invalid.Field)
	require.Equal(t, "Año inválido (22-31)", invalid.Message)
}

func TestService_NotFoundIsWrapped(t *testing.T) {
	svc := NewService(NewRepository(), nil)

	_, err := svc.GetCard(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateCard(context.Background(), "x", models.CardPatch{})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.DeleteCard(context.Background(), "x"), ErrNotFound)
}

// Persistence failures become a generic 500; the detail only goes to the log.
func TestAPI_InternalErrorsAreGeneric(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	router := chi.NewRouter()
	NewAPI(NewService(NewPGRepository(db), nil), logger).AppendRoutes(router)

	secret := "pq: password authentication failed for user cards"
	id := "6f1c1d0e-3b7a-4c3e-9d55-0d6a4f1e2a01"

	cases := []struct {
		method string
		path   string
		body   string
		expect func()
		msg    string
	}{
		{http.MethodGet, "/api/cards", "", func() {
			mock.ExpectQuery(`SELECT id, data`).WillReturnError(errors.New(secret))
		}, MsgListFailed},
		{http.MethodGet, "/api/cards/" + id, "", func() {
			mock.ExpectQuery(`SELECT data`).WillReturnError(errors.New(secret))
		}, MsgGetFailed},
		{http.MethodPost, "/api/cards", `{"cardNumber":"4111111111111111","expirationDate":"12/25","cardholderName":"Juan Perez","cvv":"123"}`, func() {
			mock.ExpectExec(`INSERT INTO`).WillReturnError(errors.New(secret))
		}, MsgCreateFailed},
		{http.MethodPut, "/api/cards/" + id, `{"cvv":"321"}`, func() {
			mock.ExpectQuery(`SELECT EXISTS`).WillReturnError(errors.New(secret))
		}, MsgUpdateFailed},
		{http.MethodDelete, "/api/cards/" + id, "", func() {
			mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			mock.ExpectExec(`DELETE FROM`).WillReturnError(errors.New(secret))
		}, MsgDeleteFailed},
	}
	for _, c := range cases {
		t.Run(c.method+" "+c.path, func(t *testing.T) {
			logs.Reset()
			c.expect()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(c.method, c.path, strings.NewReader(c.body)))

			require.Equal(t, http.StatusInternalServerError, w.Code)
			require.JSONEq(t, `{"error":"`+c.msg+`"}`, w.Body.String())
			require.NotContains(t, w.Body.String(), "password")
			require.Contains(t, logs.String(), "password authentication failed")
		})
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
