package cards

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alovak/cardflow-cards/cards/models"
	"github.com/alovak/cardflow-cards/internal/validation"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

// Messages returned to API callers. Internal error details never leave the server.
const (
	MsgNotFound     = "Tarjeta no encontrada"
	MsgDeleted      = "Tarjeta eliminada exitosamente"
	MsgInvalidBody  = "Datos inválidos"
	MsgListFailed   = "Error al obtener las tarjetas"
	MsgGetFailed    = "Error al obtener la tarjeta"
	MsgCreateFailed = "Error al crear la tarjeta"
	MsgUpdateFailed = "Error al actualizar la tarjeta"
	MsgDeleteFailed = "Error al eliminar la tarjeta"
	MsgServerError  = "Algo salió mal en el servidor"
	MsgRunning      = "Card API Server Running"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Required []string `json:"required,omitempty"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// API is a HTTP API for the cards service
type API struct {
	cards  *Service
	logger *slog.Logger
}

func NewAPI(cards *Service, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		cards:  cards,
		logger: logger,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/api/cards", func(r chi.Router) {
		r.Get("/", a.listCards)
		r.Post("/", a.createCard)
		r.Route("/{cardID}", func(r chi.Router) {
			r.Get("/", a.getCard)
			r.Put("/", a.updateCard)
			r.Delete("/", a.deleteCard)
		})
	})
}

func (a *API) listCards(w http.ResponseWriter, r *http.Request) {
	cards, err := a.cards.ListCards(r.Context())
	if err != nil {
		a.internalError(w, "listing cards", err, MsgListFailed)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

func (a *API) getCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	card, err := a.cards.GetCard(r.Context(), cardID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, ErrorResponse{Error: MsgNotFound})
		} else {
			a.internalError(w, "getting card", err, MsgGetFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, card)
}

func (a *API) createCard(w http.ResponseWriter, r *http.Request) {
	create := models.CardInput{}
	if !decodeBody(w, r, &create) {
		return
	}

	card, err := a.cards.CreateCard(r.Context(), create)
	if err != nil {
		if a.clientError(w, err) {
			return
		}
		a.internalError(w, "creating card", err, MsgCreateFailed)
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

func (a *API) updateCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	patch := models.CardPatch{}
	if !decodeBody(w, r, &patch) {
		return
	}

	card, err := a.cards.UpdateCard(r.Context(), cardID, patch)
	if err != nil {
		if a.clientError(w, err) {
			return
		}
		a.internalError(w, "updating card", err, MsgUpdateFailed)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

func (a *API) deleteCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	err := a.cards.DeleteCard(r.Context(), cardID)
	if err != nil {
		if a.clientError(w, err) {
			return
		}
		a.internalError(w, "deleting card", err, MsgDeleteFailed)
		return
	}

	writeJSON(w, http.StatusOK, DeleteResponse{Message: MsgDeleted, ID: cardID})
}

// clientError writes the 4xx response for input and lookup errors and
// reports whether err was one of them.
func (a *API) clientError(w http.ResponseWriter, err error) bool {
	var missing *MissingFieldsError
	var invalid *validation.FieldError
	switch {
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: missing.Error(), Required: missing.Required})
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: invalid.Message})
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, ErrorResponse{Error: MsgNotFound})
	default:
		return false
	}
	return true
}

func (a *API) internalError(w http.ResponseWriter, op string, err error, msg string) {
	a.logger.Error(op, "err", err)
	writeError(w, http.StatusInternalServerError, ErrorResponse{Error: msg})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorResponse{Error: MsgInvalidBody})
	return false
}

func writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
