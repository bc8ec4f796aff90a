package cardsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alovak/cardflow-cards/cards/models"
)

// Messages shown to the user when the service does not give a better one.
const (
	MsgNotFound     = "Tarjeta no encontrada"
	MsgInvalidData  = "Datos inválidos"
	MsgListFailed   = "Error al obtener las tarjetas"
	MsgGetFailed    = "Error al obtener la tarjeta"
	MsgCreateFailed = "Error al crear la tarjeta"
	MsgUpdateFailed = "Error al actualizar la tarjeta"
	MsgDeleteFailed = "Error al eliminar la tarjeta"
)

// APIError is a non-2xx answer from the cards service. Message is safe to
// show to the user.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

type Client struct {
	Base string
	HTTP *http.Client
}

// New returns a client for the service at base, e.g. "http://localhost:3001/api".
func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

func (c *Client) cardsURL(id string) string {
	if id == "" {
		return c.Base + "/cards"
	}
	return c.Base + "/cards/" + url.PathEscape(id)
}

func (c *Client) ListCards(ctx context.Context) ([]*models.Card, error) {
	var cards []*models.Card
	err := c.do(ctx, http.MethodGet, c.cardsURL(""), nil, &cards, MsgListFailed)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) GetCard(ctx context.Context, id string) (*models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodGet, c.cardsURL(id), nil, &card, MsgGetFailed); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) CreateCard(ctx context.Context, in models.CardInput) (*models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodPost, c.cardsURL(""), in, &card, MsgCreateFailed); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) UpdateCard(ctx context.Context, id string, patch models.CardPatch) (*models.Card, error) {
	var card models.Card
	if err := c.do(ctx, http.MethodPut, c.cardsURL(id), patch, &card, MsgUpdateFailed); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.cardsURL(id), nil, nil, MsgDeleteFailed)
}

// do sends body as JSON and decodes a 2xx answer into out. Non-2xx answers
// become *APIError: 400 carries the service's message, 404 the not-found
// message, anything else fallback.
func (c *Client) do(ctx context.Context, method, target string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return responseError(resp, fallback)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func responseError(resp *http.Response, fallback string) error {
	switch resp.StatusCode {
	case http.StatusBadRequest:
		var payload struct {
			Error string `json:"error"`
		}
		msg := MsgInvalidData
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	case http.StatusNotFound:
		return &APIError{Status: resp.StatusCode, Message: MsgNotFound}
	default:
		return &APIError{Status: resp.StatusCode, Message: fallback}
	}
}
