package cards

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/alovak/cardflow-cards/cards/models"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
)

var ErrNotFound = fmt.Errorf("not found")

var ErrConflict = fmt.Errorf("conflict")

// addAttempts bounds how many fresh ids Add tries after an id collision.
const addAttempts = 5

// document is what gets stored for a card; the id lives outside the document.
type document struct {
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CardholderName string `json:"cardholderName"`
	CVV            string `json:"cvv"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

func toDocument(c *models.Card) document {
	return document{
		CardNumber:     c.CardNumber,
		ExpirationDate: c.ExpirationDate,
		CardholderName: c.CardholderName,
		CVV:            c.CVV,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (d document) card(id string) *models.Card {
	return &models.Card{
		ID:             id,
		CardNumber:     d.CardNumber,
		ExpirationDate: d.ExpirationDate,
		CardholderName: d.CardholderName,
		CVV:            d.CVV,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// Repository is the card document collection. It is backed by PostgreSQL
// (one JSONB document per row) or, when built with NewRepository, by an
// in-memory slice that keeps insertion order.
type Repository struct {
	mu    sync.RWMutex
	cards []*models.Card

	db    *sql.DB
	newID func() string
}

func NewRepository() *Repository {
	return &Repository{
		cards: make([]*models.Card, 0),
		newID: newUUID,
	}
}

// NewPGRepository constructs a db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db, newID: newUUID}
}

func newUUID() string {
	return uuid.New().String()
}

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS cards;
CREATE TABLE IF NOT EXISTS cards.documents (
    id         uuid PRIMARY KEY,
    data       jsonb NOT NULL,
    created_at timestamptz NOT NULL DEFAULT now()
)`

// EnsureSchema creates the documents table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, schemaSQL)
	return err
}

// All returns every card in collection order.
func (r *Repository) All(ctx context.Context) ([]*models.Card, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		out := make([]*models.Card, 0, len(r.cards))
		for _, c := range r.cards {
			cp := *c
			out = append(out, &cp)
		}
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM cards.documents ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.Card, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding card %s: %w", id, err)
		}
		out = append(out, doc.card(id))
	}
	return out, rows.Err()
}

// Get returns the card stored under id or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (*models.Card, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		if i := r.indexOf(id); i >= 0 {
			cp := *r.cards[i]
			return &cp, nil
		}
		return nil, ErrNotFound
	}

	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM cards.documents WHERE id=$1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding card %s: %w", id, err)
	}
	return doc.card(id), nil
}

// Exists reports whether a card is stored under id.
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.indexOf(id) >= 0, nil
	}

	if !isUUID(id) {
		return false, nil
	}
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM cards.documents WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

// Add stores card under a freshly generated id and returns that id.
// Any id already set on card is ignored.
func (r *Repository) Add(ctx context.Context, card *models.Card) (string, error) {
	doc := toDocument(card)

	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		for attempt := 0; attempt < addAttempts; attempt++ {
			id := r.newID()
			if r.indexOf(id) >= 0 {
				continue
			}
			r.cards = append(r.cards, doc.card(id))
			return id, nil
		}
		return "", fmt.Errorf("could not allocate card id: %w", ErrConflict)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding card: %w", err)
	}
	for attempt := 0; attempt < addAttempts; attempt++ {
		id := r.newID()
		_, err = r.db.ExecContext(ctx, `INSERT INTO cards.documents(id, data) VALUES ($1, $2)`, id, string(data))
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return "", err
		}
		return id, nil
	}
	return "", fmt.Errorf("could not allocate card id: %w", ErrConflict)
}

// Update merges fields (keyed by JSON name) into the stored document.
func (r *Repository) Update(ctx context.Context, id string, fields map[string]string) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		i := r.indexOf(id)
		if i < 0 {
			return ErrNotFound
		}
		r.cards[i].Apply(fields)
		return nil
	}

	if !isUUID(id) {
		return ErrNotFound
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE cards.documents SET data = data || $2::jsonb WHERE id=$1`, id, string(patch))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the card stored under id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		i := r.indexOf(id)
		if i < 0 {
			return ErrNotFound
		}
		r.cards = append(r.cards[:i], r.cards[i+1:]...)
		return nil
	}

	if !isUUID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards.documents WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping returns DB readiness
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

// Close releases the database handle, if any.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// indexOf must be called with r.mu held.
func (r *Repository) indexOf(id string) int {
	for i, c := range r.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// isUUID keeps malformed ids away from the uuid column, where they would
// surface as a cast error instead of a miss.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
