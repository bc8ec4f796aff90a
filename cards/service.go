package cards

import (
	"context"
	"fmt"
	"time"

	"github.com/alovak/cardflow-cards/cards/models"
	"github.com/alovak/cardflow-cards/internal/validation"
)

// MissingFieldsError is returned by CreateCard when one of the four card fields is absent.
type MissingFieldsError struct {
	Required []string
}

func (e *MissingFieldsError) Error() string {
	return "Todos los campos son requeridos"
}

type Service struct {
	repo *Repository
	cfg  *Config
	now  func() time.Time
}

func NewService(repo *Repository, cfg *Config) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Service{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

// WithClock replaces the time source used for timestamps and the expiry year window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func timestamp(t time.Time) string {
	return t.UTC().Format(models.TimeLayout)
}

// ListCards returns every stored card.
func (s *Service) ListCards(ctx context.Context) ([]*models.Card, error) {
	cards, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	return cards, nil
}

func (s *Service) GetCard(ctx context.Context, id string) (*models.Card, error) {
	card, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding card: %w", err)
	}
	return card, nil
}

// CreateCard validates the input field by field and stores a new card.
// It returns *MissingFieldsError or *validation.FieldError without touching
// the repository when the input is rejected.
func (s *Service) CreateCard(ctx context.Context, in models.CardInput) (*models.Card, error) {
	if in.Missing() {
		return nil, &MissingFieldsError{Required: append([]string(nil), validation.Fields...)}
	}
	now := s.now()
	if err := validation.ValidateCard(in.Fields(), now); err != nil {
		return nil, err
	}

	card := &models.Card{
		CardNumber:     in.CardNumber,
		ExpirationDate: in.ExpirationDate,
		CardholderName: in.CardholderName,
		CVV:            in.CVV,
		CreatedAt:      timestamp(now),
	}
	id, err := s.repo.Add(ctx, card)
	if err != nil {
		return nil, fmt.Errorf("creating card: %w", err)
	}
	card.ID = id

	return card, nil
}

// UpdateCard overwrites the fields present in patch and refreshes updatedAt.
// Present fields go through the same checks as on create unless
// Config.ValidateOnUpdate is off.
func (s *Service) UpdateCard(ctx context.Context, id string, patch models.CardPatch) (*models.Card, error) {
	now := s.now()
	changes := patch.Changes()
	if s.cfg.ValidateOnUpdate {
		for _, field := range validation.Fields {
			v, ok := changes[field]
			if !ok {
				continue
			}
			if err := validation.Check(field, v, now); err != nil {
				return nil, err
			}
		}
	}

	if err := s.mustExist(ctx, id); err != nil {
		return nil, err
	}

	changes["updatedAt"] = timestamp(now)
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return nil, fmt.Errorf("updating card: %w", err)
	}

	card, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading updated card: %w", err)
	}
	return card, nil
}

func (s *Service) DeleteCard(ctx context.Context, id string) error {
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting card: %w", err)
	}
	return nil
}

func (s *Service) mustExist(ctx context.Context, id string) error {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("checking card: %w", err)
	}
	if !ok {
		return fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	return nil
}
