package cardview

import (
	"io"
	"strings"

	"github.com/alovak/cardflow-cards/cards/models"
	"github.com/alovak/cardflow-cards/internal/cardform"
	"github.com/alovak/cardflow-cards/internal/cardgen"
	"github.com/charmbracelet/lipgloss"
)

const (
	placeholderDigit  = "#"
	placeholderName   = "NOMBRE TITULAR"
	placeholderExpiry = "##/##"
	savedListTitle    = "Tarjetas Guardadas"
)

// PreviewModel is what the card face shows for the current form values.
type PreviewModel struct {
	Number string
	Name   string
	Expiry string
}

// Preview renders the card face: missing digits become "#", the number is
// grouped by four, and empty name/expiry fall back to placeholders.
func Preview(v cardform.Values) PreviewModel {
	p := PreviewModel{
		Number: formatCardNumber(v.CardNumber),
		Name:   v.CardholderName,
		Expiry: v.ExpirationDate,
	}
	if p.Name == "" {
		p.Name = placeholderName
	}
	if p.Expiry == "" {
		p.Expiry = placeholderExpiry
	}
	return p
}

func formatCardNumber(number string) string {
	if len(number) < cardgen.PANLength {
		number += strings.Repeat(placeholderDigit, cardgen.PANLength-len(number))
	}
	groups := make([]string, 0, (len(number)+3)/4)
	for i := 0; i < len(number); i += 4 {
		end := i + 4
		if end > len(number) {
			end = len(number)
		}
		groups = append(groups, number[i:end])
	}
	return strings.Join(groups, " ")
}

// WritePreview prints the card face using styles suited to w.
func WritePreview(w io.Writer, p PreviewModel) error {
	_, err := io.WriteString(w, NewStyles(lipgloss.NewRenderer(w)).Preview(p)+"\n")
	return err
}

// SavedItem is one row of the saved cards list.
type SavedItem struct {
	ID           string
	MaskedNumber string
	Holder       string
	Expiry       string
}

// SavedList maps stored cards to list rows with masked numbers.
func SavedList(cards []*models.Card) []SavedItem {
	items := make([]SavedItem, 0, len(cards))
	for _, c := range cards {
		items = append(items, SavedItem{
			ID:           c.ID,
			MaskedNumber: cardgen.MaskPAN(c.CardNumber),
			Holder:       c.CardholderName,
			Expiry:       c.ExpirationDate,
		})
	}
	return items
}

// WriteSavedList prints the saved cards using styles suited to w. An empty
// list prints nothing.
func WriteSavedList(w io.Writer, cards []*models.Card) error {
	out := NewStyles(lipgloss.NewRenderer(w)).SavedList(cards)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
