package cardview

import (
	"strings"

	"github.com/alovak/cardflow-cards/cards/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#6B7280")
	destructive = lipgloss.Color("#e53935")
)

const (
	// "#### #### #### ####" on the first line, a 20 rune name plus MM/YY on the second.
	faceWidth   = 26
	nameWidth   = 21
	expiryWidth = 5

	maskedWidth = 18
	holderWidth = 22
)

// Styles renders the card face, the saved list and the form around them.
// Build it from the renderer of the output so colors are dropped when the
// output is not a terminal.
type Styles struct {
	Card   lipgloss.Style
	Number lipgloss.Style
	Name   lipgloss.Style
	Expiry lipgloss.Style

	Title  lipgloss.Style
	Masked lipgloss.Style
	Holder lipgloss.Style
	Muted  lipgloss.Style

	Label  lipgloss.Style
	Error  lipgloss.Style
	Banner lipgloss.Style
}

func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Width(faceWidth + 2),
		Number: r.NewStyle().Bold(true),
		Name:   r.NewStyle().Width(nameWidth),
		Expiry: r.NewStyle().Width(expiryWidth).Align(lipgloss.Right),

		Title:  r.NewStyle().Bold(true).Foreground(accent),
		Masked: r.NewStyle().Width(maskedWidth),
		Holder: r.NewStyle().Width(holderWidth),
		Muted:  r.NewStyle().Foreground(muted),

		Label:  r.NewStyle().Width(nameWidth).Bold(true),
		Error:  r.NewStyle().Foreground(destructive),
		Banner: r.NewStyle().Foreground(destructive).Bold(true),
	}
}

// DefaultStyles renders for stdout.
func DefaultStyles() Styles {
	return NewStyles(lipgloss.DefaultRenderer())
}

// Preview draws the card face.
func (s Styles) Preview(p PreviewModel) string {
	face := lipgloss.JoinVertical(lipgloss.Left,
		s.Number.Render(p.Number),
		lipgloss.JoinHorizontal(lipgloss.Top, s.Name.Render(p.Name), s.Expiry.Render(p.Expiry)),
	)
	return s.Card.Render(face)
}

// SavedList draws the heading and one row per card. It is empty when there
// are no cards.
func (s Styles) SavedList(cards []*models.Card) string {
	items := SavedList(cards)
	if len(items) == 0 {
		return ""
	}

	rows := make([]string, 0, len(items)+1)
	rows = append(rows, s.Title.Render(savedListTitle))
	for _, it := range items {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			s.Masked.Render(it.MaskedNumber),
			s.Holder.Render(it.Holder),
			s.Expiry.Render(it.Expiry),
			s.Muted.Render("  "+it.ID),
		))
	}
	return strings.Join(rows, "\n")
}
