// Package cardtui is the interactive card form: one text input per field,
// the live card preview above them and the saved cards below.
package cardtui

import (
	"context"
	"strings"
	"time"

	"github.com/alovak/cardflow-cards/cards/models"
	"github.com/alovak/cardflow-cards/internal/cardform"
	"github.com/alovak/cardflow-cards/internal/cardview"
	"github.com/alovak/cardflow-cards/internal/validation"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Store is the part of the cards client the form needs.
type Store interface {
	ListCards(ctx context.Context) ([]*models.Card, error)
	CreateCard(ctx context.Context, in models.CardInput) (*models.Card, error)
}

var labels = map[string]string{
	validation.FieldCardNumber:     "Número de tarjeta",
	validation.FieldExpirationDate: "Vencimiento (MM/YY)",
	validation.FieldCardholderName: "Nombre del titular",
	validation.FieldCVV:            "CVV",
}

var placeholders = map[string]string{
	validation.FieldCardNumber:     "1234567812345678",
	validation.FieldExpirationDate: "MM/YY",
	validation.FieldCardholderName: "Juan Perez",
	validation.FieldCVV:            "123",
}

const helpLine = "tab/shift+tab: campo · enter: guardar · esc: cancelar · ctrl+c: salir"

type cardsLoadedMsg struct {
	cards []*models.Card
	err   error
}

type cardSavedMsg struct {
	card *models.Card
	err  error
}

// Model drives cardform.State from key presses: typing changes the focused
// field, tabbing away marks it touched, enter submits and esc cancels.
type Model struct {
	ctx    context.Context
	store  Store
	now    func() time.Time
	styles cardview.Styles

	form   cardform.State
	inputs []textinput.Model
	focus  int

	saved  []*models.Card
	banner string
	status string
}

func New(ctx context.Context, store Store) Model {
	inputs := make([]textinput.Model, len(validation.Fields))
	for i, field := range validation.Fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[field]
		inputs[i] = in
	}
	inputs[0].Focus()

	return Model{
		ctx:    ctx,
		store:  store,
		now:    time.Now,
		styles: cardview.DefaultStyles(),
		form:   cardform.New(),
		inputs: inputs,
	}
}

// WithClock replaces the clock used for the expiry year window.
func (m Model) WithClock(now func() time.Time) Model {
	m.now = now
	return m
}

// Form returns the current form state.
func (m Model) Form() cardform.State {
	return m.form
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCards)
}

func (m Model) loadCards() tea.Msg {
	cards, err := m.store.ListCards(m.ctx)
	return cardsLoadedMsg{cards: cards, err: err}
}

func (m Model) saveCard(values cardform.Values) tea.Cmd {
	in := models.CardInput{
		CardNumber:     values.CardNumber,
		ExpirationDate: values.ExpirationDate,
		CardholderName: values.CardholderName,
		CVV:            values.CVV,
	}
	return func() tea.Msg {
		card, err := m.store.CreateCard(m.ctx, in)
		return cardSavedMsg{card: card, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cardsLoadedMsg:
		if msg.err != nil {
			m.banner = msg.err.Error()
			return m, nil
		}
		m.saved = msg.cards
		return m, nil

	case cardSavedMsg:
		if msg.err != nil {
			m.banner = msg.err.Error()
			return m, nil
		}
		m.saved = append(m.saved, msg.card)
		m.form = m.form.Reset()
		m.syncInputs()
		m.banner = ""
		m.status = "Tarjeta guardada: " + msg.card.ID
		return m, m.focusField(0)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab", "down":
			m.form = m.form.Blur(validation.Fields[m.focus], m.now())
			return m, m.focusField((m.focus + 1) % len(m.inputs))
		case "shift+tab", "up":
			m.form = m.form.Blur(validation.Fields[m.focus], m.now())
			return m, m.focusField((m.focus + len(m.inputs) - 1) % len(m.inputs))
		case "esc":
			m.form = m.form.Cancel()
			m.syncInputs()
			m.banner = ""
			m.status = ""
			return m, m.focusField(0)
		case "enter":
			form, ok := m.form.Submit(m.now())
			m.form = form
			m.status = ""
			if !ok {
				return m, nil
			}
			m.banner = ""
			return m, m.saveCard(form.Values)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	field := validation.Fields[m.focus]
	if raw := m.inputs[m.focus].Value(); raw != m.form.Values.Get(field) {
		m.form = m.form.Change(field, raw, m.now())
		m.inputs[m.focus].SetValue(m.form.Values.Get(field))
		m.inputs[m.focus].CursorEnd()
	}
	return m, cmd
}

// focusField moves the cursor to field i. Leaving a field by tab also blurs
// it in the form, see Update.
func (m *Model) focusField(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m *Model) syncInputs() {
	for i, field := range validation.Fields {
		m.inputs[i].SetValue(m.form.Values.Get(field))
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Preview(cardview.Preview(m.form.Values)))
	b.WriteString("\n\n")

	for i, field := range validation.Fields {
		b.WriteString(m.styles.Label.Render(labels[field]))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if msg := m.form.VisibleError(field); msg != "" {
			b.WriteString(m.styles.Error.Render("  " + msg))
			b.WriteString("\n")
		}
	}

	if m.banner != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Banner.Render(m.banner))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(m.status))
		b.WriteString("\n")
	}

	if list := m.styles.SavedList(m.saved); list != "" {
		b.WriteString("\n")
		b.WriteString(list)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(helpLine))
	b.WriteString("\n")
	return b.String()
}
