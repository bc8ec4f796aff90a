package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alovak/cardflow-cards/cards/models"
	"github.com/alovak/cardflow-cards/internal/cardform"
	"github.com/alovak/cardflow-cards/internal/cardgen"
	"github.com/alovak/cardflow-cards/internal/cardsclient"
	"github.com/alovak/cardflow-cards/internal/cardtui"
	"github.com/alovak/cardflow-cards/internal/cardview"
	"github.com/alovak/cardflow-cards/internal/expiry"
	"github.com/alovak/cardflow-cards/internal/validation"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:3001/api"

var errInvalidForm = errors.New("el formulario tiene errores")

type cli struct {
	apiURL  string
	timeout time.Duration
	out     io.Writer
	client  *cardsclient.Client
	now     func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out, now: time.Now}

	apiURL := os.Getenv("CARDS_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	root := &cobra.Command{
		Use:           "cards-cli",
		Short:         "Capture and list payment cards stored by the cards service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.client = cardsclient.New(c.apiURL, &http.Client{Timeout: c.timeout})
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&c.apiURL, "api", apiURL, "cards service base URL (env CARDS_API_URL)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "HTTP timeout")

	root.AddCommand(
		c.listCmd(),
		c.getCmd(),
		c.addCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.seedCmd(),
	)
	return root
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved cards with masked numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := c.client.ListCards(cmd.Context())
			if err != nil {
				return err
			}
			return cardview.WriteSavedList(c.out, cards)
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one saved card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := c.client.GetCard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cardview.WriteSavedList(c.out, []*models.Card{card})
		},
	}
}

type cardFlags struct {
	number string
	exp    string
	name   string
	cvv    string
}

func (f *cardFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.number, "number", "", "card number (16 digits)")
	cmd.Flags().StringVar(&f.exp, "exp", "", "expiration date MM/YY")
	cmd.Flags().StringVar(&f.name, "name", "", "cardholder name")
	cmd.Flags().StringVar(&f.cvv, "cvv", "", "CVV (3 or 4 digits)")
}

func (f *cardFlags) raw(field string) string {
	switch field {
	case validation.FieldCardNumber:
		return f.number
	case validation.FieldExpirationDate:
		return f.exp
	case validation.FieldCardholderName:
		return f.name
	case validation.FieldCVV:
		return f.cvv
	}
	return ""
}

func (f *cardFlags) anyChanged(cmd *cobra.Command) bool {
	for _, name := range flagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

var flagNames = map[string]string{
	validation.FieldCardNumber:     "number",
	validation.FieldExpirationDate: "exp",
	validation.FieldCardholderName: "name",
	validation.FieldCVV:            "cvv",
}

func (c *cli) addCmd() *cobra.Command {
	var f cardFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate and save a new card (interactive form when no field flag is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !f.anyChanged(cmd) {
				return c.runForm(cmd.Context())
			}

			now := c.now()
			form := cardform.New()
			for _, field := range validation.Fields {
				form = form.Change(field, f.raw(field), now)
			}
			if err := cardview.WritePreview(c.out, cardview.Preview(form.Values)); err != nil {
				return err
			}

			form, ok := form.Submit(now)
			if !ok {
				for _, field := range validation.Fields {
					if msg := form.VisibleError(field); msg != "" {
						fmt.Fprintf(c.out, "  --%s: %s\n", flagNames[field], msg)
					}
				}
				return errInvalidForm
			}

			card, err := c.client.CreateCard(cmd.Context(), models.CardInput{
				CardNumber:     form.Values.CardNumber,
				ExpirationDate: form.Values.ExpirationDate,
				CardholderName: form.Values.CardholderName,
				CVV:            form.Values.CVV,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Tarjeta guardada: %s\n", card.ID)
			cards, err := c.client.ListCards(cmd.Context())
			if err != nil {
				return err
			}
			return cardview.WriteSavedList(c.out, cards)
		},
	}
	f.register(cmd)
	return cmd
}

// runForm starts the interactive form on the terminal.
func (c *cli) runForm(ctx context.Context) error {
	model := cardtui.New(ctx, c.client).WithClock(c.now)
	_, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(c.out)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *cli) updateCmd() *cobra.Command {
	var f cardFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Overwrite selected fields of a saved card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.CardPatch
			set := func(field string, dst **string) {
				if !cmd.Flags().Changed(flagNames[field]) {
					return
				}
				v := cardform.Normalize(field, f.raw(field))
				*dst = &v
			}
			set(validation.FieldCardNumber, &patch.CardNumber)
			set(validation.FieldExpirationDate, &patch.ExpirationDate)
			set(validation.FieldCardholderName, &patch.CardholderName)
			set(validation.FieldCVV, &patch.CVV)

			card, err := c.client.UpdateCard(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return cardview.WriteSavedList(c.out, []*models.Card{card})
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client.DeleteCard(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Tarjeta eliminada: %s\n", args[0])
			return nil
		},
	}
}

var sampleNames = []string{"Juan Perez", "María Núñez", "José Álvarez", "Lucía Gómez", "Tomás Ibáñez"}

func (c *cli) seedCmd() *cobra.Command {
	var (
		count    int
		bin      string
		sequence string
		years    int
		name     string
		printOut bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create sample cards with Luhn-valid numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cardgen.ValidateBIN(bin); err != nil {
				return err
			}
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			if years < 0 || years > expiry.YearsAhead {
				return fmt.Errorf("--years must be between 0 and %d", expiry.YearsAhead)
			}

			now := c.now()
			rnd := rand.New(rand.NewSource(now.UnixNano()))
			inputs := make([]models.CardInput, 0, count)
			for i := 0; i < count; i++ {
				pan, err := cardgen.GeneratePAN(bin, sequence)
				if err != nil {
					return err
				}
				holder := normalizeCardName(name)
				if holder == "" {
					holder = normalizeCardName(sampleNames[rnd.Intn(len(sampleNames))])
				}
				inputs = append(inputs, models.CardInput{
					CardNumber:     pan,
					ExpirationDate: expiry.CardFace(now, years),
					CardholderName: holder,
					CVV:            fmt.Sprintf("%03d", rnd.Intn(1000)),
				})
			}

			if printOut {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(inputs)
			}

			for _, in := range inputs {
				card, err := c.client.CreateCard(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%s  %s\n", card.ID, cardgen.MaskPAN(card.CardNumber))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 1, "number of cards to create")
	cmd.Flags().StringVar(&bin, "bin", "421234", "6/8/9-digit BIN prefix")
	cmd.Flags().StringVar(&sequence, "sequence", "", "optional numeric sequence (before check digit)")
	cmd.Flags().IntVar(&years, "years", 3, "validity years from today")
	cmd.Flags().StringVar(&name, "name", "", "cardholder name (random sample when empty)")
	cmd.Flags().BoolVar(&printOut, "print", false, "print JSON only, do not POST")
	return cmd
}

// normalizeCardName collapses whitespace, upper-cases and applies the form's
// name mask, so seeded names pass validation.
func normalizeCardName(name string) string {
	normalized := strings.Join(strings.Fields(name), " ")
	return strings.TrimSpace(cardform.Normalize(validation.FieldCardholderName, strings.ToUpper(normalized)))
}
