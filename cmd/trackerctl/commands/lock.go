package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"expensetracker/internal/core"
)

type lockInput struct {
	Options []lockOption `yaml:"options"`
}

type lockOption struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Currency string `yaml:"currency"`
	Selected bool   `yaml:"selected"`
}

type lockOutput struct {
	SelectedLabel  string             `yaml:"selected_label"`
	LockedCurrency string             `yaml:"locked_currency"`
	Options        []lockOptionOutput `yaml:"options"`
}

type lockOptionOutput struct {
	ID       string `yaml:"id"`
	Selected bool   `yaml:"selected"`
	Enabled  bool   `yaml:"enabled"`
	Muted    bool   `yaml:"muted"`
}

// lockState runs the currency lock over a YAML option list and writes the
// resulting state as YAML.
func lockState(in io.Reader, out io.Writer) error {
	var input lockInput
	if err := yaml.NewDecoder(in).Decode(&input); err != nil && err != io.EOF {
		return fmt.Errorf("parse options: %w", err)
	}

	options := make([]core.AccountOption, len(input.Options))
	for i, o := range input.Options {
		options[i] = core.AccountOption{ID: o.ID, Label: o.Label, Currency: o.Currency, Selected: o.Selected}
	}
	st := core.Recompute(options)

	result := lockOutput{
		SelectedLabel:  st.SelectedLabel,
		LockedCurrency: st.LockedCurrency,
		Options:        make([]lockOptionOutput, len(st.Options)),
	}
	for i, o := range st.Options {
		result.Options[i] = lockOptionOutput{ID: o.ID, Selected: o.Selected, Enabled: o.Enabled, Muted: o.Muted}
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return err
	}
	return enc.Close()
}

func lockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock [FILE]",
		Short: "Show which accounts stay selectable for a selection",
		Long: `Read account options as YAML (from FILE or stdin) and print the locked
currency, the selected label and which options stay enabled:

  options:
    - {id: "1", label: "Wallet (USD 10.00)", currency: USD, selected: true}
    - {id: "3", label: "Euro Savings (EUR 0.00)", currency: EUR}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return lockState(in, cmd.OutOrStdout())
		},
	}
}
