package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

type seedFile struct {
	Accounts []seedAccount `yaml:"accounts"`
}

type seedAccount struct {
	Name     string `yaml:"name"`
	Number   string `yaml:"number"`
	Type     string `yaml:"type"`
	Currency string `yaml:"currency"`
	Balance  string `yaml:"balance"`
}

func (a seedAccount) account() (core.Account, error) {
	cents, err := core.ParseBalanceToCents(a.Balance)
	if err != nil {
		return core.Account{}, fmt.Errorf("account %q: balance %q: %w", a.Name, a.Balance, err)
	}
	return core.Account{
		Name:     a.Name,
		Number:   a.Number,
		Type:     core.AccountType(a.Type),
		Currency: a.Currency,
		Balance:  core.Money{Cents: cents},
	}, nil
}

func readSeedFile(path string) (seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return seedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Create the accounts listed in a YAML file",
		Long: `Create the accounts listed in a YAML file:

  accounts:
    - name: Wallet
      type: Cash
      currency: USD
      balance: "$1,250.00"

Accounts that fail validation, duplicates included, are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readSeedFile(args[0])
			if err != nil {
				return err
			}

			repo, err := storage.NewSQLiteRepository(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			svc := services.NewAccountService(repo, nil)
			created, skipped := 0, 0
			for _, sa := range f.Accounts {
				a, err := sa.account()
				if err == nil {
					_, err = svc.CreateAccount(cmd.Context(), a)
				}
				if err != nil {
					skipped++
					logger.WarnContext(cmd.Context(), "Skipping account", "name", sa.Name, applog.FieldError, err)
					continue
				}
				created++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %d account(s), skipped %d\n", created, skipped)
			return nil
		},
	}
}
