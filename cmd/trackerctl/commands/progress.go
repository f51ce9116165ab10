package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

func progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Print the spending progress of every budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			progress, err := services.NewBudgetService(repo, repo, repo, nil).ListProgress(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCURRENCY\tSPENT\tAMOUNT\tPERCENT")
			for _, p := range progress {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s%%\n",
					p.BudgetID, p.Name, p.Currency,
					core.FormatCents(p.Spent.Cents), core.FormatCents(p.Amount.Cents),
					p.Percent.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}
