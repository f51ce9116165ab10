// Package commands implements the trackerctl command tree.
package commands

import (
	"github.com/spf13/cobra"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

var (
	dbPath   string
	logLevel string
	logger   *applog.Logger
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Maintenance commands for the expense tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.LoadEnvFile(); err != nil {
				return err
			}
			cfg := config.Load()
			if dbPath == "" {
				dbPath = cfg.SQLiteDBPath
			}
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			logger = applog.Setup(applog.ComponentCLI, logLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default $LOG_LEVEL)")

	root.AddCommand(migrateCmd(), seedCmd(), lockCmd(), progressCmd(), sheetsAuthCmd())
	return root
}
