package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cafe.GO/config"
	"cafe.GO/model/migrations"
)

var migrateDown int

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply the MySQL schema migrations (or roll back with --down N)",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.LoadAppConfig()
		dsn := config.MySQLDSN()
		if migrateDown > 0 {
			if err := migrations.Down(dsn, migrateDown); err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", migrateDown)
			return nil
		}
		if err := migrations.Up(dsn); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateDown, "down", 0, "Roll back N migrations")
	rootCmd.AddCommand(migrateCmd)
}
