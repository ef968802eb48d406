package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/db"
)

func newMigrateCommand() *cobra.Command {
	var databaseURL string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database connection URL. Defaults to PG_DSN.")

	open := func() (*db.Migrator, error) {
		dsn, err := resolveDatabaseURL(databaseURL)
		if err != nil {
			return nil, err
		}
		return db.NewMigrator(dsn)
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up [steps]",
		Short: "Run schema migrations up",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 0
			if len(args) == 1 {
				n, err := parseSteps(args[0])
				if err != nil {
					return err
				}
				steps = n
			}
			m, err := open()
			if err != nil {
				return err
			}
			defer closeMigrator(cmd, m)
			if err := m.Up(steps); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			return printVersion(cmd, m)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down <steps>",
		Short: "Rollback schema migrations down by step count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args[0])
			if err != nil {
				return err
			}
			m, err := open()
			if err != nil {
				return err
			}
			defer closeMigrator(cmd, m)
			if err := m.Down(steps); err != nil {
				return fmt.Errorf("rollback migrations: %w", err)
			}
			return printVersion(cmd, m)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer closeMigrator(cmd, m)
			return printVersion(cmd, m)
		},
	})

	return migrateCmd
}

func parseSteps(raw string) (int, error) {
	steps, err := strconv.Atoi(raw)
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("invalid step count %q: must be a positive integer", raw)
	}
	return steps, nil
}

func printVersion(cmd *cobra.Command, m *db.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("schema version %d (dirty)\n", version)
		return nil
	}
	cmd.Printf("schema version %d\n", version)
	return nil
}

func closeMigrator(cmd *cobra.Command, m *db.Migrator) {
	if err := m.Close(); err != nil {
		cmd.PrintErrf("warning: failed to close migration runner cleanly: %v\n", err)
	}
}
