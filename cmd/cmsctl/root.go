package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// BuildVersion is overridden at link time.
var BuildVersion = "dev"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cmsctl",
		Short:         "CMS administration CLI",
		Long:          "Inspect the role permission tables, audit stored role assignments and run schema migrations.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of cmsctl",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s\n", BuildVersion)
		},
	})
	root.AddCommand(newRolesCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

// resolveDatabaseURL prefers the flag value, then PG_DSN.
func resolveDatabaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn, nil
	}
	return "", errors.New("database url required: pass --database-url or set PG_DSN")
}
