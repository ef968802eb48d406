package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/db"
	"github.com/so-keyldzn/simple-cms-sub001/internal/rbac"
	"github.com/so-keyldzn/simple-cms-sub001/internal/users"
)

func newRolesCommand() *cobra.Command {
	rolesCmd := &cobra.Command{
		Use:   "roles",
		Short: "Inspect roles, capabilities and route rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rolesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered roles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, role := range rbac.Roles() {
				marker := ""
				if rbac.HasRole(role.String(), rbac.AdminRoles...) {
					marker = " (admin)"
				}
				cmd.Printf("%s%s\n", role, marker)
			}
		},
	})

	rolesCmd.AddCommand(&cobra.Command{
		Use:   "matrix",
		Short: "Print the role permission matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			roles := rbac.Roles()
			header := []string{"CAPABILITY"}
			for _, role := range roles {
				header = append(header, strings.ToUpper(role.String()))
			}
			fmt.Fprintln(w, strings.Join(header, "\t"))
			matrix := rbac.Matrix()
			for _, c := range rbac.Capabilities() {
				row := []string{c.String()}
				for _, role := range roles {
					mark := "-"
					if matrix[role][c] {
						mark = "x"
					}
					row = append(row, mark)
				}
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			return w.Flush()
		},
	})

	rolesCmd.AddCommand(&cobra.Command{
		Use:   "check <assignment> <capability>",
		Short: "Evaluate a capability against a stored role assignment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			capability := rbac.Capability(args[1])
			if !capability.Valid() {
				return fmt.Errorf("unknown capability %q", args[1])
			}
			if !rbac.Canonical(args[0]) {
				cmd.PrintErrf("warning: %q is not a canonical assignment\n", args[0])
			}
			cmd.Printf("%s %s: %t\n", args[0], capability, rbac.HasPermission(args[0], capability))
			return nil
		},
	})

	rolesCmd.AddCommand(&cobra.Command{
		Use:   "route <assignment> <path>",
		Short: "Evaluate route access for a stored role assignment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignment, path := args[0], args[1]
			if !rbac.Protected(path) {
				cmd.Printf("%s: public\n", path)
				return nil
			}
			rule, ok := rbac.RuleFor(path)
			if !ok {
				cmd.Printf("%s: no rule, admin fallback: %t\n", path, rbac.HasRole(assignment, rbac.AdminRoles...))
				return nil
			}
			caps := make([]string, len(rule.Capabilities))
			for i, c := range rule.Capabilities {
				caps[i] = c.String()
			}
			cmd.Printf("%s: rule %s [%s]: %t\n", path, rule.Prefix, strings.Join(caps, " | "), rbac.HasRouteAccess(assignment, path))
			return nil
		},
	})

	rolesCmd.AddCommand(newNormalizeCommand())
	return rolesCmd
}

func newNormalizeCommand() *cobra.Command {
	var (
		databaseURL string
		apply       bool
	)
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Report stored role assignments that are not canonical",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := resolveDatabaseURL(databaseURL)
			if err != nil {
				return err
			}
			pool, err := db.New(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := users.NewService(users.NewRepository(pool))
			results, err := svc.Normalize(cmd.Context(), apply)
			if err != nil {
				return err
			}
			printNormalizeResults(cmd, results)
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Database connection URL. Defaults to PG_DSN.")
	cmd.Flags().BoolVar(&apply, "apply", false, "Rewrite parsable assignments in canonical form.")
	return cmd
}

func printNormalizeResults(cmd *cobra.Command, results []users.NormalizeResult) {
	if len(results) == 0 {
		cmd.Println("All stored role assignments are canonical.")
		return
	}
	for _, r := range results {
		switch {
		case r.Err != nil:
			cmd.Printf("user %d <%s>: %q invalid: %v\n", r.UserID, r.Email, r.Stored, r.Err)
		case r.Applied:
			cmd.Printf("user %d <%s>: %q -> %q (applied)\n", r.UserID, r.Email, r.Stored, r.Canonical)
		default:
			cmd.Printf("user %d <%s>: %q -> %q\n", r.UserID, r.Email, r.Stored, r.Canonical)
		}
	}
}
