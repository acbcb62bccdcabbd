package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/utilization/modules/roster/domain/personname"
	rosterservices "github.com/iota-uz/utilization/modules/roster/services"
)

type aliasOptions struct {
	name       string
	orgUnit    string
	employeeID string
	createdBy  string
}

func newAliasCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage alias overrides for unmatched or duplicate names",
	}
	cmd.AddCommand(newAliasSetCmd(env))
	return cmd
}

func newAliasSetCmd(env *cliEnv) *cobra.Command {
	var opts aliasOptions

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Force a name within an org unit onto one employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := aliasKey(opts.name)
			if err != nil {
				return withCode(exitUsage, err)
			}
			a, err := env.openWithStore(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			type summary struct {
				Status     string `json:"status"`
				Key        string `json:"key"`
				EmployeeID string `json:"employee_id"`
				CreatedBy  string `json:"created_by,omitempty"`
				CreatedAt  string `json:"created_at"`
			}
			if err := a.bus.Subscribe(func(e *rosterservices.AliasResolvedEvent) {
				_ = writeJSONLine(cmd.OutOrStdout(), summary{
					Status:     "ok",
					Key:        e.Alias.Key(),
					EmployeeID: e.Alias.EmployeeID,
					CreatedBy:  e.Alias.CreatedBy,
					CreatedAt:  e.Alias.CreatedAt.Format(time.RFC3339),
				})
			}); err != nil {
				return err
			}

			svc := rosterservices.NewAliasService(a.aliases, a.members, a.bus)
			_, err = svc.Resolve(ctx, key, opts.orgUnit, opts.employeeID, opts.createdBy)
			switch {
			case errors.Is(err, rosterservices.ErrInvalidAlias):
				return withCode(exitUsage, err)
			case errors.Is(err, rosterservices.ErrUnknownEmployee):
				return withCode(exitValidation, err)
			case err != nil:
				return withCode(exitDBWrite, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", `Name as "Last, First" or a normalized "last|first" key (required)`)
	cmd.Flags().StringVar(&opts.orgUnit, "org-unit", "", "Org unit exactly as it appears in the files (required)")
	cmd.Flags().StringVar(&opts.employeeID, "employee", "", "Roster employee id (required)")
	cmd.Flags().StringVar(&opts.createdBy, "by", "", "Who created the override")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("org-unit")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

// aliasKey accepts a raw "Last, First" name or an already normalized key.
func aliasKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	if strings.Contains(name, personname.KeySeparator) {
		return name, nil
	}
	n, err := personname.Parse(name)
	if err != nil {
		return "", fmt.Errorf("invalid --name %q: %w", name, err)
	}
	return n.NormalizedKey, nil
}
