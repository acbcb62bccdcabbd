package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/member"
	"github.com/iota-uz/utilization/modules/roster/domain/personname"
)

type rosterAddOptions struct {
	id      string
	name    string
	orgUnit string
	attrs   member.Attributes
}

func newRosterCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Maintain roster members",
	}
	cmd.AddCommand(newRosterAddCmd(env))
	return cmd
}

func newRosterAddCmd(env *cliEnv) *cobra.Command {
	var opts rosterAddOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create or replace a roster member",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := personname.Parse(opts.name)
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid --name %q: %w", opts.name, err))
			}
			id := strings.TrimSpace(opts.id)
			orgUnit := strings.TrimSpace(opts.orgUnit)
			if id == "" || orgUnit == "" {
				return withCode(exitUsage, fmt.Errorf("--id and --org-unit are required"))
			}
			if opts.attrs.DisplayName == "" {
				opts.attrs.DisplayName = n.Display()
			}

			a, err := env.openWithStore(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			m := member.New(id, n.NormalizedKey, orgUnit, opts.attrs)
			if err := a.members.Save(ctx, m); err != nil {
				return withCode(exitDBWrite, err)
			}
			type summary struct {
				Status      string `json:"status"`
				ID          string `json:"id"`
				IdentityKey string `json:"identity_key"`
				OrgUnit     string `json:"org_unit"`
				DisplayName string `json:"display_name"`
			}
			return writeJSONLine(cmd.OutOrStdout(), summary{
				Status:      "ok",
				ID:          m.ID(),
				IdentityKey: m.IdentityKey(),
				OrgUnit:     m.OrgUnit(),
				DisplayName: m.DisplayName(),
			})
		},
	}
	cmd.Flags().StringVar(&opts.id, "id", "", "Employee id (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", `Name as "Last, First" (required)`)
	cmd.Flags().StringVar(&opts.orgUnit, "org-unit", "", "Org unit (required)")
	cmd.Flags().StringVar(&opts.attrs.DisplayName, "display-name", "", "Display name (default: First Last)")
	cmd.Flags().StringVar(&opts.attrs.Team, "team", "", "Team")
	cmd.Flags().StringVar(&opts.attrs.Grade, "grade", "", "Grade")
	cmd.Flags().StringVar(&opts.attrs.Location, "location", "", "Location")
	cmd.Flags().StringVar(&opts.attrs.Email, "email", "", "E-mail")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("org-unit")
	return cmd
}
