package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/modules/planning/services"
	"github.com/iota-uz/utilization/modules/roster/domain/match"
)

func newPlansCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Read imported plans",
	}
	cmd.AddCommand(newPlansLatestCmd(env))
	cmd.AddCommand(newPlansEntriesCmd(env))
	return cmd
}

func newPlansLatestCmd(env *cliEnv) *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Print the most recently imported plan of a format",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := env.openWithStore(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.format(formatName)
			if err != nil {
				return err
			}
			p, err := services.NewPlanService(a.plans).Latest(ctx, f)
			if err != nil {
				return readError(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringVar(&formatName, "format", "", "File format: einsatzplan|auslastung (required)")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}

type entriesOptions struct {
	format  string
	planID  string
	status  string
	orgUnit string
}

func newPlansEntriesCmd(env *cliEnv) *cobra.Command {
	var opts entriesOptions

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Print the entries of a plan, one JSON line each",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			status, err := parseStatus(opts.status)
			if err != nil {
				return err
			}
			a, err := env.openWithStore(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.format(opts.format)
			if err != nil {
				return err
			}
			_, entries, err := services.NewPlanService(a.plans).Entries(ctx, f, opts.planID, plan.EntryFilter{
				Status:  status,
				OrgUnit: strings.TrimSpace(opts.orgUnit),
			})
			if err != nil {
				return readError(err)
			}
			for _, e := range entries {
				if err := writeJSONLine(cmd.OutOrStdout(), e); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "", "File format: einsatzplan|auslastung (required)")
	cmd.Flags().StringVar(&opts.planID, "plan", "", "Plan id (default: latest plan)")
	cmd.Flags().StringVar(&opts.status, "status", "", "Only entries with this match status: matched|unmatched|duplicate")
	cmd.Flags().StringVar(&opts.orgUnit, "org-unit", "", "Only entries of this org unit (exact)")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}

func parseStatus(v string) (match.Status, error) {
	s, err := match.ParseStatus(v)
	if err != nil {
		return "", withCode(exitUsage, fmt.Errorf("invalid --status: %w", err))
	}
	return s, nil
}

func readError(err error) error {
	if errors.Is(err, plan.ErrNotFound) {
		return withCode(exitValidation, err)
	}
	return withCode(exitDB, err)
}
