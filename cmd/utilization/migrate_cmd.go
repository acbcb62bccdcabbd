package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iota-uz/utilization/pkg/docstore/postgres"
)

func newMigrateCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending document store migrations (postgres only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := env.open()
			if err != nil {
				return err
			}
			defer a.Close()
			if a.backend != "postgres" {
				return withCode(exitUsage, fmt.Errorf("migrate needs the postgres store, got %q", a.backend))
			}
			if err := a.openStore(ctx); err != nil {
				return err
			}
			if err := postgres.Migrate(ctx, a.pool); err != nil {
				return withCode(exitDBWrite, err)
			}
			type summary struct {
				Status string `json:"status"`
				DB     string `json:"db"`
			}
			return writeJSONLine(cmd.OutOrStdout(), summary{Status: "ok", DB: a.conf.Database.Name})
		},
	}
}
