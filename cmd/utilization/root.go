package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iota-uz/utilization/pkg/configuration"
)

func newRootCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "utilization",
		Short:         "Import Einsatzplan and Auslastung spreadsheets into the planning store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&env.store, "store", "", "Document store backend: postgres|memory (default: $DOCSTORE)")

	cmd.AddCommand(newImportCmd(env))
	cmd.AddCommand(newWorkerCmd(env))
	cmd.AddCommand(newEnqueueCmd(env))
	cmd.AddCommand(newRequeueCmd(env))
	cmd.AddCommand(newMigrateCmd(env))
	cmd.AddCommand(newPlansCmd(env))
	cmd.AddCommand(newAliasCmd(env))
	cmd.AddCommand(newRosterCmd(env))
	return cmd
}

func Execute() {
	env := &cliEnv{loadConfig: func() (*configuration.Configuration, error) {
		return configuration.Use(), nil
	}}
	if err := newRootCmd(env).Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
