package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

type importOptions struct {
	format string
	file   string
	source string
}

func newImportCmd(env *cliEnv) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a local xlsx file as one plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), env, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "File format: einsatzplan|auslastung (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Path to the xlsx file (required)")
	cmd.Flags().StringVar(&opts.source, "source", "", "Source path recorded on the plan (default: --file)")
	_ = cmd.MarkFlagRequired("format")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type importSummary struct {
	Status             string     `json:"status"`
	PlanID             string     `json:"plan_id,omitempty"`
	Format             string     `json:"format"`
	Period             string     `json:"period,omitempty"`
	Stats              plan.Stats `json:"stats"`
	RowErrors          []string   `json:"row_errors,omitempty"`
	RowErrorsTruncated bool       `json:"row_errors_truncated,omitempty"`
	Error              string     `json:"error,omitempty"`
}

func runImport(ctx context.Context, env *cliEnv, opts importOptions, out io.Writer) error {
	if strings.TrimSpace(opts.file) == "" {
		return withCode(exitUsage, fmt.Errorf("--file is required"))
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
	blob, err := os.ReadFile(opts.file)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("read %s: %w", opts.file, err))
	}
	if err := spreadsheet.CheckContentType(blob); err != nil {
		return withCode(exitValidation, fmt.Errorf("%s: %w", opts.file, err))
	}
	source := opts.source
	if source == "" {
		source = opts.file
	}

	p, importErr := a.importer().ImportFile(ctx, blob, f, source)
	if p == nil {
		return withCode(importExitCode(importErr), importErr)
	}
	summary := importSummary{
		Status:             "ok",
		PlanID:             p.ID,
		Format:             string(p.Format),
		Period:             p.PeriodKey,
		Stats:              p.Stats,
		RowErrors:          p.RowErrors,
		RowErrorsTruncated: p.RowErrorsTruncated,
	}
	if importErr != nil {
		summary.Status = "partial"
		summary.Error = importErr.Error()
	}
	if err := writeJSONLine(out, summary); err != nil {
		return err
	}
	return withCode(importExitCode(importErr), importErr)
}
