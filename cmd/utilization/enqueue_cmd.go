package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/utilization/modules/planning/domain/upload"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

type enqueueOptions struct {
	format string
	user   string
	file   string
}

func newEnqueueCmd(env *cliEnv) *cobra.Command {
	var opts enqueueOptions

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Upload a file to the blob store and announce it on the upload queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnqueue(cmd.Context(), env, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "", "File format: einsatzplan|auslastung (required)")
	cmd.Flags().StringVar(&opts.user, "user", "", "Uploading user id (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Path to the xlsx file (required)")
	_ = cmd.MarkFlagRequired("format")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// uploadPath builds the object path the ingestor routes by.
func uploadPath(format, user, file string) (string, error) {
	user = strings.TrimSpace(user)
	if user == "" || strings.ContainsAny(user, "/\\") {
		return "", fmt.Errorf("invalid --user %q", user)
	}
	name := filepath.Base(file)
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return "", fmt.Errorf("%s: only .xlsx files can be enqueued", name)
	}
	return "uploads/" + format + "/" + user + "/" + name, nil
}

func runEnqueue(ctx context.Context, env *cliEnv, opts enqueueOptions, out io.Writer) error {
	a, err := env.open()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.format(opts.format)
	if err != nil {
		return err
	}
	objectPath, err := uploadPath(string(f.Kind), opts.user, opts.file)
	if err != nil {
		return withCode(exitUsage, err)
	}
	blob, err := os.ReadFile(opts.file)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("read %s: %w", opts.file, err))
	}
	if err := spreadsheet.CheckContentType(blob); err != nil {
		return withCode(exitValidation, fmt.Errorf("%s: %w", opts.file, err))
	}

	blobs, err := a.blobs()
	if err != nil {
		return err
	}
	if err := blobs.Upload(ctx, a.conf.BlobBucket, objectPath, blob); err != nil {
		return withCode(exitDBWrite, err)
	}
	ev := upload.ObjectFinalized{
		Bucket:      a.conf.BlobBucket,
		Path:        objectPath,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Size:        int64(len(blob)),
	}
	q, err := a.queue()
	if err != nil {
		return err
	}
	if err := q.Publish(ctx, ev); err != nil {
		return withCode(exitQueue, err)
	}

	type summary struct {
		Status string `json:"status"`
		Bucket string `json:"bucket"`
		Path   string `json:"path"`
		Size   int64  `json:"size"`
	}
	return writeJSONLine(out, summary{Status: "enqueued", Bucket: ev.Bucket, Path: ev.Path, Size: ev.Size})
}

func newRequeueCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue",
		Short: "Move parked upload events from the failed list back onto the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open()
			if err != nil {
				return err
			}
			defer a.Close()

			q, err := a.queue()
			if err != nil {
				return err
			}
			n, err := q.Requeue(cmd.Context())
			if err != nil {
				return withCode(exitQueue, err)
			}
			type summary struct {
				Status string `json:"status"`
				Key    string `json:"key"`
				Moved  int    `json:"moved"`
			}
			return writeJSONLine(cmd.OutOrStdout(), summary{Status: "ok", Key: q.Key(), Moved: n})
		},
	}
}
