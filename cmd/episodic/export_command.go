package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"episodic/internal/export"
	"episodic/internal/services"
	"episodic/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		formatFlag string
		output     string
		limit      int
		statuses   []string
		fields     []string
		since      string
		taggedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write episodes to JSON or CSV, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			filter, err := buildExportFilter(statuses, since, taggedOnly, limit)
			if err != nil {
				return err
			}
			if _, err := export.ValidateFields(fields); err != nil {
				return err
			}

			env, err := ctx.startRun(cmd, true)
			if err != nil {
				return err
			}
			defer env.close()

			st, err := env.openStore()
			if err != nil {
				return err
			}
			exporter := export.NewExporter(st, env.logger)
			opts := export.Options{Format: format, Fields: fields, Filter: filter}

			if output == "-" {
				_, err := exporter.Export(env.ctx, opts, cmd.OutOrStdout())
				return err
			}
			path := strings.TrimSpace(output)
			if path == "" {
				path = export.DefaultPath(env.cfg.Paths.ExportsDir, format, time.Now())
			}
			count, err := exporter.ExportFile(env.ctx, opts, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d episode(s) to %s\n", count, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "json", "Output format (json or csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, or - for stdout (default <exports_dir>/podcast_episodes_<timestamp>.<format>)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of episodes (0 for all)")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only export these cleaning statuses (pending, cleaned, failed)")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Columns to include (default all: "+strings.Join(export.Columns(), ",")+")")
	cmd.Flags().StringVar(&since, "since", "", "Only export episodes published on or after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&taggedOnly, "tagged-only", false, "Only export tagged episodes")
	return cmd
}

func buildExportFilter(statuses []string, since string, taggedOnly bool, limit int) (store.ExportFilter, error) {
	filter := store.ExportFilter{TaggedOnly: taggedOnly, Limit: limit}
	if limit < 0 {
		return filter, services.Wrap(services.ErrValidation, "export", "flags", "--limit must not be negative", nil)
	}
	for _, raw := range statuses {
		status, ok := store.ParseCleaningStatus(strings.ToLower(strings.TrimSpace(raw)))
		if !ok {
			return filter, services.Wrap(services.ErrValidation, "export", "flags", fmt.Sprintf("unknown status %q", raw), nil)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if value := strings.TrimSpace(since); value != "" {
		parsed, err := time.Parse(time.DateOnly, value)
		if err != nil {
			return filter, services.Wrap(services.ErrValidation, "export", "flags", "--since must be YYYY-MM-DD", err)
		}
		filter.Since = &parsed
	}
	return filter, nil
}
