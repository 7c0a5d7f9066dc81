package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"episodic/internal/audit"
	"episodic/internal/taxonomy"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var (
		reportPath      string
		includeUntagged bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Audit stored tags against the taxonomy rules and write a JSON report",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.startRun(cmd, true)
			if err != nil {
				return err
			}
			defer env.close()

			tax, err := env.taxonomy()
			if err != nil {
				return err
			}
			st, err := env.openStore()
			if err != nil {
				return err
			}

			validator := taxonomy.NewValidator(tax, env.cfg.Taxonomy.NamedSeries...)
			report, err := audit.NewAuditor(st, validator, env.logger).Run(env.ctx, audit.Options{IncludeUntagged: includeUntagged})
			if err != nil {
				return err
			}

			path := strings.TrimSpace(reportPath)
			if path == "" {
				path = audit.DefaultPath(env.cfg.Paths.ReportsDir, time.Now())
			}
			if err := report.Write(path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Audited %d of %d episode(s) against taxonomy %s\n", report.Audited, report.TotalEpisodes, report.TaxonomyVersion)
			if len(report.Results) > 0 {
				rows := make([][]string, 0, len(report.Results))
				for _, res := range report.Results {
					rules := make([]string, 0, len(res.Violations))
					for _, v := range res.Violations {
						rules = append(rules, string(v.Rule))
					}
					rows = append(rows, []string{strconv.FormatInt(res.EpisodeID, 10), truncate(res.Title, 48), strings.Join(rules, ", ")})
				}
				fmt.Fprintln(out, renderTable(out, []string{"ID", "Title", "Violations"}, rows, []columnAlignment{alignRight}))
			}
			fmt.Fprintf(out, "Issues: %d\n", report.TotalIssues)
			fmt.Fprintf(out, "Report written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "Report path (default <reports_dir>/validation_report_<timestamp>.json)")
	cmd.Flags().BoolVar(&includeUntagged, "include-untagged", false, "Also audit episodes that have no tags yet")
	return cmd
}
