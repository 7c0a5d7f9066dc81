package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"episodic/internal/cleaning"
	"episodic/internal/feed"
	"episodic/internal/ingest"
	"episodic/internal/logging"
	"episodic/internal/services"
	"episodic/internal/stageexec"
	"episodic/internal/store"
	"episodic/internal/tagging"
	"episodic/internal/taxonomy"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var (
		feedURL string
		reset   bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch the RSS feed and store new episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.startRun(cmd, true)
			if err != nil {
				return err
			}
			defer env.close()

			if value := strings.TrimSpace(feedURL); value != "" {
				env.cfg.Feed.URL = value
			}
			if err := env.cfg.RequireFeedURL(); err != nil {
				return services.Wrap(services.ErrConfiguration, "ingest", "feed", "", err)
			}

			if reset {
				logging.WarnWithContext(logging.WithContext(env.ctx, env.logger), "removing database before ingest", "database_reset",
					logging.String("database", env.target.Path),
					logging.String(logging.FieldErrorHint, "omit --reset to keep existing episodes"),
					logging.String(logging.FieldImpact, "all stored episodes are deleted"),
				)
				if err := store.Remove(env.target); err != nil {
					return err
				}
			}

			st, err := env.openStore()
			if err != nil {
				return err
			}
			resolver := ingest.NewResolver(st, env.logger, env.cfg.Workflow.SimilarityThreshold)
			runner := ingest.NewRunner(feed.NewClient(env.cfg.Feed, env.logger), resolver, env.logger)
			report, err := runner.Run(env.ctx, env.cfg.Feed.URL)
			if err != nil {
				return err
			}
			printIngestReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&feedURL, "feed", "", "Feed URL (overrides feed.url and RSS_FEED_URL)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete the selected database before ingesting")
	return cmd
}

type stageFlags struct {
	id    int64
	all   bool
	force bool
}

func (f *stageFlags) bind(cmd *cobra.Command, verb string) {
	cmd.Flags().Int64Var(&f.id, "id", 0, fmt.Sprintf("%s a single episode by id", verb))
	cmd.Flags().BoolVar(&f.all, "all", false, fmt.Sprintf("%s every pending episode", verb))
	cmd.Flags().BoolVar(&f.force, "force", false, "Reprocess episodes that already passed this stage")
	cmd.MarkFlagsMutuallyExclusive("id", "all")
	cmd.MarkFlagsOneRequired("id", "all")
}

// validate rejects a non-positive --id. Cobra already guarantees exactly one
// of --id and --all, so without --all the id was given explicitly.
func (f *stageFlags) validate() error {
	if !f.all && f.id <= 0 {
		return services.Wrap(services.ErrValidation, "", "flags", fmt.Sprintf("--id must be positive, got %d", f.id), nil)
	}
	return nil
}

// finishStage prints the report and decides the exit status: a single
// episode that failed is an error, a batch with failures is not.
func finishStage(cmd *cobra.Command, flags stageFlags, report *stageexec.Report, runErr error) error {
	if report != nil {
		printStageReport(cmd.OutOrStdout(), report)
	}
	if runErr != nil {
		return runErr
	}
	if flags.id != 0 {
		return singleFailure(report)
	}
	return nil
}

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var flags stageFlags

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Strip promotional text and rewrite episode descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			env, err := ctx.startRun(cmd, true)
			if err != nil {
				return err
			}
			defer env.close()

			rules, err := cleaning.NewRules(env.cfg.Cleaning.ExtraPatterns)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, cleaning.StageName, "rules", "", err)
			}
			tax, err := env.taxonomy()
			if err != nil {
				return err
			}
			client, err := env.llmClient(tax)
			if err != nil {
				return err
			}
			st, err := env.openStore()
			if err != nil {
				return err
			}

			driver := cleaning.NewDriver(st, rules, client, env.logger)
			report, err := driver.Run(env.ctx, cleaning.Options{ID: flags.id, Force: flags.force})
			return finishStage(cmd, flags, report, err)
		},
	}

	flags.bind(cmd, "Clean")
	return cmd
}

func newTagCommand(ctx *commandContext) *cobra.Command {
	var flags stageFlags

	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Assign taxonomy tags to cleaned episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			env, err := ctx.startRun(cmd, true)
			if err != nil {
				return err
			}
			defer env.close()

			tax, err := env.taxonomy()
			if err != nil {
				return err
			}
			client, err := env.llmClient(tax)
			if err != nil {
				return err
			}
			st, err := env.openStore()
			if err != nil {
				return err
			}

			validator := taxonomy.NewValidator(tax, env.cfg.Taxonomy.NamedSeries...)
			driver := tagging.NewDriver(st, client, validator, env.logger)
			report, err := driver.Run(env.ctx, tagging.Options{ID: flags.id, Force: flags.force})
			return finishStage(cmd, flags, report, err)
		},
	}

	flags.bind(cmd, "Tag")
	return cmd
}
