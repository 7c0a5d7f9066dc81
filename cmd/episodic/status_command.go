package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"episodic/internal/preflight"
	"episodic/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var (
		health   bool
		checkLLM bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show episode counts and readiness checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.startRun(cmd, false)
			if err != nil {
				return err
			}
			defer env.close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Environment: %s (%s)\n", env.target.Environment, env.target.Path)

			checks := preflight.RunAll(env.ctx, env.cfg, env.target)
			if checkLLM {
				checks = append(checks, preflight.CheckLLM(env.ctx, env.cfg.LLM))
			}

			if summary, ok := loadSummary(env); ok {
				title := cases.Title(language.English)
				rows := make([][]string, 0, len(store.CleaningStatuses)+2)
				for _, status := range store.CleaningStatuses {
					rows = append(rows, []string{title.String(string(status)), strconv.Itoa(summary.ByStatus[status])})
				}
				rows = append(rows, []string{"Tagged", strconv.Itoa(summary.Tagged)})
				rows = append(rows, []string{"Total", strconv.Itoa(summary.Total)})
				fmt.Fprintln(out, renderTable(out, []string{"Episodes", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			} else {
				fmt.Fprintln(out, "No database yet; run 'episodic ingest' first.")
			}

			rows := make([][]string, 0, len(checks))
			for _, check := range checks {
				rows = append(rows, []string{check.Name, passFail(check.Passed), check.Detail})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows, nil))

			if health {
				h, err := storeHealth(env)
				if err != nil {
					return err
				}
				rows := [][]string{
					{"Path", h.Path},
					{"Exists", yesNo(h.Exists)},
					{"Readable", yesNo(h.Readable)},
					{"Schema version", strconv.Itoa(h.SchemaVersion)},
					{"Integrity", h.Integrity},
				}
				if h.Error != "" {
					rows = append(rows, []string{"Error", h.Error})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Database", "Value"}, rows, nil))
				if !h.Healthy() {
					return fmt.Errorf("database %s is unhealthy: %s", h.Path, h.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&health, "health", false, "Run a database integrity check")
	cmd.Flags().BoolVar(&checkLLM, "llm", false, "Ping the model API with a trivial request")
	return cmd
}

func loadSummary(env *runEnv) (store.Summary, bool) {
	if !databaseExists(env.target.Path) {
		return store.Summary{}, false
	}
	st, err := env.openStore()
	if err != nil {
		return store.Summary{}, false
	}
	summary, err := st.Stats(env.ctx)
	if err != nil {
		return store.Summary{}, false
	}
	return summary, true
}

func storeHealth(env *runEnv) (store.Health, error) {
	if !databaseExists(env.target.Path) {
		return store.Health{Path: env.target.Path, Environment: env.target.Environment, Error: "database does not exist"}, nil
	}
	st, err := env.openStore()
	if err != nil {
		return store.Health{}, err
	}
	return st.CheckHealth(env.ctx), nil
}

func databaseExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func passFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
