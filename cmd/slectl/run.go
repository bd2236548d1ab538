package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slecriteria/internal/testcase"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <suite-file>",
		Short: "Replay a regression suite against the scoring engine",
		Long: `Run every executable case of a JSON or YAML suite and compare the engine
outcome with what each case asserts. Exits 1 when any case fails or errors
and 2 when the suite cannot be loaded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, _, err := testcase.Load(args[0])
			if err != nil {
				return exitError(2, "failed to load suite: %v", err)
			}

			opts := testcase.RunOptions{
				CaseID:      v.GetString("id"),
				Parallelism: v.GetInt("parallel"),
			}
			report, err := testcase.RunSuite(cmd.Context(), suite, opts)
			if err != nil {
				return exitError(2, "run interrupted: %v", err)
			}
			if opts.CaseID != "" && report.Summary.Total == 0 {
				return exitError(2, "no case with id %q in %s", opts.CaseID, args[0])
			}

			if err := writeReport(cmd.OutOrStdout(), v.GetString("format"), report); err != nil {
				return err
			}
			if report.Summary.Failed() {
				return exitError(1, "")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("id", "", "Run only the case with this id")
	flags.Int("parallel", 0, "Cases evaluated concurrently (default: GOMAXPROCS)")
	_ = v.BindPFlag("id", flags.Lookup("id"))
	_ = v.BindPFlag("parallel", flags.Lookup("parallel"))
	return cmd
}

func writeReport(w io.Writer, format string, report testcase.Report) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	renderReport(w, report, newStyles(w))
	return nil
}
