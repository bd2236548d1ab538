package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slecriteria/internal/criteria"
	"slecriteria/internal/scoring"
	"slecriteria/internal/scoring/handler"
	"slecriteria/pkg/platform/strings"
)

func newScoreCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one patient from criterion ids",
		Example: `  slectl score --ana --select fever,proteinuria_gt_0_5g
  slectl score --ana=false --select seizure --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd.OutOrStdout(), cmd.ErrOrStderr(), v)
		},
	}

	flags := cmd.Flags()
	flags.Bool("ana", false, "ANA at titer >= 1:80 (entry criterion)")
	flags.StringSlice("select", nil, "Selected criterion ids, comma separated or repeated")
	_ = v.BindPFlag("ana", flags.Lookup("ana"))
	_ = v.BindPFlag("select", flags.Lookup("select"))
	return cmd
}

func runScore(stdout, stderr io.Writer, v *viper.Viper) error {
	ids := strings.NormalizeKeys(v.GetStringSlice("select"))
	selections := make(map[string]bool, len(ids))
	var unknown []string
	for _, id := range ids {
		if !criteria.IsKnown(id) {
			unknown = append(unknown, id)
			continue
		}
		selections[id] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		fmt.Fprintf(stderr, "ignoring unknown criterion ids: %v\n", unknown)
	}

	result := scoring.ComputeScore(v.GetBool("ana"), selections)

	if v.GetString("format") == formatJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(handler.FromResult(&result))
	}
	renderScore(stdout, result, newStyles(stdout))
	return nil
}
