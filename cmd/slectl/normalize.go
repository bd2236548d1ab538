package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slecriteria/internal/testcase"
)

func newNormalizeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <suite-file>",
		Short: "Rewrite a suite into canonical criterion-id form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, _, err := testcase.Load(args[0])
			if err != nil {
				return exitError(2, "failed to load suite: %v", err)
			}

			data, err := json.MarshalIndent(testcase.NormalizeSuite(suite), "", "  ")
			if err != nil {
				return fmt.Errorf("encode normalized suite: %w", err)
			}
			data = append(data, '\n')

			out := v.GetString("out")
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return exitError(2, "failed to write %s: %v", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Output file path (default: stdout)")
	_ = v.BindPFlag("out", cmd.Flags().Lookup("out"))
	return cmd
}
