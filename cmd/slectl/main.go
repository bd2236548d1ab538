package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

const (
	formatConsole = "console"
	formatJSON    = "json"
)

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI and maps errors onto process exit codes.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(viper.New())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(stderr, ee.msg)
			}
			return ee.code
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	return 0
}

// newRootCmd builds the command tree around v. Flags, SLECTL_* variables and
// an optional .slectl.yaml resolve in that order of precedence.
func newRootCmd(v *viper.Viper) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "slectl",
		Short:         "Score EULAR/ACR 2019 SLE classification and replay the regression suite",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(v, configPath); err != nil {
				return exitError(2, "%v", err)
			}
			switch f := v.GetString("format"); f {
			case formatConsole, formatJSON:
			default:
				return exitError(2, "unsupported --format %q (want console or json)", f)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./.slectl.yaml when present)")
	root.PersistentFlags().String("format", formatConsole, "Output format: console or json")
	_ = v.BindPFlag("format", root.PersistentFlags().Lookup("format"))

	v.SetEnvPrefix("SLECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(newScoreCmd(v), newRunCmd(v), newNormalizeCmd(v))
	return root
}

func loadConfig(v *viper.Viper, path string) error {
	if path == "" {
		if _, err := os.Stat(".slectl.yaml"); err != nil {
			return nil
		}
		path = ".slectl.yaml"
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}
