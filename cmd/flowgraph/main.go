package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/flowgraph/config"
	"github.com/tailored-agentic-units/flowgraph/review"
	"github.com/tailored-agentic-units/flowgraph/tools"
)

var (
	configFile string
	logLevel   string
	traceOut   bool

	cfg    *config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:           "flowgraph",
		Short:         "Run tool graphs over a shared context",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "flowgraph: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&traceOut, "trace", false, "Export spans to stdout")

	rootCmd.AddCommand(serveCmd, runCmd, validateCmd, toolsCmd)
}

func setup() error {
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		defaults := config.DefaultConfig()
		cfg = &defaults
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	l, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	logger = l
	slog.SetDefault(logger)

	if err := review.Register(tools.Default()); err != nil {
		return err
	}
	return nil
}
