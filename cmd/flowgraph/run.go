package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/flowgraph/state"
)

var (
	runInput    string
	runMaxSteps int

	runCmd = &cobra.Command{
		Use:   "run [graph-file]",
		Short: "Run a graph once and print the final run state as JSON",
		Long: `Run a graph from a JSON, YAML or HCL file. Without a file the built-in
code_review_v1 graph runs. The initial context is a JSON object passed with
--input, or read from a JSON or YAML file with --input @path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGraph,
	}
)

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "{}", "Initial context as a JSON object, or @file")
	runCmd.Flags().IntVar(&runMaxSteps, "max-steps", -1, "Step budget; negative uses the configured default")
}

func readInput(arg string) (state.Context, error) {
	path, isFile := strings.CutPrefix(arg, "@")
	if !isFile {
		return decodeJSONInput([]byte(arg))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
		return state.ContextFromMap(raw)
	default:
		return decodeJSONInput(data)
	}
}

func decodeJSONInput(data []byte) (state.Context, error) {
	var initial state.Context
	if err := json.Unmarshal(data, &initial); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return initial, nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}

	g, err := loadGraph(path)
	if err != nil {
		return err
	}

	initial, err := readInput(runInput)
	if err != nil {
		return err
	}

	shutdownTracing, err := setupTracing()
	if err != nil {
		return err
	}
	defer shutdownTracing(cmd.Context())

	eng, err := newEngine(nil)
	if err != nil {
		return err
	}

	maxSteps := eng.MaxSteps()
	if runMaxSteps >= 0 {
		maxSteps = runMaxSteps
	}

	run := state.NewRun(uuid.Must(uuid.NewV7()).String(), g.ID(), g.StartNode(), initial)
	run, runErr := eng.Run(cmd.Context(), g, run, maxSteps)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return err
	}
	return runErr
}
