package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/flowgraph/tools"
)

var (
	validateCmd = &cobra.Command{
		Use:   "validate <graph-file>...",
		Short: "Check graph files for integrity, route targets and tool availability",
		Args:  cobra.MinimumNArgs(1),
		RunE:  validateGraphs,
	}

	toolsCmd = &cobra.Command{
		Use:   "tools",
		Short: "List registered tools",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range tools.Default().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
)

func validateGraphs(cmd *cobra.Command, args []string) error {
	var errs []error
	for _, path := range args {
		if err := validateGraph(path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	}
	return errors.Join(errs...)
}

func validateGraph(path string) error {
	g, err := loadGraph(path)
	if err != nil {
		return err
	}
	if err := g.ValidateRoutes(); err != nil {
		return err
	}
	if missing := tools.Default().Missing(g.Tools()); len(missing) > 0 {
		return fmt.Errorf("unregistered tools: %q", missing)
	}
	return nil
}
