package main

import (
	"fmt"

	"github.com/cuemby/cloudio/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a deployment file",
	Long: `Load the deployment file, render it against the environment and
check every setting without contacting the platform.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		cfg, err := config.Load(file, config.Environ())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		s := cfg.Deployment.Strategy
		fmt.Fprintf(out, "✓ %s is valid\n", cfg.File)
		fmt.Fprintf(out, "  Health timeout: %s\n", cfg.Deployment.Timeout)
		fmt.Fprintf(out, "  Strategy: %s (step %d%%, period %s, timeout %s)\n", s.Name, s.Step, s.Period, s.Timeout)
		if s.Metric.Enabled() {
			fmt.Fprintf(out, "  Metric: %s %s\n", s.Metric.Name, s.Metric.Expression)
		}
		if b := cfg.Vamp.Blueprint; b != nil {
			fmt.Fprintf(out, "  Blueprint clusters: %d\n", len(b.Clusters))
			for i, c := range b.Clusters {
				fmt.Fprintf(out, "    [%d] %s (%d services)\n", i, c.Name, len(c.Services))
			}
		} else {
			fmt.Fprintln(out, "  Blueprint: none")
		}
		if g := cfg.Vamp.Gateway; g != nil {
			fmt.Fprintf(out, "  Gateway routes: %v\n", g.RouteKeys())
		} else {
			fmt.Fprintln(out, "  Gateway: none")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("file", "f", config.DefaultFile, "Deployment file")
}
