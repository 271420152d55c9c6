package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/cloudio/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cloudio",
	Short: "Cloudio - canary deployments for Vamp",
	Long: `Cloudio deploys a new service version into a Vamp deployment and
migrates gateway traffic onto it with a canary workflow.

A deployment that does not exist yet is created from the blueprint in the
deployment file. An existing deployment gets the new service merged in,
and traffic is shifted step by step until the old service can be removed.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		jsonOutput, _ := cmd.Flags().GetBool("log-json")

		log.Init(log.Config{
			Level:      level,
			JSONOutput: jsonOutput,
			Output:     os.Stderr,
		})
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Cloudio version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
}

// defaultDataDir is where deploy history is kept unless --data-dir is given
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cloudio"
	}
	return filepath.Join(home, ".cloudio")
}
