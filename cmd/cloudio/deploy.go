package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/cloudio/pkg/client"
	"github.com/cuemby/cloudio/pkg/config"
	"github.com/cuemby/cloudio/pkg/deploy"
	"github.com/cuemby/cloudio/pkg/log"
	"github.com/cuemby/cloudio/pkg/metrics"
	"github.com/cuemby/cloudio/pkg/storage"
	"github.com/cuemby/cloudio/pkg/types"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy DEPLOYMENT SERVICE",
	Short: "Deploy a service and migrate traffic onto it",
	Long: `Deploy SERVICE into DEPLOYMENT using the blueprint from the deployment file.

The breed whose name starts with --breed is replaced by SERVICE running
--deployable. When DEPLOYMENT already exists, gateway traffic is migrated
onto SERVICE by the strategy workflow and the previous service is removed.

Examples:
  # Deploy version 2 of the web frontend
  cloudio deploy shop web-v2 --breed web --deployable registry/web:2.0.0

  # Use another deployment file and the backend cluster
  cloudio deploy shop api-v3 -f deploy/shop.yml -c backend -b api -d registry/api:3.0.0`,
	Args: cobra.ExactArgs(2),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringP("file", "f", config.DefaultFile, "Deployment file")
	deployCmd.Flags().StringP("breed", "b", "", "Name prefix of the blueprint breed to replace (required)")
	deployCmd.Flags().StringP("deployable", "d", "", "Deployable of the new breed (required)")
	deployCmd.Flags().StringP("source", "s", "", "Blueprint the service is deployed from")
	deployCmd.Flags().StringP("cluster", "c", "", "Blueprint cluster index or name (default first cluster)")
	deployCmd.Flags().String("data-dir", defaultDataDir(), "Directory for deploy history")
	deployCmd.Flags().String("metrics-file", "", "Write metrics to this file after the run")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	breed, _ := cmd.Flags().GetString("breed")
	deployable, _ := cmd.Flags().GetString("deployable")
	source, _ := cmd.Flags().GetString("source")
	cluster, _ := cmd.Flags().GetString("cluster")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	opts := deploy.Options{
		Deployment: args[0],
		Service:    args[1],
		Breed:      breed,
		Deployable: deployable,
		Cluster:    cluster,
		Source:     source,
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
		return err
	}

	cfg, err := config.Load(file, config.Environ())
	if err != nil {
		return err
	}

	clientCfg, err := client.ConfigFromEnv()
	if err != nil {
		return err
	}
	c, err := client.NewClient(clientCfg)
	if err != nil {
		return err
	}

	deployer := deploy.NewDeployer(c, cfg)

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		log.Logger.Warn().Err(err).Str("data_dir", dataDir).Msg("Deploy history disabled")
	} else {
		defer store.Close()
		deployer.WithRecorder(store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := deployer.Run(ctx, opts)

	if metricsFile != "" {
		if werr := metrics.WriteTextfile(metricsFile); werr != nil {
			log.Logger.Warn().Err(werr).Msg("Failed to write metrics")
		}
	}

	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), opts, report)
	return nil
}

// printReport marks created and migrated runs with a check and rolled back
// ones with a cross
func printReport(w io.Writer, opts deploy.Options, report *deploy.Report) {
	mark := "✓"
	if o := report.Outcome; o != types.OutcomeCreated && o != types.OutcomeMigrated {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s %s: %s\n", mark, opts.Deployment, opts.Service, report.Outcome)

	mig := report.Migration
	if mig == nil {
		return
	}
	fmt.Fprintf(w, "  Gateway: %s\n", mig.Gateway)
	fmt.Fprintf(w, "  Source:  %s\n", mig.SourceRoute)
	fmt.Fprintf(w, "  Target:  %s\n", mig.TargetRoute)
	if mig.Migrated() {
		fmt.Fprintf(w, "  Removed: %s\n", mig.Removed)
	} else {
		fmt.Fprintf(w, "  Rolled back: %s removed (%s)\n", mig.Removed, mig.Poll)
	}
}
