package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuemby/cloudio/pkg/config"
	"github.com/cuemby/cloudio/pkg/health"
	"github.com/cuemby/cloudio/pkg/log"
	"github.com/cuemby/cloudio/pkg/metrics"
	"github.com/cuemby/cloudio/pkg/poll"
	"github.com/cuemby/cloudio/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrHealthCheckFailed is returned when the deployed service never reached
// the Done phase
var ErrHealthCheckFailed = errors.New("deployment health check failed")

// Options are the per-invocation deploy arguments
type Options struct {
	Deployment string
	Service    string
	// Breed is the name prefix of the blueprint breed to replace
	Breed      string
	Deployable string
	// Cluster selects the blueprint cluster by index or name
	Cluster string
	// Source names an already deployed blueprint. It is recorded only.
	Source string
}

// Validate checks the required options
func (o Options) Validate() error {
	switch {
	case o.Deployment == "" || o.Service == "":
		return fmt.Errorf("deployment and service names are required")
	case o.Deployable == "" || o.Breed == "":
		return fmt.Errorf("please provide options for <deployable>, <breed> for deployment")
	}
	return nil
}

// Report summarizes a deploy invocation
type Report struct {
	Path       types.DeployPath
	Outcome    types.DeployOutcome
	Blueprint  *types.Blueprint
	Deployment *types.Deployment
	Gateway    *types.Gateway
	Migration  *Migration
}

// Deployer sequences blueprint creation, deployment, health checking and
// gateway migration
type Deployer struct {
	platform Platform
	config   *config.Config
	recorder Recorder
	migrator *Migrator

	healthInterval time.Duration
	newID          func() string
}

// NewDeployer creates a new deployer
func NewDeployer(p Platform, cfg *config.Config) *Deployer {
	return &Deployer{
		platform:       p,
		config:         cfg,
		migrator:       NewMigrator(p, cfg.Deployment.Strategy),
		healthInterval: health.DefaultInterval,
		newID:          uuid.NewString,
	}
}

// WithRecorder makes the deployer save a history record for every Run
func (d *Deployer) WithRecorder(r Recorder) *Deployer {
	d.recorder = r
	return d
}

type stage struct {
	name string
	run  func(ctx context.Context) error
}

// Run deploys opts.Service into opts.Deployment. A missing deployment is
// created; an existing one gets the service merged in and traffic migrated.
// A failed or aborted migration is rolled back and reported in the Report
// without an error.
func (d *Deployer) Run(ctx context.Context, opts Options) (report *Report, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger := log.WithDeployment("deploy", opts.Deployment).With().Str("service", opts.Service).Logger()
	report = &Report{Outcome: types.OutcomeFailed}
	record := &types.MigrationRecord{
		ID:         d.newID(),
		Deployment: opts.Deployment,
		Service:    opts.Service,
		Deployable: opts.Deployable,
		Source:     opts.Source,
		StartedAt:  time.Now(),
	}
	defer func() {
		d.finish(logger, record, report, err)
	}()

	_, err = d.platform.GetDeployment(ctx, opts.Deployment)
	switch {
	case err == nil:
		report.Path = types.DeployPathUpdate
		err = d.runStages(ctx, d.updateStages(logger, opts, report))
	case errors.Is(err, types.ErrNotFound):
		report.Path = types.DeployPathCreate
		err = d.runStages(ctx, d.createStages(logger, opts, report))
		if err == nil {
			report.Outcome = types.OutcomeCreated
			logger.Info().Str("blueprint", report.Blueprint.Name).Msg("Deployed blueprint in deployment")
		}
	default:
		err = fmt.Errorf("failed to get deployment %s: %w", opts.Deployment, err)
	}
	return report, err
}

func (d *Deployer) createStages(logger zerolog.Logger, opts Options, report *Report) []stage {
	return []stage{
		{"blueprint", func(ctx context.Context) error { return d.blueprint(ctx, opts, report) }},
		{"deploy", func(ctx context.Context) error {
			dep, err := d.platform.Deploy(ctx, opts.Deployment, opts.Service)
			if err != nil {
				return fmt.Errorf("failed to deploy blueprint %s: %w", opts.Service, err)
			}
			report.Deployment = dep
			logger.Info().Str("blueprint", report.Blueprint.Name).Msg("Deployed blueprint with deployment")
			return nil
		}},
		{"gateway", func(ctx context.Context) error {
			g, err := CreateGateway(ctx, d.platform, report.Deployment, d.config)
			report.Gateway = g
			return err
		}},
		{"health", func(ctx context.Context) error { return d.checkDeployment(ctx, logger, opts, report, "Create") }},
	}
}

func (d *Deployer) updateStages(logger zerolog.Logger, opts Options, report *Report) []stage {
	return []stage{
		{"blueprint", func(ctx context.Context) error { return d.blueprint(ctx, opts, report) }},
		{"merge", func(ctx context.Context) error {
			dep, err := d.platform.Merge(ctx, opts.Deployment, opts.Service)
			if err != nil {
				return fmt.Errorf("failed to merge blueprint %s: %w", opts.Service, err)
			}
			report.Deployment = dep
			logger.Info().Str("blueprint", report.Blueprint.Name).Msg("Merged blueprint with deployment")
			return nil
		}},
		{"health", func(ctx context.Context) error { return d.checkDeployment(ctx, logger, opts, report, "Merge") }},
		{"migrate", func(ctx context.Context) error {
			mig, err := d.migrator.Migrate(ctx, opts.Deployment, opts.Service)
			report.Migration = mig
			if err != nil {
				return err
			}
			report.Outcome = mig.Outcome()
			if mig.Migrated() {
				logger.Info().Str("blueprint", report.Blueprint.Name).Msg("Deployed blueprint in deployment")
			}
			return nil
		}},
	}
}

func (d *Deployer) blueprint(ctx context.Context, opts Options, report *Report) error {
	b, err := CreateBlueprint(ctx, d.platform, opts.Service, d.config, opts.Cluster, opts.Breed, opts.Deployable)
	if err != nil {
		return err
	}
	report.Blueprint = b
	return nil
}

func (d *Deployer) checkDeployment(ctx context.Context, logger zerolog.Logger, opts Options, report *Report, verb string) error {
	checker := health.NewDeploymentChecker(d.platform, opts.Deployment, opts.Service, opts.Cluster)
	result := health.Wait(ctx, checker, d.config.Deployment.Timeout, d.healthInterval)
	if result.Ok() {
		return nil
	}

	report.Outcome = types.OutcomeUnhealthy
	logger.Error().Str("result", result.String()).Msgf("%s deployment %s failed", verb, opts.Deployment)
	if result.Outcome == poll.TimedOut {
		return fmt.Errorf("%w after %s: %w", ErrHealthCheckFailed, d.config.Deployment.Timeout, types.ErrTimeout)
	}
	return fmt.Errorf("%w: %s", ErrHealthCheckFailed, result)
}

func (d *Deployer) runStages(ctx context.Context, stages []stage) error {
	for _, s := range stages {
		timer := metrics.NewTimer()
		err := s.run(ctx)
		timer.ObserveDurationVec(metrics.StageDuration, s.name)
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (d *Deployer) finish(logger zerolog.Logger, record *types.MigrationRecord, report *Report, err error) {
	record.Path = report.Path
	record.Outcome = report.Outcome
	record.FinishedAt = time.Now()
	if err != nil {
		record.Error = err.Error()
	}
	if mig := report.Migration; mig != nil {
		record.Workflow = mig.Workflow
		record.SourceRoute = mig.SourceRoute.String()
		record.TargetRoute = mig.TargetRoute.String()
		if record.Error == "" && mig.Poll != nil && !mig.Migrated() {
			record.Error = mig.Poll.String()
		}
	}

	path := string(report.Path)
	if path == "" {
		path = "unknown"
	}
	metrics.MigrationsTotal.WithLabelValues(path, string(report.Outcome)).Inc()

	if d.recorder == nil {
		return
	}
	if err := d.recorder.SaveRecord(record); err != nil {
		logger.Warn().Err(err).Msg("Failed to save deploy history")
	}
}
