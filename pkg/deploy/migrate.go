package deploy

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cuemby/cloudio/pkg/config"
	"github.com/cuemby/cloudio/pkg/events"
	"github.com/cuemby/cloudio/pkg/log"
	"github.com/cuemby/cloudio/pkg/poll"
	"github.com/cuemby/cloudio/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultMigrationInterval is the time between workflow event polls
	DefaultMigrationInterval = 5 * time.Second

	// DefaultDrainPeriod lets in-flight requests finish against the source
	// route before its service is removed
	DefaultDrainPeriod = 5 * time.Second

	workflowSchedule = "daemon"
)

// Migration describes one gateway migration attempt
type Migration struct {
	Gateway     string
	SourceRoute types.RouteKey
	TargetRoute types.RouteKey
	WorkflowID  string
	Workflow    string
	// Removed is the service undeployed during finalization
	Removed string
	// Poll is the workflow wait result, nil until the workflow was created
	Poll *poll.Result
}

// Migrated reports whether traffic moved to the new service
func (m *Migration) Migrated() bool {
	return m.Poll != nil && m.Poll.Ok()
}

// Outcome maps the workflow wait result onto a deploy outcome
func (m *Migration) Outcome() types.DeployOutcome {
	if m.Poll == nil {
		return types.OutcomeFailed
	}
	switch m.Poll.Outcome {
	case poll.Succeeded:
		return types.OutcomeMigrated
	case poll.Aborted:
		return types.OutcomeAborted
	case poll.TimedOut:
		return types.OutcomeTimedOut
	default:
		return types.OutcomeFailed
	}
}

// Migrator shifts gateway traffic from the running service to a new one by
// running the strategy workflow on the platform
type Migrator struct {
	platform Platform
	strategy config.Strategy

	interval time.Duration
	drain    time.Duration
	newID    func() string
}

// NewMigrator creates a new migrator for strategy
func NewMigrator(p Platform, strategy config.Strategy) *Migrator {
	return &Migrator{
		platform: p,
		strategy: strategy,
		interval: DefaultMigrationInterval,
		drain:    DefaultDrainPeriod,
		newID:    uuid.NewString,
	}
}

// Migrate moves the deployment's gateway onto service. Abort and timeout are
// reported through the returned Migration's outcome after rolling back. An
// error means the migration could not be carried out at all, or ctx was
// canceled while it ran; the rollback still happens in the latter case.
func (m *Migrator) Migrate(ctx context.Context, deployment, service string) (*Migration, error) {
	logger := log.WithDeployment("migrate", deployment).With().Str("service", service).Logger()
	mig := &Migration{}

	external, err := m.platform.GetGateway(ctx, deployment)
	if err != nil {
		return mig, fmt.Errorf("failed to get gateway %s: %w", deployment, err)
	}
	externalRoutes := external.RouteKeys()
	if len(externalRoutes) == 0 {
		return mig, fmt.Errorf("gateway %s has no routes: %w", deployment, types.ErrNotFound)
	}
	mig.Gateway = externalRoutes[0]

	gateway, err := m.platform.GetGateway(ctx, mig.Gateway)
	if err != nil {
		return mig, fmt.Errorf("failed to get gateway %s: %w", mig.Gateway, err)
	}

	mig.SourceRoute, mig.TargetRoute, err = types.ClassifyRoutes(gateway.RouteKeys(), service)
	if err != nil {
		return mig, fmt.Errorf("gateway %s: %w", mig.Gateway, err)
	}
	if mig.SourceRoute.Service() == "" {
		return mig, fmt.Errorf("source route %s has no service segment: %w", mig.SourceRoute, types.ErrNotFound)
	}

	mig.WorkflowID = m.newID()
	workflow := m.workflow(deployment, mig)
	mig.Workflow = workflow.Name
	logger = log.WithWorkflowID(logger, mig.WorkflowID)

	if _, err := m.platform.CreateWorkflow(ctx, workflow); err != nil {
		return mig, fmt.Errorf("failed to create workflow %s: %w", workflow.Name, err)
	}
	logger.Info().
		Str("workflow", workflow.Name).
		Str("source", mig.SourceRoute.String()).
		Str("target", mig.TargetRoute.String()).
		Msg("Created migration workflow")

	result := poll.Fixed("migration", m.strategy.Timeout, m.interval).
		Wait(ctx, events.WorkflowCondition(m.platform, mig.WorkflowID))
	mig.Poll = &result

	// Finalization runs even when ctx is done
	cleanup := context.WithoutCancel(ctx)

	if err := m.platform.DeleteWorkflow(cleanup, workflow.Name); err != nil {
		logger.Warn().Err(err).Str("workflow", workflow.Name).Msg("Failed to delete workflow")
	} else {
		logger.Info().Str("workflow", workflow.Name).Msg("Deleted workflow")
	}

	if mig.Migrated() {
		return mig, m.finish(ctx, logger, deployment, mig)
	}
	if err := m.rollback(cleanup, logger, deployment, service, mig); err != nil {
		return mig, err
	}
	if err := ctx.Err(); err != nil {
		return mig, fmt.Errorf("migration of %s interrupted: %w", deployment, err)
	}
	return mig, nil
}

func (m *Migrator) finish(ctx context.Context, logger zerolog.Logger, deployment string, mig *Migration) error {
	timer := time.NewTimer(m.drain)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
	}

	source := mig.SourceRoute.Service()
	if err := m.platform.Undeploy(ctx, deployment, source); err != nil {
		return fmt.Errorf("failed to remove service %s from deployment %s: %w", source, deployment, err)
	}
	mig.Removed = source

	logger.Info().Str("removed", source).Msg("Removed service from deployment")
	logger.Info().
		Str("gateway", mig.Gateway).
		Str("source", mig.SourceRoute.String()).
		Str("target", mig.TargetRoute.String()).
		Msg("Migrated gateway")
	return nil
}

func (m *Migrator) rollback(ctx context.Context, logger zerolog.Logger, deployment, service string, mig *Migration) error {
	if err := m.platform.Undeploy(ctx, deployment, service); err != nil {
		return fmt.Errorf("failed to roll back service %s in deployment %s: %w", service, deployment, err)
	}
	mig.Removed = service

	logger.Error().
		Str("gateway", mig.Gateway).
		Str("outcome", string(mig.Outcome())).
		Str("poll", mig.Poll.String()).
		Str("source", mig.SourceRoute.String()).
		Msg("Migration failed, rolled back gateway to source route")
	return nil
}

func (m *Migrator) workflow(deployment string, mig *Migration) *types.Workflow {
	env := map[string]string{
		"GATEWAY":                         mig.Gateway,
		"GATEWAY_SOURCE":                  mig.SourceRoute.String(),
		"GATEWAY_TARGET":                  mig.TargetRoute.String(),
		"WORKFLOW_ID":                     mig.WorkflowID,
		"DEPLOYMENT_STEP":                 strconv.Itoa(m.strategy.Step),
		"DEPLOYMENT_PERIOD":               strconv.Itoa(int(m.strategy.Period / time.Second)),
		"VAMP_WORKFLOW_EXECUTION_PERIOD":  "0",
		"VAMP_WORKFLOW_EXECUTION_TIMEOUT": "0",
	}
	if m.strategy.Metric.Enabled() {
		env["METRIC_NAME"] = m.strategy.Metric.Name
		env["METRIC_EXPRESSION"] = m.strategy.Metric.Expression
	}

	return &types.Workflow{
		Name:                 deployment + "-" + mig.WorkflowID,
		Breed:                types.BreedReference{Reference: m.strategy.Name},
		Schedule:             workflowSchedule,
		EnvironmentVariables: env,
	}
}
