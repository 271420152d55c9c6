package health

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/cloudio/pkg/log"
	"github.com/cuemby/cloudio/pkg/poll"
	"github.com/cuemby/cloudio/pkg/types"
)

// DefaultInterval is the time between deployment probes
const DefaultInterval = 5 * time.Second

// CheckType represents the type of health check
type CheckType string

const (
	CheckTypeDeploymentPhase CheckType = "deployment-phase"
)

// Result represents the outcome of a health check
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
	// Err is set when the probe itself could not be completed
	Err error
}

// Checker is the interface that all health checkers must implement
type Checker interface {
	// Check performs the health check and returns the result
	Check(ctx context.Context) Result

	// Type returns the type of health check
	Type() CheckType
}

// DeploymentGetter fetches a deployment with live service status
type DeploymentGetter interface {
	GetDeployment(ctx context.Context, name string) (*types.Deployment, error)
}

// DeploymentChecker reports healthy once a service of a deployment reaches
// the Done phase
type DeploymentChecker struct {
	Client     DeploymentGetter
	Deployment string
	Service    string
	// Cluster selects the cluster by index or name, first cluster when empty
	Cluster string
}

// NewDeploymentChecker creates a new deployment phase checker
func NewDeploymentChecker(client DeploymentGetter, deployment, service, cluster string) *DeploymentChecker {
	return &DeploymentChecker{
		Client:     client,
		Deployment: deployment,
		Service:    service,
		Cluster:    cluster,
	}
}

// Check fetches the deployment and inspects the service phase
func (c *DeploymentChecker) Check(ctx context.Context) Result {
	start := time.Now()
	fail := func(err error) Result {
		return Result{
			Message:   err.Error(),
			CheckedAt: start,
			Duration:  time.Since(start),
			Err:       err,
		}
	}

	d, err := c.Client.GetDeployment(ctx, c.Deployment)
	if err != nil {
		return fail(fmt.Errorf("failed to get deployment %s: %w", c.Deployment, err))
	}

	cluster, err := d.Clusters.Select(c.Cluster)
	if err != nil {
		return fail(fmt.Errorf("deployment %s: %w", c.Deployment, err))
	}

	svc := cluster.FindService(c.Service)
	if svc == nil {
		return fail(fmt.Errorf("service %s in deployment %s: %w", c.Service, c.Deployment, types.ErrNotFound))
	}

	phase := svc.PhaseName()
	return Result{
		Healthy:   phase == types.PhaseDone,
		Message:   fmt.Sprintf("%s-%s: %s", d.Name, svc.Breed.Name, phase),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Type returns the health check type
func (c *DeploymentChecker) Type() CheckType {
	return CheckTypeDeploymentPhase
}

// Wait probes checker every interval until it is healthy or timeout passes.
// A probe error ends the wait with a Failed outcome.
func Wait(ctx context.Context, checker Checker, timeout, interval time.Duration) poll.Result {
	logger := log.WithComponent("health")

	return poll.Fixed(string(checker.Type()), timeout, interval).Wait(ctx, func(ctx context.Context) (bool, error) {
		result := checker.Check(ctx)
		if result.Err != nil {
			logger.Warn().Err(result.Err).Msg("Health probe failed")
			return false, result.Err
		}
		logger.Info().Str("status", result.Message).Msg("Checked deployment")
		return result.Healthy, nil
	})
}
