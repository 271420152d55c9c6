package deploy

import (
	"context"

	"github.com/cuemby/cloudio/pkg/types"
)

// Platform is the set of platform operations the deployer drives.
// *client.Client satisfies it.
type Platform interface {
	CreateBlueprint(ctx context.Context, blueprint *types.Blueprint) (*types.Blueprint, error)

	GetDeployment(ctx context.Context, name string) (*types.Deployment, error)
	Deploy(ctx context.Context, deployment, blueprint string) (*types.Deployment, error)
	Merge(ctx context.Context, deployment, blueprint string) (*types.Deployment, error)
	Undeploy(ctx context.Context, deployment, blueprint string) error

	GetGateway(ctx context.Context, name string) (*types.Gateway, error)
	CreateGateway(ctx context.Context, gateway *types.Gateway) (*types.Gateway, error)

	CreateWorkflow(ctx context.Context, workflow *types.Workflow) (*types.Workflow, error)
	DeleteWorkflow(ctx context.Context, name string) error

	ListEvents(ctx context.Context, eventType string, tags ...string) ([]types.Event, error)
}

// Recorder persists deploy history
type Recorder interface {
	SaveRecord(record *types.MigrationRecord) error
}
