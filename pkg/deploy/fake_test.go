package deploy

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuemby/cloudio/pkg/types"
)

// fakePlatform is an in-memory platform. Deploy and Merge add the service
// to the first cluster with phase servicePhase.
type fakePlatform struct {
	mu sync.Mutex

	deployments  map[string]*types.Deployment
	gateways     map[string]*types.Gateway
	servicePhase string
	getErr       error

	// eventsAfter is the number of ListEvents calls answered with no events
	// before events is returned
	eventsAfter int
	events      []types.Event
	eventCalls  int

	deleteWorkflowErr error

	blueprints       []*types.Blueprint
	createdGateways  []*types.Gateway
	workflows        []*types.Workflow
	deletedWorkflows []string
	undeployed       []string
	calls            []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		deployments:  make(map[string]*types.Deployment),
		gateways:     make(map[string]*types.Gateway),
		servicePhase: types.PhaseDone,
	}
}

func (f *fakePlatform) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakePlatform) CreateBlueprint(_ context.Context, b *types.Blueprint) (*types.Blueprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create_blueprint")
	f.blueprints = append(f.blueprints, b)
	return b, nil
}

func (f *fakePlatform) GetDeployment(_ context.Context, name string) (*types.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get_deployment")
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.deployments[name]
	if !ok {
		return nil, fmt.Errorf("deployment %s: %w", name, types.ErrNotFound)
	}
	return d, nil
}

func (f *fakePlatform) addService(deployment, service string) *types.Deployment {
	d, ok := f.deployments[deployment]
	if !ok {
		d = &types.Deployment{Name: deployment, Clusters: types.Clusters{{Name: "frontend"}}}
		f.deployments[deployment] = d
	}
	d.Clusters[0].Services = append(d.Clusters[0].Services, types.Service{
		Breed:  types.Breed{Name: service},
		Status: &types.ServiceStatus{Phase: types.Phase{Name: f.servicePhase}},
	})
	return d
}

func (f *fakePlatform) Deploy(_ context.Context, deployment, blueprint string) (*types.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("deploy")
	if _, ok := f.deployments[deployment]; ok {
		return nil, fmt.Errorf("deployment %s already exists", deployment)
	}
	return f.addService(deployment, blueprint), nil
}

func (f *fakePlatform) Merge(_ context.Context, deployment, blueprint string) (*types.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("merge")
	return f.addService(deployment, blueprint), nil
}

func (f *fakePlatform) Undeploy(_ context.Context, deployment, blueprint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("undeploy")
	f.undeployed = append(f.undeployed, blueprint)
	return nil
}

func (f *fakePlatform) GetGateway(_ context.Context, name string) (*types.Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get_gateway")
	g, ok := f.gateways[name]
	if !ok {
		return nil, fmt.Errorf("gateway %s: %w", name, types.ErrNotFound)
	}
	return g, nil
}

func (f *fakePlatform) CreateGateway(_ context.Context, g *types.Gateway) (*types.Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create_gateway")
	f.createdGateways = append(f.createdGateways, g)
	return g, nil
}

func (f *fakePlatform) CreateWorkflow(_ context.Context, w *types.Workflow) (*types.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create_workflow")
	f.workflows = append(f.workflows, w)
	return w, nil
}

func (f *fakePlatform) DeleteWorkflow(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete_workflow")
	f.deletedWorkflows = append(f.deletedWorkflows, name)
	return f.deleteWorkflowErr
}

func (f *fakePlatform) ListEvents(_ context.Context, eventType string, tags ...string) ([]types.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list_events")
	f.eventCalls++
	if f.eventCalls <= f.eventsAfter {
		return nil, nil
	}

	var out []types.Event
	for _, e := range f.events {
		if eventType != "" && e.Type != eventType {
			continue
		}
		matches := true
		for _, tag := range tags {
			if !e.HasTag(tag) {
				matches = false
			}
		}
		if matches {
			out = append(out, e)
		}
	}
	return out, nil
}

// withMigrationGateways installs the external gateway of deployment and the
// inner gateway routing to oldService and newService
func (f *fakePlatform) withMigrationGateways(deployment, oldService, newService string) {
	inner := deployment + "/frontend/webport"
	f.gateways[deployment] = &types.Gateway{
		Name:   deployment,
		Routes: map[string]any{inner: map[string]any{"weight": "100%"}},
	}
	f.gateways[inner] = &types.Gateway{
		Name: inner,
		Routes: map[string]any{
			deployment + "/frontend/" + newService + "/webport": map[string]any{"weight": "0%"},
			deployment + "/frontend/" + oldService + "/webport": map[string]any{"weight": "100%"},
		},
	}
}
