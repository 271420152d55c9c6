/*
Package deploy sequences a canary deployment against the platform.

A single Run either creates a deployment from the blueprint in the
deployment file, or merges a new service into a running deployment and
migrates gateway traffic onto it. The package never talks HTTP itself: it
drives a Platform, which *client.Client satisfies and tests replace with an
in-memory fake.

# Architecture

	┌──────────────────────── DEPLOYER.Run ────────────────────────┐
	│                                                               │
	│   GetDeployment(deployment)                                   │
	│        │                                                      │
	│        ├── 404 ──────────────┐          ┌──── found ─────┐    │
	│        │                     ▼          ▼                │    │
	│        │              ┌───────────┐ ┌───────────┐        │    │
	│        │              │ blueprint │ │ blueprint │        │    │
	│        │              ├───────────┤ ├───────────┤        │    │
	│        │              │  deploy   │ │   merge   │        │    │
	│        │              ├───────────┤ ├───────────┤        │    │
	│        │              │  gateway  │ │  health   │        │    │
	│        │              ├───────────┤ ├───────────┤        │    │
	│        │              │  health   │ │  migrate  │        │    │
	│        │              └───────────┘ └───────────┘        │    │
	│        │                                                  │    │
	│        └── other error: fail before any change            │    │
	│                                                               │
	│   every Run ends with one history record and one             │
	│   cloudio_migrations_total increment                         │
	└───────────────────────────────────────────────────────────────┘

Stages run in order and the first error ends the pipeline. Each stage is
timed into cloudio_stage_duration_seconds.

# Blueprint

CreateBlueprint copies nothing: the blueprint loaded from the deployment file
is renamed to the service and, in the selected cluster, the first breed whose
name starts with the --breed prefix gets the service name and the new
deployable. Fields the package does not model (ports, scale, environment
variables) travel through to the platform unchanged.

# Gateway

On the create path the descriptor gateway is submitted with the deployment
segment of its route key replaced by the deployment name:

	placeholder/frontend/webport  ->  shop/frontend/webport

Only the first route (in sorted order) is used. A deployment file without a
gateway section skips this stage.

# Migration

The Migrator works from the deployment's external gateway. Its first route
names the inner gateway, whose two routes are split into:

  - target: the route with a segment equal to the new service
  - source: the other one

Anything but exactly one of each fails before a workflow is created. The
strategy workflow is then created with the routes, step and period in its
environment and the deployment events tagged with the workflow id are polled:

	finished  ->  delete workflow, drain, undeploy source service
	aborted   ->  delete workflow, undeploy new service
	timeout   ->  delete workflow, undeploy new service

Aborted and timed-out migrations are not errors of Run. They are reported in
the Report outcome and the history record, and logged at error level.
Workflow deletion and rollback run with a context detached from
cancellation so an interrupted run still cleans up.

# Usage

	cfg, err := config.Load(".cloudio.yml", config.Environ())
	if err != nil {
		return err
	}

	d := deploy.NewDeployer(platformClient, cfg).WithRecorder(store)
	report, err := d.Run(ctx, deploy.Options{
		Deployment: "shop",
		Service:    "web-v2",
		Breed:      "web",
		Deployable: "registry/web:2.0.0",
	})
	if err != nil {
		return err
	}
	fmt.Println(report.Outcome)

# Intervals

Health checks and workflow event polls run every 5 seconds. The drain
period before the source service is removed is also 5 seconds. These are
fields of Deployer and Migrator, not settings of the deployment file.
*/
package deploy
