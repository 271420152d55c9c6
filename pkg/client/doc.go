/*
Package client is the REST facade over the Vamp platform API.

The client is configured from the environment:

	VAMP_URL              base API URL (default http://localhost:8080/api/v1)
	VAMP_TOKEN            optional bearer token
	VAMP_REQUEST_TIMEOUT  per-request timeout (default 30s)

It exposes one method per platform operation:

	CreateBlueprint   POST   /blueprints
	GetDeployment     GET    /deployments/{name}
	Deploy            POST   /deployments/{name}   {"reference": blueprint}
	Merge             PUT    /deployments/{name}   {"reference": blueprint}
	Undeploy          DELETE /deployments/{name}   {"reference": blueprint}
	GetGateway        GET    /gateways/{name}
	CreateGateway     POST   /gateways
	CreateWorkflow    POST   /workflows
	DeleteWorkflow    DELETE /workflows/{name}
	ListEvents        GET    /events?type=...&tag=...

Gateway names contain '/' separators, which are kept in the path while
every segment is escaped.

# Errors

Non-2xx responses return a *PlatformError carrying the status code and
response body. A 404 matches types.ErrNotFound, which is how the deployer
tells a missing deployment from an unreachable platform:

	_, err := c.GetDeployment(ctx, "shop")
	switch {
	case errors.Is(err, types.ErrNotFound):
		// create path
	case err != nil:
		return err
	}

Every request is counted and timed in the platform request metrics.
*/
package client
