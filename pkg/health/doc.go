/*
Package health checks whether a deployed service is ready.

A Checker returns a Result for one probe. DeploymentChecker fetches the
deployment, selects the cluster (by index or name, the first by default),
finds the service whose breed has the service name and reports healthy when
its phase is "Done":

	checker := health.NewDeploymentChecker(platform, "shop", "web-v2", "")
	result := health.Wait(ctx, checker, 30*time.Second, health.DefaultInterval)
	if !result.Ok() {
		return fmt.Errorf("deployment not ready: %s", result)
	}

Wait probes every interval until the service is healthy or the timeout
passes. A probe error (the deployment vanished, the cluster or service is
missing, the platform is unreachable) ends the wait immediately with a
Failed outcome rather than being retried.
*/
package health
