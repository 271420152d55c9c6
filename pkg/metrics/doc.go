/*
Package metrics defines the Prometheus metrics recorded by Cloudio.

Cloudio is a short-lived CLI, so metrics are not served over HTTP. With
--metrics-file the deploy command writes the default registry in text
exposition format once the run ends, for the node exporter textfile
collector to pick up.

# Metrics

	cloudio_platform_requests_total{operation,status}
	cloudio_platform_request_duration_seconds{operation}
	cloudio_migrations_total{path,outcome}
	cloudio_stage_duration_seconds{stage}
	cloudio_poll_evaluations_total{poller}

Status is the HTTP status code, or "error" when no response was received.
Path is create, update or unknown; outcome is one of the types.DeployOutcome
values.

# Timing

	timer := metrics.NewTimer()
	err := stage.run(ctx)
	timer.ObserveDurationVec(metrics.StageDuration, stage.name)
*/
package metrics
