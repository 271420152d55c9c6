/*
Package config loads the deployment file.

The file is YAML, rendered first as a template against the environment:
every {{ NAME }} tag is replaced by the value of NAME, or removed when NAME
is unset. Keys that are absent keep their defaults, however deeply nested:

	deployment:
	  timeout: 30          # seconds to wait for the service phase "Done"
	  strategy:
	    name: canary       # workflow breed run for migrations
	    step: 25           # traffic percentage moved each period
	    period: 15         # seconds between steps
	    timeout: 60        # seconds to wait for the workflow to finish
	    metric:            # optional, name and expression together
	      name: response-time
	      expression: avg < 200
	vamp:
	  blueprint: {...}
	  gateway: {...}

The result is validated once. Every problem is reported in a single error
wrapping types.ErrConfiguration.
*/
package config
