/*
Package log provides structured logging for Cloudio using zerolog.

The global Logger writes to stderr until Init replaces it. The CLI calls
Init from its root command with the --log-level and --log-json flags:

	log.Init(log.Config{
		Level:      "debug",
		JSONOutput: false,
		Output:     os.Stderr,
	})

Packages log through child loggers that carry their context as fields:

	logger := log.WithDeployment("migrate", "shop")
	logger = log.WithWorkflowID(logger, id)
	logger.Info().Str("gateway", name).Msg("Created migration workflow")

Console output uses RFC3339 timestamps. JSON output is one object per line
with level, component, deployment, time and message fields.
*/
package log
