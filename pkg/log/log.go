package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Logger is the global logger instance. It writes JSON to stderr until
	// Init replaces it.
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// levels are the values accepted by --log-level
var levels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// Config holds logging configuration
type Config struct {
	// Level is one of debug, info, warn or error. Anything else means info.
	Level      string
	JSONOutput bool
	Output     io.Writer
}

// Init sets the global level and replaces Logger
func Init(cfg Config) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSONOutput {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	Logger = zerolog.New(out).With().Timestamp().Logger()
}

// WithComponent creates a child logger with component field
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithDeployment creates a child logger scoped to a component and deployment
func WithDeployment(component, deployment string) zerolog.Logger {
	return Logger.With().
		Str("component", component).
		Str("deployment", deployment).
		Logger()
}

// WithWorkflowID creates a child logger with workflow_id field
func WithWorkflowID(l zerolog.Logger, workflowID string) zerolog.Logger {
	return l.With().Str("workflow_id", workflowID).Logger()
}
