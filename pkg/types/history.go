package types

import "time"

// DeployPath is the branch the orchestrator took
type DeployPath string

const (
	DeployPathCreate DeployPath = "create"
	DeployPathUpdate DeployPath = "update"
)

// DeployOutcome is the final result of a deploy invocation
type DeployOutcome string

const (
	OutcomeCreated   DeployOutcome = "created"
	OutcomeMigrated  DeployOutcome = "migrated"
	OutcomeAborted   DeployOutcome = "aborted"
	OutcomeTimedOut  DeployOutcome = "timed-out"
	OutcomeUnhealthy DeployOutcome = "unhealthy"
	OutcomeFailed    DeployOutcome = "failed"
)

// MigrationRecord is one deploy invocation as kept in the history store
type MigrationRecord struct {
	ID          string
	Deployment  string
	Service     string
	Deployable  string
	Source      string
	Path        DeployPath
	Outcome     DeployOutcome
	Workflow    string
	SourceRoute string
	TargetRoute string
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}
