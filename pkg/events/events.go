package events

import (
	"context"
	"fmt"

	"github.com/cuemby/cloudio/pkg/poll"
	"github.com/cuemby/cloudio/pkg/types"
)

const (
	// TypeDeployment is the event type emitted by migration workflows
	TypeDeployment = "deployment"

	TagFinished = "finished"
	TagAborted  = "aborted"
)

// Signal is what a set of workflow events says about the migration
type Signal int

const (
	Pending Signal = iota
	Finished
	Aborted
)

func (s Signal) String() string {
	switch s {
	case Finished:
		return TagFinished
	case Aborted:
		return TagAborted
	default:
		return "pending"
	}
}

// Classify returns Aborted if any event is tagged aborted, else Finished if
// any is tagged finished, else Pending.
func Classify(list []types.Event) Signal {
	finished := false
	for _, e := range list {
		if e.HasTag(TagAborted) {
			return Aborted
		}
		if e.HasTag(TagFinished) {
			finished = true
		}
	}
	if finished {
		return Finished
	}
	return Pending
}

// Lister lists platform events by type and tags
type Lister interface {
	ListEvents(ctx context.Context, eventType string, tags ...string) ([]types.Event, error)
}

// WorkflowCondition polls the deployment events tagged with workflowID.
// Finished satisfies the condition and Aborted aborts the poll.
func WorkflowCondition(l Lister, workflowID string) poll.Condition {
	return func(ctx context.Context) (bool, error) {
		list, err := l.ListEvents(ctx, TypeDeployment, workflowID)
		if err != nil {
			return false, fmt.Errorf("failed to list events for workflow %s: %w", workflowID, err)
		}

		switch Classify(list) {
		case Aborted:
			return false, poll.Abort(fmt.Sprintf("workflow %s emitted an %s event", workflowID, TagAborted))
		case Finished:
			return true, nil
		default:
			return false, nil
		}
	}
}
