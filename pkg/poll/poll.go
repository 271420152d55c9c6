package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuemby/cloudio/pkg/metrics"
)

// DefaultInterval is the fixed interval used by WaitFor
const DefaultInterval = time.Second

// Outcome tags how a Wait ended
type Outcome int

const (
	Succeeded Outcome = iota
	Aborted
	TimedOut
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Aborted:
		return "aborted"
	case TimedOut:
		return "timed-out"
	default:
		return "failed"
	}
}

// Result is the tagged outcome of a Wait
type Result struct {
	Outcome Outcome
	// Reason is set for Aborted
	Reason string
	// Err is set for Failed
	Err         error
	Evaluations int
}

// Ok reports whether the condition was met
func (r Result) Ok() bool {
	return r.Outcome == Succeeded
}

func (r Result) String() string {
	switch r.Outcome {
	case Aborted:
		return fmt.Sprintf("aborted: %s", r.Reason)
	case Failed:
		return fmt.Sprintf("failed: %v", r.Err)
	default:
		return r.Outcome.String()
	}
}

// Condition is evaluated until it reports true, returns an error or the
// deadline passes
type Condition func(ctx context.Context) (bool, error)

// AbortError stops a Wait with an Aborted outcome
type AbortError struct {
	Reason string
}

func (e *AbortError) Error() string {
	return "aborted: " + e.Reason
}

// Abort returns an error that makes Wait report Aborted
func Abort(reason string) error {
	return &AbortError{Reason: reason}
}

// Poller evaluates a Condition until a wall-clock deadline
type Poller struct {
	// Name labels the poll evaluation metric
	Name    string
	Timeout time.Duration
	// Interval is the fixed wait between evaluations, or the backoff base
	// when Exponential is set
	Interval    time.Duration
	Exponential bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Fixed creates a poller that waits interval before every evaluation
func Fixed(name string, timeout, interval time.Duration) *Poller {
	return &Poller{
		Name:     name,
		Timeout:  timeout,
		Interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Exponential creates a poller that waits base*2^attempt before every evaluation
func Exponential(name string, timeout, base time.Duration) *Poller {
	p := Fixed(name, timeout, base)
	p.Exponential = true
	return p
}

// WaitFor polls cond every interval until it holds or timeout passes
func WaitFor(ctx context.Context, timeout, interval time.Duration, cond Condition) bool {
	return Fixed("wait_for", timeout, interval).Wait(ctx, cond).Ok()
}

// Delay returns the wait before the given 1-based attempt
func (p *Poller) Delay(attempt int) time.Duration {
	if !p.Exponential {
		return p.Interval
	}
	return p.Interval << attempt
}

// Wait checks the deadline, waits, then evaluates cond, and repeats. A
// deadline already passed on entry means cond is never evaluated. An error
// from cond ends the wait: AbortError yields Aborted, anything else Failed.
func (p *Poller) Wait(ctx context.Context, cond Condition) Result {
	now := p.now
	if now == nil {
		now = time.Now
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	deadline := now().Add(p.Timeout)
	evaluations := 0
	for attempt := 1; ; attempt++ {
		if now().After(deadline) {
			return Result{Outcome: TimedOut, Evaluations: evaluations}
		}

		if err := sleep(ctx, p.Delay(attempt)); err != nil {
			return Result{Outcome: Failed, Err: err, Evaluations: evaluations}
		}

		evaluations++
		metrics.PollEvaluations.WithLabelValues(p.Name).Inc()

		done, err := cond(ctx)
		if err != nil {
			var abort *AbortError
			if errors.As(err, &abort) {
				return Result{Outcome: Aborted, Reason: abort.Reason, Evaluations: evaluations}
			}
			return Result{Outcome: Failed, Err: err, Evaluations: evaluations}
		}
		if done {
			return Result{Outcome: Succeeded, Evaluations: evaluations}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
