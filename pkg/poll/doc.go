/*
Package poll evaluates a condition until it holds, aborts, fails or runs out
of time.

A Poller sleeps one interval before every evaluation, so a condition is
never checked at time zero. The deadline is checked before each sleep:

	Fixed("health", 30*time.Second, 5*time.Second)       // 5s, 5s, 5s, ...
	Exponential("events", 30*time.Second, time.Second)   // 2s, 4s, 8s, ...

Wait returns a Result tagged with one of four outcomes:

  - Succeeded: the condition returned true
  - Aborted: the condition returned an error made by Abort
  - TimedOut: the deadline passed
  - Failed: the condition returned any other error, or ctx was done

Callers switch on Result.Outcome instead of inspecting errors. Every
evaluation increments cloudio_poll_evaluations_total for the poller name.
*/
package poll
