// Package events turns the platform events emitted by a migration workflow
// into a poll condition. An event tagged "aborted" wins over one tagged
// "finished"; no tagged event means the workflow is still running.
package events
