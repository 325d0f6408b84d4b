// Package events defines the optimizer related events emitted on the event bus.
//
// Available event types:
//   - RunCompletedEvent: the solver produced an optimal schedule
//   - RunFailedEvent: the solver returned no usable solution
package events
