// Package scheduler implements the productivity heuristics: free-slot
// search over a calendar, task prioritization and email triage. All
// operations are pure functions over normalized graph records; the
// only ambient input is the clock, injectable for deterministic tests.
package scheduler

import "time"

// Service evaluates scheduling and prioritization heuristics. A single
// instance is constructed by the composition root and shared; it holds
// no mutable state, so concurrent use is safe.
type Service struct {
	now func() time.Time
}

// New returns a Service using the system clock.
func New() *Service {
	return &Service{now: time.Now}
}

// NewWithClock returns a Service with a fixed clock source.
func NewWithClock(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{now: now}
}
