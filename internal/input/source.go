package input

import (
	"context"
	"fmt"

	"github.com/dshills/expando/internal/event"
)

// EventSource is the contract a platform bridge (internal/platform/*)
// must satisfy to feed the Matcher. It mirrors the native FFI boundary:
// CheckEnvironment probes whether the tap can be installed at all,
// Run blocks for the lifetime of the tap and invokes emit for every
// decoded event in typing order, and Close releases the native hook.
type EventSource interface {
	CheckEnvironment() error
	Run(ctx context.Context, emit func(event.Event)) error
	Close() error
}

// ErrEnvironmentUnavailable wraps a CheckEnvironment failure so callers
// (cmd/expando) can map it to the documented exit code 100 without
// string-matching.
type ErrEnvironmentUnavailable struct {
	Cause error
}

func (e *ErrEnvironmentUnavailable) Error() string {
	return fmt.Sprintf("input: environment unavailable: %v", e.Cause)
}

func (e *ErrEnvironmentUnavailable) Unwrap() error { return e.Cause }

// Source drives a Matcher from an EventSource. It owns no threads of its
// own: Serve runs on whatever goroutine the caller chooses and blocks for
// the source's lifetime, exactly like the native eventloop it wraps.
type Source struct {
	backend EventSource
	matcher *Matcher
}

// NewSource pairs a platform EventSource with a Matcher. Every decoded
// event is fed to the Matcher synchronously, on the same goroutine that
// calls Serve, matching the "Matcher runs inside the native callback"
// contract the concurrency model assumes.
func NewSource(backend EventSource, matcher *Matcher) *Source {
	return &Source{backend: backend, matcher: matcher}
}

// Serve checks the environment, then runs the backend's event loop until
// ctx is cancelled or the backend returns. A CheckEnvironment failure is
// returned wrapped in ErrEnvironmentUnavailable.
func (s *Source) Serve(ctx context.Context) error {
	if err := s.backend.CheckEnvironment(); err != nil {
		return &ErrEnvironmentUnavailable{Cause: err}
	}
	return s.backend.Run(ctx, s.matcher.Feed)
}

// Close releases the underlying native hook.
func (s *Source) Close() error {
	return s.backend.Close()
}
