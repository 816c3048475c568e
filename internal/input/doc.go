// Package input implements the Matcher, an online trigger-recognition
// automaton driven by the Event Source, and Source, which drives a
// Matcher from a platform EventSource.
//
// The Matcher consumes one event.Event at a time and emits on_match
// callbacks exactly where a naive longest-suffix scan of the typed
// stream against the configured trigger set would. Source copies the
// "Matcher runs synchronously inside the native callback" concurrency
// contract into Go: Serve blocks on the caller's goroutine and feeds
// every decoded event to the Matcher before reading the next one.
package input
