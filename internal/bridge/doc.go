// Package bridge hands work from request-serving goroutines to a
// host-controlled execution context.
//
// Hosts that keep mutable state on a single thread implement Executor,
// or use the bundled Loop, which serializes every task on the one
// goroutine that calls Run. RunOn is the caller-side half: it submits a
// function, waits for its result, and converts a panic inside the
// function into an ordinary error.
package bridge
