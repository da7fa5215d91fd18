// Package adapter bridges typed handler functions and the raw string
// handler contract of the route table.
//
// Handlers that work with structured request or response values wrap
// themselves with Typed, TypedRequest, or TypedResponse; the adapter
// owns the codec round trip and classifies its failures so the
// dispatcher can map them to response statuses. Raw string handlers
// register as-is.
package adapter
