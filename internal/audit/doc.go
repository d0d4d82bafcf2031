// Package audit defines the audit event model and the sinks the engine's
// async dispatcher can deliver into.
//
// # Architecture boundaries
//
// This package owns the Event shape and Sink implementations. Dispatching —
// buffering, backpressure, drained shutdown — lives in the root package's
// dispatcher, which is the only writer.
//
// # What this package must NOT do
//
//   - Import the root package or any sibling package.
//   - Block an Emit call indefinitely; every sink honors ctx cancellation or
//     is non-blocking by construction.
package audit
