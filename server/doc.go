// Package server exposes the model execution engine over the Model Context
// Protocol.
//
// Three tools are registered:
//
//   - run_model: execute one model invocation and return its Result.
//   - run_model_batch: execute many invocations under a concurrency ceiling,
//     returning results in submission order.
//   - list_models: list the model identifiers available to the runtime.
//
// Validation failures surface as tool errors; subprocess outcomes (timeouts,
// spawn failures, non-zero exits) are part of the structured result. The
// server holds no per-request state: all side effects flow through the
// runner's telemetry recorder.
package server
