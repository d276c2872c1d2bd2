// Package trace records what the compiler is doing, for diagnosing slow or
// aborted compilations.
//
// Enable it from the command line:
//
//	condflow diag --trace=- --trace-level=unit Main.java
//
// Tracers:
//
//   - Nop: disabled tracing, no allocation per event
//   - StreamTracer: writes every event as it happens
//   - RingTracer: keeps the last events in memory and dumps them when a
//     unit aborts on an internal error
//   - MultiTracer: fans out to several tracers
//
// Levels, from quiet to verbose: off, error (ring dumps only), phase
// (driver and pass boundaries), unit (one span per compiled method) and
// debug (statement-level events).
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer span.End("")
package trace
