// Package trace records structured events about completion requests.
//
// A Tracer travels in a context.Context; the engine opens a span per request
// and per candidate context and emits point events for recovered failures.
//
// # Usage
//
//	yamlassist complete --trace=- --trace-level=detail file.yaml
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes each event as it happens
//   - RingTracer: keeps the most recent events in memory
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: recovered failures only
//   - LevelPhase: request boundaries
//   - LevelDetail: candidate contexts
//   - LevelDebug: everything, including individual proposals
package trace
