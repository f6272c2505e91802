// Package orchestrator provides the accessibility-audit pipeline engine.
//
// The engine runs a fixed graph of seven stages (clone, analyze, locate,
// delegate, critique, publish, report) over a single PipelineState that each
// stage reads from and writes to. One conditional edge exists: after the
// critique stage a gate decides between proceeding to publish and looping
// back to delegate, bounded by a per-run attempt cap carried in the state.
//
// Error policy: a stage failure never aborts the run. The engine absorbs
// stage errors and panics into the state's append-only error list and moves
// on; every run reaches the report stage and returns a PipelineState. The
// engine itself fails only when a stage in the graph has no registered
// implementation.
package orchestrator
