// Package agents implements the pipeline stages: cloning and source
// enumeration, oracle-backed analysis, location and fixing, critique with a
// configurable fail-open policy, branch/PR publication, and report writing.
//
// Every stage wraps exactly one oracle or repository interaction behind the
// orchestrator.Stage contract. Stages degrade instead of failing: oracle
// errors produce documented fallback values and the run always continues.
package agents
