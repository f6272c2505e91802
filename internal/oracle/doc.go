// Package oracle provides the LLM client used by every pipeline stage.
//
// The oracle is treated as a black box: each call sends a system persona
// plus a user template and expects free text containing one JSON object or
// array, optionally wrapped in a markdown code fence. Response parsing is
// tolerant but bounded: one fence layer and an optional leading "json"
// language tag are stripped before decoding; anything else is the caller's
// problem and maps to a stage-appropriate fallback.
//
// Requests are gated by a token-bucket rate limiter and retried with
// exponential backoff on transient failures (429, 5xx, network errors).
package oracle
