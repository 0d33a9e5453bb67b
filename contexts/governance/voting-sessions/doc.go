// Package votingsessions implements the proposal voting engine inside the
// governance context.
//
// The module owns the voting-session lifecycle (open, scheduled closure,
// idempotent close), the concurrency-safe vote-casting path, and result
// tallies. Closure is driven by delayed queue instructions consumed by a
// single serialized worker, backed by a reconciliation sweep for sessions
// whose instruction was lost. Business rules live in application/domain
// layers with infrastructure behind ports and adapters.
package votingsessions
