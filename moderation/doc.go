// Moderation flag lifecycle and review engine.
//
// This package (`github.com/immipath/modflag/moderation`) models content
// flagged by deterministic keyword rules as a multi-state entity: flags are
// created pending, move through role-gated review transitions (approve,
// remove, escalate), can be reverted to pending, and can be soft-deleted and
// restored for compliance-driven retention. Every action appends to an
// append-only audit history. Aggregate summaries and per-reviewer load scores
// are derived from the same store.
//
// See `cmd/modflagd` for the HTTP daemon built on this package.
package moderation
