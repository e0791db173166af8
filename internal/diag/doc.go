// Package diag defines the diagnostic model shared by all check stages.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     findings produced by the bootstrap / load / compile / link stages.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, or CLI integration.
// Rendering responsibilities live in internal/diagfmt; orchestration lives
// in internal/checkpipeline.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue. Spans
//     produced from driver info logs cover whole source lines; diagnostics
//     with no source location (environment failures) carry an empty span.
//   - Notes – optional secondary spans/messages for additional context.
//
// Keep the data model deterministic: any new fields should avoid side
// effects, so the CLI and tooling can safely serialise diagnostics for
// replay sessions and testing.
package diag
