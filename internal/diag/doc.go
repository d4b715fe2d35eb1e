// Package diag defines the diagnostic model shared by the front end, the
// bundle passes and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// # Emitting diagnostics
//
// Producers report through a Reporter so emission is decoupled from storage.
// BagReporter collects into a Bag, DedupReporter drops repeats and
// FilterReporter drops whole code classes (the bundler uses it to silence
// "used before its declaration" once cross-unit reordering is active).
//
// Package diag does no formatting and no IO; rendering lives in
// internal/diagfmt.
package diag
