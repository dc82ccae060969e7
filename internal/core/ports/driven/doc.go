// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - Handler: Classifies, resolves and pre-processes one handler family
//   - FormatProbe: The mandatory structural check
//   - CheckRegistry: Resolves named compliance checks
//   - ObjectStore: Durable, no-overwrite object storage
//   - Mirror: Overwrite-tolerant serving filesystem
//   - Reporter: Emits the report of a rejected or failed file
//   - DiagnosticLog: File-scoped append-only check diagnostics
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - Indexer: Content indexing. Without it, the index option is ignored.
//   - Quarantine: Keeps a copy of failed files for investigation.
//   - Metrics: Outcome and duration metrics.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or handler package
package driven
