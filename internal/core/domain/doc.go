// Package domain defines the core business entities for the ingest pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - IncomingFile: One file instance handed to a single invocation
//   - Classification: The structural match of a file name against a ruleset
//   - HierarchyPath: The logical destination under the production namespace
//   - CheckOutcome: Results of the structural probe and named checks
//   - PublishRecord: What was sent to which destination
//   - Outcome and Report: The terminal state of an invocation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
