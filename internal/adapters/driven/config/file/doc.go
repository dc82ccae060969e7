// Package file provides the TOML configuration store read once at start.
//
// The file lives at <config dir>/config.toml, ~/.ingest by default. Nested
// tables are flattened into dot-notation keys on load and re-nested on save,
// so "checks.cf.command" round-trips as [checks.cf] command = "...".
package file
