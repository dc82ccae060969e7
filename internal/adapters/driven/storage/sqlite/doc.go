// Package sqlite provides the SQLite-backed index catalogue.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single Store implements both the write side
// (driven.Indexer) and the read side (driven.IndexCatalogue) of the index.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
//
// # Data Location
//
// The database is stored at <index_dir>/index.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode, so concurrent watch workers can index
// through one Store.
package sqlite
