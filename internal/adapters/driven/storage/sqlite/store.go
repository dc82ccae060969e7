package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/oceandata/ingest/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/oceandata/ingest/internal/core/domain"
	"github.com/oceandata/ingest/internal/core/ports/driven"
)

// DatabaseName is the file name of the catalogue inside the index directory.
const DatabaseName = "index.db"

// Verify interface compliance.
var (
	_ driven.Indexer        = (*Store)(nil)
	_ driven.IndexCatalogue = (*Store)(nil)
)

// Store is the SQLite index catalogue.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the catalogue in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: index directory is required", domain.ErrInvalidConfig)
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseName)

	// Open database with WAL mode for concurrent workers
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Index upserts an entry keyed by its hierarchy path.
func (s *Store) Index(ctx context.Context, entry domain.IndexEntry) error {
	if entry.Path == "" {
		return fmt.Errorf("%w: index entry has no path", domain.ErrInvalidInput)
	}
	fields, err := marshalMap(entry.Fields)
	if err != nil {
		return fmt.Errorf("marshalling fields: %w", err)
	}
	attrs, err := marshalMap(entry.Attributes)
	if err != nil {
		return fmt.Errorf("marshalling attributes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO index_entries (path, file_name, handler, category, fields, format, attributes, size, sha256, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			file_name = excluded.file_name,
			handler = excluded.handler,
			category = excluded.category,
			fields = excluded.fields,
			format = excluded.format,
			attributes = excluded.attributes,
			size = excluded.size,
			sha256 = excluded.sha256,
			indexed_at = excluded.indexed_at
	`, entry.Path.String(), entry.FileName, entry.Handler, string(entry.Category),
		fields, entry.Format, attrs, entry.Size, entry.SHA256, entry.IndexedAt.UTC())
	if err != nil {
		return fmt.Errorf("indexing %s: %w", entry.Path, err)
	}
	return nil
}

// Get retrieves the entry at path.
func (s *Store) Get(ctx context.Context, path domain.HierarchyPath) (*domain.IndexEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT path, file_name, handler, category, fields, format, attributes, size, sha256, indexed_at
		FROM index_entries WHERE path = ?
	`, path.String())

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", path, err)
	}
	return entry, nil
}

// List returns entries whose path starts with prefix, ordered by path.
func (s *Store) List(ctx context.Context, prefix string) ([]domain.IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, file_name, handler, category, fields, format, attributes, size, sha256, indexed_at
		FROM index_entries WHERE path LIKE ? ESCAPE '\'
		ORDER BY path
	`, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("listing index: %w", err)
	}
	defer rows.Close()

	var entries []domain.IndexEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning index entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.IndexEntry, error) {
	var entry domain.IndexEntry
	var path, category, fields, attrs string
	var indexedAt sql.NullTime
	if err := row.Scan(&path, &entry.FileName, &entry.Handler, &category, &fields,
		&entry.Format, &attrs, &entry.Size, &entry.SHA256, &indexedAt); err != nil {
		return nil, err
	}
	entry.Path = domain.HierarchyPath(path)
	entry.Category = domain.Category(category)
	if indexedAt.Valid {
		entry.IndexedAt = indexedAt.Time.UTC()
	}
	var err error
	if entry.Fields, err = unmarshalMap(fields); err != nil {
		return nil, fmt.Errorf("unmarshalling fields: %w", err)
	}
	if entry.Attributes, err = unmarshalMap(attrs); err != nil {
		return nil, fmt.Errorf("unmarshalling attributes: %w", err)
	}
	return &entry, nil
}

func marshalMap(m map[string]string) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalMap(s string) (map[string]string, error) {
	m := map[string]string{}
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// likePrefix escapes LIKE wildcards in prefix.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
