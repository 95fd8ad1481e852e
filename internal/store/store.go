// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the papers, authors, and authorship-pair relations
// in SQLite and exposes the primitives the query and visual stages read
// through.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/internal/validate"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

const defaultDBFile = "publications.db"

// Store manages the publications SQLite database.
type Store struct {
	db     *sql.DB
	tables types.TableNames
	log    diag.Sink
}

// Open opens or creates the database at cfg.DBPath. Table names default to
// types.DefaultTableNames and must be plain identifiers. Tables are created
// on Upload, not here.
func Open(cfg types.StoreConfig, log diag.Sink) (*Store, error) {
	if log == nil {
		log = diag.Nop()
	}
	tables := cfg.Tables
	if tables == (types.TableNames{}) {
		tables = types.DefaultTableNames()
	}
	if err := validate.TableNames(tables); err != nil {
		return nil, err
	}

	path := cfg.DBPath
	if path == "" {
		path = defaultDBFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return &Store{db: db, tables: tables, log: log}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tables returns the relation names in use.
func (s *Store) Tables() types.TableNames {
	return s.tables
}

// TableExists reports whether a table named name exists.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", name, err)
	}
	return n > 0, nil
}

// RequireTables returns a types.ErrSchema error naming the first of the
// configured relations that does not exist.
func (s *Store) RequireTables(ctx context.Context) error {
	for _, name := range []string{s.tables.Papers, s.tables.Authors, s.tables.Pairs} {
		ok, err := s.TableExists(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: table %s does not exist", types.ErrSchema, name)
		}
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// EnsureTable creates name with the given column definitions if it does
// not exist.
func (s *Store) EnsureTable(ctx context.Context, name, schema string) error {
	return ensureTable(ctx, s.db, name, schema)
}

// DropTable removes name if it exists.
func (s *Store) DropTable(ctx context.Context, name string) error {
	return dropTable(ctx, s.db, name)
}

func ensureTable(ctx context.Context, ex execer, name, schema string) error {
	if err := validate.TableName(name); err != nil {
		return err
	}
	if _, err := ex.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (%s)`, name, schema)); err != nil {
		return fmt.Errorf("creating table %s: %w", name, err)
	}
	return nil
}

func dropTable(ctx context.Context, ex execer, name string) error {
	if err := validate.TableName(name); err != nil {
		return err
	}
	if _, err := ex.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, name)); err != nil {
		return fmt.Errorf("dropping table %s: %w", name, err)
	}
	return nil
}

// Query runs a read statement and returns its rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isNoTable(err) || isNoColumn(err) {
			return nil, fmt.Errorf("%w: %v", types.ErrSchema, err)
		}
		return nil, fmt.Errorf("querying: %w", err)
	}
	return rows, nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if err := validate.TableName(table); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %q`, table)).Scan(&n); err != nil {
		if isNoTable(err) {
			return 0, fmt.Errorf("%w: table %s does not exist", types.ErrSchema, table)
		}
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

func isNoTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func isNoColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such column")
}
