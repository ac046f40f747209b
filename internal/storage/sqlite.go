// SQLite helpers shared by the domain directory, item and select services.

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // database/sql driver
)

// tableName is the fixed table inside every domain's backing store.
const tableName = "datatable"

// keyColumn holds the item key. It is internal and excluded from
// GetAttributes results.
const keyColumn = "sdbkey"

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS datatable (sdbkey TEXT)`
	createIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS datatable_sdbkey ON datatable (sdbkey)`
)

// openDB opens the SQLite file at path. Every operation opens its own
// handle and closes it before returning; there is no pooling or caching,
// so concurrent writers rely on SQLite's own locking.
func openDB(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(10000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open domain store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// ensureTable creates the attribute table and its key index if the backing
// store is still empty. Safe to call repeatedly.
func ensureTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create attribute table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("failed to create key index: %w", err)
	}
	return nil
}

// tableColumns returns the current column names in table order.
func tableColumns(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info('datatable')`)
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// quoteIdent quotes s as a SQL identifier. Attribute names come straight
// from clients and must never be interpolated raw.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// isDuplicateColumn reports whether err is SQLite's duplicate-column error.
// Two writers racing to add the same new attribute name both succeed under
// "if exists" semantics; the loser's error is swallowed.
func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// isNoSuchTable reports whether err means the attribute table is absent,
// which can happen when an empty domain file was created out of band.
func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
