// Attribute reads and writes within one domain's dynamic attribute table.

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/camvine/fakesdb/internal/models"
)

// ItemService performs put/get/delete of item attributes. The per-domain
// schema is the union of all attribute names ever put; it only grows.
type ItemService struct {
	dir *Directory
}

// NewItemService returns an ItemService over dir.
func NewItemService(dir *Directory) *ItemService {
	return &ItemService{dir: dir}
}

// PutAttributes writes attrs for itemKey, replacing any previous values
// for the same names (last write wins per name). New attribute names are
// added to the schema as nullable columns first. An empty attrs is a
// no-op. Putting into a valid domain with no backing store creates one,
// as the real service's eventually-consistent writes appear to; a
// malformed domain name is a fault, never a path.
func (s *ItemService) PutAttributes(ctx context.Context, domain, itemKey string, attrs map[string]string) error {
	if !domainNameRe.MatchString(domain) {
		return models.InvalidParameterValue("DomainName", domain)
	}
	if len(attrs) == 0 {
		return nil
	}
	db, err := s.dir.open(domain)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := ensureTable(ctx, db); err != nil {
		return err
	}
	names := slices.Sorted(maps.Keys(attrs))
	if err := ensureColumns(ctx, db, names); err != nil {
		return err
	}

	cols := []string{quoteIdent(keyColumn)}
	placeholders := []string{"?"}
	sets := make([]string, 0, len(names))
	args := []any{itemKey}
	for _, n := range names {
		q := quoteIdent(n)
		cols = append(cols, q)
		placeholders = append(placeholders, "?")
		sets = append(sets, q+" = excluded."+q)
		args = append(args, attrs[n])
	}
	// Single-statement upsert keyed on the item key: one commit per put,
	// and untouched columns keep their previous values.
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		tableName,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		keyColumn,
		strings.Join(sets, ", "))
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to put attributes for %q: %w", itemKey, err)
	}
	return nil
}

// BatchPutAttributes applies PutAttributes once per item, in order. It is
// best-effort sequential: a failed item does not roll back prior items.
func (s *ItemService) BatchPutAttributes(ctx context.Context, domain string, items []models.ReplaceableItem) error {
	for _, item := range items {
		if err := s.PutAttributes(ctx, domain, item.Name, item.Attributes); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAttributes removes all rows for itemKey. There is no
// partial-attribute delete; requests naming attribute subsets remove the
// whole item. A missing domain or item is silent success.
func (s *ItemService) DeleteAttributes(ctx context.Context, domain, itemKey string) error {
	if !s.dir.Exists(domain) {
		return nil
	}
	db, err := s.dir.open(domain)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", tableName, quoteIdent(keyColumn))
	if _, err := db.ExecContext(ctx, query, itemKey); err != nil {
		if isNoSuchTable(err) {
			return nil
		}
		return fmt.Errorf("failed to delete attributes for %q: %w", itemKey, err)
	}
	return nil
}

// GetAttributes returns the attributes of itemKey, excluding the internal
// key column and any unset columns. A missing domain or item yields an
// empty map, never an error.
func (s *ItemService) GetAttributes(ctx context.Context, domain, itemKey string) (map[string]string, error) {
	attrs := map[string]string{}
	if !s.dir.Exists(domain) {
		return attrs, nil
	}
	db, err := s.dir.open(domain)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? LIMIT 1", tableName, quoteIdent(keyColumn))
	rows, err := db.QueryContext(ctx, query, itemKey)
	if err != nil {
		if isNoSuchTable(err) {
			return attrs, nil
		}
		return nil, fmt.Errorf("failed to get attributes for %q: %w", itemKey, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		return attrs, rows.Err()
	}
	values := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, col := range cols {
		if col == keyColumn || !values[i].Valid {
			continue
		}
		attrs[col] = values[i].String
	}
	return attrs, rows.Err()
}

// ensureColumns adds any attribute names missing from the schema as
// nullable TEXT columns. Column creation is idempotent: a lost race with a
// concurrent writer adding the same name is not an error.
func ensureColumns(ctx context.Context, db *sql.DB, names []string) error {
	existing, err := tableColumns(ctx, db)
	if err != nil {
		return err
	}
	for _, name := range names {
		if slices.Contains(existing, name) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", tableName, quoteIdent(name))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("failed to add column %q: %w", name, err)
		}
	}
	return nil
}
