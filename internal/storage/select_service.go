// Translates the restricted select dialect onto per-domain backing stores.

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/camvine/fakesdb/internal/models"
)

// selectRe matches the restricted `SELECT <cols> FROM <domain> [rest]`
// shape. The domain token may be quoted with ', " or backtick. Capture
// groups: leading clause, opening quote, domain, closing quote, trailing
// clause.
var selectRe = regexp.MustCompile("(?is)^(\\s*select\\s+.+?\\s+from\\s+)(['\"`]?)([a-zA-Z0-9_.-]+)(['\"`]?)(\\s.*|)$")

// SelectService rewrites and executes restricted select expressions.
type SelectService struct {
	dir *Directory
}

// NewSelectService returns a SelectService over dir.
func NewSelectService(dir *Directory) *SelectService {
	return &SelectService{dir: dir}
}

// SelectItems extracts the domain from expr's FROM clause, rewrites only
// that token to reference the internal table, and executes the result
// against the domain's backing store. Rows come back as items in the
// query's column order. A domain with no backing store yields no rows.
func (s *SelectService) SelectItems(ctx context.Context, expr string) ([]models.Item, error) {
	m := selectRe.FindStringSubmatch(expr)
	if m == nil || m[2] != m[4] {
		return nil, models.InvalidParameterValue("SelectExpression", expr)
	}
	domain := m[3]
	if !s.dir.Exists(domain) {
		return nil, nil
	}
	// Splice the table name into the matched FROM token span only. Other
	// occurrences of the domain name in the expression, such as string
	// literals in a WHERE clause, are left alone.
	query := m[1] + tableName + m[5]

	db, err := s.dir.open(domain)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select against domain %q failed: %w", domain, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var items []models.Item
	values := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		var item models.Item
		for i, col := range cols {
			if !values[i].Valid {
				continue
			}
			if col == keyColumn {
				item.Name = values[i].String
				continue
			}
			item.Attributes = append(item.Attributes, models.Attribute{Name: col, Value: values[i].String})
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
