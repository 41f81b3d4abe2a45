package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// Row is one stored version (or component row) at the engine boundary:
// attribute-level keys, normalized Go values.
type Row map[string]any

// Order is one ORDER BY term, referencing an attribute-level key.
type Order struct {
	Field string
	Desc  bool
}

// Descriptor describes one engine call: filter, payload, ordering, paging.
type Descriptor struct {
	Where   map[string]any
	Data    map[string]any
	OrderBy []Order
	Limit   int
	Offset  int
}

// Query executes CRUD against one content type's (or component's) table.
type Query struct {
	engine *Engine
	ct     *schema.ContentType
}

// ContentType returns the descriptor this query addresses.
func (q *Query) ContentType() *schema.ContentType {
	return q.ct
}

// FindMany returns every row matching the descriptor.
func (q *Query) FindMany(ctx context.Context, d Descriptor) ([]Row, error) {
	sql, args, err := q.selectSQL(d)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := q.engine.db.WithContext(ctx).Raw(sql, args...).Scan(&raw).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", q.ct.UID, err)
	}

	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, q.rowFromColumns(r))
	}
	return rows, nil
}

// FindOne returns the first row matching the descriptor, or nil.
func (q *Query) FindOne(ctx context.Context, d Descriptor) (Row, error) {
	d.Limit = 1
	rows, err := q.FindMany(ctx, d)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Count returns the number of rows matching the descriptor's filter.
func (q *Query) Count(ctx context.Context, d Descriptor) (int64, error) {
	where, args, err := q.compileWhere(d.Where)
	if err != nil {
		return 0, err
	}

	sql := "SELECT COUNT(*) FROM " + q.ct.TableName()
	if where != "" {
		sql += " WHERE " + where
	}

	var n int64
	if err := q.engine.db.WithContext(ctx).Raw(sql, args...).Row().Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.ct.UID, err)
	}
	return n, nil
}

// Create inserts one row and returns it as stored. Engine timestamps are
// stamped here when the payload does not carry them.
func (q *Query) Create(ctx context.Context, d Descriptor) (Row, error) {
	data := make(map[string]any, len(d.Data)+2)
	for k, v := range d.Data {
		data[k] = v
	}
	now := time.Now().UTC()
	if _, ok := data["createdAt"]; !ok {
		data["createdAt"] = now
	}
	if _, ok := data["updatedAt"]; !ok {
		data["updatedAt"] = now
	}

	cols, args, err := q.columnValues(data)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("create %s: empty data", q.ct.UID)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		q.ct.TableName(), strings.Join(cols, ","), placeholders, schema.ColumnID)

	var id int64
	if err := q.engine.db.WithContext(ctx).Raw(sql, args...).Row().Scan(&id); err != nil {
		return nil, fmt.Errorf("create %s: %w", q.ct.UID, err)
	}

	return q.FindOne(ctx, Descriptor{Where: map[string]any{"id": id}})
}

// Update applies the payload to every row matching the filter and returns
// the first updated row re-read from the store.
func (q *Query) Update(ctx context.Context, d Descriptor) (Row, error) {
	if len(d.Where) == 0 {
		return nil, fmt.Errorf("update %s: empty filter", q.ct.UID)
	}

	data := make(map[string]any, len(d.Data)+1)
	for k, v := range d.Data {
		data[k] = v
	}
	if _, ok := data["updatedAt"]; !ok {
		data["updatedAt"] = time.Now().UTC()
	}

	cols, args, err := q.columnValues(data)
	if err != nil {
		return nil, err
	}

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = col + " = ?"
	}

	where, whereArgs, err := q.compileWhere(d.Where)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", q.ct.TableName(), strings.Join(sets, ", "))
	if where != "" {
		sql += " WHERE " + where
	}
	args = append(args, whereArgs...)

	if err := q.engine.db.WithContext(ctx).Exec(sql, args...).Error; err != nil {
		return nil, fmt.Errorf("update %s: %w", q.ct.UID, err)
	}

	return q.FindOne(ctx, Descriptor{Where: d.Where})
}

// Delete removes every row matching the filter and returns the removed
// count.
func (q *Query) Delete(ctx context.Context, d Descriptor) (int64, error) {
	if len(d.Where) == 0 {
		return 0, fmt.Errorf("delete %s: empty filter", q.ct.UID)
	}

	where, args, err := q.compileWhere(d.Where)
	if err != nil {
		return 0, err
	}

	sql := "DELETE FROM " + q.ct.TableName()
	if where != "" {
		sql += " WHERE " + where
	}

	res := q.engine.db.WithContext(ctx).Exec(sql, args...)
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s: %w", q.ct.UID, res.Error)
	}
	return res.RowsAffected, nil
}

func (q *Query) selectSQL(d Descriptor) (string, []any, error) {
	where, args, err := q.compileWhere(d.Where)
	if err != nil {
		return "", nil, err
	}

	sql := "SELECT * FROM " + q.ct.TableName()
	if where != "" {
		sql += " WHERE " + where
	}

	if len(d.OrderBy) > 0 {
		terms := make([]string, 0, len(d.OrderBy))
		for _, o := range d.OrderBy {
			col, err := q.columnFor(o.Field)
			if err != nil {
				return "", nil, err
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms = append(terms, col+" "+dir)
		}
		sql += " ORDER BY " + strings.Join(terms, ", ")
	}

	if d.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", d.Limit)
	}
	if d.Offset > 0 {
		sql += fmt.Sprintf(" OFFSET %d", d.Offset)
	}
	return sql, args, nil
}

// compileWhere translates an attribute-level filter into a SQL conjunction.
func (q *Query) compileWhere(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var clauses []string
	var args []any
	for _, key := range keys {
		col, err := q.columnFor(key)
		if err != nil {
			return "", nil, err
		}

		switch v := where[key].(type) {
		case nil:
			clauses = append(clauses, col+" IS NULL")

		case map[string]any:
			clause, opArgs, err := compileOperator(col, v)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, clause)
			args = append(args, opArgs...)

		default:
			cv, err := q.valueFor(key, v)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, col+" = ?")
			args = append(args, cv)
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}

func compileOperator(col string, op map[string]any) (string, []any, error) {
	if len(op) != 1 {
		return "", nil, fmt.Errorf("filter on %s: exactly one operator expected", col)
	}

	for name, operand := range op {
		switch name {
		case "$null":
			return col + " IS NULL", nil, nil
		case "$notNull":
			return col + " IS NOT NULL", nil, nil
		case "$ne":
			if operand == nil {
				return col + " IS NOT NULL", nil, nil
			}
			return col + " <> ?", []any{operand}, nil
		case "$in":
			values := anySlice(operand)
			if len(values) == 0 {
				// An empty set matches nothing.
				return "1 = 0", nil, nil
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
			return col + " IN (" + placeholders + ")", values, nil
		default:
			return "", nil, fmt.Errorf("filter on %s: unsupported operator %q", col, name)
		}
	}
	return "", nil, nil
}

func anySlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	case []int64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	default:
		return []any{v}
	}
}
