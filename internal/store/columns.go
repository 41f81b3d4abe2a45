package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// Engine-managed attribute keys at the Row boundary.
const (
	FieldID          = "id"
	FieldDocumentID  = "documentId"
	FieldLocale      = "locale"
	FieldPublishedAt = "publishedAt"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"

	// Component back-reference keys.
	FieldEntityType = "entityType"
	FieldEntityID   = "entityId"
	FieldField      = "field"
	FieldOrder      = "ord"
)

var engineColumns = map[string]string{
	FieldID:          schema.ColumnID,
	FieldDocumentID:  schema.ColumnDocumentID,
	FieldLocale:      schema.ColumnLocale,
	FieldPublishedAt: schema.ColumnPublishedAt,
	FieldCreatedAt:   schema.ColumnCreatedAt,
	FieldUpdatedAt:   schema.ColumnUpdatedAt,
	FieldEntityType:  schema.ColumnEntityType,
	FieldEntityID:    schema.ColumnEntityID,
	FieldField:       schema.ColumnField,
	FieldOrder:       schema.ColumnOrder,
}

// columnFor resolves an attribute-level key to a physical column.
func (q *Query) columnFor(key string) (string, error) {
	if col, ok := engineColumns[key]; ok {
		return col, nil
	}

	attr := q.ct.Attribute(key)
	if attr == nil {
		return "", fmt.Errorf("%s: unknown attribute %q", q.ct.UID, key)
	}
	switch {
	case attr.Kind == schema.KindRelation:
		return schema.RelationColumnName(key), nil
	case attr.IsScalar():
		return schema.ColumnName(key), nil
	default:
		return "", fmt.Errorf("%s: attribute %q has no column (structural)", q.ct.UID, key)
	}
}

// valueFor converts an attribute-level value to its column representation.
func (q *Query) valueFor(key string, v any) (any, error) {
	if _, ok := engineColumns[key]; ok {
		return v, nil
	}

	attr := q.ct.Attribute(key)
	if attr == nil {
		return nil, fmt.Errorf("%s: unknown attribute %q", q.ct.UID, key)
	}
	if v == nil {
		return nil, nil
	}

	switch attr.Kind {
	case schema.KindJSON:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: invalid json value: %w", q.ct.UID, key, err)
		}
		return string(raw), nil
	default:
		return v, nil
	}
}

// columnValues flattens an attribute-level payload into parallel column and
// argument slices, in deterministic order.
func (q *Query) columnValues(data map[string]any) ([]string, []any, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cols []string
	var args []any
	for _, key := range keys {
		col, err := q.columnFor(key)
		if err != nil {
			return nil, nil, err
		}
		val, err := q.valueFor(key, data[key])
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, col)
		args = append(args, val)
	}
	return cols, args, nil
}

// rowFromColumns converts a scanned physical row into the attribute-level
// Row the rest of the engine speaks.
func (q *Query) rowFromColumns(raw map[string]any) Row {
	row := make(Row, len(raw))

	for key, col := range engineColumns {
		v, ok := raw[col]
		if !ok {
			continue
		}
		switch key {
		case FieldID, FieldEntityID:
			row[key] = toInt64(v)
		case FieldOrder:
			row[key] = toInt64(v)
		case FieldDocumentID, FieldEntityType, FieldField:
			row[key] = toStringOrNil(v)
		case FieldLocale:
			row[key] = toStringOrNil(v)
		case FieldPublishedAt, FieldCreatedAt, FieldUpdatedAt:
			row[key] = toTimeOrNil(v)
		}
	}

	for _, name := range q.ct.AttributeNames() {
		attr := q.ct.Attributes[name]
		switch {
		case attr.Kind == schema.KindRelation:
			v, ok := raw[schema.RelationColumnName(name)]
			if !ok || v == nil {
				row[name] = nil
				continue
			}
			row[name] = toInt64(v)
		case attr.IsScalar():
			v, ok := raw[schema.ColumnName(name)]
			if !ok {
				continue
			}
			row[name] = fromColumnValue(attr.Kind, v)
		}
	}
	return row
}

func fromColumnValue(kind schema.Kind, v any) any {
	if v == nil {
		return nil
	}
	switch kind {
	case schema.KindString, schema.KindText, schema.KindEmail:
		return toString(v)
	case schema.KindInteger:
		return toInt64(v)
	case schema.KindFloat:
		return toFloat64(v)
	case schema.KindBoolean:
		return toBool(v)
	case schema.KindDate, schema.KindDatetime:
		return toTimeOrNil(v)
	case schema.KindJSON:
		var out any
		if err := json.Unmarshal([]byte(toString(v)), &out); err != nil {
			return nil
		}
		return out
	default:
		return v
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toStringOrNil(v any) any {
	if v == nil {
		return nil
	}
	return toString(v)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	case []byte:
		var out int64
		fmt.Sscanf(string(n), "%d", &out)
		return out
	case string:
		var out int64
		fmt.Sscanf(n, "%d", &out)
		return out
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case []byte:
		var out float64
		fmt.Sscanf(string(n), "%g", &out)
		return out
	case string:
		var out float64
		fmt.Sscanf(n, "%g", &out)
		return out
	default:
		return 0
	}
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case float64:
		return b != 0
	case string:
		return b == "1" || strings.EqualFold(b, "true")
	case []byte:
		return toBool(string(b))
	default:
		return false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTimeOrNil(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC()
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	default:
		return nil
	}
}

func parseTime(s string) any {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return nil
}
