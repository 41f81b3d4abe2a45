package schema

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Reserved column names managed by the engine itself. Attributes may not
// shadow them.
const (
	ColumnID          = "id"
	ColumnDocumentID  = "document_id"
	ColumnLocale      = "locale"
	ColumnPublishedAt = "published_at"
	ColumnCreatedAt   = "created_at"
	ColumnUpdatedAt   = "updated_at"

	// Back-reference columns on component tables. entity_type carries the
	// owning content-type UID since component tables are shared across
	// owners and row ids alone are ambiguous.
	ColumnEntityType = "entity_type"
	ColumnEntityID   = "entity_id"
	ColumnField      = "field"
	ColumnOrder      = "ord"
)

// TableName returns the physical table for a content type: the explicit
// collectionName when set, otherwise derived from the UID. Component UIDs
// ("shared.seo") map into a components_ prefixed namespace so they never
// collide with content-type tables.
func (ct *ContentType) TableName() string {
	if ct.CollectionName != "" {
		return ct.CollectionName
	}
	if ct.IsComponent() {
		return "components_" + strcase.ToSnake(strings.ReplaceAll(ct.UID, ".", "_"))
	}
	return strcase.ToSnake(ct.UID) + "s"
}

// ColumnName returns the physical column for a scalar attribute.
func ColumnName(attr string) string {
	return strcase.ToSnake(attr)
}

// RelationColumnName returns the physical column holding a relation
// attribute's target row id.
func RelationColumnName(attr string) string {
	return strcase.ToSnake(attr) + "_id"
}

// IsReservedColumn reports whether the attribute name would collide with an
// engine-managed column.
func IsReservedColumn(attr string) bool {
	switch ColumnName(attr) {
	case ColumnID, ColumnDocumentID, ColumnLocale, ColumnPublishedAt,
		ColumnCreatedAt, ColumnUpdatedAt,
		ColumnEntityType, ColumnEntityID, ColumnField, ColumnOrder:
		return true
	}
	return false
}
