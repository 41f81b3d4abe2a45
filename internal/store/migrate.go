package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// AutoMigrate creates or extends the physical tables for every registered
// content type and component. Existing columns are never altered or
// dropped; new attribute columns are added.
func (e *Engine) AutoMigrate(ctx context.Context) error {
	for _, uid := range e.schemas.UIDs() {
		ct, _ := e.schemas.Get(uid)
		if err := e.migrateTable(ctx, ct); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) migrateTable(ctx context.Context, ct *schema.ContentType) error {
	table := ct.TableName()
	db := e.db.WithContext(ctx)

	if !db.Migrator().HasTable(table) {
		ddl := e.createTableSQL(ct)
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		for _, idx := range e.indexSQL(ct) {
			if err := db.Exec(idx).Error; err != nil {
				return fmt.Errorf("index %s: %w", table, err)
			}
		}
		e.log.Info("created table", "table", table, "uid", ct.UID)
		return nil
	}

	// Add columns introduced by schema changes.
	for col, typ := range e.attributeColumns(ct) {
		if db.Migrator().HasColumn(table, col) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col, typ)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, col, err)
		}
		e.log.Info("added column", "table", table, "column", col)
	}
	return nil
}

func (e *Engine) createTableSQL(ct *schema.ContentType) string {
	var cols []string
	cols = append(cols, schema.ColumnID+" "+e.pkType())

	if ct.IsComponent() {
		cols = append(cols,
			schema.ColumnEntityType+" TEXT NOT NULL",
			schema.ColumnEntityID+" "+e.intType()+" NOT NULL",
			schema.ColumnField+" TEXT NOT NULL",
			schema.ColumnOrder+" "+e.intType(),
		)
	} else {
		cols = append(cols,
			schema.ColumnDocumentID+" TEXT NOT NULL",
			schema.ColumnLocale+" TEXT",
			schema.ColumnPublishedAt+" "+e.timeType(),
		)
	}

	cols = append(cols,
		schema.ColumnCreatedAt+" "+e.timeType(),
		schema.ColumnUpdatedAt+" "+e.timeType(),
	)

	for col, typ := range e.attributeColumns(ct) {
		cols = append(cols, col+" "+typ)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		ct.TableName(), strings.Join(cols, ", "))
}

func (e *Engine) indexSQL(ct *schema.ContentType) []string {
	table := ct.TableName()
	if ct.IsComponent() {
		return []string{fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_owner ON %s (%s, %s, %s)",
			table, table, schema.ColumnEntityType, schema.ColumnEntityID, schema.ColumnField)}
	}
	return []string{fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_document ON %s (%s, %s, %s)",
		table, table, schema.ColumnDocumentID, schema.ColumnLocale, schema.ColumnPublishedAt)}
}

// attributeColumns maps every column-backed attribute to its SQL type.
func (e *Engine) attributeColumns(ct *schema.ContentType) map[string]string {
	cols := make(map[string]string)
	for _, name := range ct.AttributeNames() {
		attr := ct.Attributes[name]
		switch {
		case attr.Kind == schema.KindRelation:
			cols[schema.RelationColumnName(name)] = e.intType()
		case attr.IsScalar():
			cols[schema.ColumnName(name)] = e.scalarType(attr.Kind)
		}
	}
	return cols
}

func (e *Engine) pkType() string {
	if e.dialect() == "postgres" {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (e *Engine) intType() string {
	if e.dialect() == "postgres" {
		return "BIGINT"
	}
	return "INTEGER"
}

func (e *Engine) timeType() string {
	if e.dialect() == "postgres" {
		return "TIMESTAMPTZ"
	}
	return "DATETIME"
}

func (e *Engine) scalarType(kind schema.Kind) string {
	postgres := e.dialect() == "postgres"
	switch kind {
	case schema.KindString, schema.KindText, schema.KindEmail:
		return "TEXT"
	case schema.KindInteger:
		return e.intType()
	case schema.KindFloat:
		if postgres {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	case schema.KindBoolean:
		return "BOOLEAN"
	case schema.KindDate:
		if postgres {
			return "DATE"
		}
		return "DATETIME"
	case schema.KindDatetime:
		return e.timeType()
	case schema.KindJSON:
		if postgres {
			return "JSONB"
		}
		return "TEXT"
	default:
		return "TEXT"
	}
}
