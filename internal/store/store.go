// Package store implements the relational query engine the document
// repository is built on: schema-driven CRUD over dynamic tables, a
// transaction envelope, and migration of descriptor-derived DDL.
//
// The engine speaks attribute-level maps at its boundary (camelCase keys,
// Go values) and translates to physical columns internally. Filters use a
// small operator dialect: a plain value is an equality match, nil is
// IS NULL, {"$ne": v} / {"$notNull": true} / {"$null": true} /
// {"$in": [...]} cover the rest.
package store

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

// Engine is the relational query engine. It is safe for concurrent use;
// per-operation state lives in Query values.
type Engine struct {
	db      *gorm.DB
	schemas *schema.Registry
	log     hclog.Logger
}

// NewEngine wraps an open gorm connection and a validated schema registry.
func NewEngine(db *gorm.DB, schemas *schema.Registry, log hclog.Logger) *Engine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Engine{db: db, schemas: schemas, log: log}
}

// DB exposes the underlying gorm handle for collaborators that manage
// their own typed tables (e.g. the locales store).
func (e *Engine) DB() *gorm.DB {
	return e.db
}

// Schemas returns the registry the engine was built with.
func (e *Engine) Schemas() *schema.Registry {
	return e.schemas
}

// Query returns a query handle for one content type or component.
func (e *Engine) Query(uid string) (*Query, error) {
	ct, err := e.schemas.Get(uid)
	if err != nil {
		return nil, err
	}
	return &Query{engine: e, ct: ct}, nil
}

// MustQuery is Query for UIDs already validated against the registry.
func (e *Engine) MustQuery(uid string) *Query {
	q, err := e.Query(uid)
	if err != nil {
		panic(err)
	}
	return q
}

// Transaction runs fn inside a single database transaction. Any error
// returned by fn rolls back every statement issued through the transactional
// engine passed to it; no partial state is ever persisted.
func (e *Engine) Transaction(ctx context.Context, fn func(tx *Engine) error) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Engine{db: tx, schemas: e.schemas, log: e.log})
	})
}

func (e *Engine) dialect() string {
	return e.db.Dialector.Name()
}
