package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	reg.MustRegister(&schema.ContentType{
		UID:             "note",
		ModelType:       schema.ModelContentType,
		DraftAndPublish: true,
		Localized:       true,
		Attributes: map[string]*schema.Attribute{
			"title": {Kind: schema.KindString},
			"rank":  {Kind: schema.KindInteger},
			"done":  {Kind: schema.KindBoolean},
			"due":   {Kind: schema.KindDatetime},
			"meta":  {Kind: schema.KindJSON},
		},
	})
	require.NoError(t, reg.Validate())
	return reg
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	// A named in-memory database with a shared cache survives across the
	// connections in the pool.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Connect(Config{Driver: DriverSQLite, Path: dsn}, nil)
	require.NoError(t, err)

	engine := NewEngine(db, testRegistry(t), nil)
	require.NoError(t, engine.AutoMigrate(context.Background()))
	return engine
}

func TestQuery_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	q := engine.MustQuery("note")

	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	created, err := q.Create(ctx, Descriptor{Data: map[string]any{
		FieldDocumentID: "doc-1",
		FieldLocale:     "en",
		"title":         "first",
		"rank":          int64(3),
		"done":          true,
		"due":           due,
		"meta":          map[string]any{"tags": []any{"a", "b"}},
	}})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created[FieldID])
	assert.Equal(t, "doc-1", created[FieldDocumentID])
	assert.Equal(t, "en", created[FieldLocale])
	assert.Equal(t, "first", created["title"])
	assert.Equal(t, int64(3), created["rank"])
	assert.Equal(t, true, created["done"])
	assert.Equal(t, map[string]any{"tags": []any{"a", "b"}}, created["meta"])
	assert.NotNil(t, created[FieldCreatedAt])
	assert.NotNil(t, created[FieldUpdatedAt])
	assert.Nil(t, created[FieldPublishedAt])

	got, err := q.FindOne(ctx, Descriptor{Where: map[string]any{"title": "first"}})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created[FieldID], got[FieldID])

	gotDue, ok := got["due"].(time.Time)
	require.True(t, ok)
	assert.True(t, due.Equal(gotDue.UTC()))
}

func TestQuery_Operators(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	q := engine.MustQuery("note")

	now := time.Now().UTC()
	for i, row := range []map[string]any{
		{FieldDocumentID: "doc-1", FieldLocale: "en", "title": "draft", "rank": int64(1)},
		{FieldDocumentID: "doc-1", FieldLocale: "en", "title": "published", "rank": int64(2), FieldPublishedAt: now},
		{FieldDocumentID: "doc-2", FieldLocale: "fr", "title": "other", "rank": int64(3)},
	} {
		_, err := q.Create(ctx, Descriptor{Data: row})
		require.NoError(t, err, "row %d", i)
	}

	t.Run("null filter", func(t *testing.T) {
		rows, err := q.FindMany(ctx, Descriptor{Where: map[string]any{FieldPublishedAt: nil}})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("notNull filter", func(t *testing.T) {
		rows, err := q.FindMany(ctx, Descriptor{Where: map[string]any{
			FieldPublishedAt: map[string]any{"$notNull": true},
		}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "published", rows[0]["title"])
	})

	t.Run("ne filter", func(t *testing.T) {
		rows, err := q.FindMany(ctx, Descriptor{Where: map[string]any{
			"title": map[string]any{"$ne": "other"},
		}})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("in filter", func(t *testing.T) {
		rows, err := q.FindMany(ctx, Descriptor{Where: map[string]any{
			FieldLocale: map[string]any{"$in": []string{"fr", "de"}},
		}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "other", rows[0]["title"])
	})

	t.Run("empty in matches nothing", func(t *testing.T) {
		rows, err := q.FindMany(ctx, Descriptor{Where: map[string]any{
			FieldLocale: map[string]any{"$in": []string{}},
		}})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("unknown attributes are rejected", func(t *testing.T) {
		_, err := q.FindMany(ctx, Descriptor{Where: map[string]any{"bogus": 1}})
		assert.Error(t, err)
	})

	t.Run("ordering and paging", func(t *testing.T) {
		rows, err := q.FindMany(ctx, Descriptor{
			OrderBy: []Order{{Field: "rank", Desc: true}},
			Limit:   2,
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, int64(3), rows[0]["rank"])
		assert.Equal(t, int64(2), rows[1]["rank"])
	})

	t.Run("count", func(t *testing.T) {
		n, err := q.Count(ctx, Descriptor{Where: map[string]any{FieldDocumentID: "doc-1"}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}

func TestQuery_Update(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	q := engine.MustQuery("note")

	created, err := q.Create(ctx, Descriptor{Data: map[string]any{
		FieldDocumentID: "doc-1",
		"title":         "before",
	}})
	require.NoError(t, err)

	updated, err := q.Update(ctx, Descriptor{
		Where: map[string]any{FieldID: created[FieldID]},
		Data:  map[string]any{"title": "after", "rank": int64(7)},
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated["title"])
	assert.Equal(t, int64(7), updated["rank"])

	t.Run("empty filter is rejected", func(t *testing.T) {
		_, err := q.Update(ctx, Descriptor{Data: map[string]any{"title": "x"}})
		assert.Error(t, err)
	})
}

func TestQuery_Delete(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	q := engine.MustQuery("note")

	for _, title := range []string{"a", "b"} {
		_, err := q.Create(ctx, Descriptor{Data: map[string]any{
			FieldDocumentID: "doc-1",
			"title":         title,
		}})
		require.NoError(t, err)
	}

	n, err := q.Delete(ctx, Descriptor{Where: map[string]any{FieldDocumentID: "doc-1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	t.Run("empty filter is rejected", func(t *testing.T) {
		_, err := q.Delete(ctx, Descriptor{})
		assert.Error(t, err)
	})
}

func TestEngine_Transaction(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	t.Run("commits on success", func(t *testing.T) {
		err := engine.Transaction(ctx, func(tx *Engine) error {
			_, err := tx.MustQuery("note").Create(ctx, Descriptor{Data: map[string]any{
				FieldDocumentID: "doc-tx",
				"title":         "committed",
			}})
			return err
		})
		require.NoError(t, err)

		row, err := engine.MustQuery("note").FindOne(ctx, Descriptor{
			Where: map[string]any{FieldDocumentID: "doc-tx"},
		})
		require.NoError(t, err)
		assert.NotNil(t, row)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := engine.Transaction(ctx, func(tx *Engine) error {
			if _, err := tx.MustQuery("note").Create(ctx, Descriptor{Data: map[string]any{
				FieldDocumentID: "doc-rollback",
				"title":         "gone",
			}}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		row, err := engine.MustQuery("note").FindOne(ctx, Descriptor{
			Where: map[string]any{FieldDocumentID: "doc-rollback"},
		})
		require.NoError(t, err)
		assert.Nil(t, row)
	})
}
