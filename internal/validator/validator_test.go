package validator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontreeza/sangpragay-strapi/internal/components"
	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	reg.MustRegister(&schema.ContentType{
		UID:       "shared.badge",
		ModelType: schema.ModelComponent,
		Attributes: map[string]*schema.Attribute{
			"code": {Kind: schema.KindString, Unique: true},
		},
	})
	reg.MustRegister(&schema.ContentType{
		UID:             "article",
		ModelType:       schema.ModelContentType,
		DraftAndPublish: true,
		Localized:       true,
		Attributes: map[string]*schema.Attribute{
			"title":   {Kind: schema.KindString, Required: true, MinLength: 3, MaxLength: 50},
			"slug":    {Kind: schema.KindString, Unique: true},
			"contact": {Kind: schema.KindEmail},
			"rank":    {Kind: schema.KindInteger},
			"tags":    {Kind: schema.KindJSON},
			"badges":  {Kind: schema.KindComponent, Component: "shared.badge", Repeatable: true},
		},
	})
	require.NoError(t, reg.Validate())
	return reg
}

func newTestValidator(t *testing.T) (*Validator, *store.Engine, *schema.ContentType) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := store.Connect(store.Config{Driver: store.DriverSQLite, Path: dsn}, nil)
	require.NoError(t, err)

	reg := testRegistry(t)
	engine := store.NewEngine(db, reg, nil)
	require.NoError(t, engine.AutoMigrate(context.Background()))

	article, err := reg.Get("article")
	require.NoError(t, err)
	return New(engine, nil), engine, article
}

func TestValidator_Kinds(t *testing.T) {
	ctx := context.Background()
	v, _, article := newTestValidator(t)
	opts := Options{IsDraft: true, Locale: "en"}

	t.Run("accepts a well-formed payload", func(t *testing.T) {
		data, err := v.ValidateCreation(ctx, article, map[string]any{
			"title":   "A proper title",
			"slug":    "a-proper-title",
			"contact": "someone@example.com",
			"rank":    3,
			"tags":    []any{"go", "sql"},
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, "A proper title", data["title"])
	})

	t.Run("rejects wrong kinds", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": 42,
		}, opts)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects malformed emails", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title":   "Valid title",
			"contact": "not-an-email",
		}, opts)
		assert.Error(t, err)
	})

	t.Run("enforces length bounds", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "ab",
		}, opts)
		assert.Error(t, err)
	})

	t.Run("rejects unknown attributes", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "Valid title",
			"bogus": "nope",
		}, opts)
		assert.Error(t, err)
	})

	t.Run("collects multiple errors", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title":   42,
			"contact": "not-an-email",
		}, opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 errors occurred")
	})

	t.Run("a rejected required attribute errors once", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": 42,
		}, opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a string")
		assert.NotContains(t, err.Error(), "value is required")
	})
}

func TestValidator_Required(t *testing.T) {
	ctx := context.Background()
	v, _, article := newTestValidator(t)
	opts := Options{IsDraft: true, Locale: "en"}

	t.Run("creation requires required attributes", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"slug": "no-title",
		}, opts)
		assert.Error(t, err)
	})

	t.Run("update leaves absent attributes alone", func(t *testing.T) {
		_, err := v.ValidateUpdate(ctx, article, map[string]any{
			"slug": "still-no-title",
		}, opts)
		assert.NoError(t, err)
	})

	t.Run("update rejects explicit nulls on required attributes", func(t *testing.T) {
		_, err := v.ValidateUpdate(ctx, article, map[string]any{
			"title": nil,
		}, opts)
		assert.Error(t, err)
	})
}

func seedArticle(t *testing.T, engine *store.Engine, docID, locale, slug string, published bool) store.Row {
	t.Helper()
	data := map[string]any{
		store.FieldDocumentID: docID,
		store.FieldLocale:     locale,
		"title":               "Seeded title",
		"slug":                slug,
	}
	if published {
		data[store.FieldPublishedAt] = time.Now().UTC()
	}
	row, err := engine.MustQuery("article").Create(context.Background(), store.Descriptor{Data: data})
	require.NoError(t, err)
	return row
}

func TestValidator_Uniqueness(t *testing.T) {
	ctx := context.Background()
	v, engine, article := newTestValidator(t)

	seedArticle(t, engine, "doc-1", "en", "taken", false)

	t.Run("collides within the same locale and status", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "Another title",
			"slug":  "taken",
		}, Options{IsDraft: true, Locale: "en"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "This attribute must be unique")
	})

	t.Run("a different locale is a different scope", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "Another title",
			"slug":  "taken",
		}, Options{IsDraft: true, Locale: "fr"})
		assert.NoError(t, err)
	})

	t.Run("the published scope is independent of the draft scope", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "Another title",
			"slug":  "taken",
		}, Options{IsDraft: false, Locale: "en"})
		assert.NoError(t, err)
	})

	t.Run("the row being updated does not collide with itself", func(t *testing.T) {
		row := seedArticle(t, engine, "doc-2", "en", "mine", false)
		_, err := v.ValidateUpdate(ctx, article, map[string]any{
			"slug": "mine",
		}, Options{IsDraft: true, Locale: "en", ExcludeID: row[store.FieldID].(int64)})
		assert.NoError(t, err)
	})

	t.Run("the draft sibling of the same document still collides", func(t *testing.T) {
		published := seedArticle(t, engine, "doc-3", "en", "sibling", true)
		seedArticle(t, engine, "doc-3", "en", "sibling", false)

		// Excluding the published row must not exclude the draft row, even
		// though both belong to the same document.
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "Another title",
			"slug":  "sibling",
		}, Options{IsDraft: true, Locale: "en", ExcludeID: published[store.FieldID].(int64)})
		assert.Error(t, err)
	})
}

func TestValidator_PayloadDuplicates(t *testing.T) {
	ctx := context.Background()
	v, _, article := newTestValidator(t)
	opts := Options{IsDraft: true, Locale: "en"}

	t.Run("duplicate unique values within one submission", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "Valid title",
			"badges": []any{
				map[string]any{"code": "gold"},
				map[string]any{"code": "gold"},
			},
		}, opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "This attribute must be unique")
	})

	t.Run("distinct values pass", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "Valid title",
			"badges": []any{
				map[string]any{"code": "silver"},
				map[string]any{"code": "bronze"},
			},
		}, opts)
		assert.NoError(t, err)
	})
}

func TestValidator_ComponentUniqueness(t *testing.T) {
	ctx := context.Background()
	v, engine, article := newTestValidator(t)

	owner := seedArticle(t, engine, "doc-1", "en", "owner", false)
	handler := components.NewHandler(engine, nil)
	require.NoError(t, handler.Create(ctx, article, owner[store.FieldID].(int64), map[string]any{
		"badges": []any{map[string]any{"code": "gold"}},
	}))

	t.Run("collides with a stored component value in scope", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "Valid title",
			"badges": []any{
				map[string]any{"code": "gold"},
			},
		}, Options{IsDraft: true, Locale: "en"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "This attribute must be unique")
	})

	t.Run("out-of-scope owners do not collide", func(t *testing.T) {
		_, err := v.ValidateCreation(ctx, article, map[string]any{
			"title": "Valid title",
			"badges": []any{
				map[string]any{"code": "gold"},
			},
		}, Options{IsDraft: true, Locale: "fr"})
		assert.NoError(t, err)
	})

	t.Run("the owner's own entries do not collide on update", func(t *testing.T) {
		stored, err := handler.Get(ctx, article, owner[store.FieldID].(int64))
		require.NoError(t, err)
		badges := stored["badges"].([]any)
		require.Len(t, badges, 1)

		_, err = v.ValidateUpdate(ctx, article, map[string]any{
			"badges": badges,
		}, Options{IsDraft: true, Locale: "en", ExcludeID: owner[store.FieldID].(int64)})
		assert.NoError(t, err)
	})
}
