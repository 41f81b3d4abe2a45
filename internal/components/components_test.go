package components

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontreeza/sangpragay-strapi/internal/store"
	"github.com/dontreeza/sangpragay-strapi/pkg/schema"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	reg.MustRegister(&schema.ContentType{
		UID:       "shared.link",
		ModelType: schema.ModelComponent,
		Attributes: map[string]*schema.Attribute{
			"label": {Kind: schema.KindString},
			"url":   {Kind: schema.KindString},
		},
	})
	reg.MustRegister(&schema.ContentType{
		UID:       "shared.seo",
		ModelType: schema.ModelComponent,
		Attributes: map[string]*schema.Attribute{
			"metaTitle": {Kind: schema.KindString},
			"links":     {Kind: schema.KindComponent, Component: "shared.link", Repeatable: true},
		},
	})
	reg.MustRegister(&schema.ContentType{
		UID:       "shared.quote",
		ModelType: schema.ModelComponent,
		Attributes: map[string]*schema.Attribute{
			"text": {Kind: schema.KindString},
		},
	})
	reg.MustRegister(&schema.ContentType{
		UID:       "page",
		ModelType: schema.ModelContentType,
		Attributes: map[string]*schema.Attribute{
			"title":    {Kind: schema.KindString},
			"seo":      {Kind: schema.KindComponent, Component: "shared.seo"},
			"items":    {Kind: schema.KindComponent, Component: "shared.link", Repeatable: true},
			"sections": {Kind: schema.KindDynamicZone, Components: []string{"shared.quote", "shared.link"}},
		},
	})
	require.NoError(t, reg.Validate())
	return reg
}

func newTestHandler(t *testing.T) (*Handler, *schema.ContentType) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := store.Connect(store.Config{Driver: store.DriverSQLite, Path: dsn}, nil)
	require.NoError(t, err)

	reg := testRegistry(t)
	engine := store.NewEngine(db, reg, nil)
	require.NoError(t, engine.AutoMigrate(context.Background()))

	page, err := reg.Get("page")
	require.NoError(t, err)
	return NewHandler(engine, nil), page
}

func TestHandler_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	h, page := newTestHandler(t)

	require.NoError(t, h.Create(ctx, page, 1, map[string]any{
		"seo": map[string]any{
			"metaTitle": "Hello",
			"links": []any{
				map[string]any{"label": "a", "url": "https://a"},
				map[string]any{"label": "b", "url": "https://b"},
			},
		},
		"items": []any{
			map[string]any{"label": "first"},
			map[string]any{"label": "second"},
		},
		"sections": []any{
			map[string]any{DiscriminatorKey: "shared.quote", "text": "q1"},
			map[string]any{DiscriminatorKey: "shared.link", "label": "l1"},
			map[string]any{DiscriminatorKey: "shared.quote", "text": "q2"},
		},
	}))

	got, err := h.Get(ctx, page, 1)
	require.NoError(t, err)

	seo, ok := got["seo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Hello", seo["metaTitle"])
	links, ok := seo["links"].([]any)
	require.True(t, ok)
	require.Len(t, links, 2)
	assert.Equal(t, "a", links[0].(map[string]any)["label"])
	assert.Equal(t, "b", links[1].(map[string]any)["label"])

	items, ok := got["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].(map[string]any)["label"])

	// Dynamic-zone entries come back in submitted order across the
	// component tables, each tagged with its discriminator.
	sections, ok := got["sections"].([]any)
	require.True(t, ok)
	require.Len(t, sections, 3)
	assert.Equal(t, "shared.quote", sections[0].(map[string]any)[DiscriminatorKey])
	assert.Equal(t, "q1", sections[0].(map[string]any)["text"])
	assert.Equal(t, "shared.link", sections[1].(map[string]any)[DiscriminatorKey])
	assert.Equal(t, "l1", sections[1].(map[string]any)["label"])
	assert.Equal(t, "q2", sections[2].(map[string]any)["text"])
}

func TestHandler_Get_EmptyOwner(t *testing.T) {
	ctx := context.Background()
	h, page := newTestHandler(t)

	got, err := h.Get(ctx, page, 42)
	require.NoError(t, err)
	assert.Nil(t, got["seo"])
	assert.Empty(t, got["items"])
	assert.Empty(t, got["sections"])
}

func TestHandler_Update(t *testing.T) {
	ctx := context.Background()
	h, page := newTestHandler(t)

	require.NoError(t, h.Create(ctx, page, 1, map[string]any{
		"items": []any{
			map[string]any{"label": "keep"},
			map[string]any{"label": "drop"},
		},
	}))

	got, err := h.Get(ctx, page, 1)
	require.NoError(t, err)
	items := got["items"].([]any)
	require.Len(t, items, 2)
	keepID := items[0].(map[string]any)["id"]

	// Keep the first entry by id, drop the second, add a new one.
	require.NoError(t, h.Update(ctx, page, 1, map[string]any{
		"items": []any{
			map[string]any{"id": keepID, "label": "kept"},
			map[string]any{"label": "added"},
		},
	}))

	got, err = h.Get(ctx, page, 1)
	require.NoError(t, err)
	items = got["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, keepID, items[0].(map[string]any)["id"])
	assert.Equal(t, "kept", items[0].(map[string]any)["label"])
	assert.Equal(t, "added", items[1].(map[string]any)["label"])
}

func TestHandler_Update_UntouchedFields(t *testing.T) {
	ctx := context.Background()
	h, page := newTestHandler(t)

	require.NoError(t, h.Create(ctx, page, 1, map[string]any{
		"seo":   map[string]any{"metaTitle": "stays"},
		"items": []any{map[string]any{"label": "old"}},
	}))

	// Only items is submitted; seo must survive untouched.
	require.NoError(t, h.Update(ctx, page, 1, map[string]any{
		"items": []any{map[string]any{"label": "new"}},
	}))

	got, err := h.Get(ctx, page, 1)
	require.NoError(t, err)
	require.NotNil(t, got["seo"])
	assert.Equal(t, "stays", got["seo"].(map[string]any)["metaTitle"])
	items := got["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].(map[string]any)["label"])
}

func TestHandler_Clone(t *testing.T) {
	ctx := context.Background()
	h, page := newTestHandler(t)

	require.NoError(t, h.Create(ctx, page, 1, map[string]any{
		"seo": map[string]any{
			"metaTitle": "original",
			"links":     []any{map[string]any{"label": "nested"}},
		},
	}))

	require.NoError(t, h.Clone(ctx, page, 1, 2))

	src, err := h.Get(ctx, page, 1)
	require.NoError(t, err)
	dst, err := h.Get(ctx, page, 2)
	require.NoError(t, err)

	srcSeo := src["seo"].(map[string]any)
	dstSeo := dst["seo"].(map[string]any)
	assert.Equal(t, "original", dstSeo["metaTitle"])
	assert.NotEqual(t, srcSeo["id"], dstSeo["id"])

	srcLinks := srcSeo["links"].([]any)
	dstLinks := dstSeo["links"].([]any)
	require.Len(t, dstLinks, 1)
	assert.Equal(t, "nested", dstLinks[0].(map[string]any)["label"])
	assert.NotEqual(t, srcLinks[0].(map[string]any)["id"], dstLinks[0].(map[string]any)["id"])
}

func TestHandler_Delete(t *testing.T) {
	ctx := context.Background()
	h, page := newTestHandler(t)

	require.NoError(t, h.Create(ctx, page, 1, map[string]any{
		"seo": map[string]any{
			"metaTitle": "gone",
			"links":     []any{map[string]any{"label": "nested"}},
		},
		"sections": []any{
			map[string]any{DiscriminatorKey: "shared.quote", "text": "q"},
		},
	}))
	require.NoError(t, h.Create(ctx, page, 2, map[string]any{
		"seo": map[string]any{"metaTitle": "survives"},
	}))

	require.NoError(t, h.Delete(ctx, page, 1))

	got, err := h.Get(ctx, page, 1)
	require.NoError(t, err)
	assert.Nil(t, got["seo"])
	assert.Empty(t, got["sections"])

	other, err := h.Get(ctx, page, 2)
	require.NoError(t, err)
	require.NotNil(t, other["seo"])
	assert.Equal(t, "survives", other["seo"].(map[string]any)["metaTitle"])
}

func TestNormalizeEntries(t *testing.T) {
	reg := testRegistry(t)
	page, err := reg.Get("page")
	require.NoError(t, err)

	t.Run("dynamic zone requires a discriminator", func(t *testing.T) {
		_, err := normalizeEntries(page, "sections", []any{
			map[string]any{"text": "missing"},
		})
		assert.Error(t, err)
	})

	t.Run("dynamic zone rejects unadmitted components", func(t *testing.T) {
		_, err := normalizeEntries(page, "sections", []any{
			map[string]any{DiscriminatorKey: "shared.seo", "metaTitle": "no"},
		})
		assert.Error(t, err)
	})

	t.Run("single component rejects lists", func(t *testing.T) {
		_, err := normalizeEntries(page, "seo", []any{map[string]any{}})
		assert.Error(t, err)
	})
}
