package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentType_TableName(t *testing.T) {
	t.Run("content types pluralize their UID", func(t *testing.T) {
		ct := &ContentType{UID: "article", ModelType: ModelContentType}
		assert.Equal(t, "articles", ct.TableName())
	})

	t.Run("multi-word UIDs become snake case", func(t *testing.T) {
		ct := &ContentType{UID: "blogPost", ModelType: ModelContentType}
		assert.Equal(t, "blog_posts", ct.TableName())
	})

	t.Run("components live in their own namespace", func(t *testing.T) {
		ct := &ContentType{UID: "shared.seo", ModelType: ModelComponent}
		assert.Equal(t, "components_shared_seo", ct.TableName())
	})

	t.Run("collectionName wins", func(t *testing.T) {
		ct := &ContentType{UID: "article", CollectionName: "legacy_articles"}
		assert.Equal(t, "legacy_articles", ct.TableName())
	})
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "meta_title", ColumnName("metaTitle"))
	assert.Equal(t, "author_id", RelationColumnName("author"))
	assert.True(t, IsReservedColumn("documentId"))
	assert.True(t, IsReservedColumn("publishedAt"))
	assert.False(t, IsReservedColumn("title"))
}

func TestContentType_AttributeNames(t *testing.T) {
	ct := &ContentType{
		UID: "article",
		Attributes: map[string]*Attribute{
			"title":  {Kind: KindString},
			"author": {Kind: KindRelation, Target: "author"},
			"seo":    {Kind: KindComponent, Component: "shared.seo"},
			"body":   {Kind: KindText},
		},
	}

	assert.Equal(t, []string{"author", "body", "seo", "title"}, ct.AttributeNames())
	assert.Equal(t, []string{"body", "title"}, ct.ScalarAttributeNames())
	assert.Equal(t, []string{"seo"}, ct.StructuralAttributeNames())
	assert.Equal(t, []string{"author"}, ct.RelationAttributeNames())
}

func TestParse(t *testing.T) {
	t.Run("decodes a full descriptor", func(t *testing.T) {
		ct, err := Parse([]byte(`
uid: article
modelType: contentType
draftAndPublish: true
localized: true
attributes:
  title:
    kind: string
    required: true
    maxLength: 120
  slug:
    kind: string
    unique: true
  seo:
    kind: component
    component: shared.seo
`))
		require.NoError(t, err)
		assert.Equal(t, "article", ct.UID)
		assert.True(t, ct.DraftAndPublish)
		assert.True(t, ct.Localized)
		assert.True(t, ct.Attributes["title"].Required)
		assert.Equal(t, 120, ct.Attributes["title"].MaxLength)
		assert.True(t, ct.Attributes["slug"].Unique)
		assert.Equal(t, "shared.seo", ct.Attributes["seo"].Component)
	})

	t.Run("defaults the model type", func(t *testing.T) {
		ct, err := Parse([]byte("uid: article"))
		require.NoError(t, err)
		assert.Equal(t, ModelContentType, ct.ModelType)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := Parse([]byte("uid: article\nbogus: true"))
		assert.Error(t, err)
	})
}

func TestRegistry_Validate(t *testing.T) {
	t.Run("rejects attributes shadowing engine columns", func(t *testing.T) {
		reg := NewRegistry()
		reg.MustRegister(&ContentType{
			UID:       "article",
			ModelType: ModelContentType,
			Attributes: map[string]*Attribute{
				"documentId": {Kind: KindString},
			},
		})
		assert.Error(t, reg.Validate())
	})

	t.Run("rejects unresolved component references", func(t *testing.T) {
		reg := NewRegistry()
		reg.MustRegister(&ContentType{
			UID:       "article",
			ModelType: ModelContentType,
			Attributes: map[string]*Attribute{
				"seo": {Kind: KindComponent, Component: "shared.missing"},
			},
		})
		assert.Error(t, reg.Validate())
	})

	t.Run("rejects unique on non-scalar kinds", func(t *testing.T) {
		reg := NewRegistry()
		reg.MustRegister(&ContentType{
			UID:       "shared.seo",
			ModelType: ModelComponent,
			Attributes: map[string]*Attribute{
				"title": {Kind: KindString},
			},
		})
		reg.MustRegister(&ContentType{
			UID:       "article",
			ModelType: ModelContentType,
			Attributes: map[string]*Attribute{
				"seo": {Kind: KindComponent, Component: "shared.seo", Unique: true},
			},
		})
		assert.Error(t, reg.Validate())
	})

	t.Run("accepts a consistent registry", func(t *testing.T) {
		reg := NewRegistry()
		reg.MustRegister(&ContentType{
			UID:       "shared.seo",
			ModelType: ModelComponent,
			Attributes: map[string]*Attribute{
				"metaTitle": {Kind: KindString},
			},
		})
		reg.MustRegister(&ContentType{
			UID:             "article",
			ModelType:       ModelContentType,
			DraftAndPublish: true,
			Attributes: map[string]*Attribute{
				"title": {Kind: KindString, Required: true},
				"seo":   {Kind: KindComponent, Component: "shared.seo"},
			},
		})
		assert.NoError(t, reg.Validate())
	})
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "article.yml"), []byte(`
modelType: contentType
draftAndPublish: true
attributes:
  title:
    kind: string
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	reg, err := LoadDir(dir)
	require.NoError(t, err)

	// The file name is the fallback UID.
	ct, err := reg.Get("article")
	require.NoError(t, err)
	assert.Equal(t, KindString, ct.Attributes["title"].Kind)
	assert.Equal(t, []string{"article"}, reg.UIDs())
}
