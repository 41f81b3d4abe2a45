package docid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("round-trips the canonical form", func(t *testing.T) {
		id := New()
		parsed, err := Parse(id.String())
		require.NoError(t, err)
		assert.True(t, id.Equal(parsed))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := Parse("not-a-document-id")
		assert.Error(t, err)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := Parse("")
		assert.Error(t, err)
	})
}

func TestID_IsZero(t *testing.T) {
	var zero ID
	assert.True(t, zero.IsZero())
	assert.False(t, New().IsZero())
}

func TestID_JSON(t *testing.T) {
	t.Run("marshals as a string", func(t *testing.T) {
		id := MustParse("550e8400-e29b-41d4-a716-446655440000")
		raw, err := json.Marshal(id)
		require.NoError(t, err)
		assert.Equal(t, `"550e8400-e29b-41d4-a716-446655440000"`, string(raw))
	})

	t.Run("unmarshals back to the same ID", func(t *testing.T) {
		id := New()
		raw, err := json.Marshal(id)
		require.NoError(t, err)

		var decoded ID
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.True(t, id.Equal(decoded))
	})
}

func TestID_Value(t *testing.T) {
	t.Run("zero ID stores as NULL", func(t *testing.T) {
		var zero ID
		v, err := zero.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("non-zero ID stores its string form", func(t *testing.T) {
		id := New()
		v, err := id.Value()
		require.NoError(t, err)
		assert.Equal(t, id.String(), v)
	})
}

func TestSequenceGenerator(t *testing.T) {
	a, b := New(), New()
	gen := &SequenceGenerator{IDs: []ID{a, b}}

	assert.True(t, a.Equal(gen.NewID()))
	assert.True(t, b.Equal(gen.NewID()))
	assert.Panics(t, func() { gen.NewID() })
}
