package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalUnmarshal(t *testing.T) {
	type patch struct {
		Description Optional[string] `json:"description"`
	}

	t.Run("absent field stays unset", func(t *testing.T) {
		var p patch
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.Description.Set)
	})

	t.Run("explicit null sets without value", func(t *testing.T) {
		var p patch
		require.NoError(t, json.Unmarshal([]byte(`{"description": null}`), &p))
		assert.True(t, p.Description.Set)
		assert.Nil(t, p.Description.Value)
	})

	t.Run("value sets with value", func(t *testing.T) {
		var p patch
		require.NoError(t, json.Unmarshal([]byte(`{"description": "hello"}`), &p))
		assert.True(t, p.Description.Set)
		require.NotNil(t, p.Description.Value)
		assert.Equal(t, "hello", *p.Description.Value)
	})
}

func TestOptionalHelpers(t *testing.T) {
	some := Some(42)
	assert.True(t, some.Set)
	require.NotNil(t, some.Value)
	assert.Equal(t, 42, *some.Value)

	null := Null[int]()
	assert.True(t, null.Set)
	assert.Nil(t, null.Value)
}
