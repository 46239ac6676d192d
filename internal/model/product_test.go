package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Validate(t *testing.T) {
	t.Run("missing code", func(t *testing.T) {
		p := Product{Name: "Plate"}
		err := p.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "code", vErr.Field)
	})

	t.Run("blank name", func(t *testing.T) {
		p := Product{Code: "YA25", Name: "   "}
		err := p.Validate()
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("compatible without type", func(t *testing.T) {
		p := Product{Code: "YA25", Name: "Plate", Compatibles: []CompatibleRef{{Code: "BB10"}}}
		err := p.Validate()
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "compatibles[0].type is required", err.Error())
	})

	t.Run("valid", func(t *testing.T) {
		p := Product{Code: "YA25", Name: "Plate", Compatibles: []CompatibleRef{{Code: "BB10", Type: "Base"}}}
		assert.NoError(t, p.Validate())
	})
}

func TestProduct_ApplyDefaults(t *testing.T) {
	p := Product{Code: "YA25", Name: "Plate"}
	p.ApplyDefaults()

	assert.Equal(t, DefaultProvider, p.Provider)
	require.NotNil(t, p.Compatibles)
	assert.Empty(t, p.Compatibles)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"compatibles":[]`)
}

func TestProduct_Category(t *testing.T) {
	assert.Equal(t, Uncategorized, (&Product{}).Category())
	assert.Equal(t, "Mount", (&Product{Type: "Mount"}).Category())
}

func TestStoreError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreError("products.find", cause)

	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "products.find: connection refused", err.Error())
}
