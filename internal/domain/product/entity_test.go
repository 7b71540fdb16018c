//go:build unit

package product_test

import (
	"testing"

	"solestore/internal/domain/product"
	"solestore/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		p, err := builder.NewProductBuilder().BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, "Air Runner Pro", p.Name())
		assert.Equal(t, int64(12_800), p.Price())
		assert.Equal(t, int32(10), p.Stock())
		assert.Equal(t, int32(0), p.Sold())
	})

	t.Run("name is trimmed and required", func(t *testing.T) {
		p, err := builder.NewProductBuilder().
			With(func(b *builder.ProductBuilder) { b.Name = "  Court Classic  " }).
			BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, "Court Classic", p.Name())

		_, err = builder.NewProductBuilder().
			With(func(b *builder.ProductBuilder) { b.Name = "   " }).
			BuildDomain()
		assert.ErrorIs(t, err, product.ErrEmptyName)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := builder.NewProductBuilder().
			With(func(b *builder.ProductBuilder) { b.Price = -1 }).
			BuildDomain()
		assert.ErrorIs(t, err, product.ErrNegativePrice)
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := builder.NewProductBuilder().
			With(func(b *builder.ProductBuilder) { b.Stock = -1 }).
			BuildDomain()
		assert.ErrorIs(t, err, product.ErrNegativeStock)
	})
}

func TestHasStock(t *testing.T) {
	p, err := builder.NewProductBuilder().
		With(func(b *builder.ProductBuilder) { b.Stock = 3 }).
		BuildDomain()
	require.NoError(t, err)

	assert.True(t, p.HasStock(1))
	assert.True(t, p.HasStock(3))
	assert.False(t, p.HasStock(4))
	assert.False(t, p.HasStock(0))
	assert.False(t, p.HasStock(-1))
}
