package cache_test

import (
	"testing"
	"time"

	"github.com/dukerupert/skuengine/internal/cache"
	"github.com/dukerupert/skuengine/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestKey(t *testing.T) {
	base := domain.SkuFilter{ProductID: ptr(int64(10)), Status: ptr(true)}

	t.Run("same filter same key", func(t *testing.T) {
		other := domain.SkuFilter{ProductID: ptr(int64(10)), Status: ptr(true)}
		assert.Equal(t, cache.Key("list", base), cache.Key("list", other))
	})

	t.Run("operation is part of the key", func(t *testing.T) {
		assert.NotEqual(t, cache.Key("list", base), cache.Key("count", base))
	})

	t.Run("unset differs from zero", func(t *testing.T) {
		assert.NotEqual(t,
			cache.Key("list", domain.SkuFilter{}),
			cache.Key("list", domain.SkuFilter{StoreID: ptr(int64(0))}),
		)
	})

	t.Run("fields do not alias", func(t *testing.T) {
		assert.NotEqual(t,
			cache.Key("list", domain.SkuFilter{ProductID: ptr(int64(5))}),
			cache.Key("list", domain.SkuFilter{StoreID: ptr(int64(5))}),
		)
		assert.NotEqual(t,
			cache.Key("list", domain.SkuFilter{Sku: ptr("A")}),
			cache.Key("list", domain.SkuFilter{TitleSku: ptr("A")}),
		)
	})

	t.Run("limit is part of the key", func(t *testing.T) {
		paged := base
		paged.Limit = &domain.Limit{Offset: 0, Count: 1}
		assert.NotEqual(t, cache.Key("list", base), cache.Key("list", paged))
	})
}

func TestProductTag(t *testing.T) {
	assert.Equal(t, int64(7), cache.ProductTag(domain.SkuFilter{ProductID: ptr(int64(7))}))
	assert.Equal(t, cache.AnyProduct, cache.ProductTag(domain.SkuFilter{Sku: ptr("X")}))
}

func TestSkuCache_InvalidateProduct(t *testing.T) {
	c := cache.NewSkuCache(time.Minute)
	c.Lists.Set(1, 7, []domain.SkuRecord{{ID: 1}})
	c.Counts.Set(2, 7, 1)
	c.Counts.Set(3, 8, 4)

	c.InvalidateProduct(7)

	assert.Equal(t, 0, c.Lists.Len())
	assert.Equal(t, 1, c.Counts.Len())

	c.Invalidate()
	assert.Equal(t, 0, c.Counts.Len())

	var nilCache *cache.SkuCache
	nilCache.InvalidateProduct(7)
	nilCache.Invalidate()
}
