package cache

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dukerupert/skuengine/internal/domain"
)

// SkuCache bundles the listing and counting caches of the SKU service.
type SkuCache struct {
	Lists  *Store[[]domain.SkuRecord]
	Counts *Store[int64]
}

// NewSkuCache creates a SKU cache with the given entry lifetime.
// A zero ttl yields a cache that never stores anything.
func NewSkuCache(ttl time.Duration) *SkuCache {
	return &SkuCache{
		Lists:  NewStore[[]domain.SkuRecord](ttl),
		Counts: NewStore[int64](ttl),
	}
}

// InvalidateProduct drops cached lookups that may include productID.
func (c *SkuCache) InvalidateProduct(productID int64) {
	if c == nil {
		return
	}
	c.Lists.InvalidateProduct(productID)
	c.Counts.InvalidateProduct(productID)
}

// ListGeneration returns the listing store's invalidation counter.
func (c *SkuCache) ListGeneration() uint64 {
	if c == nil {
		return 0
	}
	return c.Lists.Generation()
}

// CountGeneration returns the counting store's invalidation counter.
func (c *SkuCache) CountGeneration() uint64 {
	if c == nil {
		return 0
	}
	return c.Counts.Generation()
}

// Invalidate drops every cached lookup.
func (c *SkuCache) Invalidate() {
	if c == nil {
		return
	}
	c.Lists.Invalidate()
	c.Counts.Invalidate()
}

// ProductTag returns the product an entry for filter should be tagged with.
func ProductTag(filter domain.SkuFilter) int64 {
	if filter.ProductID != nil {
		return *filter.ProductID
	}
	return AnyProduct
}

// Key hashes op and every filter parameter into a cache key. Unset and
// set-to-zero parameters hash differently.
func Key(op string, filter domain.SkuFilter) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(op)

	writeInt(d, "product_sku_id", filter.ProductSkuID)
	writeInt(d, "product_id", filter.ProductID)
	writeString(d, "combination_id", filter.CombinationID)
	writeString(d, "sku", filter.Sku)
	writeString(d, "title_sku", filter.TitleSku)
	writeInt(d, "store_id", filter.StoreID)

	if filter.Status != nil {
		writeField(d, "status", strconv.FormatBool(*filter.Status))
	}
	if filter.Limit != nil {
		writeField(d, "limit", strconv.Itoa(int(filter.Limit.Offset))+","+strconv.Itoa(int(filter.Limit.Count)))
	}

	return d.Sum64()
}

func writeInt(d *xxhash.Digest, name string, v *int64) {
	if v != nil {
		writeField(d, name, strconv.FormatInt(*v, 10))
	}
}

func writeString(d *xxhash.Digest, name string, v *string) {
	if v != nil {
		writeField(d, name, strconv.Quote(*v))
	}
}

func writeField(d *xxhash.Digest, name, value string) {
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(name)
	_, _ = d.WriteString("=")
	_, _ = d.WriteString(value)
}
