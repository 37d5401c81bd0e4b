package sku_test

import (
	"testing"

	"github.com/dukerupert/skuengine/internal/sku"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(combinations ...sku.Combination[int64]) sku.Product[int64] {
	p := sku.Product[int64]{
		ID:           10,
		SKU:          "PRODUCT-10",
		Price:        1500,
		Currency:     "USD",
		Status:       true,
		Subtract:     true,
		Stock:        5,
		Combinations: make(map[string]sku.Combination[int64]),
	}
	for _, c := range combinations {
		p.Combinations[c.Key] = c
	}
	return p
}

func combination(key, code string, price int64, stock int, status bool) sku.Combination[int64] {
	return sku.Combination[int64]{Key: key, SKU: code, Price: price, Stock: stock, Status: status}
}

func TestSelect_NoSelection(t *testing.T) {
	tests := []struct {
		name       string
		subtract   bool
		stock      int
		cartAccess bool
	}{
		{name: "not subtracting", subtract: false, stock: 0, cartAccess: true},
		{name: "subtracting with stock", subtract: true, stock: 3, cartAccess: true},
		{name: "subtracting without stock", subtract: true, stock: 0, cartAccess: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProduct()
			p.Subtract = tt.subtract
			p.Stock = tt.stock

			got := sku.Select(p, nil)

			assert.Equal(t, tt.cartAccess, got.CartAccess)
			assert.Equal(t, sku.SeverityNone, got.Severity)
			assert.Empty(t, got.Message)
			assert.Equal(t, "PRODUCT-10", got.SKU)
			assert.Equal(t, int64(1500), got.Price)
			assert.Equal(t, "USD", got.Currency)
			assert.False(t, got.NotMatched)
			assert.Nil(t, got.Combination)
		})
	}
}

func TestSelect_ProductDisabled(t *testing.T) {
	p := newProduct(combination("10-1_2", "TEE-RED-L", 1800, 4, true))
	p.Status = false

	got := sku.Select(p, []int64{2, 1})

	assert.Equal(t, sku.SeverityDanger, got.Severity)
	assert.Equal(t, sku.MessageUnavailable, got.Message)
	assert.True(t, got.CartAccess, "cart access keeps the base computation")
	assert.Equal(t, "PRODUCT-10", got.SKU, "no combination lookup for disabled products")
	assert.False(t, got.NotMatched)
	assert.Nil(t, got.Combination)
}

func TestSelect_NotMatched(t *testing.T) {
	p := newProduct(
		combination("10-1_2", "TEE-RED-L", 1800, 4, true),
		combination("10-1_3", "TEE-RED-XL", 1900, 4, true),
		combination("10-4_5", "TEE-BLUE-S", 1700, 4, true),
	)

	got := sku.Select(p, []int64{1, 9})

	assert.Equal(t, sku.SeverityDanger, got.Severity)
	assert.Equal(t, sku.MessageUnavailable, got.Message)
	assert.True(t, got.NotMatched)
	assert.False(t, got.CartAccess)
	assert.Equal(t, []int64{1, 2, 3}, got.Related)
	assert.Equal(t, "PRODUCT-10", got.SKU)
}

func TestSelect_NoCombinations(t *testing.T) {
	p := newProduct()
	p.Subtract = false

	got := sku.Select(p, []int64{1})

	assert.True(t, got.NotMatched)
	assert.False(t, got.CartAccess)
	assert.Empty(t, got.Related)
}

func TestSelect_DisabledCombination(t *testing.T) {
	p := newProduct(
		combination("10-1_2", "TEE-RED-L", 1800, 4, false),
		combination("10-2_3", "TEE-BLUE-L", 1800, 4, true),
	)

	got := sku.Select(p, []int64{1, 2})

	assert.True(t, got.NotMatched)
	assert.Equal(t, sku.SeverityDanger, got.Severity)
	assert.False(t, got.CartAccess)
	assert.Equal(t, []int64{1, 2, 3}, got.Related, "disabled combinations still contribute to the hint")
}

func TestSelect_Matched(t *testing.T) {
	p := newProduct(combination("10-1_2", "TEE-RED-L", 1800, 4, true))

	got := sku.Select(p, []int64{2, 1})

	assert.True(t, got.CartAccess)
	assert.Equal(t, sku.SeverityNone, got.Severity)
	assert.Empty(t, got.Message)
	assert.Equal(t, "TEE-RED-L", got.SKU)
	assert.Equal(t, int64(1800), got.Price)
	assert.Equal(t, "USD", got.Currency)
	require.NotNil(t, got.Combination)
	assert.Equal(t, "USD", got.Combination.Currency)
	assert.Empty(t, p.Combinations["10-1_2"].Currency, "product combinations are not modified")
}

func TestSelect_MatchedOutOfStock(t *testing.T) {
	p := newProduct(combination("10-1_2", "TEE-RED-L", 1800, 0, true))

	got := sku.Select(p, []int64{1, 2})

	assert.Equal(t, sku.SeverityWarning, got.Severity)
	assert.Equal(t, sku.MessageOutOfStock, got.Message)
	assert.False(t, got.CartAccess)
	assert.Equal(t, "TEE-RED-L", got.SKU)
	assert.Equal(t, int64(1800), got.Price)
}

func TestSelect_MatchedOutOfStockWithoutSubtract(t *testing.T) {
	p := newProduct(combination("10-1_2", "TEE-RED-L", 1800, 0, true))
	p.Subtract = false

	got := sku.Select(p, []int64{1, 2})

	assert.True(t, got.CartAccess)
	assert.Equal(t, sku.SeverityNone, got.Severity)
}

func TestSelect_Deterministic(t *testing.T) {
	p := newProduct(
		combination("10-1_2", "A", 1, 1, true),
		combination("10-1_3", "B", 1, 1, true),
		combination("10-3_4", "C", 1, 1, true),
	)

	first := sku.Select(p, []int64{3, 8})
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, sku.Select(p, []int64{8, 3}))
	}
}

func TestRelatedFieldValues_UsesPrecomputedFields(t *testing.T) {
	p := newProduct(sku.Combination[int64]{Key: "ignored", Fields: []int64{1, 7}, Status: true})

	assert.Equal(t, []int64{1, 7}, sku.RelatedFieldValues(p, []int64{7}))
}

func TestSelection_Outcome(t *testing.T) {
	p := newProduct(
		combination("10-1_2", "A", 1, 3, true),
		combination("10-1_3", "B", 1, 0, true),
	)
	disabled := p
	disabled.Status = false

	tests := []struct {
		name     string
		product  sku.Product[int64]
		ids      []int64
		expected string
	}{
		{name: "base", product: p, ids: nil, expected: sku.OutcomeBase},
		{name: "unavailable", product: disabled, ids: []int64{1, 2}, expected: sku.OutcomeUnavailable},
		{name: "not matched", product: p, ids: []int64{2, 3}, expected: sku.OutcomeNotMatched},
		{name: "out of stock", product: p, ids: []int64{1, 3}, expected: sku.OutcomeOutOfStock},
		{name: "matched", product: p, ids: []int64{1, 2}, expected: sku.OutcomeMatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sku.Select(tt.product, tt.ids).Outcome())
		})
	}
}
