package sku_test

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/dukerupert/skuengine/internal/sku"
	"github.com/stretchr/testify/assert"
)

func TestCombinationKey(t *testing.T) {
	tests := []struct {
		name      string
		ids       []int64
		productID int64
		expected  string
	}{
		{
			name:      "product scoped",
			ids:       []int64{3, 1, 2},
			productID: 7,
			expected:  "7-1_2_3",
		},
		{
			name:     "unscoped",
			ids:      []int64{12, 4},
			expected: "4_12",
		},
		{
			name:      "numeric order not lexical",
			ids:       []int64{10, 9, 100},
			productID: 1,
			expected:  "1-9_10_100",
		},
		{
			name:      "single value",
			ids:       []int64{5},
			productID: 2,
			expected:  "2-5",
		},
		{
			name:      "empty set keeps trailing separator",
			ids:       nil,
			productID: 7,
			expected:  "7-",
		},
		{
			name:     "empty unscoped",
			ids:      []int64{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sku.CombinationKey(tt.ids, tt.productID))
		})
	}
}

func TestCombinationKey_OrderIndependent(t *testing.T) {
	assert.Equal(t,
		sku.CombinationKey([]int{3, 1, 2}, 7),
		sku.CombinationKey([]int{1, 3, 2}, 7),
	)
}

func TestCombinationKey_DoesNotMutateInput(t *testing.T) {
	ids := []int{3, 1, 2}
	sku.CombinationKey(ids, 7)
	assert.Equal(t, []int{3, 1, 2}, ids)
}

func TestCombinationKey_StringIDs(t *testing.T) {
	assert.Equal(t, "shirt-blue_large", sku.CombinationKey([]string{"large", "blue"}, "shirt"))
	assert.Equal(t, []string{"blue", "large"}, sku.FieldValues[string]("shirt-blue_large"))
}

type fieldValueID uint32

func TestCombinationKey_NamedIDType(t *testing.T) {
	key := sku.CombinationKey([]fieldValueID{20, 3}, 1)
	assert.Equal(t, "1-3_20", key)
	assert.Equal(t, []fieldValueID{3, 20}, sku.FieldValues[fieldValueID](key))
}

func TestFieldValues(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected []int64
	}{
		{name: "scoped", key: "7-1_2_3", expected: []int64{1, 2, 3}},
		{name: "unscoped", key: "3_1_2", expected: []int64{1, 2, 3}},
		{name: "sorted numerically", key: "1-100_9_10", expected: []int64{9, 10, 100}},
		{name: "trailing separator", key: "7-", expected: []int64{}},
		{name: "empty", key: "", expected: []int64{}},
		{name: "empty segments", key: "7-1__2_", expected: []int64{1, 2}},
		{name: "garbage segments skipped", key: "7-1_abc_2", expected: []int64{1, 2}},
		{name: "only first separator is scope", key: "7-1-2_3", expected: []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sku.FieldValues[int64](tt.key))
		})
	}
}

func TestFieldValues_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		size := rng.Intn(6)
		seen := make(map[int64]bool)
		ids := make([]int64, 0, size)
		for len(ids) < size {
			id := rng.Int63n(10000)
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}

		productID := rng.Int63n(3)

		want := slices.Clone(ids)
		slices.Sort(want)

		got := sku.FieldValues[int64](sku.CombinationKey(ids, productID))
		assert.Equal(t, want, got, "ids=%v product=%d", ids, productID)
	}
}
