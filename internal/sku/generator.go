package sku

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxLength is the number of characters a pattern expansion is clamped to
// before uniqueness is checked. A collision suffix may extend past it.
const MaxLength = 200

// DefaultPattern is used when the store configuration has no SKU pattern.
const DefaultPattern = "PRODUCT-%i"

// DefaultPlaceholders returns the placeholder mapping used when the store
// configuration has none.
func DefaultPlaceholders() map[string]string {
	return map[string]string{"%i": "product_id"}
}

// Lookup reports whether a SKU string is already taken within a store.
// A zero storeID means the check is not scoped to a store.
type Lookup[T ID] interface {
	SkuExists(ctx context.Context, sku string, storeID T) (bool, error)
}

// LookupFunc adapts an ordinary function to the Lookup interface.
type LookupFunc[T ID] func(ctx context.Context, sku string, storeID T) (bool, error)

// SkuExists calls f(ctx, sku, storeID).
func (f LookupFunc[T]) SkuExists(ctx context.Context, sku string, storeID T) (bool, error) {
	return f(ctx, sku, storeID)
}

// Generator expands SKU patterns and makes the result unique per store.
type Generator[T ID] struct {
	lookup Lookup[T]
	logger *slog.Logger
}

// NewGenerator creates a generator that checks candidates against lookup.
func NewGenerator[T ID](lookup Lookup[T], logger *slog.Logger) *Generator[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator[T]{lookup: lookup, logger: logger}
}

// Generate expands pattern with values from record and returns a SKU that is
// not yet taken in the store. Lookup failures are returned unchanged.
func (g *Generator[T]) Generate(ctx context.Context, pattern string, placeholders map[string]string, record map[string]any, storeID T) (string, error) {
	sku, _, err := g.Unique(ctx, Expand(pattern, placeholders, record), storeID)
	return sku, err
}

// Unique returns sku if it is free, otherwise the first free "sku-N" for
// N = 1, 2, 3, ... The second return value is the suffix used (0 when the
// candidate was free as given).
func (g *Generator[T]) Unique(ctx context.Context, sku string, storeID T) (string, int, error) {
	taken, err := g.lookup.SkuExists(ctx, sku, storeID)
	if err != nil {
		return "", 0, err
	}
	if !taken {
		return sku, 0, nil
	}

	for counter := 1; ; counter++ {
		if err := ctx.Err(); err != nil {
			return "", counter, err
		}

		candidate := sku + "-" + strconv.Itoa(counter)
		taken, err := g.lookup.SkuExists(ctx, candidate, storeID)
		if err != nil {
			return "", counter, err
		}
		if !taken {
			g.logger.Debug("sku collision resolved",
				slog.String("sku", sku),
				slog.String("result", candidate),
				slog.Int("suffix", counter),
			)
			return candidate, counter, nil
		}
	}
}

// Expand substitutes placeholder tokens in pattern and clamps the result to
// MaxLength characters. Each token maps to a field name in record; tokens
// whose field is missing or nil are left in place verbatim. Longer tokens
// take precedence when tokens share a prefix.
func Expand(pattern string, placeholders map[string]string, record map[string]any) string {
	type replacement struct {
		token string
		value string
	}

	replacements := make([]replacement, 0, len(placeholders))
	for token, field := range placeholders {
		if token == "" {
			continue
		}
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		replacements = append(replacements, replacement{token: token, value: formatValue(value)})
	}

	if len(replacements) == 0 {
		return Truncate(pattern, MaxLength)
	}

	slices.SortFunc(replacements, func(a, b replacement) int {
		if c := cmp.Compare(len(b.token), len(a.token)); c != 0 {
			return c
		}
		return strings.Compare(a.token, b.token)
	})

	oldnew := make([]string, 0, 2*len(replacements))
	for _, r := range replacements {
		oldnew = append(oldnew, r.token, r.value)
	}

	return Truncate(strings.NewReplacer(oldnew...).Replace(pattern), MaxLength)
}

// formatValue renders a record value for substitution. Floats are written
// in plain decimal form so whole numbers never appear as exponents.
func formatValue(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// Truncate returns the first n characters of s without splitting a
// multi-byte character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
