package sku

import "slices"

// Severity classifies a selection outcome for display.
type Severity string

const (
	SeverityNone    Severity = ""
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Messages shown alongside a non-empty severity.
const (
	MessageUnavailable = "Unavailable"
	MessageOutOfStock  = "Out of stock"
)

// Combination is one variant of a product, addressed by its combination key.
type Combination[T ID] struct {
	Key      string
	Fields   []T // decoded from Key when empty
	SKU      string
	Price    int64 // minor units
	Currency string
	Stock    int
	Status   bool
	Image    string
}

// FieldValues returns the combination's field value IDs.
func (c Combination[T]) FieldValues() []T {
	if len(c.Fields) > 0 {
		return c.Fields
	}
	return FieldValues[T](c.Key)
}

// Product is the read-only view of a product the resolver works on.
type Product[T ID] struct {
	ID       T
	SKU      string
	Price    int64 // minor units
	Currency string
	Status   bool

	// Subtract enables stock enforcement for the product and its combinations.
	Subtract bool
	Stock    int

	// Combinations is keyed by product-scoped combination key.
	Combinations map[string]Combination[T]
}

// Selection is the sellable unit resolved for a set of field values.
type Selection[T ID] struct {
	SKU        string
	Price      int64
	Currency   string
	CartAccess bool
	Severity   Severity
	Message    string

	// NotMatched is set when no enabled combination exists for the request.
	// Related then holds field values of combinations sharing at least one
	// requested value.
	NotMatched bool
	Related    []T

	// Combination is the matched variant, with the product currency.
	Combination *Combination[T]
}

// Select resolves fieldValueIDs against product. The first matching rule wins:
//
//  1. no field values: the base product, cart access when in stock or not subtracting
//  2. product disabled: danger / Unavailable
//  3. combination missing or disabled: danger / Unavailable, no cart access, related hint
//  4. combination enabled: its SKU and price; warning / Out of stock when subtracting at zero stock
func Select[T ID](product Product[T], fieldValueIDs []T) Selection[T] {
	result := Selection[T]{
		SKU:        product.SKU,
		Price:      product.Price,
		Currency:   product.Currency,
		CartAccess: product.Stock > 0 || !product.Subtract,
	}

	if len(fieldValueIDs) == 0 {
		return result
	}

	if !product.Status {
		result.Severity = SeverityDanger
		result.Message = MessageUnavailable
		return result
	}

	key := CombinationKey(fieldValueIDs, product.ID)
	combination, ok := product.Combinations[key]
	if !ok || !combination.Status {
		result.NotMatched = true
		result.CartAccess = false
		result.Severity = SeverityDanger
		result.Message = MessageUnavailable
		result.Related = RelatedFieldValues(product, fieldValueIDs)
		return result
	}

	combination.Currency = product.Currency
	result.Combination = &combination
	result.SKU = combination.SKU
	result.Price = combination.Price

	if combination.Stock <= 0 && product.Subtract {
		result.CartAccess = false
		result.Severity = SeverityWarning
		result.Message = MessageOutOfStock
		return result
	}

	result.CartAccess = true
	return result
}

// RelatedFieldValues returns the union of field values of every combination
// that shares at least one value with ids, sorted ascending. It is a hint for
// highlighting reachable options, not an enumeration of valid combinations.
func RelatedFieldValues[T ID](product Product[T], ids []T) []T {
	requested := make(map[T]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	union := make(map[T]struct{})
	for _, combination := range product.Combinations {
		fields := combination.FieldValues()
		if !intersects(fields, requested) {
			continue
		}
		for _, id := range fields {
			union[id] = struct{}{}
		}
	}

	related := make([]T, 0, len(union))
	for id := range union {
		related = append(related, id)
	}
	slices.Sort(related)
	return related
}

func intersects[T ID](fields []T, set map[T]struct{}) bool {
	for _, id := range fields {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// Selection outcomes, one per resolver rule.
const (
	OutcomeBase        = "base"
	OutcomeUnavailable = "unavailable"
	OutcomeNotMatched  = "not_matched"
	OutcomeOutOfStock  = "out_of_stock"
	OutcomeMatched     = "matched"
)

// Outcome names the resolver rule that produced s.
func (s Selection[T]) Outcome() string {
	switch {
	case s.NotMatched:
		return OutcomeNotMatched
	case s.Combination != nil && s.Severity == SeverityWarning:
		return OutcomeOutOfStock
	case s.Combination != nil:
		return OutcomeMatched
	case s.Severity == SeverityDanger:
		return OutcomeUnavailable
	default:
		return OutcomeBase
	}
}
