package sku

import (
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ID is the set of identifier types accepted for products, stores and field values.
type ID interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~string
}

const (
	// ScopeSeparator separates the product ID from the field value list.
	ScopeSeparator = "-"

	// ValueSeparator separates field value IDs within a combination key.
	ValueSeparator = "_"
)

// CombinationKey returns the canonical key for a set of field value IDs.
// The IDs are sorted ascending, so any ordering of the same set yields the
// same key. A non-zero productID scopes the key as "{productID}-{ids}"; the
// zero value produces the unscoped form.
//
// IDs containing ScopeSeparator or ValueSeparator are not escaped and will
// not survive a round trip through FieldValues.
func CombinationKey[T ID](fieldValueIDs []T, productID T) string {
	sorted := slices.Clone(fieldValueIDs)
	slices.Sort(sorted)

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = formatID(id)
	}
	key := strings.Join(parts, ValueSeparator)

	var zero T
	if productID == zero {
		return key
	}
	return formatID(productID) + ScopeSeparator + key
}

// FieldValues decodes a combination key back into its field value IDs,
// sorted ascending. Text up to and including the first ScopeSeparator is
// treated as the product scope and discarded. Empty or unparsable segments
// are skipped, so malformed keys yield an empty slice rather than an error.
func FieldValues[T ID](key string) []T {
	rest := key
	if i := strings.Index(key, ScopeSeparator); i >= 0 {
		rest = key[i+len(ScopeSeparator):]
	}

	segments := strings.Split(rest, ValueSeparator)
	ids := make([]T, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		id, ok := parseID[T](segment)
		if !ok {
			continue
		}
		ids = append(ids, id)
	}

	slices.Sort(ids)
	return ids
}

func formatID[T ID](id T) string {
	v := reflect.ValueOf(id)
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	default:
		return strconv.FormatUint(v.Uint(), 10)
	}
}

func parseID[T ID](s string) (T, bool) {
	var id T
	v := reflect.ValueOf(&id).Elem()

	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, v.Type().Bits())
		if err != nil {
			return id, false
		}
		v.SetInt(n)
	default:
		n, err := strconv.ParseUint(s, 10, v.Type().Bits())
		if err != nil {
			return id, false
		}
		v.SetUint(n)
	}

	return id, true
}
