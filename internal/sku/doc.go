// Package sku implements the product variant engine: canonical combination
// keys for sets of field values, unique SKU generation from store patterns,
// and resolution of a shopper's field value selection to a sellable unit.
//
// The package is pure apart from the Lookup collaborator used during SKU
// generation. Every function is safe for concurrent use.
package sku
