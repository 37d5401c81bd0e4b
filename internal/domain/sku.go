package domain

import (
	"context"

	"github.com/dukerupert/skuengine/internal/sku"
	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// SKU DOMAIN TYPES
// =============================================================================

// SkuRecord is a persisted product SKU. The base SKU of a product has an
// empty CombinationID; every variant row carries its combination key.
type SkuRecord struct {
	ID            int64
	ProductID     int64
	CombinationID string
	Sku           string

	// Pricing and inventory
	Price  int64 // minor units
	Stock  int32
	Status bool
	Image  pgtype.Text

	// Joined from the owning product for listings
	Title    string
	Currency string
	StoreID  int64

	// Fields holds the field value IDs decoded from CombinationID.
	Fields []int64

	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// IsBase reports whether the record is the product's base SKU.
func (r SkuRecord) IsBase() bool {
	return r.CombinationID == ""
}

// =============================================================================
// SERVICE INTERFACE
// =============================================================================

// SkuService manages product SKUs and resolves variant selections.
type SkuService interface {
	// -------------------------------------------------------------------------
	// Lookup
	// -------------------------------------------------------------------------

	// Get retrieves a SKU by its ID.
	Get(ctx context.Context, id int64) (*SkuRecord, error)

	// GetBy retrieves the first SKU matching filter.
	GetBy(ctx context.Context, filter SkuFilter) (*SkuRecord, error)

	// List returns SKUs matching filter ordered by SKU string.
	List(ctx context.Context, filter SkuFilter) ([]SkuRecord, error)

	// Count returns the number of SKUs matching filter.
	Count(ctx context.Context, filter SkuFilter) (int64, error)

	// -------------------------------------------------------------------------
	// Write operations
	// -------------------------------------------------------------------------

	// Add stores a new SKU and returns its ID.
	Add(ctx context.Context, params AddSkuParams) (int64, error)

	// Delete removes SKUs of a product. Returns whether any row was removed.
	Delete(ctx context.Context, productID int64, opts DeleteSkuOptions) (bool, error)

	// -------------------------------------------------------------------------
	// Generation
	// -------------------------------------------------------------------------

	// Generate expands a pattern and makes it unique within the store.
	Generate(ctx context.Context, pattern string, placeholders map[string]string, record map[string]any, storeID int64) (string, error)

	// Pattern returns the configured SKU pattern.
	Pattern() string

	// Placeholders returns the configured pattern placeholders.
	Placeholders() map[string]string

	// -------------------------------------------------------------------------
	// Variant selection
	// -------------------------------------------------------------------------

	// LoadProduct assembles a product and its combinations for selection.
	LoadProduct(ctx context.Context, productID int64) (*sku.Product[int64], error)

	// SelectCombination loads a product and resolves the selected field values.
	SelectCombination(ctx context.Context, productID int64, fieldValueIDs []int64) (*sku.Selection[int64], error)
}

// =============================================================================
// PARAMETER TYPES
// =============================================================================

// SkuFilter contains optional filters for SKU lookups. Nil fields are ignored.
type SkuFilter struct {
	ProductSkuID  *int64
	ProductID     *int64
	CombinationID *string
	Sku           *string
	TitleSku      *string // substring of product title or SKU
	StoreID       *int64
	Status        *bool
	Limit         *Limit
}

// Limit restricts a listing to Count rows starting at Offset.
type Limit struct {
	Offset int32
	Count  int32
}

// AddSkuParams contains parameters for adding a SKU.
type AddSkuParams struct {
	ProductID     int64  `validate:"required,gt=0"`
	CombinationID string `validate:"max=255"`
	Sku           string `validate:"required,max=255"`
	Price         int64  `validate:"gte=0"`
	Stock         int32  `validate:"gte=0"`
	Status        bool
	Image         string `validate:"omitempty,max=255"`
}

// DeleteSkuOptions narrows a product SKU deletion. With neither flag set,
// every SKU of the product is removed.
type DeleteSkuOptions struct {
	Combinations bool // only variant rows
	Base         bool // only the base row
}

// =============================================================================
// DOMAIN ERRORS
// =============================================================================

// SKU-specific errors.
var (
	ErrSkuNotFound     = &Error{Code: ENOTFOUND, Message: "SKU not found"}
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}

	ErrDuplicateCombination = &Error{Code: ECONFLICT, Message: "Combination already has a SKU"}

	ErrInvalidCombinationKey = &Error{Code: EINVALID, Message: "Combination key does not belong to product"}
)
