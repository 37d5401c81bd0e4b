package repository

import (
	"context"
)

type Querier interface {
	CountProductSkus(ctx context.Context, arg ProductSkuFilterParams) (int64, error)
	DeleteProductSkus(ctx context.Context, arg DeleteProductSkusParams) (int64, error)
	GetProduct(ctx context.Context, productID int64) (Product, error)
	InsertProductSku(ctx context.Context, arg InsertProductSkuParams) (int64, error)
	ListProductCombinations(ctx context.Context, productID int64) ([]ProductSku, error)
	ListProductSkus(ctx context.Context, arg ListProductSkusParams) ([]ListProductSkusRow, error)
	SkuExists(ctx context.Context, arg SkuExistsParams) (bool, error)
}

var _ Querier = (*Queries)(nil)
