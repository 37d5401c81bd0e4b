package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const productSkuFilter = `
WHERE ($1::bigint IS NULL OR ps.product_sku_id = $1)
  AND ($2::bigint IS NULL OR ps.product_id = $2)
  AND ($3::text IS NULL OR ps.combination_id = $3)
  AND ($4::text IS NULL OR ps.sku = $4)
  AND ($5::text IS NULL OR p.title ILIKE '%' || $5 || '%' OR ps.sku ILIKE '%' || $5 || '%')
  AND ($6::bigint IS NULL OR p.store_id = $6)
  AND ($7::boolean IS NULL OR ps.status = $7)
`

// ProductSkuFilterParams holds the optional filters shared by listing and
// counting. Invalid (NULL) values disable the corresponding condition.
type ProductSkuFilterParams struct {
	ProductSkuID  pgtype.Int8
	ProductID     pgtype.Int8
	CombinationID pgtype.Text
	Sku           pgtype.Text
	TitleSku      pgtype.Text
	StoreID       pgtype.Int8
	Status        pgtype.Bool
}

func (arg ProductSkuFilterParams) args() []interface{} {
	return []interface{}{
		arg.ProductSkuID,
		arg.ProductID,
		arg.CombinationID,
		arg.Sku,
		arg.TitleSku,
		arg.StoreID,
		arg.Status,
	}
}

const listProductSkus = `-- name: ListProductSkus :many
SELECT ps.product_sku_id, ps.product_id, ps.combination_id, ps.sku, ps.price, ps.stock,
       ps.status, ps.image, ps.created_at, ps.updated_at,
       p.title, p.currency, p.store_id
FROM product_sku ps
LEFT JOIN product p ON ps.product_id = p.product_id
` + productSkuFilter + `
ORDER BY ps.sku ASC, ps.product_sku_id ASC
LIMIT $8 OFFSET $9
`

type ListProductSkusParams struct {
	ProductSkuFilterParams
	Limit  pgtype.Int4
	Offset pgtype.Int4
}

type ListProductSkusRow struct {
	ProductSkuID  int64
	ProductID     int64
	CombinationID string
	Sku           string
	Price         int64
	Stock         int32
	Status        bool
	Image         pgtype.Text
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
	Title         pgtype.Text
	Currency      pgtype.Text
	StoreID       pgtype.Int8
}

func (q *Queries) ListProductSkus(ctx context.Context, arg ListProductSkusParams) ([]ListProductSkusRow, error) {
	args := append(arg.args(), arg.Limit, arg.Offset)
	rows, err := q.db.Query(ctx, listProductSkus, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListProductSkusRow
	for rows.Next() {
		var i ListProductSkusRow
		if err := rows.Scan(
			&i.ProductSkuID,
			&i.ProductID,
			&i.CombinationID,
			&i.Sku,
			&i.Price,
			&i.Stock,
			&i.Status,
			&i.Image,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.Title,
			&i.Currency,
			&i.StoreID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countProductSkus = `-- name: CountProductSkus :one
SELECT COUNT(ps.product_sku_id)
FROM product_sku ps
LEFT JOIN product p ON ps.product_id = p.product_id
` + productSkuFilter

func (q *Queries) CountProductSkus(ctx context.Context, arg ProductSkuFilterParams) (int64, error) {
	row := q.db.QueryRow(ctx, countProductSkus, arg.args()...)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const skuExists = `-- name: SkuExists :one
SELECT EXISTS (
    SELECT 1
    FROM product_sku ps
    LEFT JOIN product p ON ps.product_id = p.product_id
    WHERE ps.sku = $1
      AND ($2::bigint IS NULL OR p.store_id = $2)
)
`

type SkuExistsParams struct {
	Sku     string
	StoreID pgtype.Int8
}

func (q *Queries) SkuExists(ctx context.Context, arg SkuExistsParams) (bool, error) {
	row := q.db.QueryRow(ctx, skuExists, arg.Sku, arg.StoreID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listProductCombinations = `-- name: ListProductCombinations :many
SELECT product_sku_id, product_id, combination_id, sku, price, stock, status, image, created_at, updated_at
FROM product_sku
WHERE product_id = $1
  AND LENGTH(combination_id) > 0
ORDER BY combination_id ASC
`

func (q *Queries) ListProductCombinations(ctx context.Context, productID int64) ([]ProductSku, error) {
	rows, err := q.db.Query(ctx, listProductCombinations, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProductSku
	for rows.Next() {
		var i ProductSku
		if err := rows.Scan(
			&i.ProductSkuID,
			&i.ProductID,
			&i.CombinationID,
			&i.Sku,
			&i.Price,
			&i.Stock,
			&i.Status,
			&i.Image,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertProductSku = `-- name: InsertProductSku :one
INSERT INTO product_sku (product_id, combination_id, sku, price, stock, status, image)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING product_sku_id
`

type InsertProductSkuParams struct {
	ProductID     int64
	CombinationID string
	Sku           string
	Price         int64
	Stock         int32
	Status        bool
	Image         pgtype.Text
}

func (q *Queries) InsertProductSku(ctx context.Context, arg InsertProductSkuParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertProductSku,
		arg.ProductID,
		arg.CombinationID,
		arg.Sku,
		arg.Price,
		arg.Stock,
		arg.Status,
		arg.Image,
	)
	var productSkuID int64
	err := row.Scan(&productSkuID)
	return productSkuID, err
}

const deleteProductSkus = `-- name: DeleteProductSkus :execrows
DELETE FROM product_sku
WHERE product_id = $1
  AND (NOT $2::boolean OR LENGTH(combination_id) > 0)
  AND (NOT $3::boolean OR LENGTH(combination_id) = 0)
`

type DeleteProductSkusParams struct {
	ProductID        int64
	OnlyCombinations bool
	OnlyBase         bool
}

func (q *Queries) DeleteProductSkus(ctx context.Context, arg DeleteProductSkusParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProductSkus, arg.ProductID, arg.OnlyCombinations, arg.OnlyBase)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
