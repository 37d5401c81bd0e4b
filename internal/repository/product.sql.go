package repository

import (
	"context"
)

const getProduct = `-- name: GetProduct :one
SELECT product_id, store_id, title, sku, price, currency, stock, subtract, status, created_at, updated_at
FROM product
WHERE product_id = $1
`

func (q *Queries) GetProduct(ctx context.Context, productID int64) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, productID)
	var i Product
	err := row.Scan(
		&i.ProductID,
		&i.StoreID,
		&i.Title,
		&i.Sku,
		&i.Price,
		&i.Currency,
		&i.Stock,
		&i.Subtract,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
