package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Product struct {
	ProductID int64
	StoreID   int64
	Title     string
	Sku       string
	Price     int64
	Currency  string
	Stock     int32
	Subtract  bool
	Status    bool
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type ProductSku struct {
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
}
