package domain

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Medicine struct {
	ID             string          `db:"medicine_id" json:"medicine_id"`
	Name           string          `db:"name" json:"name"`
	ManufacturerID string          `db:"manufacturer_id" json:"manufacturer_id"`
	SupplierID     string          `db:"supplier_id" json:"supplier_id"`
	CategoryID     string          `db:"category_id" json:"category_id"`
	Effects        string          `db:"effects" json:"effects"`
	Quantity       int64           `db:"quantity" json:"quantity"`
	Price          decimal.Decimal `db:"price" json:"price"`
}

type Manufacturer struct {
	ID     string `db:"manufacturer_id" json:"manufacturer_id"`
	Name   string `db:"name" json:"name"`
	Nation string `db:"nation" json:"nation"`
}

type Category struct {
	ID          string `db:"category_id" json:"category_id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}
