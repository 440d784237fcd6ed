package domain

import "github.com/shopspring/decimal"

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Category     string          `db:"category" json:"category"`
	Description  string          `db:"description" json:"description"`
	PricePrimary decimal.Decimal `db:"price_primary" json:"price_primary"`
	PriceOther   decimal.Decimal `db:"price_other" json:"price_other"`
	Inventory    int64           `db:"inventory" json:"inventory"`
	Sold         int64           `db:"sold" json:"sold"`
	BatchNo      string          `db:"batch_no" json:"batch_no"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
}

// UnitPrice returns the price that applies to a sale in the given city.
func (p Product) UnitPrice(city, primaryCity string) decimal.Decimal {
	if city == primaryCity {
		return p.PricePrimary
	}
	return p.PriceOther
}
