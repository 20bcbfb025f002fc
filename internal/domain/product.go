package domain

// Product is a named, priced catalog entry under which stock keys are grouped.
// Prices are stored in minor currency units.
type Product struct {
	ID         int64
	Name       string
	PriceCents int64
}

// StockSummary is one row of the price-ordered storefront projection.
type StockSummary struct {
	ProductName string
	PriceCents  int64
	Available   int
}
