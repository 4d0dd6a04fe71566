// Package reports provides sales report generation.
package reports

import (
	"time"

	"kitchenledger/internal/core/types"
)

// SalesFilter defines the reporting period. Both bounds are optional;
// when set they are applied to the underlying queries.
type SalesFilter struct {
	From *time.Time
	To   *time.Time
}

// SoldItemRow is one order line as read from the ledger, in placement
// order. Unit price and unit cost are the snapshots taken at ingestion.
type SoldItemRow struct {
	ProductName string      `db:"product_name"`
	Quantity    int         `db:"quantity"`
	UnitPrice   types.Money `db:"unit_price"`
	UnitCost    types.Money `db:"unit_cost"`
}

// AddOnRow is one add-on charge as read from the ledger.
type AddOnRow struct {
	Name  string      `db:"name"`
	Price types.Money `db:"price"`
}

// BestSeller is one aggregated product row of the sales report, keyed
// by product name. Add-on rows carry no count, cost or profit.
type BestSeller struct {
	ProductName string      `json:"productName"`
	Count       int         `json:"count,omitempty"`
	Revenue     types.Money `json:"revenue"`
	UnitCost    types.Money `json:"unitCost"`
	Profit      types.Money `json:"profit"`
	IsAddOn     bool        `json:"isAddOn,omitempty"`
}

// SalesSummary is the full sales report.
type SalesSummary struct {
	From        *time.Time   `json:"from,omitempty"`
	To          *time.Time   `json:"to,omitempty"`
	TotalSales  types.Money  `json:"totalSales"`
	TotalProfit types.Money  `json:"totalProfit"`
	BestSellers []BestSeller `json:"bestSellers"`
}
