package reports

import (
	"context"

	"kitchenledger/internal/core/types"
)

// Repository defines report data access. All three reads apply the
// filter's date bounds against order placement time.
type Repository interface {
	// ListOrderTotals returns the total price of every order in the
	// period. Used for the totalSales figure, which must match the
	// order headers regardless of how line rows aggregate.
	ListOrderTotals(ctx context.Context, filter SalesFilter) ([]types.Money, error)

	// ListSoldItems returns order lines in placement order. Row order
	// matters: it decides which product is discovered first when
	// revenues tie.
	ListSoldItems(ctx context.Context, filter SalesFilter) ([]SoldItemRow, error)

	// ListAddOns returns add-on charges in placement order.
	ListAddOns(ctx context.Context, filter SalesFilter) ([]AddOnRow, error)
}
