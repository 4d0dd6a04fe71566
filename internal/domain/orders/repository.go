package orders

import (
	"context"
	"time"

	"kitchenledger/internal/core/id"
)

// ListFilter defines filtering for order listings.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Repository defines the interface for order ledger persistence.
// All Create methods are append-only: ledger rows are never updated or
// deleted once written.
type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	CreateItem(ctx context.Context, item *OrderItem) error
	CreateItemIngredient(ctx context.Context, row *OrderItemIngredient) error
	CreateAddOn(ctx context.Context, addOn *AddOn) error

	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)

	ListItems(ctx context.Context, orderID id.ID) ([]*OrderItem, error)
	ListItemIngredients(ctx context.Context, orderItemID id.ID) ([]*OrderItemIngredient, error)
	ListAddOns(ctx context.Context, orderItemID id.ID) ([]*AddOn, error)

	// MarkDeductionApplied atomically claims the deduction for an
	// order. Returns false when the flag was already set, so callers
	// can make repeated deduction a no-op.
	MarkDeductionApplied(ctx context.Context, orderID id.ID) (bool, error)
}
