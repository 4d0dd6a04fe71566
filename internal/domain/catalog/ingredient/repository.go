package ingredient

import (
	"context"

	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/types"
)

// ListFilter defines filtering for ingredient listings.
type ListFilter struct {
	Search         string
	Category       string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Repository defines the interface for ingredient persistence.
type Repository interface {
	Create(ctx context.Context, ing *Ingredient) error
	Update(ctx context.Context, ing *Ingredient) error

	// Delete marks an ingredient as deleted (soft delete).
	Delete(ctx context.Context, ingID id.ID) error

	GetByID(ctx context.Context, ingID id.ID) (*Ingredient, error)

	// FindByName retrieves an ingredient by exact name match.
	// This is the resolution key used at order ingestion time.
	FindByName(ctx context.Context, name string) (*Ingredient, error)

	List(ctx context.Context, filter ListFilter) ([]*Ingredient, int64, error)

	// AdjustOnHand increments on-hand stock by delta (restock).
	AdjustOnHand(ctx context.Context, ingID id.ID, delta types.Quantity) error

	// DeductOnHand decrements on-hand stock by amount in a single
	// server-side statement, clamped at zero. Never read-modify-write:
	// concurrent deductions must not lose updates.
	DeductOnHand(ctx context.Context, ingID id.ID, amount types.Quantity) error
}
