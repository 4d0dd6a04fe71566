package menu

import (
	"context"

	"kitchenledger/internal/core/id"
)

// ListFilter defines filtering for menu item listings.
type ListFilter struct {
	Search         string
	Category       string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Repository defines the interface for menu item persistence.
type Repository interface {
	Create(ctx context.Context, item *MenuItem) error
	Update(ctx context.Context, item *MenuItem) error

	// Delete marks a menu item as deleted (soft delete).
	Delete(ctx context.Context, itemID id.ID) error

	GetByID(ctx context.Context, itemID id.ID) (*MenuItem, error)

	// FindByName retrieves a menu item by exact name match.
	// This is the resolution key used at order ingestion time.
	FindByName(ctx context.Context, name string) (*MenuItem, error)

	List(ctx context.Context, filter ListFilter) ([]*MenuItem, int64, error)
}
