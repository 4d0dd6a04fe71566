// Package ingredient provides the ingredient catalog: the stock-bearing
// items that menu recipes consume.
package ingredient

import (
	"context"
	"time"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/types"
)

// Status is derived from on-hand stock, never stored.
type Status string

const (
	StatusActive     Status = "active"
	StatusOutOfStock Status = "out_of_stock"
)

// Ingredient represents a stocked ingredient.
type Ingredient struct {
	ID           id.ID          `db:"id" json:"id"`
	Code         string         `db:"code" json:"code"`
	Name         string         `db:"name" json:"name"`
	Category     string         `db:"category" json:"category"`
	Unit         string         `db:"unit" json:"unit"` // unit of measure symbol (g, ml, pcs)
	UnitCost     types.Money    `db:"unit_cost" json:"unitCost"`
	OnHand       types.Quantity `db:"on_hand" json:"onHand"`
	DeletionMark bool           `db:"deletion_mark" json:"deletionMark"`
	Version      int            `db:"version" json:"version"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// NewIngredient creates a new ingredient with generated ID.
func NewIngredient(code, name, category, unit string, unitCost types.Money) *Ingredient {
	now := time.Now().UTC()
	return &Ingredient{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		Category:  category,
		Unit:      unit,
		UnitCost:  unitCost,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Status derives availability from on-hand stock:
// active iff quantity > 0.
func (i *Ingredient) Status() Status {
	if i.OnHand.IsPositive() {
		return StatusActive
	}
	return StatusOutOfStock
}

// Touch updates the UpdatedAt timestamp and increments version.
func (i *Ingredient) Touch() {
	i.UpdatedAt = time.Now().UTC()
	i.Version++
}

// Validate checks entity invariants.
func (i *Ingredient) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if i.Unit == "" {
		return apperror.NewValidation("unit of measure is required").
			WithDetail("field", "unit")
	}
	if i.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}
	if i.OnHand.IsNegative() {
		return apperror.NewValidation("on-hand quantity cannot be negative").
			WithDetail("field", "onHand")
	}
	return nil
}
