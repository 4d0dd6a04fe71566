// Package menu provides the menu item catalog: the sellable products
// whose recipes consume ingredients from stock.
package menu

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"time"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/types"
)

// RecipeLine is one ingredient requirement of a menu item recipe.
// Amount is the quantity consumed per single unit sold.
type RecipeLine struct {
	IngredientID   id.ID          `json:"ingredientId"`
	IngredientName string         `json:"ingredientName"`
	Amount         types.Quantity `json:"amount"`
	Unit           string         `json:"unit"`
	TotalCost      types.Money    `json:"totalCost"`
}

// Recipe is the full ingredient requirement list of a menu item,
// stored as a single JSONB document.
type Recipe []RecipeLine

// Value implements driver.Valuer for JSONB storage.
func (r Recipe) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner. A malformed recipe payload reads as an
// empty recipe rather than failing the whole row: a menu item with an
// unreadable recipe is still sellable, it just deducts nothing.
func (r *Recipe) Scan(src any) error {
	if src == nil {
		*r = Recipe{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*r = Recipe{}
		return nil
	}
	var lines []RecipeLine
	if err := json.Unmarshal(data, &lines); err != nil {
		*r = Recipe{}
		return nil
	}
	*r = lines
	return nil
}

// TotalCost sums the cost of all recipe lines.
func (r Recipe) TotalCost() types.Money {
	total := types.Zero()
	for _, line := range r {
		total = total.Add(line.TotalCost)
	}
	return total
}

// MenuItem represents a sellable product.
type MenuItem struct {
	ID           id.ID       `db:"id" json:"id"`
	Code         string      `db:"code" json:"code"`
	Name         string      `db:"name" json:"name"`
	Description  string      `db:"description" json:"description"`
	Category     string      `db:"category" json:"category"`
	Price        types.Money `db:"price" json:"price"`
	ImageURL     *string     `db:"image_url" json:"imageUrl,omitempty"`
	Recipe       Recipe      `db:"recipe" json:"recipe"`
	DeletionMark bool        `db:"deletion_mark" json:"deletionMark"`
	Version      int         `db:"version" json:"version"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// NewMenuItem creates a new menu item with generated ID.
func NewMenuItem(code, name, category string, price types.Money) *MenuItem {
	now := time.Now().UTC()
	return &MenuItem{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		Category:  category,
		Price:     price,
		Recipe:    Recipe{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UnitCost is the production cost of one unit: the sum of the recipe
// line costs. Used by sales reporting to compute profit.
func (m *MenuItem) UnitCost() types.Money {
	return m.Recipe.TotalCost()
}

// Touch updates the UpdatedAt timestamp and increments version.
func (m *MenuItem) Touch() {
	m.UpdatedAt = time.Now().UTC()
	m.Version++
}

// Validate checks entity invariants.
func (m *MenuItem) Validate(ctx context.Context) error {
	if m.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if m.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}
	for i, line := range m.Recipe {
		if id.IsNil(line.IngredientID) {
			return apperror.NewValidation("recipe line ingredient is required").
				WithDetail("field", "recipe").
				WithDetail("line", i)
		}
		if !line.Amount.IsPositive() {
			return apperror.NewValidation("recipe line amount must be positive").
				WithDetail("field", "recipe").
				WithDetail("line", i)
		}
		if line.TotalCost.IsNegative() {
			return apperror.NewValidation("recipe line cost cannot be negative").
				WithDetail("field", "recipe").
				WithDetail("line", i)
		}
	}
	return nil
}
