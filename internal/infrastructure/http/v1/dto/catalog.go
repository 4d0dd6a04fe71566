package dto

import (
	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/catalog/ingredient"
	"kitchenledger/internal/domain/catalog/menu"
)

// --- Ingredient ---

// CreateIngredientRequest for creating ingredients.
type CreateIngredientRequest struct {
	Code     string         `json:"code"`
	Name     string         `json:"name" binding:"required"`
	Category string         `json:"category"`
	Unit     string         `json:"unit" binding:"required"`
	UnitCost types.Money    `json:"unitCost"`
	OnHand   types.Quantity `json:"onHand"`
}

// ToEntity converts the request to a domain entity.
func (r CreateIngredientRequest) ToEntity() *ingredient.Ingredient {
	ing := ingredient.NewIngredient(r.Code, r.Name, r.Category, r.Unit, r.UnitCost)
	ing.OnHand = r.OnHand
	return ing
}

// UpdateIngredientRequest for updating ingredients.
type UpdateIngredientRequest struct {
	Name     *string      `json:"name"`
	Category *string      `json:"category"`
	Unit     *string      `json:"unit"`
	UnitCost *types.Money `json:"unitCost"`
}

// ApplyTo applies non-nil fields to an existing entity.
func (r UpdateIngredientRequest) ApplyTo(ing *ingredient.Ingredient) {
	if r.Name != nil {
		ing.Name = *r.Name
	}
	if r.Category != nil {
		ing.Category = *r.Category
	}
	if r.Unit != nil {
		ing.Unit = *r.Unit
	}
	if r.UnitCost != nil {
		ing.UnitCost = *r.UnitCost
	}
}

// RestockRequest adds stock to an ingredient.
type RestockRequest struct {
	Quantity types.Quantity `json:"quantity" binding:"required"`
}

// IngredientResponse is an ingredient with its derived status.
type IngredientResponse struct {
	*ingredient.Ingredient
	Status ingredient.Status `json:"status"`
}

// FromIngredient maps an entity to a response.
func FromIngredient(ing *ingredient.Ingredient) IngredientResponse {
	return IngredientResponse{Ingredient: ing, Status: ing.Status()}
}

// FromIngredients maps a list of entities to responses.
func FromIngredients(items []*ingredient.Ingredient) []IngredientResponse {
	out := make([]IngredientResponse, 0, len(items))
	for _, ing := range items {
		out = append(out, FromIngredient(ing))
	}
	return out
}

// --- Menu ---

// RecipeLineRequest is one recipe line in a menu item payload. Name,
// unit and cost are filled in server-side from the ingredient catalog.
type RecipeLineRequest struct {
	IngredientID string         `json:"ingredientId" binding:"required"`
	Amount       types.Quantity `json:"amount" binding:"required"`
}

// CreateMenuItemRequest for creating menu items.
type CreateMenuItemRequest struct {
	Code        string              `json:"code"`
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Price       types.Money         `json:"price"`
	Recipe      []RecipeLineRequest `json:"recipe"`
}

// UpdateMenuItemRequest for updating menu items.
type UpdateMenuItemRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Category    *string              `json:"category"`
	Price       *types.Money         `json:"price"`
	Recipe      *[]RecipeLineRequest `json:"recipe"`
}

// MenuItemResponse is a menu item with its derived unit cost.
type MenuItemResponse struct {
	*menu.MenuItem
	UnitCost types.Money `json:"unitCost"`
}

// FromMenuItem maps an entity to a response.
func FromMenuItem(item *menu.MenuItem) MenuItemResponse {
	return MenuItemResponse{MenuItem: item, UnitCost: item.UnitCost()}
}

// FromMenuItems maps a list of entities to responses.
func FromMenuItems(items []*menu.MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromMenuItem(item))
	}
	return out
}
