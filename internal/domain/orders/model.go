// Package orders provides order ingestion: turning a placed order into
// the immutable ledger rows that inventory deduction and sales
// reporting consume.
package orders

import (
	"context"
	"time"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/types"
)

// PaymentType defines how an order was paid.
type PaymentType string

const (
	PaymentCash PaymentType = "cash"
	PaymentCard PaymentType = "card"
)

// Status of an order. Orders are immutable once placed; the only state
// transition after placement is the deduction-applied marker.
type Status string

const (
	StatusPlaced Status = "placed"
)

// Order is the order header. Together with its items, ingredient rows
// and add-ons it forms a write-once ledger.
type Order struct {
	ID          id.ID       `db:"id" json:"id"`
	Number      string      `db:"number" json:"number"`
	BuyerRef    *string     `db:"buyer_ref" json:"buyerRef,omitempty"`
	Total       types.Money `db:"total" json:"total"`
	PaymentType PaymentType `db:"payment_type" json:"paymentType"`
	Status      Status      `db:"status" json:"status"`

	// DeductionApplied marks that stock has been deducted for this
	// order. Checked and set atomically so deduction runs at most once.
	DeductionApplied bool `db:"deduction_applied" json:"deductionApplied"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// OrderItem is one sold line of an order. Product name, unit price and
// unit cost are snapshots taken at placement time so later menu edits
// do not rewrite history.
type OrderItem struct {
	ID          id.ID       `db:"id" json:"id"`
	OrderID     id.ID       `db:"order_id" json:"orderId"`
	MenuItemID  id.ID       `db:"menu_item_id" json:"menuItemId"`
	ProductName string      `db:"product_name" json:"productName"`
	Quantity    int         `db:"quantity" json:"quantity"`
	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	UnitCost    types.Money `db:"unit_cost" json:"unitCost"`
}

// OrderItemIngredient records ingredient consumption for one order item:
// amount = recipe amount x item quantity. The ingredient id is resolved
// once at ingestion time and stored, never re-resolved by name later.
type OrderItemIngredient struct {
	OrderItemID  id.ID          `db:"order_item_id" json:"orderItemId"`
	IngredientID id.ID          `db:"ingredient_id" json:"ingredientId"`
	Amount       types.Quantity `db:"amount" json:"amount"`
}

// AddOn is an extra charge attached to an order item. Add-ons never
// deduct stock and carry no unit cost.
type AddOn struct {
	OrderItemID id.ID       `db:"order_item_id" json:"orderItemId"`
	Name        string      `db:"name" json:"name"`
	Price       types.Money `db:"price" json:"price"`
}

// IngredientSnapshot is a recipe line as submitted in the order payload.
type IngredientSnapshot struct {
	Name      string         `json:"name"`
	Amount    types.Quantity `json:"amount"`
	Unit      string         `json:"unit"`
	TotalCost types.Money    `json:"totalCost"`
}

// LinePayload is one line of an incoming order.
type LinePayload struct {
	MenuItemID  id.ID                `json:"menuItemId"`
	ProductName string               `json:"productName"`
	Quantity    int                  `json:"quantity"`
	UnitPrice   types.Money          `json:"unitPrice"`
	Ingredients []IngredientSnapshot `json:"ingredients"`
	AddOns      []AddOnPayload       `json:"addOns,omitempty"`
}

// AddOnPayload is one add-on charge of an incoming order line.
type AddOnPayload struct {
	Name  string      `json:"name"`
	Price types.Money `json:"price"`
}

// Payload is an incoming order as submitted by the POS client.
type Payload struct {
	BuyerRef    *string       `json:"buyerRef,omitempty"`
	Lines       []LinePayload `json:"lines"`
	Total       types.Money   `json:"total"`
	PaymentType PaymentType   `json:"paymentType"`
}

// Validate checks the payload before any write happens.
func (p *Payload) Validate(ctx context.Context) error {
	if len(p.Lines) == 0 {
		return apperror.NewValidation("order must contain at least one line").
			WithDetail("field", "lines")
	}
	if p.PaymentType != PaymentCash && p.PaymentType != PaymentCard {
		return apperror.NewValidation("invalid payment type").
			WithDetail("field", "paymentType").
			WithDetail("value", string(p.PaymentType))
	}
	if p.Total.IsNegative() {
		return apperror.NewValidation("order total cannot be negative").
			WithDetail("field", "total")
	}
	for i, line := range p.Lines {
		if line.Quantity <= 0 {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("line", i)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("line unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("line", i)
		}
	}
	return nil
}
