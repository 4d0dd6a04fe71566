package dto

import (
	"time"

	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/orders"
)

// PlaceOrderRequest is the POS order submission payload.
type PlaceOrderRequest struct {
	BuyerRef    *string            `json:"buyerRef"`
	Lines       []OrderLineRequest `json:"lines" binding:"required,min=1"`
	Total       types.Money        `json:"total"`
	PaymentType string             `json:"paymentType" binding:"required"`
}

// OrderLineRequest is one line of an order submission.
type OrderLineRequest struct {
	MenuItemID  string                     `json:"menuItemId" binding:"required"`
	ProductName string                     `json:"productName" binding:"required"`
	Quantity    int                        `json:"quantity" binding:"required,min=1"`
	UnitPrice   types.Money                `json:"unitPrice"`
	Ingredients []IngredientSnapshotDTO    `json:"ingredients"`
	AddOns      []orders.AddOnPayload      `json:"addOns"`
}

// IngredientSnapshotDTO is one recipe line in the submission.
type IngredientSnapshotDTO struct {
	Name      string         `json:"name" binding:"required"`
	Amount    types.Quantity `json:"amount"`
	Unit      string         `json:"unit"`
	TotalCost types.Money    `json:"totalCost"`
}

// OrderResponse is an order header.
type OrderResponse struct {
	ID               string      `json:"id"`
	Number           string      `json:"number"`
	BuyerRef         *string     `json:"buyerRef,omitempty"`
	Total            types.Money `json:"total"`
	PaymentType      string      `json:"paymentType"`
	Status           string      `json:"status"`
	DeductionApplied bool        `json:"deductionApplied"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// FromOrder maps an order to a response.
func FromOrder(o *orders.Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID.String(),
		Number:           o.Number,
		BuyerRef:         o.BuyerRef,
		Total:            o.Total,
		PaymentType:      string(o.PaymentType),
		Status:           string(o.Status),
		DeductionApplied: o.DeductionApplied,
		CreatedAt:        o.CreatedAt,
	}
}

// FromOrders maps a list of orders to responses.
func FromOrders(list []*orders.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, FromOrder(o))
	}
	return out
}

// OrderListQuery contains order list query parameters.
type OrderListQuery struct {
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
	Limit  int        `form:"limit"`
	Offset int        `form:"offset"`
}

// Filter converts the query to a domain filter with an inclusive end
// day, matching the sales report bounds.
func (q OrderListQuery) Filter() orders.ListFilter {
	return orders.ListFilter{
		From:   q.From,
		To:     endOfDay(q.To),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
}
