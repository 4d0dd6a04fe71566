package handlers

import (
	"github.com/gin-gonic/gin"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/domain/inventory"
	"kitchenledger/internal/domain/orders"
	"kitchenledger/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles order ingestion and deduction endpoints.
type OrderHandler struct {
	*BaseHandler
	service   *orders.Service
	inventory *inventory.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service, inv *inventory.Service) *OrderHandler {
	return &OrderHandler{
		BaseHandler: base,
		service:     service,
		inventory:   inv,
	}
}

// Place handles POST /orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payload := &orders.Payload{
		BuyerRef:    req.BuyerRef,
		Total:       req.Total,
		PaymentType: orders.PaymentType(req.PaymentType),
	}

	for _, line := range req.Lines {
		menuItemID, err := id.Parse(line.MenuItemID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid menu item id").
				WithDetail("menuItemId", line.MenuItemID))
			return
		}

		snaps := make([]orders.IngredientSnapshot, 0, len(line.Ingredients))
		for _, s := range line.Ingredients {
			snaps = append(snaps, orders.IngredientSnapshot{
				Name:      s.Name,
				Amount:    s.Amount,
				Unit:      s.Unit,
				TotalCost: s.TotalCost,
			})
		}

		payload.Lines = append(payload.Lines, orders.LinePayload{
			MenuItemID:  menuItemID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Ingredients: snaps,
			AddOns:      line.AddOns,
		})
	}

	order, err := h.service.PlaceOrder(c.Request.Context(), payload)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid order id"))
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// List handles GET /orders.
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := q.Filter()

	list, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromOrders(list),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Items handles GET /orders/:id/items.
func (h *OrderHandler) Items(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid order id"))
		return
	}

	items, err := h.service.GetItems(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

// Update handles PUT /orders/:id. Orders are a write-once ledger, so
// this always rejects.
func (h *OrderHandler) Update(c *gin.Context) {
	h.Error(c, apperror.NewOrderImmutable(c.Param("id")))
}

// Deduct handles POST /orders/:id/deduct.
func (h *OrderHandler) Deduct(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid order id"))
		return
	}

	if err := h.inventory.DeductForOrder(c.Request.Context(), orderID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "inventory deducted")
}
