package orders

import (
	"context"
	"fmt"
	"time"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/numerator"
	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/catalog/ingredient"
	"kitchenledger/pkg/logger"
)

// IngredientResolver resolves ingredient names to catalog entries.
// Implemented by ingredient.Repository.
type IngredientResolver interface {
	FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error)
}

// Notifier publishes table-change events for the admin UI to refresh
// its views. Delivery is best-effort; ingestion never fails on it.
type Notifier interface {
	Notify(ctx context.Context, aggregateType string, aggregateID id.ID, eventType string, payload any) error
}

// Service provides order ingestion.
type Service struct {
	repo        Repository
	ingredients IngredientResolver
	numerator   numerator.Generator
	notifier    Notifier // optional
}

// NewService creates a new order service.
func NewService(repo Repository, ingredients IngredientResolver, num numerator.Generator, notifier Notifier) *Service {
	return &Service{
		repo:        repo,
		ingredients: ingredients,
		numerator:   num,
		notifier:    notifier,
	}
}

// orderNumberOpts uses range allocation: order numbers are high-volume
// and gaps after a restart are acceptable.
var orderNumberOpts = &numerator.Options{Strategy: numerator.StrategyCached, RangeSize: 50}

// PlaceOrder writes the order ledger: header, then per line an
// order-item row, its ingredient consumption rows and its add-ons.
//
// Only the header write is fatal. Each later write is an independent
// operation: a failed line is logged and skipped while ingestion
// continues, so a partially written ledger is an expected outcome, not
// a bug. Ingredient names that resolve to nothing are skipped silently.
func (s *Service) PlaceOrder(ctx context.Context, payload *Payload) (*Order, error) {
	if err := payload.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("ORD"), orderNumberOpts, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	order := &Order{
		ID:          id.New(),
		Number:      number,
		BuyerRef:    payload.BuyerRef,
		Total:       payload.Total,
		PaymentType: payload.PaymentType,
		Status:      StatusPlaced,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, apperror.NewPersistence("create order", err)
	}

	for i, line := range payload.Lines {
		s.ingestLine(ctx, order, i, line)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, "Order", order.ID, "OrderPlaced", order); err != nil {
			logger.Warn(ctx, "order change notification failed", "order_id", order.ID, "error", err)
		}
	}

	logger.Info(ctx, "order placed",
		"order_id", order.ID,
		"number", order.Number,
		"lines", len(payload.Lines),
		"total", order.Total)
	return order, nil
}

// ingestLine writes one order-item row and its dependent rows. Failures
// are logged, never returned: remaining lines must still be ingested.
func (s *Service) ingestLine(ctx context.Context, order *Order, idx int, line LinePayload) {
	unitCost := lineUnitCost(line)

	item := &OrderItem{
		ID:          id.New(),
		OrderID:     order.ID,
		MenuItemID:  line.MenuItemID,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		UnitCost:    unitCost,
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		logger.Error(ctx, "order line insert failed, line skipped",
			"order_id", order.ID, "line", idx, "product", line.ProductName, "error", err)
		return
	}

	for _, snap := range line.Ingredients {
		ing, err := s.ingredients.FindByName(ctx, snap.Name)
		if err != nil {
			// Name resolution misses are expected for retired
			// ingredients and are not surfaced to the caller.
			if apperror.IsNotFound(err) {
				logger.Debug(ctx, "ingredient not found, skipped",
					"order_id", order.ID, "name", snap.Name)
				continue
			}
			logger.Error(ctx, "ingredient lookup failed, row skipped",
				"order_id", order.ID, "name", snap.Name, "error", err)
			continue
		}

		row := &OrderItemIngredient{
			OrderItemID:  item.ID,
			IngredientID: ing.ID,
			Amount:       snap.Amount.MulInt(line.Quantity),
		}
		if err := s.repo.CreateItemIngredient(ctx, row); err != nil {
			logger.Error(ctx, "ingredient consumption insert failed, row skipped",
				"order_id", order.ID, "ingredient_id", ing.ID, "error", err)
		}
	}

	for _, ao := range line.AddOns {
		addOn := &AddOn{
			OrderItemID: item.ID,
			Name:        ao.Name,
			Price:       ao.Price,
		}
		if err := s.repo.CreateAddOn(ctx, addOn); err != nil {
			logger.Error(ctx, "add-on insert failed, row skipped",
				"order_id", order.ID, "add_on", ao.Name, "error", err)
		}
	}
}

// lineUnitCost sums the submitted ingredient snapshot costs. This is
// the production cost of one unit, stored on the item for reporting.
func lineUnitCost(line LinePayload) types.Money {
	total := types.Zero()
	for _, snap := range line.Ingredients {
		total = total.Add(snap.TotalCost)
	}
	return total
}

// GetByID retrieves an order header.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// GetItems retrieves the line items of an order.
func (s *Service) GetItems(ctx context.Context, orderID id.ID) ([]*OrderItem, error) {
	if _, err := s.repo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, orderID)
}
