// Package inventory provides the deduction engine: applying the
// ingredient consumption recorded in the order ledger to on-hand stock.
package inventory

import (
	"context"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/orders"
	"kitchenledger/pkg/logger"
)

// Ledger is the slice of the order repository the engine reads.
type Ledger interface {
	ListItems(ctx context.Context, orderID id.ID) ([]*orders.OrderItem, error)
	ListItemIngredients(ctx context.Context, orderItemID id.ID) ([]*orders.OrderItemIngredient, error)
	MarkDeductionApplied(ctx context.Context, orderID id.ID) (bool, error)
}

// StockWriter decrements on-hand stock. Implemented by the ingredient
// repository as a single clamped server-side update.
type StockWriter interface {
	DeductOnHand(ctx context.Context, ingID id.ID, amount types.Quantity) error
}

// Service applies order consumption to ingredient stock.
type Service struct {
	ledger Ledger
	stock  StockWriter
}

// NewService creates a new inventory service.
func NewService(ledger Ledger, stock StockWriter) *Service {
	return &Service{ledger: ledger, stock: stock}
}

// DeductForOrder deducts the consumed amounts of an order from on-hand
// stock. The order's deduction flag is claimed first, atomically, so a
// repeated call is a no-op and returns ErrAlreadyDeducted instead of
// decrementing stock twice.
//
// Each decrement is clamped at zero at the storage layer and each
// failure is logged and skipped: a single bad ingredient row must not
// block the rest of the order.
func (s *Service) DeductForOrder(ctx context.Context, orderID id.ID) error {
	claimed, err := s.ledger.MarkDeductionApplied(ctx, orderID)
	if err != nil {
		return err
	}
	if !claimed {
		logger.Info(ctx, "deduction already applied, skipping", "order_id", orderID)
		return apperror.NewAlreadyDeducted(orderID.String())
	}

	items, err := s.ledger.ListItems(ctx, orderID)
	if err != nil {
		return err
	}

	var applied, failed int
	for _, item := range items {
		rows, err := s.ledger.ListItemIngredients(ctx, item.ID)
		if err != nil {
			logger.Error(ctx, "ingredient rows load failed, item skipped",
				"order_id", orderID, "order_item_id", item.ID, "error", err)
			failed++
			continue
		}

		for _, row := range rows {
			if !row.Amount.IsPositive() {
				continue
			}
			if err := s.stock.DeductOnHand(ctx, row.IngredientID, row.Amount); err != nil {
				logger.Error(ctx, "stock deduction failed, row skipped",
					"order_id", orderID, "ingredient_id", row.IngredientID, "error", err)
				failed++
				continue
			}
			applied++
		}
	}

	logger.Info(ctx, "order deduction complete",
		"order_id", orderID, "applied", applied, "failed", failed)
	return nil
}
