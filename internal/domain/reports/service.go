package reports

import (
	"context"
	"fmt"
	"sort"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/types"
)

// Service provides sales report generation.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ComputeSalesSummary builds the sales report for the given period:
// totalSales straight from order headers, and per-product best-seller
// rows aggregated from line items with add-on charges merged in by
// name. Rows are sorted by revenue descending; ties keep the order in
// which products were first seen in the ledger.
func (s *Service) ComputeSalesSummary(ctx context.Context, filter SalesFilter) (*SalesSummary, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, apperror.NewValidation("from date must not be after to date")
	}

	totals, err := s.repo.ListOrderTotals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load order totals: %w", err)
	}

	items, err := s.repo.ListSoldItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load sold items: %w", err)
	}

	addOns, err := s.repo.ListAddOns(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load add-ons: %w", err)
	}

	summary := &SalesSummary{
		From:        filter.From,
		To:          filter.To,
		TotalSales:  types.Zero(),
		TotalProfit: types.Zero(),
	}

	for _, total := range totals {
		summary.TotalSales = summary.TotalSales.Add(total)
	}

	// Aggregate keyed by product name, preserving discovery order so
	// the final sort has a deterministic tie-break.
	index := make(map[string]int)
	rows := make([]BestSeller, 0, len(items))

	type costAcc struct {
		cost types.Money
	}
	costs := make([]costAcc, 0, len(items))

	seller := func(name string, isAddOn bool) int {
		if i, ok := index[name]; ok {
			return i
		}
		rows = append(rows, BestSeller{
			ProductName: name,
			Revenue:     types.Zero(),
			UnitCost:    types.Zero(),
			Profit:      types.Zero(),
			IsAddOn:     isAddOn,
		})
		costs = append(costs, costAcc{cost: types.Zero()})
		index[name] = len(rows) - 1
		return len(rows) - 1
	}

	for _, item := range items {
		i := seller(item.ProductName, false)
		qty := types.NewMoney(float64(item.Quantity))
		rows[i].Count += item.Quantity
		rows[i].Revenue = rows[i].Revenue.Add(item.UnitPrice.Mul(qty))
		costs[i].cost = costs[i].cost.Add(item.UnitCost.Mul(qty))
		if rows[i].UnitCost.IsZero() {
			rows[i].UnitCost = item.UnitCost
		}
	}

	// Add-on charges merge into the same map by name. They carry no
	// count and contribute nothing to profit.
	for _, ao := range addOns {
		i := seller(ao.Name, true)
		rows[i].Revenue = rows[i].Revenue.Add(ao.Price)
	}

	for i := range rows {
		if rows[i].IsAddOn {
			continue
		}
		rows[i].Profit = rows[i].Revenue.Sub(costs[i].cost)
		summary.TotalProfit = summary.TotalProfit.Add(rows[i].Profit)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Revenue.GreaterThan(rows[b].Revenue)
	})

	summary.BestSellers = rows
	return summary, nil
}
