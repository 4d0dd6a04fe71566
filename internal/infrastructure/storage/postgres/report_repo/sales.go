// Package report_repo provides the PostgreSQL implementation of report
// data access.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/reports"
	"kitchenledger/internal/infrastructure/storage/postgres"
)

// SalesRepo implements reports.Repository. Aggregation happens in the
// service; this layer only fetches raw ledger rows in placement order.
type SalesRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSalesRepo creates a new sales report repository.
func NewSalesRepo(txm *postgres.TxManager) *SalesRepo {
	return &SalesRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func dateBounds(q squirrel.SelectBuilder, column string, filter reports.SalesFilter) squirrel.SelectBuilder {
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{column: *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{column: *filter.To})
	}
	return q
}

func (r *SalesRepo) ListOrderTotals(ctx context.Context, filter reports.SalesFilter) ([]types.Money, error) {
	q := dateBounds(r.builder.Select("total").From("orders"), "created_at", filter).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var totals []types.Money
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &totals, sql, args...); err != nil {
		return nil, fmt.Errorf("select order totals: %w", err)
	}

	return totals, nil
}

func (r *SalesRepo) ListSoldItems(ctx context.Context, filter reports.SalesFilter) ([]reports.SoldItemRow, error) {
	q := dateBounds(
		r.builder.Select("i.product_name", "i.quantity", "i.unit_price", "i.unit_cost").
			From("order_items i").
			Join("orders o ON o.id = i.order_id"),
		"o.created_at", filter,
	).OrderBy("o.created_at", "i.id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.SoldItemRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select sold items: %w", err)
	}

	return rows, nil
}

func (r *SalesRepo) ListAddOns(ctx context.Context, filter reports.SalesFilter) ([]reports.AddOnRow, error) {
	q := dateBounds(
		r.builder.Select("a.name", "a.price").
			From("order_item_add_ons a").
			Join("order_items i ON i.id = a.order_item_id").
			Join("orders o ON o.id = i.order_id"),
		"o.created_at", filter,
	).OrderBy("o.created_at", "i.id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.AddOnRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select add-ons: %w", err)
	}

	return rows, nil
}
