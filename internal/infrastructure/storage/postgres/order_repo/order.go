// Package order_repo provides the PostgreSQL implementation of the
// order ledger repository. All ledger tables are append-only; the only
// update ever issued is the deduction-applied claim on the header.
package order_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/domain/orders"
	"kitchenledger/internal/infrastructure/storage/postgres"
)

const (
	ordersTable          = "orders"
	orderItemsTable      = "order_items"
	itemIngredientsTable = "order_item_ingredients"
	addOnsTable          = "order_item_add_ons"
)

var orderColumns = []string{
	"id", "number", "buyer_ref", "total", "payment_type", "status",
	"deduction_applied", "created_at",
}

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *OrderRepo) CreateOrder(ctx context.Context, order *orders.Order) error {
	q := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(
			order.ID, order.Number, order.BuyerRef, order.Total,
			order.PaymentType, order.Status, order.DeductionApplied,
			order.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *OrderRepo) CreateItem(ctx context.Context, item *orders.OrderItem) error {
	q := r.builder.Insert(orderItemsTable).
		Columns("id", "order_id", "menu_item_id", "product_name", "quantity", "unit_price", "unit_cost").
		Values(item.ID, item.OrderID, item.MenuItemID, item.ProductName, item.Quantity, item.UnitPrice, item.UnitCost)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}

	return nil
}

func (r *OrderRepo) CreateItemIngredient(ctx context.Context, row *orders.OrderItemIngredient) error {
	q := r.builder.Insert(itemIngredientsTable).
		Columns("order_item_id", "ingredient_id", "amount").
		Values(row.OrderItemID, row.IngredientID, row.Amount)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order item ingredient: %w", err)
	}

	return nil
}

func (r *OrderRepo) CreateAddOn(ctx context.Context, addOn *orders.AddOn) error {
	q := r.builder.Insert(addOnsTable).
		Columns("order_item_id", "name", "price").
		Values(addOn.OrderItemID, addOn.Name, addOn.Price)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert add-on: %w", err)
	}

	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var order orders.Order
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &order, nil
}

func (r *OrderRepo) List(ctx context.Context, filter orders.ListFilter) ([]*orders.Order, int64, error) {
	base := r.builder.Select().From(ordersTable)
	if filter.From != nil {
		base = base.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		base = base.Where(squirrel.LtOrEq{"created_at": *filter.To})
	}

	countSQL, countArgs, err := base.Column("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)

	var total int64
	if err := pgxscan.Get(ctx, querier, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	listSQL, listArgs, err := base.Columns(orderColumns...).
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var list []*orders.Order
	if err := pgxscan.Select(ctx, querier, &list, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return list, total, nil
}

func (r *OrderRepo) ListItems(ctx context.Context, orderID id.ID) ([]*orders.OrderItem, error) {
	q := r.builder.Select("id", "order_id", "menu_item_id", "product_name", "quantity", "unit_price", "unit_cost").
		From(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*orders.OrderItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	return items, nil
}

func (r *OrderRepo) ListItemIngredients(ctx context.Context, orderItemID id.ID) ([]*orders.OrderItemIngredient, error) {
	q := r.builder.Select("order_item_id", "ingredient_id", "amount").
		From(itemIngredientsTable).
		Where(squirrel.Eq{"order_item_id": orderItemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*orders.OrderItemIngredient
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list order item ingredients: %w", err)
	}

	return rows, nil
}

func (r *OrderRepo) ListAddOns(ctx context.Context, orderItemID id.ID) ([]*orders.AddOn, error) {
	q := r.builder.Select("order_item_id", "name", "price").
		From(addOnsTable).
		Where(squirrel.Eq{"order_item_id": orderItemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*orders.AddOn
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list add-ons: %w", err)
	}

	return rows, nil
}

// MarkDeductionApplied flips the flag only when it is not yet set, so
// exactly one caller wins even under concurrent invocations.
func (r *OrderRepo) MarkDeductionApplied(ctx context.Context, orderID id.ID) (bool, error) {
	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, `
		UPDATE orders
		SET deduction_applied = true
		WHERE id = $1 AND NOT deduction_applied
	`, orderID)
	if err != nil {
		return false, fmt.Errorf("mark deduction applied: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// No row claimed: either already deducted or the order is unknown.
	if _, err := r.GetByID(ctx, orderID); err != nil {
		return false, err
	}
	return false, nil
}
