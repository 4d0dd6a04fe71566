package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/orders"
)

type mockLedger struct {
	claimed     bool // flag already set before the call
	claimErr    error
	items       []*orders.OrderItem
	rowsByItem  map[id.ID][]*orders.OrderItemIngredient
	failItemID  id.ID // ListItemIngredients fails for this item
	markedOrder id.ID
}

func (m *mockLedger) MarkDeductionApplied(_ context.Context, orderID id.ID) (bool, error) {
	if m.claimErr != nil {
		return false, m.claimErr
	}
	if m.claimed {
		return false, nil
	}
	m.claimed = true
	m.markedOrder = orderID
	return true, nil
}

func (m *mockLedger) ListItems(_ context.Context, _ id.ID) ([]*orders.OrderItem, error) {
	return m.items, nil
}

func (m *mockLedger) ListItemIngredients(_ context.Context, itemID id.ID) ([]*orders.OrderItemIngredient, error) {
	if itemID == m.failItemID {
		return nil, errors.New("read failed")
	}
	return m.rowsByItem[itemID], nil
}

type mockStock struct {
	deducted map[id.ID]types.Quantity
	failFor  id.ID
}

func (m *mockStock) DeductOnHand(_ context.Context, ingID id.ID, amount types.Quantity) error {
	if ingID == m.failFor {
		return errors.New("deduct failed")
	}
	if m.deducted == nil {
		m.deducted = make(map[id.ID]types.Quantity)
	}
	m.deducted[ingID] += amount
	return nil
}

// clampingStock models the repository contract: a single server-side
// update floors the balance at zero instead of going negative.
type clampingStock struct {
	onHand map[id.ID]types.Quantity
}

func (m *clampingStock) DeductOnHand(_ context.Context, ingID id.ID, amount types.Quantity) error {
	rest := m.onHand[ingID] - amount
	if rest < 0 {
		rest = 0
	}
	m.onHand[ingID] = rest
	return nil
}

func TestDeductForOrder_AppliesEveryRow(t *testing.T) {
	itemID := id.New()
	cheese, patty := id.New(), id.New()
	ledger := &mockLedger{
		items: []*orders.OrderItem{{ID: itemID}},
		rowsByItem: map[id.ID][]*orders.OrderItemIngredient{
			itemID: {
				{OrderItemID: itemID, IngredientID: cheese, Amount: types.NewQuantityFromInt(3)},
				{OrderItemID: itemID, IngredientID: patty, Amount: types.NewQuantityFromInt(1)},
			},
		},
	}
	stock := &mockStock{}

	err := NewService(ledger, stock).DeductForOrder(context.Background(), id.New())
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromInt(3), stock.deducted[cheese])
	assert.Equal(t, types.NewQuantityFromInt(1), stock.deducted[patty])
}

func TestDeductForOrder_SecondCallIsNoOp(t *testing.T) {
	itemID := id.New()
	cheese := id.New()
	ledger := &mockLedger{
		items: []*orders.OrderItem{{ID: itemID}},
		rowsByItem: map[id.ID][]*orders.OrderItemIngredient{
			itemID: {{OrderItemID: itemID, IngredientID: cheese, Amount: types.NewQuantityFromInt(3)}},
		},
	}
	stock := &mockStock{}
	svc := NewService(ledger, stock)
	orderID := id.New()

	require.NoError(t, svc.DeductForOrder(context.Background(), orderID))

	err := svc.DeductForOrder(context.Background(), orderID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAlreadyDeducted, appErr.Code)

	// Stock was touched exactly once.
	assert.Equal(t, types.NewQuantityFromInt(3), stock.deducted[cheese])
}

func TestDeductForOrder_ClaimErrorAborts(t *testing.T) {
	ledger := &mockLedger{claimErr: apperror.NewNotFound("order", "missing")}
	stock := &mockStock{}

	err := NewService(ledger, stock).DeductForOrder(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, stock.deducted)
}

func TestDeductForOrder_FailedRowsDoNotBlockOthers(t *testing.T) {
	okItem, badItem := id.New(), id.New()
	cheese, patty := id.New(), id.New()
	ledger := &mockLedger{
		items:      []*orders.OrderItem{{ID: badItem}, {ID: okItem}},
		failItemID: badItem,
		rowsByItem: map[id.ID][]*orders.OrderItemIngredient{
			okItem: {
				{OrderItemID: okItem, IngredientID: cheese, Amount: types.NewQuantityFromInt(2)},
				{OrderItemID: okItem, IngredientID: patty, Amount: types.NewQuantityFromInt(1)},
			},
		},
	}
	stock := &mockStock{failFor: patty}

	err := NewService(ledger, stock).DeductForOrder(context.Background(), id.New())
	require.NoError(t, err, "row failures are skipped, not surfaced")

	assert.Equal(t, types.NewQuantityFromInt(2), stock.deducted[cheese])
	assert.NotContains(t, stock.deducted, patty)
}

func TestDeductForOrder_OverConsumptionClampsAtZero(t *testing.T) {
	itemID := id.New()
	cheese, bun := id.New(), id.New()
	ledger := &mockLedger{
		items: []*orders.OrderItem{{ID: itemID}},
		rowsByItem: map[id.ID][]*orders.OrderItemIngredient{
			itemID: {
				{OrderItemID: itemID, IngredientID: cheese, Amount: types.NewQuantityFromInt(5)},
				{OrderItemID: itemID, IngredientID: bun, Amount: types.NewQuantityFromInt(2)},
			},
		},
	}
	// Cheese has only 3 slices on hand but the order consumes 5.
	stock := &clampingStock{onHand: map[id.ID]types.Quantity{
		cheese: types.NewQuantityFromInt(3),
		bun:    types.NewQuantityFromInt(10),
	}}

	err := NewService(ledger, stock).DeductForOrder(context.Background(), id.New())
	require.NoError(t, err, "over-consumption is absorbed silently")

	assert.Equal(t, types.Quantity(0), stock.onHand[cheese])
	assert.Equal(t, types.NewQuantityFromInt(8), stock.onHand[bun])

	for ingID, rest := range stock.onHand {
		assert.GreaterOrEqual(t, int64(rest), int64(0), "stock for %s went negative", ingID)
	}
}

func TestDeductForOrder_DepletedStockStaysAtZero(t *testing.T) {
	cheese := id.New()
	stock := &clampingStock{onHand: map[id.ID]types.Quantity{
		cheese: types.NewQuantityFromInt(3),
	}}

	// Two separate orders each consume more cheese than remains.
	for range 2 {
		itemID := id.New()
		ledger := &mockLedger{
			items: []*orders.OrderItem{{ID: itemID}},
			rowsByItem: map[id.ID][]*orders.OrderItemIngredient{
				itemID: {{OrderItemID: itemID, IngredientID: cheese, Amount: types.NewQuantityFromInt(5)}},
			},
		}
		require.NoError(t, NewService(ledger, stock).DeductForOrder(context.Background(), id.New()))
	}

	assert.Equal(t, types.Quantity(0), stock.onHand[cheese])
}

func TestDeductForOrder_SkipsNonPositiveAmounts(t *testing.T) {
	itemID := id.New()
	cheese, lettuce := id.New(), id.New()
	ledger := &mockLedger{
		items: []*orders.OrderItem{{ID: itemID}},
		rowsByItem: map[id.ID][]*orders.OrderItemIngredient{
			itemID: {
				{OrderItemID: itemID, IngredientID: cheese, Amount: 0},
				{OrderItemID: itemID, IngredientID: lettuce, Amount: types.NewQuantityFromInt(5)},
			},
		},
	}
	stock := &mockStock{}

	require.NoError(t, NewService(ledger, stock).DeductForOrder(context.Background(), id.New()))
	assert.NotContains(t, stock.deducted, cheese)
	assert.Equal(t, types.NewQuantityFromInt(5), stock.deducted[lettuce])
}
