package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/numerator"
	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/catalog/ingredient"
)

// mockLedger records every write and can fail selectively.
type mockLedger struct {
	Repository // panic on anything not overridden

	orders         []*Order
	items          []*OrderItem
	ingredientRows []*OrderItemIngredient
	addOns         []*AddOn

	failOrder     error
	failItemNamed string // product name whose CreateItem fails
	failItemErr   error
}

func (m *mockLedger) CreateOrder(_ context.Context, order *Order) error {
	if m.failOrder != nil {
		return m.failOrder
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockLedger) CreateItem(_ context.Context, item *OrderItem) error {
	if m.failItemNamed != "" && item.ProductName == m.failItemNamed {
		return m.failItemErr
	}
	m.items = append(m.items, item)
	return nil
}

func (m *mockLedger) CreateItemIngredient(_ context.Context, row *OrderItemIngredient) error {
	m.ingredientRows = append(m.ingredientRows, row)
	return nil
}

func (m *mockLedger) CreateAddOn(_ context.Context, addOn *AddOn) error {
	m.addOns = append(m.addOns, addOn)
	return nil
}

// mockResolver backs FindByName with a fixed name set.
type mockResolver struct {
	known map[string]id.ID
	err   error // overrides lookups entirely when set
}

func (m *mockResolver) FindByName(_ context.Context, name string) (*ingredient.Ingredient, error) {
	if m.err != nil {
		return nil, m.err
	}
	ingID, ok := m.known[name]
	if !ok {
		return nil, apperror.NewNotFound("ingredient", name)
	}
	return &ingredient.Ingredient{ID: ingID, Name: name}, nil
}

func testPayload() *Payload {
	return &Payload{
		Lines: []LinePayload{
			{
				MenuItemID:  id.New(),
				ProductName: "Cheeseburger",
				Quantity:    2,
				UnitPrice:   types.MustMoney("6.50"),
				Ingredients: []IngredientSnapshot{
					{Name: "Burger Bun", Amount: types.NewQuantityFromInt(1), Unit: "pcs", TotalCost: types.MustMoney("0.40")},
					{Name: "Beef Patty", Amount: types.NewQuantityFromInt(1), Unit: "pcs", TotalCost: types.MustMoney("1.20")},
				},
				AddOns: []AddOnPayload{
					{Name: "Extra Cheese", Price: types.MustMoney("0.50")},
				},
			},
			{
				MenuItemID:  id.New(),
				ProductName: "Fries",
				Quantity:    1,
				UnitPrice:   types.MustMoney("2.50"),
				Ingredients: []IngredientSnapshot{
					{Name: "Fries Portion", Amount: types.NewQuantityFromFloat64(150), Unit: "g", TotalCost: types.MustMoney("0.75")},
				},
			},
		},
		Total:       types.MustMoney("15.50"),
		PaymentType: PaymentCard,
	}
}

func testService(repo Repository, resolver IngredientResolver) *Service {
	return NewService(repo, resolver, &numerator.MockGenerator{}, nil)
}

func TestPlaceOrder_WritesFullLedger(t *testing.T) {
	repo := &mockLedger{}
	resolver := &mockResolver{known: map[string]id.ID{
		"Burger Bun":    id.New(),
		"Beef Patty":    id.New(),
		"Fries Portion": id.New(),
	}}

	order, err := testService(repo, resolver).PlaceOrder(context.Background(), testPayload())
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, "MOCK-2026-00001", order.Number)
	assert.Equal(t, StatusPlaced, order.Status)
	assert.False(t, order.DeductionApplied)

	require.Len(t, repo.orders, 1)
	require.Len(t, repo.items, 2)
	require.Len(t, repo.ingredientRows, 3)
	require.Len(t, repo.addOns, 1)

	// Unit cost snapshot is the sum of the submitted ingredient costs.
	assert.True(t, repo.items[0].UnitCost.Equal(types.MustMoney("1.60")),
		"unit cost %s", repo.items[0].UnitCost)
	assert.True(t, repo.items[1].UnitCost.Equal(types.MustMoney("0.75")))

	// Consumption rows carry amount * line quantity.
	assert.Equal(t, types.NewQuantityFromInt(2), repo.ingredientRows[0].Amount)
	assert.Equal(t, types.NewQuantityFromInt(2), repo.ingredientRows[1].Amount)
	assert.Equal(t, types.NewQuantityFromFloat64(150), repo.ingredientRows[2].Amount)
}

func TestPlaceOrder_HeaderFailureIsFatal(t *testing.T) {
	repo := &mockLedger{failOrder: errors.New("connection reset")}
	resolver := &mockResolver{known: map[string]id.ID{}}

	order, err := testService(repo, resolver).PlaceOrder(context.Background(), testPayload())
	require.Error(t, err)
	assert.Nil(t, order)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDatabase, appErr.Code)
	assert.Empty(t, repo.items, "no lines may be written without a header")
}

func TestPlaceOrder_FailedLineIsSkipped(t *testing.T) {
	repo := &mockLedger{
		failItemNamed: "Cheeseburger",
		failItemErr:   errors.New("insert failed"),
	}
	resolver := &mockResolver{known: map[string]id.ID{
		"Burger Bun":    id.New(),
		"Beef Patty":    id.New(),
		"Fries Portion": id.New(),
	}}

	order, err := testService(repo, resolver).PlaceOrder(context.Background(), testPayload())
	require.NoError(t, err, "a failed line must not fail the order")
	require.NotNil(t, order)

	// The surviving line and its rows are still written; nothing
	// belonging to the failed line is.
	require.Len(t, repo.items, 1)
	assert.Equal(t, "Fries", repo.items[0].ProductName)
	require.Len(t, repo.ingredientRows, 1)
	assert.Empty(t, repo.addOns)
}

func TestPlaceOrder_UnknownIngredientSkippedSilently(t *testing.T) {
	repo := &mockLedger{}
	// Beef Patty is missing from the catalog.
	resolver := &mockResolver{known: map[string]id.ID{
		"Burger Bun":    id.New(),
		"Fries Portion": id.New(),
	}}

	_, err := testService(repo, resolver).PlaceOrder(context.Background(), testPayload())
	require.NoError(t, err)

	require.Len(t, repo.items, 2, "both lines persist")
	assert.Len(t, repo.ingredientRows, 2, "only resolvable ingredients get consumption rows")
}

func TestPlaceOrder_ResolverErrorSkipsRowOnly(t *testing.T) {
	repo := &mockLedger{}
	resolver := &mockResolver{err: errors.New("catalog unavailable")}

	order, err := testService(repo, resolver).PlaceOrder(context.Background(), testPayload())
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Len(t, repo.items, 2)
	assert.Empty(t, repo.ingredientRows)
	assert.Len(t, repo.addOns, 1, "add-ons do not depend on ingredient resolution")
}

func TestPlaceOrder_RejectsInvalidPayload(t *testing.T) {
	svc := testService(&mockLedger{}, &mockResolver{})

	tests := []struct {
		name    string
		mutate  func(p *Payload)
		message string
	}{
		{"no lines", func(p *Payload) { p.Lines = nil }, "at least one line"},
		{"bad payment type", func(p *Payload) { p.PaymentType = "crypto" }, "payment type"},
		{"negative total", func(p *Payload) { p.Total = types.MustMoney("-1") }, "total"},
		{"zero quantity", func(p *Payload) { p.Lines[0].Quantity = 0 }, "quantity"},
		{"negative price", func(p *Payload) { p.Lines[0].UnitPrice = types.MustMoney("-0.01") }, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := testPayload()
			tt.mutate(payload)

			_, err := svc.PlaceOrder(context.Background(), payload)
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
