package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/numerator"
	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/catalog/ingredient"
)

type mockMenuRepo struct {
	byID   map[id.ID]*MenuItem
	byName map[string]*MenuItem
}

func newMockMenuRepo(items ...*MenuItem) *mockMenuRepo {
	r := &mockMenuRepo{
		byID:   make(map[id.ID]*MenuItem),
		byName: make(map[string]*MenuItem),
	}
	for _, item := range items {
		r.byID[item.ID] = item
		r.byName[item.Name] = item
	}
	return r
}

func (m *mockMenuRepo) Create(_ context.Context, item *MenuItem) error {
	m.byID[item.ID] = item
	m.byName[item.Name] = item
	return nil
}

func (m *mockMenuRepo) Update(_ context.Context, item *MenuItem) error {
	m.byID[item.ID] = item
	m.byName[item.Name] = item
	return nil
}

func (m *mockMenuRepo) Delete(_ context.Context, itemID id.ID) error {
	item, ok := m.byID[itemID]
	if !ok {
		return apperror.NewNotFound("menu item", itemID.String())
	}
	delete(m.byName, item.Name)
	delete(m.byID, itemID)
	return nil
}

func (m *mockMenuRepo) GetByID(_ context.Context, itemID id.ID) (*MenuItem, error) {
	item, ok := m.byID[itemID]
	if !ok {
		return nil, apperror.NewNotFound("menu item", itemID.String())
	}
	return item, nil
}

func (m *mockMenuRepo) FindByName(_ context.Context, name string) (*MenuItem, error) {
	item, ok := m.byName[name]
	if !ok {
		return nil, apperror.NewNotFound("menu item", name)
	}
	return item, nil
}

func (m *mockMenuRepo) List(_ context.Context, _ ListFilter) ([]*MenuItem, int64, error) {
	var out []*MenuItem
	for _, item := range m.byID {
		out = append(out, item)
	}
	return out, int64(len(out)), nil
}

// mockIngredients implements ingredient.Repository over a fixed set.
type mockIngredients struct {
	byID map[id.ID]*ingredient.Ingredient
}

func newMockIngredients(ings ...*ingredient.Ingredient) *mockIngredients {
	r := &mockIngredients{byID: make(map[id.ID]*ingredient.Ingredient)}
	for _, ing := range ings {
		r.byID[ing.ID] = ing
	}
	return r
}

func (m *mockIngredients) Create(_ context.Context, _ *ingredient.Ingredient) error { return nil }
func (m *mockIngredients) Update(_ context.Context, _ *ingredient.Ingredient) error { return nil }
func (m *mockIngredients) Delete(_ context.Context, _ id.ID) error                  { return nil }

func (m *mockIngredients) GetByID(_ context.Context, ingID id.ID) (*ingredient.Ingredient, error) {
	ing, ok := m.byID[ingID]
	if !ok {
		return nil, apperror.NewNotFound("ingredient", ingID.String())
	}
	return ing, nil
}

func (m *mockIngredients) FindByName(_ context.Context, name string) (*ingredient.Ingredient, error) {
	for _, ing := range m.byID {
		if ing.Name == name {
			return ing, nil
		}
	}
	return nil, apperror.NewNotFound("ingredient", name)
}

func (m *mockIngredients) List(_ context.Context, _ ingredient.ListFilter) ([]*ingredient.Ingredient, int64, error) {
	return nil, 0, nil
}

func (m *mockIngredients) AdjustOnHand(_ context.Context, _ id.ID, _ types.Quantity) error {
	return nil
}

func (m *mockIngredients) DeductOnHand(_ context.Context, _ id.ID, _ types.Quantity) error {
	return nil
}

func TestMenuService_CreateSnapshotsRecipe(t *testing.T) {
	bun := ingredient.NewIngredient("ING-1", "Burger Bun", "bakery", "pcs", types.MustMoney("0.40"))
	patty := ingredient.NewIngredient("ING-2", "Beef Patty", "meat", "pcs", types.MustMoney("1.20"))

	repo := newMockMenuRepo()
	svc := NewService(repo, newMockIngredients(bun, patty), &numerator.MockGenerator{}, nil, nil)

	item := NewMenuItem("", "Double Burger", "burgers", types.MustMoney("9.50"))
	item.Recipe = Recipe{
		{IngredientID: bun.ID, Amount: types.NewQuantityFromInt(1)},
		{IngredientID: patty.ID, Amount: types.NewQuantityFromInt(2)},
	}

	require.NoError(t, svc.Create(context.Background(), item))

	// Snapshots come from the catalog, not from the request.
	assert.Equal(t, "Burger Bun", item.Recipe[0].IngredientName)
	assert.Equal(t, "pcs", item.Recipe[0].Unit)
	assert.True(t, item.Recipe[0].TotalCost.Equal(types.MustMoney("0.40")))
	assert.True(t, item.Recipe[1].TotalCost.Equal(types.MustMoney("2.40")), "cost is unit cost x amount")

	assert.True(t, item.UnitCost().Equal(types.MustMoney("2.80")))
	assert.Equal(t, "MOCK-2026-00001", item.Code, "code is generated when empty")
	assert.Contains(t, repo.byID, item.ID)
}

func TestMenuService_CreateRejectsUnknownIngredient(t *testing.T) {
	svc := NewService(newMockMenuRepo(), newMockIngredients(), &numerator.MockGenerator{}, nil, nil)

	item := NewMenuItem("MNU-1", "Mystery Dish", "specials", types.MustMoney("5.00"))
	item.Recipe = Recipe{{IngredientID: id.New(), Amount: types.NewQuantityFromInt(1)}}

	err := svc.Create(context.Background(), item)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestMenuService_CreateRejectsDuplicateName(t *testing.T) {
	existing := NewMenuItem("MNU-1", "Cheeseburger", "burgers", types.MustMoney("6.50"))
	svc := NewService(newMockMenuRepo(existing), newMockIngredients(), &numerator.MockGenerator{}, nil, nil)

	dup := NewMenuItem("MNU-2", "Cheeseburger", "burgers", types.MustMoney("7.00"))
	err := svc.Create(context.Background(), dup)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestMenuService_UploadImageWithoutStore(t *testing.T) {
	svc := NewService(newMockMenuRepo(), newMockIngredients(), &numerator.MockGenerator{}, nil, nil)

	_, err := svc.UploadImage(context.Background(), id.New(), "image/png", nil)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "image_storage_unavailable", appErr.Code)
}
