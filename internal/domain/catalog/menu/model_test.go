package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenledger/internal/core/id"
	"kitchenledger/internal/core/types"
)

func sampleRecipe() Recipe {
	return Recipe{
		{
			IngredientID:   id.New(),
			IngredientName: "Burger Bun",
			Amount:         types.NewQuantityFromInt(1),
			Unit:           "pcs",
			TotalCost:      types.MustMoney("0.40"),
		},
		{
			IngredientID:   id.New(),
			IngredientName: "Beef Patty",
			Amount:         types.NewQuantityFromInt(1),
			Unit:           "pcs",
			TotalCost:      types.MustMoney("1.20"),
		},
	}
}

func TestRecipe_RoundTrip(t *testing.T) {
	original := sampleRecipe()

	value, err := original.Value()
	require.NoError(t, err)

	var decoded Recipe
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 2)
	assert.Equal(t, original[0].IngredientID, decoded[0].IngredientID)
	assert.Equal(t, original[0].Amount, decoded[0].Amount)
	assert.True(t, decoded[1].TotalCost.Equal(types.MustMoney("1.20")))
}

func TestRecipe_NilValueEncodesEmptyArray(t *testing.T) {
	var r Recipe
	value, err := r.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)
}

func TestRecipe_ScanToleratesBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		src  any
	}{
		{"malformed json", []byte(`{"not":"a recipe"`)},
		{"wrong shape", []byte(`{"ingredientId": 42}`)},
		{"nil", nil},
		{"unexpected type", 12345},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleRecipe()
			require.NoError(t, r.Scan(tt.src), "bad recipe payloads must not fail the row")
			assert.Empty(t, r)
		})
	}
}

func TestRecipe_TotalCost(t *testing.T) {
	r := sampleRecipe()
	assert.True(t, r.TotalCost().Equal(types.MustMoney("1.60")))

	var empty Recipe
	assert.True(t, empty.TotalCost().IsZero())
}

func TestMenuItem_Validate(t *testing.T) {
	item := NewMenuItem("MNU-00001", "Cheeseburger", "burgers", types.MustMoney("6.50"))
	item.Recipe = sampleRecipe()
	require.NoError(t, item.Validate(context.Background()))

	t.Run("name required", func(t *testing.T) {
		bad := *item
		bad.Name = ""
		assert.Error(t, bad.Validate(context.Background()))
	})

	t.Run("negative price", func(t *testing.T) {
		bad := *item
		bad.Price = types.MustMoney("-1")
		assert.Error(t, bad.Validate(context.Background()))
	})

	t.Run("recipe line needs ingredient", func(t *testing.T) {
		bad := *item
		bad.Recipe = Recipe{{Amount: types.NewQuantityFromInt(1)}}
		assert.Error(t, bad.Validate(context.Background()))
	})

	t.Run("recipe line needs positive amount", func(t *testing.T) {
		bad := *item
		bad.Recipe = Recipe{{IngredientID: id.New(), IngredientName: "X"}}
		assert.Error(t, bad.Validate(context.Background()))
	})
}
