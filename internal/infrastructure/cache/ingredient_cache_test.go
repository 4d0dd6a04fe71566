package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/types"
	"kitchenledger/internal/domain/catalog/ingredient"
)

type countingSource struct {
	known map[string]*ingredient.Ingredient
	calls int
}

func (s *countingSource) FindByName(_ context.Context, name string) (*ingredient.Ingredient, error) {
	s.calls++
	ing, ok := s.known[name]
	if !ok {
		return nil, apperror.NewNotFound("ingredient", name)
	}
	return ing, nil
}

func TestIngredientCache_SecondLookupIsCached(t *testing.T) {
	cheese := ingredient.NewIngredient("ING-1", "Cheese Slice", "dairy", "pcs", types.MustMoney("0.30"))
	source := &countingSource{known: map[string]*ingredient.Ingredient{"Cheese Slice": cheese}}
	c := NewIngredientCache(nil, source)

	first, err := c.FindByName(context.Background(), "Cheese Slice")
	require.NoError(t, err)
	second, err := c.FindByName(context.Background(), "Cheese Slice")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, cheese.ID, second.ID)

	// Callers get copies, not the cached entry.
	first.Name = "mutated"
	third, err := c.FindByName(context.Background(), "Cheese Slice")
	require.NoError(t, err)
	assert.Equal(t, "Cheese Slice", third.Name)
}

func TestIngredientCache_MissesAreNotCached(t *testing.T) {
	source := &countingSource{known: map[string]*ingredient.Ingredient{}}
	c := NewIngredientCache(nil, source)

	_, err := c.FindByName(context.Background(), "Ghost Pepper")
	assert.True(t, apperror.IsNotFound(err))

	_, err = c.FindByName(context.Background(), "Ghost Pepper")
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, 2, source.calls, "a retired ingredient coming back must be visible immediately")
}

func TestIngredientCache_Invalidate(t *testing.T) {
	cheese := ingredient.NewIngredient("ING-1", "Cheese Slice", "dairy", "pcs", types.MustMoney("0.30"))
	bun := ingredient.NewIngredient("ING-2", "Burger Bun", "bakery", "pcs", types.MustMoney("0.40"))
	source := &countingSource{known: map[string]*ingredient.Ingredient{
		"Cheese Slice": cheese,
		"Burger Bun":   bun,
	}}
	c := NewIngredientCache(nil, source)

	_, err := c.FindByName(context.Background(), "Cheese Slice")
	require.NoError(t, err)
	_, err = c.FindByName(context.Background(), "Burger Bun")
	require.NoError(t, err)
	require.Equal(t, 2, c.GetStats().Entries)

	// Named invalidation drops only that entry.
	c.invalidate("Cheese Slice")
	assert.Equal(t, 1, c.GetStats().Entries)

	_, err = c.FindByName(context.Background(), "Cheese Slice")
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls)

	// Empty payload flushes everything.
	c.invalidate("")
	assert.Zero(t, c.GetStats().Entries)
}
