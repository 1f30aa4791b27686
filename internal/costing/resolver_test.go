package costing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costbook/internal/units"
)

func TestResolveEmptyRecipe(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.recipe(1, "Water", 2, units.Liters)

	result, err := NewResolver(b.build()).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Cost)
	require.NotNil(t, result.UnitCost)
	assert.Equal(t, 0.0, *result.UnitCost)
	assert.Empty(t, result.Unresolved)
	assert.NotNil(t, result.Unresolved)
}

func TestResolveSingleIngredient(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Flour", units.Grams, 0.50)
	b.recipe(1, "Roux", 4, units.Grams)
	b.uses(1, 10, 2, units.Grams)

	result, err := NewResolver(b.build()).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.00, result.Cost, 1e-12)
	require.NotNil(t, result.UnitCost)
	assert.InDelta(t, 0.25, *result.UnitCost, 1e-12)
}

func TestResolveConvertsIngredientUnits(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Butter", units.Kilograms, 8)
	b.recipe(1, "Glaze", 1, units.Units)
	b.uses(1, 10, 250, units.Grams)

	result, err := NewResolver(b.build()).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.Cost, 1e-12)
}

func TestResolveSubRecipeContribution(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Flour", units.Grams, 0.002)
	b.recipe(1, "Dough", 4, units.Units)
	b.uses(1, 10, 500, units.Grams)
	b.recipe(2, "Pizza", 1, units.Units)
	b.nests(2, 1, 0.5, units.Units)

	resolver := NewResolver(b.build())

	dough, err := resolver.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.00, dough.Cost, 1e-12)
	require.NotNil(t, dough.UnitCost)
	assert.InDelta(t, 0.25, *dough.UnitCost, 1e-12)

	pizza, err := resolver.Resolve(context.Background(), 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.125, pizza.Cost, 1e-12)
}

func TestResolveKeepsFullPrecision(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Saffron", units.Grams, 1.0/3.0)
	b.recipe(1, "Infusion", 3, units.Milliliters)
	b.uses(1, 10, 1, units.Grams)
	b.recipe(2, "Risotto", 1, units.Units)
	b.nests(2, 1, 3, units.Milliliters)

	result, err := NewResolver(b.build()).Resolve(context.Background(), 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, result.Cost, 1e-15)
}

func TestResolveIncompatibleIngredientUnits(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Sugar", units.Grams, 0.01)
	b.ingredient(11, "Milk", units.Milliliters, 0.002)
	b.recipe(1, "Custard", 1, units.Units)
	bad := b.uses(1, 10, 1, units.Cups)
	b.uses(1, 11, 500, units.Milliliters)

	result, err := NewResolver(b.build()).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Cost, 1e-12)
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, LineIssue{
		RelationID:     bad,
		RelationType:   KindIngredient,
		ParentRecipeID: 1,
		ChildID:        10,
		Reason:         ReasonIncompatibleUnits,
	}, result.Unresolved[0])
}

func TestResolveMissingEntities(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Salt", units.Grams, 0.001)
	b.recipe(1, "Brine", 1, units.Liters)
	b.uses(1, 10, 1000, units.Grams)
	missingIngredient := b.uses(1, 99, 5, units.Grams)
	missingRecipe := b.nests(1, 98, 1, units.Units)

	result, err := NewResolver(b.build()).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Cost, 1e-12)
	require.Len(t, result.Unresolved, 2)
	assert.Equal(t, missingIngredient, result.Unresolved[0].RelationID)
	assert.Equal(t, ReasonMissingEntity, result.Unresolved[0].Reason)
	assert.Equal(t, missingRecipe, result.Unresolved[1].RelationID)
	assert.Equal(t, KindRecipe, result.Unresolved[1].RelationType)
	assert.Equal(t, ReasonMissingEntity, result.Unresolved[1].Reason)
}

func TestResolveInvalidProduces(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Yeast", units.Grams, 0.1)
	b.recipe(1, "Starter", 0, units.Grams)
	b.uses(1, 10, 10, units.Grams)
	b.recipe(2, "Bread", 1, units.Units)
	rel := b.nests(2, 1, 50, units.Grams)

	resolver := NewResolver(b.build())

	starter, err := resolver.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, starter.Cost, 1e-12)
	assert.Nil(t, starter.UnitCost)

	bread, err := resolver.Resolve(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, bread.Cost)
	require.Len(t, bread.Unresolved, 1)
	assert.Equal(t, rel, bread.Unresolved[0].RelationID)
	assert.Equal(t, ReasonInvalidProduces, bread.Unresolved[0].Reason)
}

func TestResolveIncompatibleSubRecipeUnits(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Stock bones", units.Kilograms, 3)
	b.recipe(1, "Stock", 2, units.Liters)
	b.uses(1, 10, 1, units.Kilograms)
	b.recipe(2, "Soup", 4, units.Units)
	b.nests(2, 1, 500, units.Milliliters)
	bad := b.nests(2, 1, 100, units.Grams)

	result, err := NewResolver(b.build()).Resolve(context.Background(), 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, result.Cost, 1e-12)
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, bad, result.Unresolved[0].RelationID)
	assert.Equal(t, ReasonIncompatibleUnits, result.Unresolved[0].Reason)
}

func TestResolveReportsNestedIssuesOnce(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.recipe(1, "Sauce", 1, units.Liters)
	b.uses(1, 99, 1, units.Grams)
	b.recipe(2, "Pasta", 1, units.Units)
	b.nests(2, 1, 100, units.Milliliters)
	b.recipe(3, "Lasagna", 1, units.Units)
	b.nests(3, 1, 200, units.Milliliters)
	b.recipe(4, "Menu", 1, units.Units)
	b.nests(4, 2, 1, units.Units)
	b.nests(4, 3, 1, units.Units)

	result, err := NewResolver(b.build()).Resolve(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, uint(1), result.Unresolved[0].ParentRecipeID)
}

func TestResolveMemoizesSharedSubRecipes(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Egg", units.Units, 0.3)
	b.recipe(1, "Base", 1, units.Units)
	b.uses(1, 10, 1, units.Units)
	// A ladder where every level uses the level below twice.
	const levels = 20
	for level := uint(2); level <= levels; level++ {
		b.recipe(level, "Level", 1, units.Units)
		b.nests(level, level-1, 1, units.Units)
		b.nests(level, level-1, 1, units.Units)
	}

	graph := &countingGraph{Graph: b.build(), subReads: map[uint]int{}}
	result, err := NewResolver(graph).Resolve(context.Background(), levels)
	require.NoError(t, err)
	assert.InDelta(t, 0.3*float64(uint(1)<<(levels-1)), result.Cost, 1e-6)
	for id, reads := range graph.subReads {
		assert.Equal(t, 1, reads, "recipe %d expanded more than once", id)
	}
}

func TestResolveCacheIsRequestScoped(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.ingredient(10, "Cream", units.Milliliters, 0.01)
	b.recipe(1, "Whip", 1, units.Units)
	b.uses(1, 10, 100, units.Milliliters)

	graph := &countingGraph{Graph: b.build(), subReads: map[uint]int{}}
	resolver := NewResolver(graph)
	for i := 0; i < 3; i++ {
		_, err := resolver.Resolve(context.Background(), 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, graph.subReads[1])
}

func TestResolveDetectsCycles(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.recipe(1, "A", 1, units.Units)
	b.recipe(2, "B", 1, units.Units)
	b.recipe(3, "C", 1, units.Units)
	b.nests(1, 2, 1, units.Units)
	b.nests(2, 3, 1, units.Units)
	b.nests(3, 2, 1, units.Units)

	_, err := NewResolver(b.build()).Resolve(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycleDetected))

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []uint{2, 3, 2}, cycleErr.Path)
	assert.Contains(t, err.Error(), "2 -> 3 -> 2")
}

func TestResolveDetectsSelfReference(t *testing.T) {
	t.Parallel()

	b := &graphBuilder{}
	b.recipe(1, "Ouroboros", 1, units.Units)
	b.nests(1, 1, 1, units.Units)

	_, err := NewResolver(b.build()).Resolve(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestResolveUnknownRecipe(t *testing.T) {
	t.Parallel()

	_, err := NewResolver((&graphBuilder{}).build()).Resolve(context.Background(), 42)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}
