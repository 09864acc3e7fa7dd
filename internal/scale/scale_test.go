package scale_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/scale"
)

func breakfast(title string, kcal int, ingredients ...recipe.Ingredient) recipe.Recipe {
	return recipe.Recipe{Title: title, MealType: recipe.Breakfast, Calories: kcal, Ingredients: ingredients}
}

func TestScaleDay_BreakfastGroup(t *testing.T) {
	day := []recipe.Recipe{
		breakfast("A", 300, recipe.Ingredient{Name: "Avena", Quantity: "40g"}),
		breakfast("B", 300),
		breakfast("C", 300),
	}

	out := scale.New(nil).ScaleDay(day, scale.MealTargets{recipe.Breakfast: 700})
	require.Len(t, out, 3)
	assert.Equal(t, 233, out[0].Calories)
	assert.Equal(t, "31.1 g", out[0].Ingredients[0].Quantity)

	// Catalog input is untouched.
	assert.Equal(t, 300, day[0].Calories)
	assert.Equal(t, "40g", day[0].Ingredients[0].Quantity)
}

func TestScaleDay_PerMealFactors(t *testing.T) {
	day := []recipe.Recipe{
		{Title: "B", MealType: recipe.Breakfast, Calories: 400, Ingredients: []recipe.Ingredient{{Name: "Huevos", Quantity: "2"}}},
		{Title: "L", MealType: recipe.Lunch, Calories: 500, Ingredients: []recipe.Ingredient{{Name: "Ajo", Quantity: "2 dientes"}}},
		{Title: "D", MealType: recipe.Dinner, Calories: 600},
	}
	targets := scale.MealTargets{recipe.Breakfast: 200, recipe.Lunch: 750}

	out := scale.New(nil).ScaleDay(day, targets)
	require.Len(t, out, 3)
	assert.Equal(t, 200, out[0].Calories)
	assert.Equal(t, "1", out[0].Ingredients[0].Quantity)
	assert.Equal(t, 750, out[1].Calories)
	assert.Equal(t, "3 dientes", out[1].Ingredients[0].Quantity)
	// No dinner target: identity.
	assert.Equal(t, 600, out[2].Calories)
}

func TestScaleDay_ZeroCalorieGroupKeepsFactorOne(t *testing.T) {
	day := []recipe.Recipe{breakfast("Agua", 0, recipe.Ingredient{Name: "Agua", Quantity: "250 ml"})}

	out := scale.New(nil).ScaleDay(day, scale.MealTargets{recipe.Breakfast: 500})
	assert.Equal(t, 0, out[0].Calories)
	assert.Equal(t, "250 ml", out[0].Ingredients[0].Quantity)
}

func TestScaleDay_NegativeTargetClampsToZero(t *testing.T) {
	out := scale.New(nil).ScaleDay([]recipe.Recipe{breakfast("A", 300)}, scale.MealTargets{recipe.Breakfast: -100})
	assert.Equal(t, 0, out[0].Calories)
}

func TestScaleDay_DropsUnknownMealTypes(t *testing.T) {
	day := []recipe.Recipe{
		breakfast("A", 300),
		{Title: "Snack", MealType: "Snack", Calories: 150},
	}
	out := scale.New(nil).ScaleDay(day, scale.MealTargets{recipe.Breakfast: 300})
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].Title)
}

func TestScaleDay_MalformedQuantityDegrades(t *testing.T) {
	day := []recipe.Recipe{breakfast("A", 100, recipe.Ingredient{Name: "Limón", Quantity: "1/2 unit"})}
	out := scale.New(nil).ScaleDay(day, scale.MealTargets{recipe.Breakfast: 200})
	assert.Equal(t, "2 1/2 unit", out[0].Ingredients[0].Quantity)
}

func TestScaleDay_SubtotalWithinRoundingOfTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	s := scale.New(nil)

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(4)
		day := make([]recipe.Recipe, n)
		for j := range day {
			day[j] = breakfast("r", 1+rng.Intn(900))
		}
		target := float64(rng.Intn(1500))

		out := s.ScaleDay(day, scale.MealTargets{recipe.Breakfast: target})
		sum := 0
		for _, r := range out {
			assert.GreaterOrEqual(t, r.Calories, 0)
			sum += r.Calories
		}
		assert.LessOrEqual(t, math.Abs(float64(sum)-target), float64(n), "n=%d target=%v", n, target)
	}
}

func TestFactor(t *testing.T) {
	assert.InDelta(t, 0.7778, scale.Factor(900, 700), 1e-4)
	assert.Equal(t, 1.0, scale.Factor(0, 700))
	assert.Equal(t, 0.0, scale.Factor(500, -1))
}

func TestTargetsFromSplit(t *testing.T) {
	targets := scale.TargetsFromSplit(2000, scale.DefaultSplit)
	assert.InDelta(t, 500, targets[recipe.Breakfast], 1e-9)
	assert.InDelta(t, 800, targets[recipe.Lunch], 1e-9)
	assert.InDelta(t, 700, targets[recipe.Dinner], 1e-9)
}

func TestBuildWeek_ChunksIntoSevenDays(t *testing.T) {
	c, err := recipe.Load(recipe.Keto)
	require.NoError(t, err)

	targets := scale.TargetsFromSplit(1800, scale.DefaultSplit)
	plan := scale.New(nil).BuildWeek(c.Week(), targets)
	require.Len(t, plan, 7)

	for i, day := range plan {
		assert.Equal(t, recipe.Weekdays[i], day.Day)
		require.Len(t, day.Recipes, recipe.RecipesPerDay)
		assert.InDelta(t, 1800, day.Calories(), 3, day.Day)
	}
}

func TestBuildWeek_ShortAndLongInput(t *testing.T) {
	s := scale.New(nil)
	short := []recipe.Recipe{breakfast("A", 100), breakfast("B", 100), breakfast("C", 100), breakfast("D", 100)}
	plan := s.BuildWeek(short, nil)
	require.Len(t, plan, 2)
	assert.Len(t, plan[1].Recipes, 1)

	long := make([]recipe.Recipe, 30)
	for i := range long {
		long[i] = breakfast("X", 100)
	}
	assert.Len(t, s.BuildWeek(long, nil), 7)
}
