package shopping_test

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dietcart/internal/ingredient"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/shopping"
)

func ing(name, qty string) recipe.Ingredient {
	return recipe.Ingredient{Name: name, Quantity: qty}
}

func samplePlan() recipe.WeeklyPlan {
	return recipe.WeeklyPlan{
		{Day: "Monday", Recipes: []recipe.Recipe{
			{Title: "Tostada", MealType: recipe.Breakfast, Ingredients: []recipe.Ingredient{ing("Tomate", "80 g"), ing("Aguacate", "300 g")}},
			{Title: "Ensalada", MealType: recipe.Lunch, Ingredients: []recipe.Ingredient{ing("Tomate", "100 g")}},
		}},
		{Day: "Tuesday", Recipes: []recipe.Recipe{
			{Title: "Guacamole", MealType: recipe.Dinner, Ingredients: []recipe.Ingredient{ing("Aguacate", "250 g")}},
		}},
	}
}

func TestRecompute_GroupsSortsAndConverts(t *testing.T) {
	list := shopping.NewAggregator(nil, nil).Recompute(samplePlan(), nil, ingredient.Metric)

	require.Equal(t, 2, list.Total())
	assert.Equal(t, "Aguacate", list.Items[0].Name)
	assert.Equal(t, "550 g", list.Items[0].Raw)
	assert.Equal(t, "3 aguacates", list.Items[0].Quantity)
	assert.Equal(t, "Tomate", list.Items[1].Name)
	assert.Equal(t, "180 g", list.Items[1].Raw)
	assert.Equal(t, "2 tomates", list.Items[1].Quantity)

	assert.NotEqual(t, uuid.Nil, list.Items[0].ID)
	assert.NotEqual(t, list.Items[0].ID, list.Items[1].ID)
}

func TestRecompute_OnlyExactNamesCombine(t *testing.T) {
	plan := recipe.WeeklyPlan{{Day: "Monday", Recipes: []recipe.Recipe{
		{Title: "A", Ingredients: []recipe.Ingredient{ing("Calabacín", "300 g"), ing("Zucchini", "250 g")}},
	}}}
	list := shopping.NewAggregator(nil, nil).Recompute(plan, nil, ingredient.Metric)
	require.Equal(t, 2, list.Total())
	assert.Equal(t, "2 calabacines", list.Items[0].Quantity)
	assert.Equal(t, "1 calabacín", list.Items[1].Quantity)
}

func TestRecompute_CountUnitSpellingsCombine(t *testing.T) {
	plan := recipe.WeeklyPlan{
		{Day: "Monday", Recipes: []recipe.Recipe{
			{Title: "Sopa", MealType: recipe.Lunch, Ingredients: []recipe.Ingredient{ing("Ajo", "1 diente")}},
			{Title: "Pollo", MealType: recipe.Dinner, Ingredients: []recipe.Ingredient{ing("Ajo", "2 dientes")}},
		}},
		{Day: "Tuesday", Recipes: []recipe.Recipe{
			{Title: "Gambas", MealType: recipe.Dinner, Ingredients: []recipe.Ingredient{ing("Ajo", "0.5 diente")}},
		}},
	}
	list := shopping.NewAggregator(nil, nil).Recompute(plan, nil, ingredient.Metric)

	require.Equal(t, 1, list.Total())
	assert.Equal(t, "3.5 dientes", list.Items[0].Raw)
	assert.Equal(t, "4 dientes", list.Items[0].Quantity)
}

func TestRecompute_CheckedStateSurvivesRebuild(t *testing.T) {
	agg := shopping.NewAggregator(nil, nil)
	list := agg.Recompute(samplePlan(), nil, ingredient.Metric)

	checked, ok := list.Toggle("Tomate")
	require.True(t, ok)
	assert.True(t, checked)
	persisted := list.CheckedNames()
	assert.Equal(t, []string{"Tomate"}, persisted)

	next := recipe.WeeklyPlan{{Day: "Monday", Recipes: []recipe.Recipe{
		{Title: "Pisto", Ingredients: []recipe.Ingredient{ing("Tomate", "400 g"), ing("Cebolla", "150 g")}},
	}}}
	rebuilt := agg.Recompute(next, persisted, ingredient.Metric)

	tomate, ok := rebuilt.Find("Tomate")
	require.True(t, ok)
	assert.True(t, tomate.Checked)
	assert.Equal(t, "4 tomates", tomate.Quantity)
	cebolla, _ := rebuilt.Find("Cebolla")
	assert.False(t, cebolla.Checked)
}

func TestRecompute_OrderIndependent(t *testing.T) {
	var recipes []recipe.Recipe
	for _, q := range []string{"40 g", "0.1 kg", "2 dientes", "12.5 g", "1 diente", "3", "0.7 kg"} {
		recipes = append(recipes, recipe.Recipe{Title: q, Ingredients: []recipe.Ingredient{ing("Ajo", q)}})
	}
	agg := shopping.NewAggregator(nil, nil)
	want := agg.Recompute(recipe.WeeklyPlan{{Day: "Monday", Recipes: recipes}}, nil, ingredient.Metric).Items[0]

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 30; i++ {
		shuffled := append([]recipe.Recipe(nil), recipes...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := agg.Recompute(recipe.WeeklyPlan{{Day: "Monday", Recipes: shuffled}}, nil, ingredient.Metric).Items[0]
		assert.Equal(t, want.Raw, got.Raw)
		assert.Equal(t, want.Quantity, got.Quantity)
	}
}

func TestList_Counters(t *testing.T) {
	empty := &shopping.List{}
	assert.Equal(t, 0, empty.Progress())
	assert.Equal(t, 0, empty.UncheckedCount())

	list := &shopping.List{Items: []shopping.Item{
		{Name: "a", Checked: true},
		{Name: "b"},
		{Name: "c"},
	}}
	assert.Equal(t, 3, list.Total())
	assert.Equal(t, 1, list.CheckedCount())
	assert.Equal(t, 2, list.UncheckedCount())
	assert.Equal(t, 33, list.Progress())

	list.Toggle("b")
	assert.Equal(t, 67, list.Progress())
}

func TestList_Toggle(t *testing.T) {
	list := &shopping.List{Items: []shopping.Item{{Name: "Tomate"}, {Name: "tomate"}}}

	checked, ok := list.Toggle("tomate")
	require.True(t, ok)
	assert.True(t, checked)
	assert.False(t, list.Items[0].Checked, "exact match wins over case-insensitive")

	checked, ok = list.Toggle("TOMATE")
	require.True(t, ok)
	assert.True(t, checked)
	assert.True(t, list.Items[0].Checked)

	_, ok = list.Toggle("pepino")
	assert.False(t, ok)
	assert.Equal(t, []string{"Tomate", "tomate"}, list.CheckedNames())
}

func TestList_ShareText(t *testing.T) {
	list := shopping.NewAggregator(nil, nil).Recompute(samplePlan(), []string{"Tomate"}, ingredient.Metric)

	want := "Shopping list\n" +
		"1 of 2 items — 50% completed\n" +
		"\nPending:\n" +
		"- Aguacate: 3 aguacates\n" +
		"\nCompleted:\n" +
		"- Tomate: 2 tomates\n"
	assert.Equal(t, want, list.ShareText(""))
}

func TestList_ShareTextOmitsEmptySections(t *testing.T) {
	list := shopping.NewAggregator(nil, nil).Recompute(samplePlan(), nil, ingredient.Metric)
	text := list.ShareText("Semana 1")

	assert.Contains(t, text, "Semana 1\n0 of 2 items — 0% completed\n")
	assert.Contains(t, text, "Pending:")
	assert.NotContains(t, text, "Completed:")
}
