package perf_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/tayloree/dietcart/internal/display"
	"github.com/tayloree/dietcart/internal/ingredient"
	"github.com/tayloree/dietcart/internal/planner"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/scale"
	"github.com/tayloree/dietcart/internal/shopping"
	"github.com/tayloree/dietcart/internal/store"
)

var benchNames = []string{
	"Huevos", "Aguacate", "Tomate", "Pechuga de pollo", "Aceite de oliva",
	"Leche", "Cebolla", "Ajo", "Espinacas", "Queso cheddar", "Sal",
	"Salmón", "Limón", "Pimiento rojo", "Champiñones",
}

var benchQuantities = []string{"3", "100 g", "1/2", "250 ml", "2 dientes", "1.5 kg", "1 g", "abc", "80 g"}

// benchmarkRecipes builds count synthetic recipes cycling through meal types,
// each with a spread of names and quantity formats.
func benchmarkRecipes(count int) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, count)
	for i := range count {
		ings := make([]recipe.Ingredient, 0, 6)
		for j := range 6 {
			ings = append(ings, recipe.Ingredient{
				Name:     benchNames[(i+j)%len(benchNames)],
				Quantity: benchQuantities[(i*j+j)%len(benchQuantities)],
			})
		}
		out = append(out, recipe.Recipe{
			Title:       fmt.Sprintf("Recipe %d", i),
			MealType:    recipe.MealTypes[i%len(recipe.MealTypes)],
			Calories:    300 + (i%7)*50,
			Ingredients: ings,
		})
	}
	return out
}

func runPipeline(b *testing.B, scaler *scale.Scaler, agg *shopping.Aggregator, flat []recipe.Recipe, system ingredient.UnitSystem) {
	b.Helper()

	targets := scale.TargetsFromSplit(1800, scale.DefaultSplit)
	plan := scaler.BuildWeek(flat, targets)
	if len(plan) == 0 {
		b.Fatalf("build week returned no days")
	}
	list := agg.Recompute(plan, []string{"Tomate", "Sal"}, system)
	if list.Total() == 0 {
		b.Fatalf("recompute returned no items")
	}
	if err := display.PrintListJSON(io.Discard, list); err != nil {
		b.Fatalf("print list json: %v", err)
	}
}

func BenchmarkRecomputePipeline_Week(b *testing.B) {
	flat := benchmarkRecipes(recipe.RecipesPerDay * len(recipe.Weekdays))
	scaler := scale.New(nil)
	agg := shopping.NewAggregator(nil, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		runPipeline(b, scaler, agg, flat, ingredient.Metric)
	}
}

func BenchmarkRecomputePipeline_Imperial(b *testing.B) {
	flat := benchmarkRecipes(recipe.RecipesPerDay * len(recipe.Weekdays))
	scaler := scale.New(nil)
	agg := shopping.NewAggregator(nil, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		runPipeline(b, scaler, agg, flat, ingredient.Imperial)
	}
}

func BenchmarkEngineRebuild_Memory(b *testing.B) {
	ctx := context.Background()
	s := store.NewMemory()
	e := planner.New(s)
	in := planner.Inputs{
		Diet:    recipe.Keto,
		Targets: scale.TargetsFromSplit(1800, scale.DefaultSplit),
		Units:   ingredient.Metric,
	}
	if err := store.SaveChecked(ctx, s, []string{"Huevos", "Aguacate"}); err != nil {
		b.Fatalf("seed checked: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := e.Rebuild(ctx, in); err != nil {
			b.Fatalf("rebuild: %v", err)
		}
	}
}

func BenchmarkMatcherNormalizeAndMatch(b *testing.B) {
	m := ingredient.NewMatcher(nil)
	names := []string{
		"Pechuga de pollo picada (sin piel)",
		"Tomates cherry frescos",
		"Aceite de oliva virgen extra",
		"zucchini",
		"Queso cheddar rallado",
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		m.Match(m.Normalize(names[i%len(names)]))
	}
}
