// Package scale rebalances recipes so each meal hits a calorie target while
// keeping ingredient proportions.
package scale

import (
	"math"

	"go.uber.org/zap"

	"github.com/tayloree/dietcart/internal/quantity"
	"github.com/tayloree/dietcart/internal/recipe"
)

// MealTargets maps a meal type to its absolute calorie target.
type MealTargets map[recipe.MealType]float64

// DefaultSplit is the share of daily calories given to each meal.
var DefaultSplit = map[recipe.MealType]float64{
	recipe.Breakfast: 0.25,
	recipe.Lunch:     0.40,
	recipe.Dinner:    0.35,
}

// TargetsFromSplit derives absolute targets from a daily total and per-meal
// fractions. Meal types missing from split get no target.
func TargetsFromSplit(daily float64, split map[recipe.MealType]float64) MealTargets {
	out := make(MealTargets, len(split))
	for m, frac := range split {
		out[m] = daily * frac
	}
	return out
}

// Factor returns target/current, 1 when current is zero, never negative.
func Factor(current int, target float64) float64 {
	if current <= 0 {
		return 1.0
	}
	f := target / float64(current)
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	return f
}

// Scaler applies MealTargets to days of recipes.
type Scaler struct {
	log *zap.Logger
}

// New returns a Scaler. A nil logger discards output.
func New(log *zap.Logger) *Scaler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scaler{log: log}
}

// ScaleDay rescales one day. Recipes are grouped by meal type; each group is
// multiplied by target/subtotal. Meal types without a target keep factor 1.
// Recipes with a non-canonical meal type are dropped. The input is not
// modified.
func (s *Scaler) ScaleDay(recipes []recipe.Recipe, targets MealTargets) []recipe.Recipe {
	subtotals := make(map[recipe.MealType]int, len(recipe.MealTypes))
	for _, r := range recipes {
		if r.MealType.Canonical() {
			subtotals[r.MealType] += r.Calories
		}
	}

	factors := make(map[recipe.MealType]float64, len(subtotals))
	for m, current := range subtotals {
		target, ok := targets[m]
		if !ok {
			factors[m] = 1.0
			continue
		}
		factors[m] = Factor(current, target)
	}

	out := make([]recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if !r.MealType.Canonical() {
			s.log.Debug("dropping recipe with unknown meal type",
				zap.String("title", r.Title), zap.String("meal", string(r.MealType)))
			continue
		}
		out = append(out, apply(r, factors[r.MealType]))
	}
	return out
}

// BuildWeek lays flat into days of recipe.RecipesPerDay, at most seven, and
// scales each day independently.
func (s *Scaler) BuildWeek(flat []recipe.Recipe, targets MealTargets) recipe.WeeklyPlan {
	plan := make(recipe.WeeklyPlan, 0, len(recipe.Weekdays))
	for i, day := range recipe.Weekdays {
		start := i * recipe.RecipesPerDay
		if start >= len(flat) {
			break
		}
		end := min(start+recipe.RecipesPerDay, len(flat))
		plan = append(plan, recipe.DayPlan{
			Day:     day,
			Recipes: s.ScaleDay(flat[start:end], targets),
		})
	}
	if extra := len(flat) - len(recipe.Weekdays)*recipe.RecipesPerDay; extra > 0 {
		s.log.Debug("ignoring recipes beyond one week", zap.Int("extra", extra))
	}
	return plan
}

func apply(r recipe.Recipe, factor float64) recipe.Recipe {
	out := r.Clone()
	out.Calories = int(math.Round(float64(r.Calories) * factor))
	for i, ing := range out.Ingredients {
		out.Ingredients[i].Quantity = quantity.Scale(ing.Quantity, factor)
	}
	return out
}
