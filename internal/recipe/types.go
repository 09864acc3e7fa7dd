// Package recipe holds the recipe data model, the weekly plan layout and the
// embedded per-diet catalogs.
package recipe

import "strings"

// RecipesPerDay is the fixed chunk size used to lay a flat week into days.
const RecipesPerDay = 3

// Weekdays are the plan days in order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// MealType tags a recipe with the meal it belongs to.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
)

// MealTypes lists the canonical meal types in day order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// Canonical reports whether m is one of Breakfast, Lunch or Dinner.
func (m MealType) Canonical() bool {
	return m == Breakfast || m == Lunch || m == Dinner
}

// ParseMealType matches a meal type case-insensitively.
func ParseMealType(raw string) (MealType, bool) {
	for _, m := range MealTypes {
		if strings.EqualFold(strings.TrimSpace(raw), string(m)) {
			return m, true
		}
	}
	return "", false
}

// Ingredient is one line of a recipe. Name is the aggregation key.
type Ingredient struct {
	Name     string `json:"name" yaml:"name"`
	Quantity string `json:"quantity" yaml:"quantity"`
	Checked  bool   `json:"checked,omitempty" yaml:"-"`
}

// Recipe is a catalog template or a scaled copy of one.
type Recipe struct {
	Title        string       `json:"title" yaml:"title"`
	MealType     MealType     `json:"mealType" yaml:"meal"`
	Ingredients  []Ingredient `json:"ingredients" yaml:"ingredients"`
	Instructions string       `json:"instructions" yaml:"instructions"`
	Calories     int          `json:"calories" yaml:"calories"`
}

// Clone returns a deep copy so scaled recipes never alias catalog data.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	return out
}

// DayPlan is the scaled recipes for one weekday.
type DayPlan struct {
	Day     string   `json:"day"`
	Recipes []Recipe `json:"recipes"`
}

// WeeklyPlan is the ordered list of scaled days.
type WeeklyPlan []DayPlan

// Day looks up a day by name, case-insensitively.
func (w WeeklyPlan) Day(name string) (DayPlan, bool) {
	for _, d := range w {
		if strings.EqualFold(d.Day, strings.TrimSpace(name)) {
			return d, true
		}
	}
	return DayPlan{}, false
}

// Recipes flattens every day's recipes in plan order.
func (w WeeklyPlan) Recipes() []Recipe {
	var out []Recipe
	for _, d := range w {
		out = append(out, d.Recipes...)
	}
	return out
}

// Calories sums a day's recipe calories.
func (d DayPlan) Calories() int {
	total := 0
	for _, r := range d.Recipes {
		total += r.Calories
	}
	return total
}
