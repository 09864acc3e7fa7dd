package cmd

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dietcart/internal/ingredient"
	"github.com/tayloree/dietcart/internal/planner"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/scale"
	"github.com/tayloree/dietcart/internal/shopping"
	"github.com/tayloree/dietcart/internal/store"
)

func TestBuildGroupedListItems_PendingFirstWithSectionHeaders(t *testing.T) {
	groceries := []shopping.Item{
		{Name: "Aguacate", Quantity: "2 aguacates", Checked: true},
		{Name: "Huevos", Quantity: "12 huevos"},
		{Name: "Tomate", Quantity: "3 tomates"},
	}
	usage := map[string][]string{"Huevos": {"a", "b"}}

	items, starts := buildGroupedListItems(groceries, usage, false)

	require.Len(t, items, 5)
	assert.Equal(t, []int{0, 3}, starts)

	header, ok := items[0].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, groupPending, header.name)
	assert.Equal(t, 2, header.count)

	huevos, ok := items[1].(tuiGroceryItem)
	require.True(t, ok)
	assert.Equal(t, "[ ] Huevos", huevos.Title())
	assert.Contains(t, huevos.Description(), "2 recipes")

	header2, ok := items[3].(tuiGroupItem)
	require.True(t, ok)
	assert.Equal(t, groupCompleted, header2.name)
	assert.Equal(t, "1 items", header2.Description())

	aguacate, ok := items[4].(tuiGroceryItem)
	require.True(t, ok)
	assert.Equal(t, "[x] Aguacate", aguacate.Title())
}

func TestBuildGroupedListItems_HideCompletedAndEmptySections(t *testing.T) {
	groceries := []shopping.Item{{Name: "Aguacate", Checked: true}}

	items, starts := buildGroupedListItems(groceries, nil, true)
	assert.Empty(t, items)
	assert.Empty(t, starts)

	items, starts = buildGroupedListItems(groceries, nil, false)
	require.Len(t, items, 2)
	assert.Equal(t, []int{0}, starts)
	assert.Equal(t, groupCompleted, items[0].(tuiGroupItem).Title())
}

func TestRecipeUsage(t *testing.T) {
	plan := recipe.WeeklyPlan{{
		Day: "Monday",
		Recipes: []recipe.Recipe{{
			Title:       "Tortilla",
			MealType:    recipe.Breakfast,
			Ingredients: []recipe.Ingredient{{Name: "Huevos", Quantity: "3"}},
		}},
	}}

	usage := recipeUsage(plan)
	assert.Equal(t, []string{"Monday · Breakfast · Tortilla (3)"}, usage["Huevos"])
}

func TestGroceryTUIModel_ToggleGoesThroughEngine(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	engine := planner.New(s)
	model := newLoadingGroceryTUIModel(tuiLoadConfig{
		ctx:    ctx,
		engine: engine,
		inputs: planner.Inputs{
			Diet:    recipe.Keto,
			Targets: scale.TargetsFromSplit(1800, scale.DefaultSplit),
			Units:   ingredient.Metric,
		},
	})

	msg := model.loadCmd()
	loaded, ok := msg.(tuiDataLoadedMsg)
	require.True(t, ok)

	next, _ := model.Update(loaded)
	next, _ = next.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m := next.(groceryTUIModel)
	require.False(t, m.loading)

	first, ok := m.list.SelectedItem().(tuiGroceryItem)
	require.True(t, ok)
	assert.False(t, first.item.Checked)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(groceryTUIModel)

	names, err := store.LoadChecked(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{first.item.Name}, names)
	assert.Equal(t, 1, m.result.List.CheckedCount())

	// Selection follows the item into the Completed section.
	selected, ok := m.list.SelectedItem().(tuiGroceryItem)
	require.True(t, ok)
	assert.Equal(t, first.item.Name, selected.item.Name)
	assert.Equal(t, groupCompleted, selected.group)
	assert.Contains(t, m.View(), "1 of")
}

func TestGroceryTUIModel_LoadErrorQuits(t *testing.T) {
	model := newLoadingGroceryTUIModel(tuiLoadConfig{})
	msg := model.loadCmd()
	_, ok := msg.(tuiDataLoadErrMsg)
	require.True(t, ok)

	next, cmd := model.Update(msg)
	assert.NotNil(t, cmd)
	assert.Error(t, next.(groceryTUIModel).fatalErr)
}

func TestGroceryTUIModel_BracketsSwitchSections(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	engine := planner.New(s)
	model := newLoadingGroceryTUIModel(tuiLoadConfig{
		ctx:    ctx,
		engine: engine,
		inputs: planner.Inputs{
			Diet:    recipe.Keto,
			Targets: scale.TargetsFromSplit(1800, scale.DefaultSplit),
			Units:   ingredient.Metric,
		},
	})

	next, _ := model.Update(model.loadCmd())
	next, _ = next.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m := next.(groceryTUIModel)
	require.Len(t, m.groupStarts, 2)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	m = next.(groceryTUIModel)
	pending, ok := m.list.SelectedItem().(tuiGroceryItem)
	require.True(t, ok)
	assert.Equal(t, groupPending, pending.group)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}})
	m = next.(groceryTUIModel)
	done, ok := m.list.SelectedItem().(tuiGroceryItem)
	require.True(t, ok)
	assert.Equal(t, groupCompleted, done.group)
	assert.Equal(t, done.item.Name, m.selectedKey)
}

func TestIndexOfRow(t *testing.T) {
	items, _ := buildGroupedListItems([]shopping.Item{
		{Name: "Huevos"},
		{Name: "Aguacate", Checked: true},
	}, nil, false)

	assert.Equal(t, 1, indexOfRow(items, "Huevos"))
	assert.Equal(t, 2, indexOfRow(items, tuiGroupItem{name: groupCompleted}.rowKey()))
	assert.Equal(t, -1, indexOfRow(items, "Tomate"))
}
