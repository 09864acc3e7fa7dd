package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/shopping"
)

// Styles for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mealTag      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")) // magenta
	kcalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))            // green
	qtyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // yellow
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// DayJSON is the JSON output shape for one planned day.
type DayJSON struct {
	Day      string          `json:"day"`
	Calories int             `json:"calories"`
	Recipes  []recipe.Recipe `json:"recipes"`
}

// PlanJSON is the JSON output shape for a weekly plan.
type PlanJSON struct {
	Diet string    `json:"diet"`
	Days []DayJSON `json:"days"`
}

// ListJSON is the JSON output shape for a grocery list.
type ListJSON struct {
	Total    int             `json:"total"`
	Checked  int             `json:"checked"`
	Progress int             `json:"progress"`
	Items    []shopping.Item `json:"items"`
}

// CatalogJSON is the JSON output shape for a diet catalog summary.
type CatalogJSON struct {
	Diet        string         `json:"diet"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Recipes     int            `json:"recipes"`
	Meals       map[string]int `json:"meals"`
	Selected    bool           `json:"selected"`
}

// ShareJSON wraps share text for JSON output.
type ShareJSON struct {
	Text string `json:"text"`
}

// PrintPlan renders a scaled weekly plan to the writer.
func PrintPlan(w io.Writer, diet string, plan recipe.WeeklyPlan) {
	fmt.Fprintf(w, "\n%s (%s) — %s\n\n",
		headerStyle.Render("Weekly Plan"),
		diet,
		cyanStyle.Render(fmt.Sprintf("%d days", len(plan))),
	)
	for _, day := range plan {
		printDay(w, day)
		fmt.Fprintln(w)
	}
}

// PrintPlanJSON renders a weekly plan as JSON.
func PrintPlanJSON(w io.Writer, diet string, plan recipe.WeeklyPlan) error {
	out := PlanJSON{Diet: diet, Days: make([]DayJSON, 0, len(plan))}
	for _, day := range plan {
		recipes := day.Recipes
		if recipes == nil {
			recipes = []recipe.Recipe{}
		}
		out.Days = append(out.Days, DayJSON{Day: day.Day, Calories: day.Calories(), Recipes: recipes})
	}
	return json.NewEncoder(w).Encode(out)
}

// PrintList renders the grocery checklist to the writer.
func PrintList(w io.Writer, list *shopping.List) {
	fmt.Fprintf(w, "\n%s — %s\n\n",
		headerStyle.Render("Shopping List"),
		cyanStyle.Render(fmt.Sprintf("%d of %d checked (%d%%)", list.CheckedCount(), list.Total(), list.Progress())),
	)
	for _, item := range list.Items {
		mark := "[ ]"
		name := titleStyle.Render(item.Name)
		if item.Checked {
			mark = kcalStyle.Render("[x]")
			name = dimStyle.Render(item.Name)
		}
		fmt.Fprintf(w, "  %s %s  %s\n", mark, name, qtyStyle.Render(item.Quantity))
	}
	fmt.Fprintln(w)
}

// PrintListJSON renders the grocery list as JSON.
func PrintListJSON(w io.Writer, list *shopping.List) error {
	items := list.Items
	if items == nil {
		items = []shopping.Item{}
	}
	return json.NewEncoder(w).Encode(ListJSON{
		Total:    list.Total(),
		Checked:  list.CheckedCount(),
		Progress: list.Progress(),
		Items:    items,
	})
}

// PrintCatalogs renders catalog summaries, marking the selected diet.
func PrintCatalogs(w io.Writer, catalogs []*recipe.Catalog, selected recipe.Diet) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Diet catalogs:"))
	for _, c := range catalogs {
		marker := "  "
		if c.Diet == selected {
			marker = kcalStyle.Render("* ")
		}
		fmt.Fprintf(w, "%s%s  %s\n", marker, cyanStyle.Render(string(c.Diet)), titleStyle.Render(c.Name))
		if c.Description != "" {
			fmt.Fprintf(w, "    %s\n", dimStyle.Render(WordWrap(c.Description, 72, "    ")))
		}
		var meals []string
		for _, m := range recipe.MealTypes {
			meals = append(meals, fmt.Sprintf("%s %d", strings.ToLower(string(m)), len(c.Pool(m))))
		}
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(fmt.Sprintf("%d recipes | %s", len(c.Recipes), strings.Join(meals, ", "))))
	}
	fmt.Fprintln(w)
}

// PrintCatalogsJSON renders catalog summaries as JSON.
func PrintCatalogsJSON(w io.Writer, catalogs []*recipe.Catalog, selected recipe.Diet) error {
	out := make([]CatalogJSON, 0, len(catalogs))
	for _, c := range catalogs {
		meals := make(map[string]int, len(recipe.MealTypes))
		for _, m := range recipe.MealTypes {
			meals[strings.ToLower(string(m))] = len(c.Pool(m))
		}
		out = append(out, CatalogJSON{
			Diet:        string(c.Diet),
			Name:        c.Name,
			Description: c.Description,
			Recipes:     len(c.Recipes),
			Meals:       meals,
			Selected:    c.Diet == selected,
		})
	}
	return json.NewEncoder(w).Encode(out)
}

// PrintShareJSON renders share text as JSON.
func PrintShareJSON(w io.Writer, text string) error {
	return json.NewEncoder(w).Encode(ShareJSON{Text: text})
}

// PrintDietContext prints a dim line showing which diet is in use.
func PrintDietContext(w io.Writer, c *recipe.Catalog) {
	fmt.Fprintf(w, "%s\n\n",
		dimStyle.Render(fmt.Sprintf("Using diet: %s — %s", c.Diet, c.Name)),
	)
}

// PrintError prints a styled error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

// PrintWarning prints a styled warning message.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

func printDay(w io.Writer, day recipe.DayPlan) {
	fmt.Fprintf(w, "  %s  %s\n",
		titleStyle.Render(day.Day),
		kcalStyle.Render(fmt.Sprintf("%d kcal", day.Calories())),
	)
	for _, r := range day.Recipes {
		fmt.Fprintf(w, "    %s %s  %s\n",
			mealTag.Render(strings.ToUpper(string(r.MealType))),
			r.Title,
			kcalStyle.Render(fmt.Sprintf("%d kcal", r.Calories)),
		)
		for _, ing := range r.Ingredients {
			fmt.Fprintf(w, "      - %s: %s\n", ing.Name, qtyStyle.Render(ing.Quantity))
		}
		if instr := strings.TrimSpace(r.Instructions); instr != "" {
			fmt.Fprintf(w, "      %s\n", dimStyle.Render(WordWrap(instr, 68, "      ")))
		}
	}
}

// WordWrap breaks text into lines of at most width bytes, prefixing every
// continuation line with indent. A word longer than width gets its own line.
func WordWrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n"+indent)
}
