package shopping

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tayloree/dietcart/internal/ingredient"
	"github.com/tayloree/dietcart/internal/quantity"
	"github.com/tayloree/dietcart/internal/recipe"
)

// DefaultShareTitle heads ShareText output.
const DefaultShareTitle = "Shopping list"

// Item is one aggregated grocery line. ID is regenerated on every rebuild;
// Name is the stable identity used for checked state.
type Item struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Quantity string    `json:"quantity"`
	Raw      string    `json:"raw"`
	Checked  bool      `json:"checked"`
}

// List is a name-sorted grocery list.
type List struct {
	Items []Item `json:"items"`
}

// Aggregator flattens a plan into a List.
type Aggregator struct {
	conv *Converter
	log  *zap.Logger
}

// NewAggregator returns an Aggregator using conv for rendering. A nil
// converter uses the embedded reference table.
func NewAggregator(conv *Converter, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	if conv == nil {
		conv = NewConverter(nil, log)
	}
	return &Aggregator{conv: conv, log: log}
}

// Recompute groups every ingredient in plan by exact name, combines and
// converts its quantities, and restores checked state from the given names.
// Singular and plural spellings of a count unit are combined together.
func (a *Aggregator) Recompute(plan recipe.WeeklyPlan, checked []string, system ingredient.UnitSystem) *List {
	groups := make(map[string][]string)
	for _, r := range plan.Recipes() {
		for _, ing := range r.Ingredients {
			groups[ing.Name] = append(groups[ing.Name], a.conv.canonicalCount(ing.Quantity))
		}
	}

	isChecked := make(map[string]bool, len(checked))
	for _, name := range checked {
		isChecked[name] = true
	}

	items := make([]Item, 0, len(groups))
	for name, quantities := range groups {
		raw := quantity.Combine(quantities)
		items = append(items, Item{
			ID:       uuid.New(),
			Name:     name,
			Quantity: a.conv.Convert(name, raw, system),
			Raw:      raw,
			Checked:  isChecked[name],
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	l := &List{Items: items}
	a.log.Debug("grocery list recomputed",
		zap.Int("items", l.Total()),
		zap.Int("checked", l.CheckedCount()),
		zap.Stringer("units", system))
	return l
}

// Total is the number of items.
func (l *List) Total() int { return len(l.Items) }

// CheckedCount is the number of checked items.
func (l *List) CheckedCount() int {
	n := 0
	for _, it := range l.Items {
		if it.Checked {
			n++
		}
	}
	return n
}

// UncheckedCount is the number of items still to buy.
func (l *List) UncheckedCount() int { return l.Total() - l.CheckedCount() }

// Progress is the checked share as a rounded percentage; 0 for an empty list.
func (l *List) Progress() int {
	if l.Total() == 0 {
		return 0
	}
	return int(math.Round(float64(l.CheckedCount()) * 100 / float64(l.Total())))
}

// Find returns the item named name, preferring an exact match over a
// case-insensitive one.
func (l *List) Find(name string) (*Item, bool) {
	for i := range l.Items {
		if l.Items[i].Name == name {
			return &l.Items[i], true
		}
	}
	for i := range l.Items {
		if strings.EqualFold(l.Items[i].Name, strings.TrimSpace(name)) {
			return &l.Items[i], true
		}
	}
	return nil, false
}

// Toggle flips the checked state of the named item and reports the new state.
// ok is false when no item has that name.
func (l *List) Toggle(name string) (checked, ok bool) {
	it, ok := l.Find(name)
	if !ok {
		return false, false
	}
	it.Checked = !it.Checked
	return it.Checked, true
}

// CheckedNames returns the sorted names of all checked items.
func (l *List) CheckedNames() []string {
	names := make([]string, 0, l.CheckedCount())
	for _, it := range l.Items {
		if it.Checked {
			names = append(names, it.Name)
		}
	}
	sort.Strings(names)
	return names
}

// ShareText renders the list for export: a header, a progress line, then
// pending and completed sections. Empty sections are left out.
func (l *List) ShareText(title string) string {
	if title == "" {
		title = DefaultShareTitle
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d of %d items — %d%% completed\n", l.CheckedCount(), l.Total(), l.Progress())

	section := func(heading string, checked bool) {
		first := true
		for _, it := range l.Items {
			if it.Checked != checked {
				continue
			}
			if first {
				fmt.Fprintf(&b, "\n%s:\n", heading)
				first = false
			}
			fmt.Fprintf(&b, "- %s: %s\n", it.Name, it.Quantity)
		}
	}
	section("Pending", false)
	section("Completed", true)
	return b.String()
}
