// Package shopping turns a week of scaled recipes into a grocery list in
// purchasable units.
package shopping

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/tayloree/dietcart/internal/ingredient"
	"github.com/tayloree/dietcart/internal/quantity"
)

// Unit families understood by the converter, with their base multipliers.
var (
	weightUnits = map[string]float64{"g": 1, "gr": 1, "kg": 1000}
	volumeUnits = map[string]float64{"ml": 1, "l": 1000}
)

type measure int

const (
	mixed measure = iota
	weight
	volume
)

type segment struct {
	value float64
	unit  string
}

// Converter renders combined quantities as purchase-realistic strings.
type Converter struct {
	matcher *ingredient.Matcher
	log     *zap.Logger
}

// NewConverter returns a Converter. A nil matcher uses the embedded reference
// table; a nil logger discards output.
func NewConverter(m *ingredient.Matcher, log *zap.Logger) *Converter {
	if m == nil {
		m = ingredient.NewMatcher(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{matcher: m, log: log}
}

// Convert renders the combined quantity for name in the given unit system.
// Counts always round up; unknown shapes pass through unchanged.
func (c *Converter) Convert(name, combined string, system ingredient.UnitSystem) string {
	parts := quantity.Segments(combined)
	if len(parts) == 0 {
		return combined
	}
	segs := make([]segment, len(parts))
	for i, p := range parts {
		v, u := quantity.Parse(p)
		segs[i] = segment{value: v, unit: u}
	}

	entry, strategy := c.matcher.Match(c.matcher.Normalize(name))
	if entry == nil {
		c.log.Debug("no reference entry", zap.String("ingredient", name))
	} else {
		c.log.Debug("reference entry",
			zap.String("ingredient", name),
			zap.String("key", entry.Key),
			zap.Stringer("strategy", strategy))
	}

	if total, kind := collapse(segs); kind != mixed {
		return c.convertMeasured(name, combined, total, kind, entry, system)
	}

	// Mixed families are not merged: the first non-weight segment stands in
	// for the whole quantity.
	s, text := segs[0], parts[0]
	for i := range segs {
		if _, w := weightUnits[strings.ToLower(segs[i].unit)]; !w {
			s, text = segs[i], parts[i]
			break
		}
	}
	if total, kind := collapse([]segment{s}); kind != mixed {
		return c.convertMeasured(name, text, total, kind, entry, system)
	}
	return c.convertCount(name, text, s, entry, system)
}

func (c *Converter) convertMeasured(name, combined string, total float64, kind measure, entry *ingredient.Entry, system ingredient.UnitSystem) string {
	liquid := c.matcher.IsLiquid(name)
	if entry != nil && entry.Countable() && (kind == weight || liquid) {
		n := max(1, ceilCount(total/entry.AverageWeight))
		return fmt.Sprintf("%d %s", n, entry.UnitName(n, system))
	}

	switch {
	case kind == weight && total >= 1000:
		return fmt.Sprintf("%.1f kg", math.Ceil(total/100)/10)
	case kind == volume && total >= 1000:
		return fmt.Sprintf("%.1f L", math.Ceil(total/100)/10)
	}
	return combined
}

func (c *Converter) convertCount(name, original string, s segment, entry *ingredient.Entry, system ingredient.UnitSystem) string {
	n := ceilCount(s.value)
	if hint, ok := c.matcher.CountUnit(s.unit); ok {
		return fmt.Sprintf("%d %s", n, pluralize(hint, n))
	}
	if s.unit != "" {
		return fmt.Sprintf("%d %s", n, s.unit)
	}
	if entry != nil && entry.Countable() {
		return fmt.Sprintf("%d %s", n, entry.UnitName(n, system))
	}
	if hint, ok := c.matcher.CountableHint(name); ok {
		return fmt.Sprintf("%d %s", n, pluralize(hint, n))
	}
	return original
}

// canonicalCount rewrites a quantity in a singular or plural count unit to
// the plural spelling so that "1 diente" and "2 dientes" share a group when
// combined. Anything else is returned unchanged.
func (c *Converter) canonicalCount(text string) string {
	value, unit := quantity.Parse(text)
	hint, ok := c.matcher.CountUnit(unit)
	if !ok {
		return text
	}
	return quantity.Join(value, hint+"s")
}

func pluralize(hint string, n int) string {
	if n > 1 {
		return hint + "s"
	}
	return hint
}

// collapse sums segments into grams or millilitres when every segment is in
// the same unit family.
func collapse(segs []segment) (float64, measure) {
	for _, family := range []struct {
		units map[string]float64
		kind  measure
	}{{weightUnits, weight}, {volumeUnits, volume}} {
		total, ok := 0.0, true
		for _, s := range segs {
			mult, known := family.units[strings.ToLower(s.unit)]
			if !known {
				ok = false
				break
			}
			total += s.value * mult
		}
		if ok {
			return total, family.kind
		}
	}
	return 0, mixed
}

// ceilCount rounds up, ignoring float noise just above an integer.
func ceilCount(v float64) int {
	return int(math.Ceil(v - 1e-9))
}
