// Package quantity parses and combines the free-text quantity strings used in
// recipe ingredients ("40g", "2 dientes", "1/2 unit").
package quantity

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SegmentSeparator joins the per-unit segments produced by Combine.
const SegmentSeparator = " + "

// reQuantity accepts a leading integer or decimal followed by an optional
// alphabetic unit. Fractions such as "1/2" do not match and fall back to the
// default in Parse.
var reQuantity = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([\p{L}][\p{L}\s.]*)?$`)

// Parse splits a quantity string into its numeric value and unit.
// Text without a recognizable leading number yields (1, text) unmodified.
func Parse(text string) (float64, string) {
	m := reQuantity.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 1.0, text
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 1.0, text
	}
	return value, strings.TrimSpace(m[2])
}

// Format rounds to one decimal place and drops the decimal point for
// integral values.
func Format(value float64) string {
	rounded := math.Round(value*10) / 10
	if rounded == math.Trunc(rounded) {
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	return strconv.FormatFloat(rounded, 'f', 1, 64)
}

// Join renders a value and unit, omitting the unit when it is empty.
func Join(value float64, unit string) string {
	if unit == "" {
		return Format(value)
	}
	return Format(value) + " " + unit
}

// Scale parses text, multiplies its value by factor and renders the result.
func Scale(text string, factor float64) string {
	value, unit := Parse(text)
	return Join(value*factor, unit)
}

// Combine sums quantities that share a unit and renders one segment per unit,
// ordered by unit name. An empty input yields "".
func Combine(texts []string) string {
	if len(texts) == 0 {
		return ""
	}

	groups := make(map[string][]float64)
	for _, text := range texts {
		value, unit := Parse(text)
		groups[unit] = append(groups[unit], value)
	}

	units := make([]string, 0, len(groups))
	for unit := range groups {
		units = append(units, unit)
	}
	sort.Strings(units)

	segments := make([]string, 0, len(units))
	for _, unit := range units {
		segments = append(segments, Join(sum(groups[unit]), unit))
	}
	return strings.Join(segments, SegmentSeparator)
}

// Segments splits a combined quantity back into its parts.
func Segments(combined string) []string {
	if strings.TrimSpace(combined) == "" {
		return nil
	}
	parts := strings.Split(combined, SegmentSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// sum adds values in ascending order so every permutation of the same
// multiset produces the same float.
func sum(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	total := 0.0
	for _, v := range sorted {
		total += v
	}
	return total
}
