package ingredient

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/reference.yaml
var referenceYAML string

// UnitSystem selects which purchase-unit names an Entry renders with.
type UnitSystem int

const (
	Metric UnitSystem = iota
	Imperial
)

func (u UnitSystem) String() string {
	if u == Imperial {
		return "imperial"
	}
	return "metric"
}

// ParseUnitSystem accepts "metric" or "imperial" (case-insensitive, with a
// few common aliases).
func ParseUnitSystem(raw string) (UnitSystem, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "metric", "si":
		return Metric, nil
	case "imperial", "us", "customary":
		return Imperial, nil
	default:
		return Metric, fmt.Errorf("unknown unit system %q", raw)
	}
}

// UnitNames is a singular/plural pair of purchase-unit names.
type UnitNames struct {
	Singular string `yaml:"singular"`
	Plural   string `yaml:"plural"`
}

// Entry is a reference conversion entry for one ingredient.
type Entry struct {
	Key           string    `yaml:"-"`
	AverageWeight float64   `yaml:"average_weight"`
	Metric        UnitNames `yaml:"metric"`
	Imperial      UnitNames `yaml:"imperial"`
	KeepInGrams   bool      `yaml:"keep_in_grams"`
}

// UnitName picks the purchase-unit name for count units in the given system.
// Missing imperial names fall back to the metric ones; a missing plural is
// the singular plus "s".
func (e Entry) UnitName(count int, system UnitSystem) string {
	names := e.Metric
	if system == Imperial && e.Imperial.Singular != "" {
		names = e.Imperial
	}
	if count == 1 {
		return names.Singular
	}
	if names.Plural != "" {
		return names.Plural
	}
	return names.Singular + "s"
}

// Countable reports whether quantities of this entry convert to purchase units.
func (e Entry) Countable() bool {
	return !e.KeepInGrams && e.AverageWeight > 0
}

// Table is the immutable configuration behind a Matcher: reference entries,
// synonyms and the word lists used by normalization and conversion.
type Table struct {
	Entries        map[string]Entry  `yaml:"entries"`
	Synonyms       map[string]string `yaml:"synonyms"`
	Fillers        []string          `yaml:"fillers"`
	CookingSuffix  []string          `yaml:"cooking_suffixes"`
	LiquidKeywords []string          `yaml:"liquid_keywords"`
	CountableHints []string          `yaml:"countable_hints"`
}

// LoadTable decodes a YAML reference table and normalizes its keys.
func LoadTable(r io.Reader) (*Table, error) {
	var raw Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding reference table: %w", err)
	}
	return raw.compile()
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// DefaultTable returns the embedded reference table. It panics if the
// embedded data is malformed, which the package tests guard against.
func DefaultTable() *Table {
	defaultOnce.Do(func() {
		t, err := LoadTable(strings.NewReader(referenceYAML))
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// compile lower-cases the word lists and rewrites entry and synonym keys into
// normalized form so lookups compare like with like.
func (t Table) compile() (*Table, error) {
	out := &Table{
		Entries:        make(map[string]Entry, len(t.Entries)),
		Synonyms:       make(map[string]string, len(t.Synonyms)),
		Fillers:        foldAll(t.Fillers),
		CookingSuffix:  foldAll(t.CookingSuffix),
		LiquidKeywords: foldAll(t.LiquidKeywords),
		CountableHints: foldAll(t.CountableHints),
	}
	// Longest suffix first so "a la plancha" is tried before "plancha".
	sort.SliceStable(out.CookingSuffix, func(i, j int) bool {
		return len(out.CookingSuffix[i]) > len(out.CookingSuffix[j])
	})

	keys := make([]string, 0, len(t.Entries))
	for k := range t.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		e := t.Entries[k]
		if !e.KeepInGrams && e.AverageWeight <= 0 {
			return nil, fmt.Errorf("entry %q: average_weight must be positive unless keep_in_grams is set", k)
		}
		if !e.KeepInGrams && e.Metric.Singular == "" {
			return nil, fmt.Errorf("entry %q: metric unit name is required", k)
		}
		key := out.normalize(k)
		if key == "" {
			return nil, fmt.Errorf("entry %q normalizes to an empty key", k)
		}
		if _, dup := out.Entries[key]; dup {
			return nil, fmt.Errorf("entry %q duplicates normalized key %q", k, key)
		}
		e.Key = key
		out.Entries[key] = e
	}

	for alias, target := range t.Synonyms {
		a, tk := out.normalize(alias), out.normalize(target)
		if _, ok := out.Entries[tk]; !ok {
			return nil, fmt.Errorf("synonym %q points at unknown entry %q", alias, target)
		}
		out.Synonyms[a] = tk
	}
	return out, nil
}

func foldAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.Join(strings.Fields(fold(w)), " "); w != "" {
			out = append(out, w)
		}
	}
	return out
}
