package recipe

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var catalogFS embed.FS

// Diet selects a recipe catalog.
type Diet string

const (
	Keto           Diet = "keto"
	LowCarb        Diet = "lowcarb"
	CalorieDeficit Diet = "caloriedeficit"

	// DefaultDiet is used for unrecognized selectors.
	DefaultDiet = CalorieDeficit
)

// Diets lists the known diet selectors.
func Diets() []Diet {
	return []Diet{Keto, LowCarb, CalorieDeficit}
}

// ParseDiet maps a selector to a known diet. Unknown values resolve to
// DefaultDiet with ok=false so callers can warn.
func ParseDiet(raw string) (Diet, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	for _, d := range Diets() {
		if key == string(d) {
			return d, true
		}
	}
	return DefaultDiet, false
}

// Catalog is the static recipe set for one diet.
type Catalog struct {
	Diet        Diet     `yaml:"-"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Recipes     []Recipe `yaml:"recipes"`
}

// ErrInvalidCatalog wraps every failure to read or validate a catalog.
var ErrInvalidCatalog = errors.New("invalid recipe catalog")

// Load reads the embedded catalog for d, falling back to DefaultDiet for
// unknown selectors.
func Load(d Diet) (*Catalog, error) {
	d, _ = ParseDiet(string(d))
	f, err := catalogFS.Open("data/" + string(d) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("opening %s catalog: %w: %w", d, ErrInvalidCatalog, err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s catalog: %w", d, err)
	}
	c.Diet = d
	return c, nil
}

// Decode parses a catalog document. Every canonical meal type needs at least
// one recipe so the weekly rotation always yields full days. Errors wrap
// ErrInvalidCatalog.
func Decode(r io.Reader) (*Catalog, error) {
	c, err := decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return c, nil
}

func decode(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding catalog: trailing YAML document")
	}

	for i, rec := range c.Recipes {
		if strings.TrimSpace(rec.Title) == "" {
			return nil, fmt.Errorf("recipe %d: missing title", i)
		}
		if rec.Calories < 0 {
			return nil, fmt.Errorf("recipe %q: negative calories", rec.Title)
		}
	}
	for _, m := range MealTypes {
		if len(c.Pool(m)) == 0 {
			return nil, fmt.Errorf("no %s recipes", strings.ToLower(string(m)))
		}
	}
	return &c, nil
}

// Pool returns the catalog recipes tagged with m, in catalog order.
func (c *Catalog) Pool(m MealType) []Recipe {
	var out []Recipe
	for _, r := range c.Recipes {
		if r.MealType == m {
			out = append(out, r)
		}
	}
	return out
}

// Week rotates each meal-type pool across the seven weekdays and returns the
// flat list, one breakfast, lunch and dinner per day, as independent copies.
func (c *Catalog) Week() []Recipe {
	pools := make(map[MealType][]Recipe, len(MealTypes))
	for _, m := range MealTypes {
		pools[m] = c.Pool(m)
	}

	out := make([]Recipe, 0, len(Weekdays)*RecipesPerDay)
	for day := range Weekdays {
		for _, m := range MealTypes {
			pool := pools[m]
			if len(pool) == 0 {
				continue
			}
			out = append(out, pool[day%len(pool)].Clone())
		}
	}
	return out
}
