// Package ingredient normalizes free-text ingredient names and resolves them
// to reference conversion entries.
package ingredient

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var reQualifier = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)

// Strategy identifies which matching rule resolved a name.
type Strategy int

const (
	NoMatch Strategy = iota
	ExactMatch
	ContainsMatch
	WordsMatch
	SynonymMatch
)

func (s Strategy) String() string {
	switch s {
	case ExactMatch:
		return "exact"
	case ContainsMatch:
		return "contains"
	case WordsMatch:
		return "words"
	case SynonymMatch:
		return "synonym"
	default:
		return "none"
	}
}

// Matcher resolves normalized names against a Table. It is safe for
// concurrent use; all state is read-only after construction.
type Matcher struct {
	table *Table
	// keys and aliases are ordered longest first, ties lexical, so the first
	// hit in a scan is the preferred candidate.
	keys      []string
	multiWord []string
	aliases   []string
}

// NewMatcher builds a matcher over t. A nil table uses DefaultTable.
func NewMatcher(t *Table) *Matcher {
	if t == nil {
		t = DefaultTable()
	}
	m := &Matcher{table: t}
	for k := range t.Entries {
		m.keys = append(m.keys, k)
		if strings.Contains(k, " ") {
			m.multiWord = append(m.multiWord, k)
		}
	}
	for a := range t.Synonyms {
		m.aliases = append(m.aliases, a)
	}
	byPreference(m.keys)
	byPreference(m.multiWord)
	byPreference(m.aliases)
	return m
}

// Table returns the configuration the matcher was built with.
func (m *Matcher) Table() *Table { return m.table }

// Normalize lower-cases and folds name, then strips bracketed qualifiers,
// trailing cooking suffixes and filler words.
func (m *Matcher) Normalize(name string) string {
	return m.table.normalize(name)
}

// Normalize applies the default table's normalization.
func Normalize(name string) string {
	return DefaultTable().normalize(name)
}

// Resolve returns the entry for a normalized name, or nil.
func (m *Matcher) Resolve(normalized string) *Entry {
	e, _ := m.Match(normalized)
	return e
}

// Match resolves a normalized name and reports the strategy that hit.
func (m *Matcher) Match(normalized string) (*Entry, Strategy) {
	name := strings.TrimSpace(normalized)
	if name == "" {
		return nil, NoMatch
	}

	if e, ok := m.table.Entries[name]; ok {
		return &e, ExactMatch
	}

	for _, k := range m.keys {
		if strings.Contains(name, k) {
			return m.entry(k), ContainsMatch
		}
	}

	words := strings.Fields(name)
	for _, k := range m.multiWord {
		if allWordsPresent(strings.Fields(k), words) {
			return m.entry(k), WordsMatch
		}
	}

	if target, ok := m.table.Synonyms[name]; ok {
		return m.entry(target), SynonymMatch
	}
	for _, a := range m.aliases {
		if strings.Contains(name, a) {
			return m.entry(m.table.Synonyms[a]), SynonymMatch
		}
	}
	return nil, NoMatch
}

// IsLiquid reports whether the raw name contains a liquid keyword.
func (m *Matcher) IsLiquid(name string) bool {
	folded := fold(name)
	for _, kw := range m.table.LiquidKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// CountableHint returns the first countable-unit hint word found in name.
func (m *Matcher) CountableHint(name string) (string, bool) {
	folded := fold(name)
	for _, hint := range m.table.CountableHints {
		if strings.Contains(folded, hint) {
			return hint, true
		}
	}
	return "", false
}

// CountUnit folds a count unit to its hint word, accepting the singular and
// the plural spelling ("diente", "Dientes" -> "diente").
func (m *Matcher) CountUnit(unit string) (string, bool) {
	folded := fold(unit)
	for _, hint := range m.table.CountableHints {
		if folded == hint || folded == hint+"s" {
			return hint, true
		}
	}
	return "", false
}

func (m *Matcher) entry(key string) *Entry {
	e, ok := m.table.Entries[key]
	if !ok {
		return nil
	}
	return &e
}

func (t *Table) normalize(name string) string {
	s := fold(name)
	s = reQualifier.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")

	for stripped := true; stripped; {
		stripped = false
		for _, suffix := range t.CookingSuffix {
			if strings.HasSuffix(s, " "+suffix) {
				s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
				stripped = true
				break
			}
		}
	}

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !t.isFiller(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func (t *Table) isFiller(word string) bool {
	for _, f := range t.Fillers {
		if word == f {
			return true
		}
	}
	return false
}

// fold lower-cases s and removes combining marks ("Calabacín" -> "calabacin").
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func allWordsPresent(keyWords, nameWords []string) bool {
	for _, kw := range keyWords {
		found := false
		for _, nw := range nameWords {
			if strings.Contains(nw, kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func byPreference(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
}
