package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// freeTextAnnotation marks commands whose positional arguments are user text,
// such as grocery or diet names, and are never rewritten into flags.
const freeTextAnnotation = "dietcart/free-text"

// flagAliases maps alternative spellings to canonical flag names.
var flagAliases = map[string]string{
	"kcal":       "calories",
	"cal":        "calories",
	"daily":      "calories",
	"unit":       "units",
	"system":     "units",
	"diet-type":  "diet",
	"driver":     "store",
	"backend":    "store",
	"db":         "store-path",
	"state-file": "store-path",
	"loglevel":   "log-level",
	"verbosity":  "log-level",
	"weekday":    "day",
	"clear":      "reset",
	"uncheck":    "reset",
}

type flagInfo struct {
	name       string
	takesValue bool
}

// argTable indexes the flags and commands registered on the command tree, so
// rewrites only ever produce flags the chosen command accepts.
type argTable struct {
	global     map[string]flagInfo
	local      map[string]map[string]flagInfo
	shorthands map[string]flagInfo
	commands   map[string]*cobra.Command
}

func newArgTable(root *cobra.Command) argTable {
	t := argTable{
		global:     map[string]flagInfo{"help": {name: "help"}},
		local:      make(map[string]map[string]flagInfo),
		shorthands: map[string]flagInfo{"h": {name: "help"}},
		// cobra only attaches these two while executing.
		commands: map[string]*cobra.Command{"help": nil, "completion": nil},
	}
	index := func(dst map[string]flagInfo) func(*pflag.Flag) {
		return func(f *pflag.Flag) {
			info := flagInfo{name: f.Name, takesValue: f.NoOptDefVal == ""}
			dst[f.Name] = info
			if f.Shorthand != "" {
				t.shorthands[f.Shorthand] = info
			}
		}
	}

	root.PersistentFlags().VisitAll(index(t.global))
	for _, c := range root.Commands() {
		t.commands[c.Name()] = c
		t.local[c.Name()] = make(map[string]flagInfo)
		c.Flags().VisitAll(index(t.local[c.Name()]))
	}
	return t
}

// lookupFlag resolves raw against the flags visible to command: exact name,
// then alias, then the nearest name within two edits.
func (t argTable) lookupFlag(raw, command string) (flagInfo, bool) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	if canonical, ok := flagAliases[name]; ok {
		name = canonical
	}

	visible := make(map[string]flagInfo, len(t.global)+len(t.local[command]))
	for n, info := range t.global {
		visible[n] = info
	}
	for n, info := range t.local[command] {
		visible[n] = info
	}
	if info, ok := visible[name]; ok {
		return info, true
	}

	if near, ok := closestMatch(name, sortedKeys(visible), 2); ok {
		return visible[near], true
	}
	return flagInfo{}, false
}

func (t argTable) lookupCommand(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := t.commands[name]; ok {
		return name, true
	}
	return closestMatch(name, sortedKeys(t.commands), 2)
}

// acceptsBareFlags reports whether a bare word after command may be read as a
// flag name ("json", "units=imperial").
func (t argTable) acceptsBareFlags(command string) bool {
	switch command {
	case "":
		return true
	case "help", "completion":
		return false
	}
	c := t.commands[command]
	return c == nil || c.Annotations[freeTextAnnotation] == ""
}

// invocation is a command line after tolerant rewriting.
type invocation struct {
	args    []string
	notes   []string
	command string
	json    bool
	help    bool
}

// normalizeCLIArgs rewrites flag typos, aliases, single-dash long flags and
// key=value words into cobra syntax, and records what the user asked for.
func normalizeCLIArgs(root *cobra.Command, args []string) invocation {
	t := newArgTable(root)
	inv := invocation{args: make([]string, 0, len(args)+1)}
	helpTopicOpen := false
	expectValue := false

	for i, tok := range args {
		if expectValue {
			inv.args = append(inv.args, tok)
			expectValue = false
			continue
		}
		if tok == "--" {
			inv.args = append(inv.args, args[i:]...)
			break
		}

		out := tok
		var (
			info      flagInfo
			isFlag    bool
			isCommand bool
		)
		switch {
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			out, info, isFlag = t.rewriteFlag(tok, inv.command)
		case strings.Contains(tok, "=") && t.acceptsBareFlags(inv.command):
			out, info, isFlag = t.rewriteFlag(tok, inv.command)
		default:
			if inv.command == "" || helpTopicOpen {
				if name, ok := t.lookupCommand(tok); ok {
					out, isCommand = name, true
				}
			}
			if !isCommand && t.acceptsBareFlags(inv.command) {
				out, info, isFlag = t.rewriteFlag(tok, inv.command)
			}
		}

		if out != tok {
			inv.notes = append(inv.notes, fmt.Sprintf("interpreted `%s` as `%s`; use `%s` next time.", tok, out, out))
		}
		inv.args = append(inv.args, out)

		switch {
		case isCommand && inv.command == "":
			inv.command = out
			helpTopicOpen = out == "help"
		case isCommand:
			helpTopicOpen = false
		case isFlag:
			inv.json = inv.json || info.name == "json"
			inv.help = inv.help || info.name == "help"
			expectValue = info.takesValue && !strings.Contains(out, "=") && i < len(args)-1
		}
	}
	return inv
}

// rewriteFlag canonicalizes one flag-like token. Known shorthands are kept
// as typed; anything unresolvable is returned unchanged with ok false.
func (t argTable) rewriteFlag(tok, command string) (string, flagInfo, bool) {
	if len(tok) == 2 && tok[0] == '-' {
		info, ok := t.shorthands[tok[1:]]
		return tok, info, ok
	}

	name, value, hasValue := strings.Cut(strings.TrimLeft(tok, "-"), "=")
	info, ok := t.lookupFlag(name, command)
	if !ok {
		return tok, flagInfo{}, false
	}
	out := "--" + info.name
	if hasValue {
		out += "=" + value
	}
	return out, info, true
}

// withJSON appends --json ahead of any "--" terminator.
func (inv *invocation) withJSON() {
	inv.json = true
	for i, arg := range inv.args {
		if arg == "--" {
			inv.args = append(inv.args[:i], append([]string{"--json"}, inv.args[i:]...)...)
			return
		}
	}
	inv.args = append(inv.args, "--json")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// closestMatch returns the candidate nearest to target, case-insensitively,
// when it is within maxDistance edits. Ties go to the earliest candidate.
func closestMatch(target string, candidates []string, maxDistance int) (string, bool) {
	best := ""
	bestDist := maxDistance + 1
	folded := []rune(strings.ToLower(target))

	for _, candidate := range candidates {
		if d := levenshtein(folded, []rune(strings.ToLower(candidate))); d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	if bestDist > maxDistance {
		return "", false
	}
	return best, true
}

// levenshtein counts rune edits, so "calabacin" is one edit from "calabacín".
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
