package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tayloree/dietcart/internal/planner"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/store"
)

const (
	// ExitSuccess is returned when the command succeeds.
	ExitSuccess = 0
	// ExitNotFound is returned when a requested day or grocery item does not exist.
	ExitNotFound = 1
	// ExitInvalidArgs is returned when the command input or config is invalid.
	ExitInvalidArgs = 2
	// ExitStorage is returned when the state store cannot be read or written.
	ExitStorage = 3
	// ExitInternal is returned for unexpected internal failures.
	ExitInternal = 4
)

type cliError struct {
	Code        string
	Message     string
	Suggestions []string
	ExitCode    int
}

func (e *cliError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidArgsError(message string, suggestions ...string) error {
	return &cliError{
		Code:        "INVALID_ARGS",
		Message:     message,
		Suggestions: suggestions,
		ExitCode:    ExitInvalidArgs,
	}
}

func notFoundError(message string, suggestions ...string) error {
	return &cliError{
		Code:        "NOT_FOUND",
		Message:     message,
		Suggestions: suggestions,
		ExitCode:    ExitNotFound,
	}
}

// failureClasses maps the engine's sentinel errors to CLI outcomes. The first
// match wins, so corruption is reported ahead of generic unavailability.
var failureClasses = []struct {
	target      error
	code        string
	exitCode    int
	suggestions []string
}{
	{planner.ErrUnknownItem, "NOT_FOUND", ExitNotFound, []string{"dietcart list"}},
	{store.ErrCorrupt, "STORAGE_ERROR", ExitStorage, []string{
		"Move the damaged state file aside or pass a new --store-path.",
		"dietcart list --store memory",
	}},
	{store.ErrUnavailable, "STORAGE_ERROR", ExitStorage, []string{
		"Check --store and --store-path.",
		"dietcart list --store memory",
	}},
	{recipe.ErrInvalidCatalog, "INTERNAL_ERROR", ExitInternal, []string{
		"The built-in diet catalogs failed to load; reinstall dietcart.",
	}},
}

// usagePrefixes are the messages cobra and pflag use for command-line
// mistakes. They carry no typed errors.
var usagePrefixes = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"bad flag syntax",
	"invalid argument",
	"accepts at most",
}

func classifyCLIError(err error) *cliError {
	if err == nil {
		return nil
	}

	var typed *cliError
	if errors.As(err, &typed) {
		return typed
	}

	msg := strings.TrimSpace(err.Error())
	for _, class := range failureClasses {
		if errors.Is(err, class.target) {
			return &cliError{
				Code:        class.code,
				Message:     msg,
				Suggestions: class.suggestions,
				ExitCode:    class.exitCode,
			}
		}
	}

	for _, prefix := range usagePrefixes {
		if strings.HasPrefix(msg, prefix) {
			return &cliError{
				Code:        "INVALID_ARGS",
				Message:     msg,
				Suggestions: usageSuggestions(msg),
				ExitCode:    ExitInvalidArgs,
			}
		}
	}

	return &cliError{
		Code:        "INTERNAL_ERROR",
		Message:     msg,
		Suggestions: []string{"Run `dietcart --help` for usage details."},
		ExitCode:    ExitInternal,
	}
}

// usageSuggestions points at the flag the user probably meant. Unknown
// commands already carry cobra's own "Did you mean" list.
func usageSuggestions(msg string) []string {
	out := []string{"dietcart --help"}
	_, rest, ok := strings.Cut(msg, "unknown flag: --")
	if !ok {
		return out
	}
	name := strings.Fields(rest + " ")[0]
	if info, ok := newArgTable(rootCmd).lookupFlag(name, ""); ok {
		out = append([]string{fmt.Sprintf("Try `--%s`.", info.name)}, out...)
	}
	return out
}

type jsonErrorPayload struct {
	Error jsonErrorBody `json:"error"`
}

type jsonErrorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	ExitCode    int      `json:"exitCode"`
}

func printCLIErrorJSON(w io.Writer, err *cliError) error {
	if err == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(jsonErrorPayload{
		Error: jsonErrorBody{
			Code:        err.Code,
			Message:     err.Message,
			Suggestions: err.Suggestions,
			ExitCode:    err.ExitCode,
		},
	})
}

func formatCLIErrorText(err *cliError) string {
	if err == nil {
		return ""
	}

	lines := []string{
		fmt.Sprintf("error[%s]: %s", strings.ToLower(err.Code), err.Message),
	}
	if len(err.Suggestions) > 0 {
		lines = append(lines, "suggestions:")
		for _, suggestion := range err.Suggestions {
			lines = append(lines, "  "+suggestion)
		}
	}
	return strings.Join(lines, "\n")
}
