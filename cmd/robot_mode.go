package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"
)

func isTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// shouldAutoJSON reports whether piped output should switch to JSON. Help and
// completion output is for people and shells, so it stays text.
func shouldAutoJSON(inv invocation, stdoutIsTTY bool) bool {
	if stdoutIsTTY || len(inv.args) == 0 || inv.json || inv.help {
		return false
	}
	return inv.command != "completion" && inv.command != "help"
}

type quickStartJSON struct {
	Name     string   `json:"name"`
	Usage    string   `json:"usage"`
	Examples []string `json:"examples"`
	Flags    []string `json:"flags"`
}

func quickStart() quickStartJSON {
	var flags []string
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		flags = append(flags, "--"+f.Name)
	})
	return quickStartJSON{
		Name:  "dietcart",
		Usage: "dietcart [plan|list|check|share|diet|catalogs|tui] [flags]",
		Examples: []string{
			"dietcart plan --diet keto --calories 1800",
			"dietcart list --units imperial",
			"dietcart check Tomate Aguacate",
		},
		Flags: flags,
	}
}

func printQuickStart(w io.Writer, asJSON bool) error {
	help := quickStart()
	if asJSON {
		return json.NewEncoder(w).Encode(help)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nusage: %s\nexamples:\n", help.Name, help.Usage)
	for _, example := range help.Examples {
		fmt.Fprintf(&b, "  %s\n", example)
	}
	fmt.Fprintf(&b, "flags: %s\n", strings.Join(help.Flags, " "))
	_, err := io.WriteString(w, b.String())
	return err
}
