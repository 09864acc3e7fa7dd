package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tayloree/dietcart/internal/display"
	"golang.org/x/term"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Check off the grocery list interactively in the terminal",
	Example: `  dietcart tui
  dietcart tui --diet keto --units imperial`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !flagJSON && !isInteractiveSession(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return invalidArgsError(
			"`dietcart tui` requires an interactive terminal",
			"Use `dietcart list --json` in pipelines.",
		)
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	in, err := sess.inputs(cmd)
	if err != nil {
		return err
	}

	if flagJSON {
		res, err := sess.engine.Rebuild(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("rebuilding plan: %w", err)
		}
		return display.PrintListJSON(cmd.OutOrStdout(), res.List)
	}

	model := newLoadingGroceryTUIModel(tuiLoadConfig{
		ctx:    cmd.Context(),
		engine: sess.engine,
		inputs: in,
	})
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	if m, ok := final.(groceryTUIModel); ok && m.fatalErr != nil {
		return fmt.Errorf("loading grocery list: %w", m.fatalErr)
	}
	return nil
}

func isInteractiveSession(stdin io.Reader, stdout io.Writer) bool {
	inputFile, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(inputFile.Fd())) {
		return false
	}
	return isTTY(stdout)
}
