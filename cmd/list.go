package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tayloree/dietcart/internal/display"
	"github.com/tayloree/dietcart/internal/shopping"
)

var (
	flagReset bool
	flagTitle string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the aggregated grocery list with check marks",
	Example: `  dietcart list
  dietcart list --units imperial --json`,
	RunE: runList,
}

var checkCmd = &cobra.Command{
	Use:   "check NAME...",
	Short: "Toggle grocery items as bought",
	Example: `  dietcart check Tomate
  dietcart check "Pechuga de pollo" Aguacate
  dietcart check --reset`,
	Annotations: map[string]string{freeTextAnnotation: "true"},
	RunE:        runCheck,
}

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Print the grocery list as shareable plain text",
	Example: `  dietcart share
  dietcart share --title "Compra semanal"`,
	RunE: runShare,
}

func init() {
	rootCmd.AddCommand(listCmd, checkCmd, shareCmd)
	checkCmd.Flags().BoolVar(&flagReset, "reset", false, "Uncheck every item")
	shareCmd.Flags().StringVar(&flagTitle, "title", shopping.DefaultShareTitle, "Heading for the shared text")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !flagReset {
		return invalidArgsError(
			"please name at least one grocery item or pass --reset",
			"dietcart check Tomate",
			"dietcart check --reset",
		)
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.rebuild(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if flagReset {
		if err := sess.engine.ResetChecked(ctx, res.List); err != nil {
			return fmt.Errorf("resetting checked items: %w", err)
		}
	}

	for _, name := range args {
		item, ok := res.List.Find(name)
		if !ok {
			return unknownItemError(res.List, name)
		}
		checked, err := sess.engine.Toggle(ctx, res.List, item.Name)
		if err != nil {
			return fmt.Errorf("checking %s: %w", item.Name, err)
		}
		if !flagJSON {
			state := "unchecked"
			if checked {
				state = "checked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, item.Name)
		}
	}

	if flagJSON {
		return display.PrintListJSON(cmd.OutOrStdout(), res.List)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d items checked (%d%%)\n",
		res.List.CheckedCount(), res.List.Total(), res.List.Progress())
	return nil
}

func runShare(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.rebuild(cmd)
	if err != nil {
		return err
	}

	text := res.List.ShareText(flagTitle)
	if flagJSON {
		return display.PrintShareJSON(cmd.OutOrStdout(), text)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}

func unknownItemError(list *shopping.List, name string) error {
	names := make([]string, 0, list.Total())
	for _, item := range list.Items {
		names = append(names, item.Name)
	}
	return notFoundError(
		fmt.Sprintf("no such grocery item %q in this week's list", name),
		didYouMean(name, names, "dietcart list")...,
	)
}

// didYouMean puts the nearest candidate ahead of the fallback suggestions.
func didYouMean(typed string, candidates []string, fallback ...string) []string {
	match, ok := closestMatch(strings.TrimSpace(typed), candidates, 2)
	if !ok {
		return fallback
	}
	return append([]string{fmt.Sprintf("Did you mean `%s`?", match)}, fallback...)
}
