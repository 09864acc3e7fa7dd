package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tayloree/dietcart/internal/display"
	"github.com/tayloree/dietcart/internal/recipe"
)

var catalogsCmd = &cobra.Command{
	Use:   "catalogs",
	Short: "List the diet catalogs and their recipe pools",
	Example: `  dietcart catalogs
  dietcart catalogs --json`,
	RunE: runCatalogs,
}

var dietCmd = &cobra.Command{
	Use:   "diet [NAME]",
	Short: "Show or select the active diet",
	Long: "Without NAME, prints the diet the next plan will use.\n" +
		"With NAME, persists it as the selected diet. Unknown names select caloriedeficit.",
	Example: `  dietcart diet
  dietcart diet keto
  dietcart diet low-carb --json`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{freeTextAnnotation: "true"},
	RunE:        runDiet,
}

func init() {
	rootCmd.AddCommand(catalogsCmd, dietCmd)
}

type dietJSON struct {
	Diet      string `json:"diet"`
	Name      string `json:"name"`
	Persisted bool   `json:"persisted"`
	Fallback  bool   `json:"fallback,omitempty"`
}

func runCatalogs(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	selected, err := sess.diet(cmd)
	if err != nil {
		return err
	}
	selected, _ = recipe.ParseDiet(string(selected))

	catalogs := make([]*recipe.Catalog, 0, len(recipe.Diets()))
	for _, d := range recipe.Diets() {
		c, err := recipe.Load(d)
		if err != nil {
			return err
		}
		catalogs = append(catalogs, c)
	}

	if flagJSON {
		return display.PrintCatalogsJSON(cmd.OutOrStdout(), catalogs, selected)
	}
	display.PrintCatalogs(cmd.OutOrStdout(), catalogs, selected)
	return nil
}

func runDiet(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	ctx := cmd.Context()

	out := dietJSON{}
	if len(args) == 1 {
		parsed, known := recipe.ParseDiet(args[0])
		d, err := sess.engine.SelectDiet(ctx, args[0])
		if err != nil {
			return fmt.Errorf("saving diet: %w", err)
		}
		out.Diet, out.Persisted, out.Fallback = string(d), true, !known
		if !known && !flagJSON {
			display.PrintWarning(cmd.ErrOrStderr(),
				fmt.Sprintf("unknown diet %q, using %s", args[0], parsed))
		}
	} else {
		d, err := sess.diet(cmd)
		if err != nil {
			return err
		}
		_, persisted, err := sess.engine.Diet(ctx)
		if err != nil {
			return fmt.Errorf("loading diet: %w", err)
		}
		parsed, known := recipe.ParseDiet(string(d))
		out.Diet, out.Persisted, out.Fallback = string(parsed), persisted, !known
	}

	c, err := recipe.Load(recipe.Diet(out.Diet))
	if err != nil {
		return err
	}
	out.Name = c.Name

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
	}
	display.PrintDietContext(cmd.OutOrStdout(), c)
	return nil
}
