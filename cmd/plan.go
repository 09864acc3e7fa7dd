package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tayloree/dietcart/internal/display"
	"github.com/tayloree/dietcart/internal/recipe"
)

var flagDay string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the week of recipes scaled to your calorie targets",
	Example: `  dietcart plan --diet keto --calories 1800
  dietcart plan --day Monday --breakfast 400
  dietcart plan --json`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&flagDay, "day", "", "Show a single weekday (e.g., Monday)")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.rebuild(cmd)
	if err != nil {
		return err
	}

	plan := res.Plan
	if day := strings.TrimSpace(flagDay); day != "" {
		found, ok := plan.Day(day)
		if !ok {
			return notFoundError(
				fmt.Sprintf("no day named %q in the plan", day),
				didYouMean(day, recipe.Weekdays, "dietcart plan --day "+recipe.Weekdays[0])...,
			)
		}
		plan = recipe.WeeklyPlan{found}
	}

	if flagJSON {
		return display.PrintPlanJSON(cmd.OutOrStdout(), string(res.Diet), plan)
	}
	display.PrintDietContext(cmd.OutOrStdout(), res.Catalog)
	display.PrintPlan(cmd.OutOrStdout(), string(res.Diet), plan)
	return nil
}
