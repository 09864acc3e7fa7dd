package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tayloree/dietcart/internal/config"
	"github.com/tayloree/dietcart/internal/display"
	"github.com/tayloree/dietcart/internal/logging"
	"github.com/tayloree/dietcart/internal/planner"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/shopping"
	"github.com/tayloree/dietcart/internal/store"
)

var (
	flagDiet      string
	flagUnits     string
	flagCalories  float64
	flagBreakfast float64
	flagLunch     float64
	flagDinner    float64
	flagStore     string
	flagStorePath string
	flagConfig    string
	flagJSON      bool
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "dietcart",
	Short: "Rebalance weekly diet recipes to calorie targets and build the grocery list",
	Long: "CLI tool that scales a week of diet recipes to your per-meal calorie targets\n" +
		"and aggregates every ingredient into a shoppable grocery checklist.\n" +
		"Checked items and the selected diet persist between runs.\n\n" +
		"Agent-friendly mode: minor syntax issues are auto-corrected when intent is clear " +
		"(for example: -diet keto, units=imperial, --calroies 1800).",
	Example: `  dietcart --diet keto --calories 1800
  dietcart plan --day Monday
  dietcart list --units imperial
  dietcart check Tomate Aguacate
  dietcart share
  dietcart diet lowcarb
  dietcart catalogs --json`,
	RunE: runList,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDiet, "diet", "d", "", "Diet catalog: keto, lowcarb, or caloriedeficit")
	pf.StringVarP(&flagUnits, "units", "u", "", "Unit system for the grocery list: metric or imperial")
	pf.Float64VarP(&flagCalories, "calories", "c", 0, "Daily calorie target, split across meals")
	pf.Float64Var(&flagBreakfast, "breakfast", 0, "Absolute breakfast calorie target")
	pf.Float64Var(&flagLunch, "lunch", 0, "Absolute lunch calorie target")
	pf.Float64Var(&flagDinner, "dinner", 0, "Absolute dinner calorie target")
	pf.StringVarP(&flagStore, "store", "s", "", "State store: file, sqlite, redis, or memory")
	pf.StringVar(&flagStorePath, "store-path", "", "Path for the file or sqlite store")
	pf.StringVar(&flagConfig, "config", "", "Config file (default: ./dietcart.yaml or user config dir)")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, or error")
}

// Execute runs the root command.
func Execute() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	inv := normalizeCLIArgs(rootCmd, args)
	for _, note := range inv.notes {
		fmt.Fprintf(stderr, "note: %s\n", note)
	}

	if len(inv.args) == 0 {
		if err := printQuickStart(stdout, !isTTY(stdout)); err != nil {
			cliErr := classifyCLIError(err)
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
			return cliErr.ExitCode
		}
		return ExitSuccess
	}

	if shouldAutoJSON(inv, isTTY(stdout)) {
		inv.withJSON()
	}

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(inv.args)

	if err := rootCmd.Execute(); err != nil {
		cliErr := classifyCLIError(err)
		if inv.json {
			if jerr := printCLIErrorJSON(stderr, cliErr); jerr != nil {
				fmt.Fprintln(stderr, formatCLIErrorText(classifyCLIError(jerr)))
				return ExitInternal
			}
		} else {
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
		}
		return cliErr.ExitCode
	}
	return ExitSuccess
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

func resetCLIState() {
	flagDiet = ""
	flagUnits = ""
	flagCalories = 0
	flagBreakfast = 0
	flagLunch = 0
	flagDinner = 0
	flagStore = ""
	flagStorePath = ""
	flagConfig = ""
	flagJSON = false
	flagLogLevel = ""
	flagDay = ""
	flagReset = false
	flagTitle = shopping.DefaultShareTitle

	// cobra keeps Changed marks between Execute calls on the same tree.
	resetChanged(rootCmd)
}

func resetChanged(cmd *cobra.Command) {
	unmark := func(f *pflag.Flag) { f.Changed = false }
	cmd.PersistentFlags().VisitAll(unmark)
	cmd.Flags().VisitAll(unmark)
	for _, child := range cmd.Commands() {
		resetChanged(child)
	}
}

// session is the per-invocation wiring: resolved config, logger, state
// store and the engine built on them.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	store  store.Store
	engine *planner.Engine
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, invalidArgsError(err.Error(),
			"dietcart list --config ./dietcart.yaml",
			"Unset DIETCART_* variables to fall back to defaults.",
		)
	}
	applyFlagOverrides(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return nil, invalidArgsError(err.Error(),
			"dietcart list --units imperial",
			"dietcart list --store sqlite --store-path ./dietcart.db",
		)
	}

	log, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, invalidArgsError(err.Error(), "dietcart list --log-level debug")
	}

	s, err := store.Open(cmd.Context(), cfg.Store.Options())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	log.Debug("session opened",
		zap.String("store", cfg.Store.Driver),
		zap.String("units", cfg.Units))

	return &session{
		cfg:    cfg,
		log:    log,
		store:  s,
		engine: planner.New(s, planner.WithLogger(log)),
	}, nil
}

// applyFlagOverrides copies explicitly set flags over file and env values.
func applyFlagOverrides(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("units") {
		cfg.Units = flagUnits
	}
	if fs.Changed("calories") {
		cfg.DailyCalories = flagCalories
	}
	if fs.Changed("breakfast") {
		cfg.Targets.Breakfast = flagBreakfast
	}
	if fs.Changed("lunch") {
		cfg.Targets.Lunch = flagLunch
	}
	if fs.Changed("dinner") {
		cfg.Targets.Dinner = flagDinner
	}
	if fs.Changed("store") {
		cfg.Store.Driver = flagStore
	}
	if fs.Changed("store-path") {
		cfg.Store.Path = flagStorePath
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warn("closing store", zap.Error(err))
	}
	_ = s.log.Sync()
}

// diet resolves the active diet: --diet, then the persisted selector, then
// the configured default.
func (s *session) diet(cmd *cobra.Command) (recipe.Diet, error) {
	if cmd.Flags().Changed("diet") {
		return recipe.Diet(flagDiet), nil
	}
	stored, ok, err := s.engine.Diet(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("loading diet: %w", err)
	}
	if ok {
		return stored, nil
	}
	return recipe.Diet(s.cfg.Diet), nil
}

func (s *session) inputs(cmd *cobra.Command) (planner.Inputs, error) {
	diet, err := s.diet(cmd)
	if err != nil {
		return planner.Inputs{}, err
	}
	return planner.Inputs{
		Diet:    diet,
		Targets: s.cfg.MealTargets(),
		Units:   s.cfg.UnitSystem(),
	}, nil
}

func (s *session) rebuild(cmd *cobra.Command) (*planner.Result, error) {
	in, err := s.inputs(cmd)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Rebuild(cmd.Context(), in)
	if err != nil {
		return nil, fmt.Errorf("rebuilding plan: %w", err)
	}
	return res, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.rebuild(cmd)
	if err != nil {
		return err
	}

	if flagJSON {
		return display.PrintListJSON(cmd.OutOrStdout(), res.List)
	}
	display.PrintDietContext(cmd.OutOrStdout(), res.Catalog)
	display.PrintList(cmd.OutOrStdout(), res.List)
	return nil
}
