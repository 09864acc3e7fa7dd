// Package config loads dietcart settings from defaults, an optional config
// file, a .env file and DIETCART_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tayloree/dietcart/internal/ingredient"
	"github.com/tayloree/dietcart/internal/logging"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/scale"
	"github.com/tayloree/dietcart/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. DIETCART_DIET.
const EnvPrefix = "DIETCART"

// Config is the resolved application configuration.
type Config struct {
	Diet          string      `mapstructure:"diet"`
	Units         string      `mapstructure:"units"`
	DailyCalories float64     `mapstructure:"daily_calories"`
	Split         Meals       `mapstructure:"split"`
	Targets       Meals       `mapstructure:"targets"`
	Store         StoreConfig `mapstructure:"store"`
	LogLevel      string      `mapstructure:"log_level"`
}

// Meals holds one number per meal type.
type Meals struct {
	Breakfast float64 `mapstructure:"breakfast"`
	Lunch     float64 `mapstructure:"lunch"`
	Dinner    float64 `mapstructure:"dinner"`
}

func (m Meals) byType() map[recipe.MealType]float64 {
	return map[recipe.MealType]float64{
		recipe.Breakfast: m.Breakfast,
		recipe.Lunch:     m.Lunch,
		recipe.Dinner:    m.Dinner,
	}
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// Options converts to store.Options.
func (s StoreConfig) Options() store.Options {
	return store.Options{
		Driver:      s.Driver,
		Path:        s.Path,
		RedisAddr:   s.RedisAddr,
		RedisPrefix: s.RedisPrefix,
	}
}

// Load reads configuration. path names an explicit config file; when empty,
// dietcart.yaml is looked up in the working directory and the user config
// directory, and a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("dietcart")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "dietcart"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("diet", string(recipe.DefaultDiet))
	v.SetDefault("units", "metric")
	v.SetDefault("daily_calories", 2000)

	v.SetDefault("split.breakfast", scale.DefaultSplit[recipe.Breakfast])
	v.SetDefault("split.lunch", scale.DefaultSplit[recipe.Lunch])
	v.SetDefault("split.dinner", scale.DefaultSplit[recipe.Dinner])

	v.SetDefault("targets.breakfast", 0)
	v.SetDefault("targets.lunch", 0)
	v.SetDefault("targets.dinner", 0)

	v.SetDefault("store.driver", store.DriverFile)
	v.SetDefault("store.path", "")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_prefix", store.DefaultRedisPrefix)

	v.SetDefault("log_level", "warn")
}

// Validate rejects values the engine cannot use. Unknown diets are allowed;
// they fall back to the default catalog.
func (c *Config) Validate() error {
	if _, err := ingredient.ParseUnitSystem(c.Units); err != nil {
		return err
	}
	if c.DailyCalories < 0 {
		return fmt.Errorf("daily_calories must not be negative (got %v)", c.DailyCalories)
	}
	for m, v := range c.Split.byType() {
		if v < 0 {
			return fmt.Errorf("split.%s must not be negative", strings.ToLower(string(m)))
		}
	}
	for m, v := range c.Targets.byType() {
		if v < 0 {
			return fmt.Errorf("targets.%s must not be negative", strings.ToLower(string(m)))
		}
	}
	switch strings.ToLower(c.Store.Driver) {
	case store.DriverMemory, store.DriverFile, store.DriverSQLite, store.DriverRedis:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// UnitSystem returns the parsed unit system. Call Validate first.
func (c *Config) UnitSystem() ingredient.UnitSystem {
	u, _ := ingredient.ParseUnitSystem(c.Units)
	return u
}

// MealTargets resolves per-meal calorie targets: an absolute target wins,
// otherwise daily_calories times the meal's split fraction.
func (c *Config) MealTargets() scale.MealTargets {
	targets := scale.TargetsFromSplit(c.DailyCalories, c.Split.byType())
	for m, v := range c.Targets.byType() {
		if v > 0 {
			targets[m] = v
		}
	}
	return targets
}
