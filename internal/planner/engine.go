// Package planner runs the full recompute: catalog, weekly scaling and the
// grocery list with persisted checked state.
package planner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tayloree/dietcart/internal/ingredient"
	"github.com/tayloree/dietcart/internal/recipe"
	"github.com/tayloree/dietcart/internal/scale"
	"github.com/tayloree/dietcart/internal/shopping"
	"github.com/tayloree/dietcart/internal/store"
)

// ErrUnknownItem is returned by Toggle when the list has no such ingredient.
var ErrUnknownItem = errors.New("no such grocery item")

// Inputs are everything a rebuild depends on.
type Inputs struct {
	Diet    recipe.Diet
	Targets scale.MealTargets
	Units   ingredient.UnitSystem
}

// Result is the output of one rebuild.
type Result struct {
	Diet    recipe.Diet
	Catalog *recipe.Catalog
	Plan    recipe.WeeklyPlan
	List    *shopping.List
}

// Engine wires the scaler and aggregator to a Store.
type Engine struct {
	store   store.Store
	matcher *ingredient.Matcher
	log     *zap.Logger
	scaler  *scale.Scaler
	agg     *shopping.Aggregator
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMatcher replaces the embedded ingredient reference table.
func WithMatcher(m *ingredient.Matcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// New returns an Engine persisting through s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{store: s}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.matcher == nil {
		e.matcher = ingredient.NewMatcher(nil)
	}
	e.scaler = scale.New(e.log)
	e.agg = shopping.NewAggregator(shopping.NewConverter(e.matcher, e.log), e.log)
	return e
}

// Rebuild loads the diet's catalog, scales a week to the targets and
// aggregates the grocery list, restoring checked names from the store.
func (e *Engine) Rebuild(ctx context.Context, in Inputs) (*Result, error) {
	diet, ok := recipe.ParseDiet(string(in.Diet))
	if !ok && in.Diet != "" {
		e.log.Warn("unknown diet, using default",
			zap.String("diet", string(in.Diet)), zap.String("default", string(diet)))
	}

	catalog, err := recipe.Load(diet)
	if err != nil {
		return nil, err
	}
	plan := e.scaler.BuildWeek(catalog.Week(), in.Targets)

	checked, err := store.LoadChecked(ctx, e.store)
	if err != nil {
		return nil, err
	}
	list := e.agg.Recompute(plan, checked, in.Units)

	e.log.Debug("rebuilt plan",
		zap.String("diet", string(diet)),
		zap.Int("days", len(plan)),
		zap.Int("items", list.Total()))
	return &Result{Diet: diet, Catalog: catalog, Plan: plan, List: list}, nil
}

// Toggle flips the named item and persists the list's full checked set.
func (e *Engine) Toggle(ctx context.Context, list *shopping.List, name string) (bool, error) {
	checked, ok := list.Toggle(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	if err := store.SaveChecked(ctx, e.store, list.CheckedNames()); err != nil {
		list.Toggle(name)
		return !checked, err
	}
	return checked, nil
}

// ResetChecked unchecks every item and clears the persisted set.
func (e *Engine) ResetChecked(ctx context.Context, list *shopping.List) error {
	for i := range list.Items {
		list.Items[i].Checked = false
	}
	return store.SaveChecked(ctx, e.store, nil)
}

// SelectDiet persists the diet selector, normalized to a known diet.
func (e *Engine) SelectDiet(ctx context.Context, raw string) (recipe.Diet, error) {
	diet, ok := recipe.ParseDiet(raw)
	if !ok {
		e.log.Warn("unknown diet, using default", zap.String("diet", raw), zap.String("default", string(diet)))
	}
	if err := store.SaveDiet(ctx, e.store, string(diet)); err != nil {
		return "", err
	}
	return diet, nil
}

// Diet returns the persisted diet, or "" with ok=false when none was saved.
func (e *Engine) Diet(ctx context.Context) (recipe.Diet, bool, error) {
	raw, err := store.LoadDiet(ctx, e.store)
	if err != nil {
		return "", false, err
	}
	if raw == "" {
		return "", false, nil
	}
	diet, _ := recipe.ParseDiet(raw)
	return diet, true, nil
}
