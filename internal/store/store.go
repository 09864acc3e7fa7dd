// Package store persists the small amount of state the planner keeps between
// runs: the checked grocery names and the selected diet.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Persisted keys.
const (
	KeyCheckedIngredients = "checked_ingredients"
	KeyDietType           = "diet_type"
)

// Errors reported by the store.
var (
	// ErrNotFound is returned by Get when a key has never been written.
	ErrNotFound = errors.New("store: key not found")
	// ErrUnavailable wraps failures to open, read or write a backend.
	ErrUnavailable = errors.New("state store unavailable")
	// ErrCorrupt wraps persisted state that can no longer be decoded.
	ErrCorrupt = errors.New("persisted state is corrupt")
)

// Store reads and writes named values.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	Path        string
	RedisAddr   string
	RedisPrefix string
}

// Open builds the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverMemory:
		return NewMemory(), nil
	case "", DriverFile:
		s, err = NewFile(opts.Path)
	case DriverSQLite:
		s, err = NewSQLite(ctx, opts.Path)
	case DriverRedis:
		s, err = NewRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return s, nil
}

// backendError tags a Get or Put failure with ErrUnavailable unless the
// backend already reported corruption.
func backendError(action string, err error) error {
	if errors.Is(err, ErrCorrupt) {
		return fmt.Errorf("%s: %w", action, err)
	}
	return fmt.Errorf("%s: %w: %w", action, ErrUnavailable, err)
}

// LoadChecked returns the persisted checked names, or nil if none were saved.
func LoadChecked(ctx context.Context, s Store) ([]string, error) {
	raw, err := s.Get(ctx, KeyCheckedIngredients)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, backendError("loading checked ingredients", err)
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("decoding checked ingredients: %w: %w", ErrCorrupt, err)
	}
	return names, nil
}

// SaveChecked overwrites the checked set with names.
func SaveChecked(ctx context.Context, s Store, names []string) error {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	raw, err := json.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("encoding checked ingredients: %w", err)
	}
	if err := s.Put(ctx, KeyCheckedIngredients, raw); err != nil {
		return backendError("saving checked ingredients", err)
	}
	return nil
}

// LoadDiet returns the persisted diet selector, or "" if none was saved.
func LoadDiet(ctx context.Context, s Store) (string, error) {
	raw, err := s.Get(ctx, KeyDietType)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", backendError("loading diet type", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// SaveDiet persists the diet selector.
func SaveDiet(ctx context.Context, s Store, diet string) error {
	if err := s.Put(ctx, KeyDietType, []byte(diet)); err != nil {
		return backendError("saving diet type", err)
	}
	return nil
}
