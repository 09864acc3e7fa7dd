package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dietcart/internal/store"
)

func backends(t *testing.T) map[string]store.Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	file, err := store.NewFile(filepath.Join(dir, "nested", "state.json"))
	require.NoError(t, err)
	sqlite, err := store.NewSQLite(ctx, filepath.Join(dir, "state.db"))
	require.NoError(t, err)

	out := map[string]store.Store{
		"memory": store.NewMemory(),
		"file":   file,
		"sqlite": sqlite,
	}
	if addr := os.Getenv("DIETCART_TEST_REDIS_ADDR"); addr != "" {
		r, err := store.NewRedis(ctx, addr, "dietcart-test:"+t.Name()+":")
		require.NoError(t, err)
		out["redis"] = r
	}
	t.Cleanup(func() {
		for _, s := range out {
			s.Close()
		}
	})
	return out
}

func TestStore_GetPut(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, store.ErrNotFound)

			require.NoError(t, s.Put(ctx, "k", []byte("one")))
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "one", string(got))

			require.NoError(t, s.Put(ctx, "k", []byte("two")))
			got, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "two", string(got))
		})
	}
}

func TestStore_CheckedAndDietHelpers(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			names, err := store.LoadChecked(ctx, s)
			require.NoError(t, err)
			assert.Empty(t, names)

			require.NoError(t, store.SaveChecked(ctx, s, []string{"Tomate", "Aguacate"}))
			names, err = store.LoadChecked(ctx, s)
			require.NoError(t, err)
			assert.Equal(t, []string{"Aguacate", "Tomate"}, names)

			// Whole-set overwrite.
			require.NoError(t, store.SaveChecked(ctx, s, nil))
			names, err = store.LoadChecked(ctx, s)
			require.NoError(t, err)
			assert.Empty(t, names)

			diet, err := store.LoadDiet(ctx, s)
			require.NoError(t, err)
			assert.Equal(t, "", diet)
			require.NoError(t, store.SaveDiet(ctx, s, "keto"))
			diet, err = store.LoadDiet(ctx, s)
			require.NoError(t, err)
			assert.Equal(t, "keto", diet)
		})
	}
}

func TestLoadChecked_CorruptValue(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Put(ctx, store.KeyCheckedIngredients, []byte("{not json")))
	_, err := store.LoadChecked(ctx, s)
	assert.ErrorIs(t, err, store.ErrCorrupt)
	assert.NotErrorIs(t, err, store.ErrUnavailable)
}

type failingStore struct{ *store.Memory }

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection reset")
}

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("read-only file system")
}

func TestHelpers_TagBackendFailures(t *testing.T) {
	ctx := context.Background()
	s := failingStore{store.NewMemory()}

	_, err := store.LoadChecked(ctx, s)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.ErrorContains(t, err, "connection reset")

	_, err = store.LoadDiet(ctx, s)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	assert.ErrorIs(t, store.SaveChecked(ctx, s, []string{"Tomate"}), store.ErrUnavailable)
	assert.ErrorIs(t, store.SaveDiet(ctx, s, "keto"), store.ErrUnavailable)
}

func TestOpen_UnusablePathIsUnavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := store.Open(context.Background(), store.Options{
		Driver: store.DriverSQLite,
		Path:   filepath.Join(blocker, "state.db"),
	})
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	first, err := store.NewFile(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveDiet(ctx, first, "lowcarb"))

	second, err := store.NewFile(path)
	require.NoError(t, err)
	diet, err := store.LoadDiet(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "lowcarb", diet)
	assert.Equal(t, path, second.Path())
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o644))

	s, err := store.NewFile(path)
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, store.ErrCorrupt)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	_, err = store.LoadDiet(context.Background(), s)
	assert.ErrorIs(t, err, store.ErrCorrupt)
	assert.NotErrorIs(t, err, store.ErrUnavailable)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := store.Open(ctx, store.Options{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, s)

	s, err = store.Open(ctx, store.Options{Driver: "FILE", Path: filepath.Join(dir, "a.json")})
	require.NoError(t, err)
	assert.IsType(t, &store.File{}, s)

	s, err = store.Open(ctx, store.Options{Driver: "sqlite", Path: filepath.Join(dir, "a.db")})
	require.NoError(t, err)
	assert.IsType(t, &store.SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = store.Open(ctx, store.Options{Driver: "etcd"})
	assert.Error(t, err)
}
