package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "preferences.json"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "preferences.sqlite"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStores_LoadBeforeSave(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			_, err := store.Load(context.Background())
			assert.ErrorIs(t, err, ErrNotFound)

			p, err := LoadOrDefault(context.Background(), store)
			require.NoError(t, err)
			assert.Equal(t, Defaults(), p)
		})
	}
}

func TestStores_SaveAndLoad(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			ctx := context.Background()

			want := Preferences{ShowIndex: true, ShowEndpointNames: true, RefreshIntervalMS: 30000}
			require.NoError(t, store.Save(ctx, want))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			want.ShowIndex = false
			want.RefreshIntervalMS = 5000
			require.NoError(t, store.Save(ctx, want))

			got, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, 5*time.Second, got.Interval())
		})
	}
}

func TestFileStore_Document(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), Preferences{ColorBySession: true, RefreshIntervalMS: 10000}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"showCallColors": true`)
	assert.Contains(t, string(data), `"refreshIntervalMs": 10000`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestFileStore_PartialDocumentKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"showIndex": true}`), 0644))
	store, err := NewFileStore(path)
	require.NoError(t, err)

	p, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.True(t, p.ShowIndex)
	assert.Equal(t, Defaults().RefreshIntervalMS, p.RefreshIntervalMS)
}

func TestFileStore_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.ErrorContains(t, err, "failed to decode preferences")

	p, err := LoadOrDefault(context.Background(), store)
	assert.Error(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestSQLiteStore_IgnoresUnknownKeys(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "preferences.sqlite"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.db.Exec(`INSERT INTO preferences (key, value, updated_at) VALUES ('theme', 'dark', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	p, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}
