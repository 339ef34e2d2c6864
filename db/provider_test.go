package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProviders(t *testing.T) map[string]IterableProvider {
	t.Helper()

	mem, err := NewMemLevelDBProvider()
	require.NoError(t, err)

	lvl, err := NewLevelDBProvider(filepath.Join(t.TempDir(), "leveldb"))
	require.NoError(t, err)

	blt, err := NewBoltProvider(filepath.Join(t.TempDir(), "stakevault.db"))
	require.NoError(t, err)

	providers := map[string]IterableProvider{
		"memory":  mem,
		"leveldb": lvl,
		"bolt":    blt,
	}
	t.Cleanup(func() {
		for _, p := range providers {
			_ = p.Close()
		}
	})
	return providers
}

func TestProvider_GetPutDelete(t *testing.T) {
	for name, p := range newProviders(t) {
		t.Run(name, func(t *testing.T) {
			v, err := p.Get([]byte("missing"))
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, p.Put([]byte("k1"), []byte("v1")))
			v, err = p.Get([]byte("k1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), v)

			ok, err := p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, p.Delete([]byte("k1")))
			ok, err = p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestProvider_IteratePrefix(t *testing.T) {
	for name, p := range newProviders(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put([]byte("a:1"), []byte("1")))
			require.NoError(t, p.Put([]byte("a:2"), []byte("2")))
			require.NoError(t, p.Put([]byte("b:1"), []byte("3")))

			var keys []string
			err := p.IteratePrefix([]byte("a:"), func(key, value []byte) bool {
				keys = append(keys, string(key))
				return true
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"a:1", "a:2"}, keys)
		})
	}
}

func TestDBTxManager_WithBatch(t *testing.T) {
	for name, p := range newProviders(t) {
		t.Run(name, func(t *testing.T) {
			tm := NewDBTxManager(p)

			err := tm.WithBatch(func(batch DatabaseBatch) error {
				batch.Put([]byte("x"), []byte("1"))
				batch.Put([]byte("y"), []byte("2"))
				return nil
			})
			require.NoError(t, err)

			v, err := p.Get([]byte("y"))
			require.NoError(t, err)
			assert.Equal(t, []byte("2"), v)

			boom := errors.New("boom")
			err = tm.WithBatch(func(batch DatabaseBatch) error {
				batch.Put([]byte("z"), []byte("3"))
				batch.Delete([]byte("x"))
				return boom
			})
			require.ErrorIs(t, err, boom)

			ok, err := p.Has([]byte("z"))
			require.NoError(t, err)
			assert.False(t, ok, "failed batch must not be written")

			ok, err = p.Has([]byte("x"))
			require.NoError(t, err)
			assert.True(t, ok, "failed batch must not delete")
		})
	}
}
