package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPageStoreContract runs a suite of tests to verify that a PageStore
// implementation adheres to the defined interface contract.
// factory must build stores with a capacity of exactly capacity pages.
func RunPageStoreContract(t *testing.T, capacity int, factory PageStoreFactory) {
	require.GreaterOrEqual(t, capacity, 2, "contract needs room for two pages")

	newStore := func(t *testing.T) (PageStore, *[]string) {
		var mu sync.Mutex
		evicted := &[]string{}
		store, err := factory(func(p *page.Page) {
			mu.Lock()
			defer mu.Unlock()
			*evicted = append(*evicted, p.ID)
		})
		require.NoError(t, err)
		return store, evicted
	}

	t.Run("Store and Fetch", func(t *testing.T) {
		store, _ := newStore(t)
		p := page.New("0", nil, callback.NewRegistry())
		store.Store(p)

		got, ok := store.Fetch("0")
		require.True(t, ok)
		assert.Same(t, p, got)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("Fetch Missing", func(t *testing.T) {
		store, _ := newStore(t)
		_, ok := store.Fetch("missing")
		assert.False(t, ok)
	})

	t.Run("Evicts Least Recently Used", func(t *testing.T) {
		store, evicted := newStore(t)
		for i := 0; i < capacity; i++ {
			store.Store(page.New(fmt.Sprint(i), nil, nil))
		}
		// Touch the oldest page so the second one becomes the victim.
		_, ok := store.Fetch("0")
		require.True(t, ok)

		store.Store(page.New("overflow", nil, nil))

		assert.Equal(t, capacity, store.Len())
		assert.Equal(t, []string{"1"}, *evicted)
		_, ok = store.Fetch("1")
		assert.False(t, ok, "evicted page must not be served")
		_, ok = store.Fetch("0")
		assert.True(t, ok)
	})

	t.Run("Purge", func(t *testing.T) {
		store, evicted := newStore(t)
		store.Store(page.New("a", nil, nil))
		store.Store(page.New("b", nil, nil))

		store.Purge()

		assert.Zero(t, store.Len())
		assert.ElementsMatch(t, []string{"a", "b"}, *evicted)
	})
}

// RunSessionIndexContract runs a suite of tests to verify that a SessionIndex
// implementation adheres to the defined interface contract.
func RunSessionIndexContract(t *testing.T, index SessionIndex) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")
	now := time.Now()

	t.Run("Touch and List", func(t *testing.T) {
		id1, id2 := prefix+"-1", prefix+"-2"
		require.NoError(t, index.Touch(ctx, id1, now.Add(2*time.Minute)))
		require.NoError(t, index.Touch(ctx, id2, now.Add(time.Minute)))
		defer func() {
			_ = index.Remove(ctx, id1)
			_ = index.Remove(ctx, id2)
		}()

		list, err := index.List(ctx)
		require.NoError(t, err)
		var ids []string
		for _, info := range list {
			ids = append(ids, info.ID)
		}
		assert.Equal(t, []string{id2, id1}, ids)
	})

	t.Run("Expired Sessions Are Hidden", func(t *testing.T) {
		id := prefix + "-old"
		require.NoError(t, index.Touch(ctx, id, now.Add(-time.Second)))
		defer func() { _ = index.Remove(ctx, id) }()

		list, err := index.List(ctx)
		require.NoError(t, err)
		for _, info := range list {
			assert.NotEqual(t, id, info.ID)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		id := prefix + "-gone"
		require.NoError(t, index.Touch(ctx, id, now.Add(time.Minute)))
		require.NoError(t, index.Remove(ctx, id))
		require.NoError(t, index.Remove(ctx, id), "removing twice is not an error")

		list, err := index.List(ctx)
		require.NoError(t, err)
		for _, info := range list {
			assert.NotEqual(t, id, info.ID)
		}
	})
}
