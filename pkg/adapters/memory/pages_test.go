package memory_test

import (
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/page"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUPages_Contract(t *testing.T) {
	ports.RunPageStoreContract(t, 3, func(onEvict ports.EvictFunc) (ports.PageStore, error) {
		return memory.NewLRUPages(3, onEvict)
	})
}

func TestExpiringPages_Contract(t *testing.T) {
	ports.RunPageStoreContract(t, 3, func(onEvict ports.EvictFunc) (ports.PageStore, error) {
		return memory.NewExpiringPages(3, time.Hour, onEvict)
	})
}

func TestExpiringPages_TTL(t *testing.T) {
	store, err := memory.NewExpiringPages(5, 20*time.Millisecond, nil)
	require.NoError(t, err)

	store.Store(page.New("0", nil, nil))
	_, ok := store.Fetch("0")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := store.Fetch("0")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestPageFactory(t *testing.T) {
	store, err := memory.PageFactory(0, 0)(nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.LRUPages{}, store)

	for i := 0; i < memory.DefaultPageCapacity+5; i++ {
		store.Store(page.New(string(rune('a'+i)), nil, nil))
	}
	assert.Equal(t, memory.DefaultPageCapacity, store.Len())

	store, err = memory.PageFactory(2, time.Minute)(nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.ExpiringPages{}, store)
}

func TestNewLRUPages_InvalidCapacity(t *testing.T) {
	_, err := memory.NewLRUPages(0, nil)
	assert.Error(t, err)

	_, err = memory.NewExpiringPages(-1, time.Minute, nil)
	assert.Error(t, err)
}
