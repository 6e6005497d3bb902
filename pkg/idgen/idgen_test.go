package idgen

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNanoID(t *testing.T) {
	gen := NanoID(24)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		require.Len(t, id, 24)
		for _, c := range id {
			if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
				t.Fatalf("NanoID: unexpected character %q in %q", c, id)
			}
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("NanoID: duplicate at iteration %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNanoID_DiscardsBiasedBytes(t *testing.T) {
	src := bytes.NewReader([]byte{252, 0, 255, 35, 253, 36, 254, 251, 71})
	id, err := nanoID(src, 5)
	require.NoError(t, err)
	assert.Equal(t, "0z0zz", id)

	_, err = nanoID(bytes.NewReader([]byte{1, 255}), 4)
	assert.Error(t, err)
}

func TestUUID(t *testing.T) {
	id := UUID()()
	assert.Len(t, id, 36)
	assert.Len(t, strings.Split(id, "-"), 5)
	assert.NotEqual(t, id, UUID()())
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("sess_", NanoID(8))()
	assert.True(t, strings.HasPrefix(id, "sess_"))
	assert.Len(t, id, 13)
}

func TestSequence(t *testing.T) {
	gen := Sequence(0)
	assert.Equal(t, "0", gen())
	assert.Equal(t, "1", gen())
	assert.Equal(t, "2", gen())
}

func TestSequence_Concurrent(t *testing.T) {
	gen := Sequence(10)
	var mu sync.Mutex
	seen := make(map[string]struct{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
	assert.Contains(t, seen, "10")
	assert.Contains(t, seen, "59")
}
