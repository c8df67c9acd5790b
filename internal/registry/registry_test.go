package registry

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablePutGetDelete(t *testing.T) {
	var tab Table[string]

	a := tab.Put("a")
	b := tab.Put("b")
	require.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, a, firstID)

	v, ok := tab.Get(a)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	tab.Delete(a)
	_, ok = tab.Get(a)
	assert.False(t, ok)
	assert.Equal(t, 1, tab.Len())

	tab.Delete(a)
	assert.Equal(t, 1, tab.Len())
}

func TestPointerRoundTrip(t *testing.T) {
	var tab Table[int]
	id := tab.Put(7)
	assert.Equal(t, id, ID(Pointer(id)))
	assert.Equal(t, uint64(0), ID(nil))
}

func TestIDsFitInPointer(t *testing.T) {
	var tab Table[int]
	for i := 0; i < 16; i++ {
		id := tab.Put(i)
		require.NotZero(t, id)
		require.LessOrEqual(t, id, uint64(math.MaxUint32))
		require.Equal(t, id, ID(Pointer(id)))
	}
}

func TestPutWrapsAndSkipsLiveIDs(t *testing.T) {
	var tab Table[string]
	a := tab.Put("a")
	require.Equal(t, firstID, a)

	tab.mu.Lock()
	tab.next = maxID
	tab.mu.Unlock()

	last := tab.Put("last")
	assert.Equal(t, maxID, last)
	wrapped := tab.Put("wrapped")
	assert.Equal(t, firstID+1, wrapped, "live id %d must be skipped", a)
	assert.Equal(t, uint64(0), ID(Pointer(0)))
}

func TestTableConcurrent(t *testing.T) {
	var tab Table[int]
	var wg sync.WaitGroup
	ids := make(chan uint64, 64)

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids <- tab.Put(i)
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate id %x", id)
		seen[id] = true
	}
	assert.Equal(t, 64, tab.Len())
}
