package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "wdgraph:unknown_property:P31", Key("unknown_property", "P31"))
}

func TestMemoryCache_AddOnlyOnce(t *testing.T) {
	c := NewMemoryCache(0, 0)

	require.True(t, c.Add("k", "first"))
	assert.False(t, c.Add("k", "second"))
	assert.True(t, c.Add("other", ""))
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCache_AddAfterExpiry(t *testing.T) {
	c := NewMemoryCache(10*time.Millisecond, 0)
	require.True(t, c.Add("k", "v"))
	assert.False(t, c.Add("k", "v"))

	time.Sleep(30 * time.Millisecond)

	assert.True(t, c.Add("k", "v"), "expired entry should be replaceable")
}

func TestOnce_Concurrent(t *testing.T) {
	once := NewOnce()
	var firsts int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if once.First(Key("unknown_property", "P9999")) {
				atomic.AddInt32(&firsts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), firsts, "exactly one first sighting")
	assert.Equal(t, 1, once.Seen())
}
