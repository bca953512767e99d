package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_InsertRetrieve(t *testing.T) {
	c := NewCache(10)

	require.NoError(t, c.Insert("a", "value-a", 1))
	require.NoError(t, c.Insert("b", "value-b", 2))
	assert.Equal(t, 3, c.GetWeight())
	assert.Equal(t, 10, c.GetBudget())

	value, ok := c.Retrieve("a")
	require.True(t, ok)
	assert.Equal(t, "value-a", value)

	_, ok = c.Retrieve("missing")
	assert.False(t, ok)

	assert.Equal(t, ErrKeyExists, c.Insert("a", "other", 1))
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	c.SetVerbose(true)

	require.NoError(t, c.Insert("a", 1, 1))
	require.NoError(t, c.Insert("b", 2, 1))

	_, ok := c.Retrieve("a")
	require.True(t, ok)

	require.NoError(t, c.Insert("c", 3, 1))
	assert.Equal(t, 2, c.GetWeight())

	_, ok = c.Retrieve("b")
	assert.False(t, ok)
	_, ok = c.Retrieve("a")
	assert.True(t, ok)
	_, ok = c.Retrieve("c")
	assert.True(t, ok)
}

func TestCache_OverweightEntry(t *testing.T) {
	c := NewCache(2)

	require.NoError(t, c.Insert("a", 1, 1))
	require.NoError(t, c.Insert("big", 2, 3))

	assert.Equal(t, 0, c.GetWeight())
	_, ok := c.Retrieve("a")
	assert.False(t, ok)
	_, ok = c.Retrieve("big")
	assert.False(t, ok)

	require.NoError(t, c.Insert("a", 1, 1))
	assert.Equal(t, 1, c.GetWeight())
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(5)
	require.NoError(t, c.Insert("a", 1, 1))
	require.NoError(t, c.Insert("b", 1, 1))

	c.Clear()
	assert.Equal(t, 0, c.GetWeight())
	_, ok := c.Retrieve("a")
	assert.False(t, ok)
	require.NoError(t, c.Insert("a", 1, 1))
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache(64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", worker, j%16)
				if _, ok := c.Retrieve(key); !ok {
					_ = c.Insert(key, j, 1)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.GetWeight(), 64)
}
