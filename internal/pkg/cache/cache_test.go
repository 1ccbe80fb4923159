package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClock() *clock.Fake {
	return clock.NewFake(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))
}

func TestCache_SetGet(t *testing.T) {
	t.Parallel()

	c := New[string](15*time.Second, testClock())
	c.Set("emp-1", "checked_in")

	got, ok := c.Get("emp-1")
	assert.True(t, ok)
	assert.Equal(t, "checked_in", got)

	_, ok = c.Get("emp-2")
	assert.False(t, ok)
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	clk := testClock()
	c := New[int](15*time.Second, clk)
	c.Set("emp-1", 42)

	clk.Advance(15 * time.Second)
	got, ok := c.Get("emp-1")
	assert.True(t, ok, "entry is still valid exactly at the TTL boundary")
	assert.Equal(t, 42, got)

	clk.Advance(time.Second)
	_, ok = c.Get("emp-1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on access")
}

func TestCache_Delete(t *testing.T) {
	t.Parallel()

	c := New[string](time.Minute, testClock())
	c.Set("emp-1", "stale")
	c.Delete("emp-1")

	_, ok := c.Get("emp-1")
	assert.False(t, ok)
}

func TestCache_GetOrLoad_LoadsOnce(t *testing.T) {
	t.Parallel()

	c := New[string](time.Minute, testClock())

	var loads atomic.Int32
	loader := func() (string, error) {
		loads.Add(1)
		return "computed", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrLoad("emp-1", loader)
			assert.NoError(t, err)
			assert.Equal(t, "computed", got)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestCache_GetOrLoad_ErrorNotCached(t *testing.T) {
	t.Parallel()

	c := New[string](time.Minute, testClock())

	calls := 0
	_, err := c.GetOrLoad("emp-1", func() (string, error) {
		calls++
		return "", errors.New("load failed")
	})
	require.Error(t, err)

	got, err := c.GetOrLoad("emp-1", func() (string, error) {
		calls++
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, calls)
}

func TestCache_Sweep(t *testing.T) {
	t.Parallel()

	clk := testClock()
	c := New[int](10*time.Second, clk)
	c.Set("old", 1)

	clk.Advance(11 * time.Second)
	c.Set("fresh", 2)

	c.Sweep()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}
