package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCache_PutAndGet(t *testing.T) {
	c := NewConfigCache()

	c.Put("redirectUrls", map[string]string{"development": "http://localhost:3000"})

	got, found := c.Get("redirectUrls")
	assert.True(t, found)
	assert.Equal(t, map[string]string{"development": "http://localhost:3000"}, got)
}

func TestConfigCache_NotFound(t *testing.T) {
	c := NewConfigCache()

	got, found := c.Get("nonexistent")
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestConfigCache_PutOverwrites(t *testing.T) {
	c := NewConfigCache()

	c.Put("baseUrlForLinkInEmail", "http://old.example.com")
	c.Put("baseUrlForLinkInEmail", "http://new.example.com")

	got, found := c.Get("baseUrlForLinkInEmail")
	assert.True(t, found)
	assert.Equal(t, "http://new.example.com", got)
}

func TestConfigCache_Clear(t *testing.T) {
	c := NewConfigCache()

	c.Put("redirectUrls", "a")
	c.Put("baseUrlForLinkInEmail", "b")
	c.Clear("redirectUrls")

	_, found := c.Get("redirectUrls")
	assert.False(t, found)

	_, found = c.Get("baseUrlForLinkInEmail")
	assert.True(t, found, "clearing one name must not touch others")
}

func TestConfigCache_ClearAll(t *testing.T) {
	c := NewConfigCache()

	c.Put("redirectUrls", "a")
	c.Put("baseUrlForLinkInEmail", "b")
	c.ClearAll()

	assert.Empty(t, c.Names())
}

func TestConfigCache_GetOrCompute_Miss(t *testing.T) {
	c := NewConfigCache()
	calls := 0

	got, err := c.GetOrCompute(context.Background(), "redirectUrls", func(_ context.Context) (any, error) {
		calls++
		return "computed", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "computed", got)
	assert.Equal(t, 1, calls)

	cached, found := c.Get("redirectUrls")
	assert.True(t, found)
	assert.Equal(t, "computed", cached)
}

func TestConfigCache_GetOrCompute_Hit(t *testing.T) {
	c := NewConfigCache()
	c.Put("redirectUrls", "cached")

	got, err := c.GetOrCompute(context.Background(), "redirectUrls", func(_ context.Context) (any, error) {
		t.Fatal("compute must not run on a hit")
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "cached", got)
}

func TestConfigCache_GetOrCompute_ErrorNotCached(t *testing.T) {
	c := NewConfigCache()
	computeErr := errors.New("upstream down")

	_, err := c.GetOrCompute(context.Background(), "redirectUrls", func(_ context.Context) (any, error) {
		return nil, computeErr
	})
	assert.ErrorIs(t, err, computeErr)

	_, found := c.Get("redirectUrls")
	assert.False(t, found, "failed compute must not populate the cache")

	got, err := c.GetOrCompute(context.Background(), "redirectUrls", func(_ context.Context) (any, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
}

func TestConfigCache_GetOrCompute_SingleFlight(t *testing.T) {
	c := NewConfigCache()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrCompute(context.Background(), "redirectUrls", func(_ context.Context) (any, error) {
				calls.Add(1)
				<-release
				return "shared", nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "shared", got)
		}()
	}

	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2), "concurrent misses share the compute")
}

func TestConfigCache_ConcurrentReadWrite(t *testing.T) {
	c := NewConfigCache()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Put("redirectUrls", i)
		}(i)
		go func() {
			defer wg.Done()
			c.Get("redirectUrls")
		}()
	}
	wg.Wait()

	_, found := c.Get("redirectUrls")
	assert.True(t, found)
}
