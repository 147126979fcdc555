package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryService(t *testing.T) {
	now := time.Date(2025, 3, 25, 12, 0, 0, 0, time.UTC)
	mc := NewMemoryService(16)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set("blocked", []byte("500"), 10*time.Second))

	value, err := mc.Get("blocked")
	require.NoError(t, err)
	assert.Equal(t, "500", string(value))

	now = now.Add(10 * time.Second)
	_, err = mc.Get("blocked")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, mc.Set("forever", []byte("x"), 0))
	now = now.Add(24 * time.Hour)
	_, err = mc.Get("forever")
	assert.NoError(t, err)

	require.NoError(t, mc.Delete("forever"))
	_, err = mc.Get("forever")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryServiceEvictsOldest(t *testing.T) {
	mc := NewMemoryService(2)

	require.NoError(t, mc.Set("a", []byte("1"), 0))
	require.NoError(t, mc.Set("b", []byte("2"), 0))
	require.NoError(t, mc.Set("c", []byte("3"), 0))

	_, err := mc.Get("a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get("c")
	assert.NoError(t, err)
}
