package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("MissThenHit", func(t *testing.T) {
		m := NewMemory()

		_, err := m.Get(ctx, "k")
		assert.True(t, errors.Is(err, ErrMiss))

		require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
		got, err := m.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("Expires", func(t *testing.T) {
		m := NewMemory()
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return now }

		require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Second))
		now = now.Add(2 * time.Second)

		_, err := m.Get(ctx, "k")
		assert.True(t, errors.Is(err, ErrMiss))
	})

	t.Run("Delete", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
		require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))

		require.NoError(t, m.Delete(ctx, "a", "b"))
		_, err := m.Get(ctx, "a")
		assert.True(t, errors.Is(err, ErrMiss))
	})
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type payload struct {
		Title string `json:"title"`
	}

	var got payload
	hit, err := GetJSON(ctx, m, "p", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetJSON(ctx, m, "p", payload{Title: "Space"}, time.Minute))
	hit, err = GetJSON(ctx, m, "p", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Space", got.Title)

	hit, err = GetJSON(ctx, Noop{}, "p", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
