package storage

import (
	"context"
	"testing"

	"github.com/probuddy/api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJourneyKey(t *testing.T) {
	assert.Equal(t, "journeys/user-1/j-1.json", JourneyKey("user-1", "j-1"))
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()

	body := []byte(`{"id":"j-1"}`)
	require.NoError(t, m.Save(ctx, "a", body))
	body[0] = 'x'

	got, err := m.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"j-1"}`, string(got))
	assert.Equal(t, []string{"a"}, m.Keys())

	require.NoError(t, m.Delete(ctx, "a"))
	_, err = m.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewWithoutBucket(t *testing.T) {
	s, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, s)
}
