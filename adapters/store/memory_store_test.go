package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrba/stepgate/core"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Stop()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "s1", "rtt", "25"))

	value, err := s.Get(ctx, "s1", "rtt")
	require.NoError(t, err)
	assert.Equal(t, "25", value)
}

func TestMemoryStoreMissingAttribute(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Stop()
	ctx := context.Background()

	_, err := s.Get(ctx, "s1", "rtt")
	assert.ErrorIs(t, err, core.ErrAttributeNotFound)

	require.NoError(t, s.Set(ctx, "s1", "other", "v"))
	_, err = s.Get(ctx, "s1", "rtt")
	assert.ErrorIs(t, err, core.ErrAttributeNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Stop()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "s1", "rtt", "25"))
	require.NoError(t, s.Delete(ctx, "s1", "rtt"))

	_, err := s.Get(ctx, "s1", "rtt")
	assert.ErrorIs(t, err, core.ErrAttributeNotFound)

	// Deleting from an unknown session is not an error
	require.NoError(t, s.Delete(ctx, "nope", "rtt"))
}

func TestMemoryStoreSessionsAreIsolated(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Stop()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "s1", "rtt", "25"))
	require.NoError(t, s.Set(ctx, "s2", "rtt", "40"))

	v1, err := s.Get(ctx, "s1", "rtt")
	require.NoError(t, err)
	v2, err := s.Get(ctx, "s2", "rtt")
	require.NoError(t, err)

	assert.Equal(t, "25", v1)
	assert.Equal(t, "40", v2)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(30 * time.Millisecond)
	defer s.Stop()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "s1", "rtt", "25"))

	assert.Eventually(t, func() bool {
		_, err := s.Get(ctx, "s1", "rtt")
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStoreSaveRefreshesTTL(t *testing.T) {
	s := NewMemoryStore(80 * time.Millisecond)
	defer s.Stop()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "s1", "rtt", "25"))

	for i := 0; i < 3; i++ {
		time.Sleep(40 * time.Millisecond)
		require.NoError(t, s.Save(ctx, "s1"))
	}

	value, err := s.Get(ctx, "s1", "rtt")
	require.NoError(t, err)
	assert.Equal(t, "25", value)
}
