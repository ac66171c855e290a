package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRememberWithoutRedisFetchesDirect(t *testing.T) {
	cache := NewCacheService(nil)

	calls := 0
	var dest []string
	err := cache.Remember(context.Background(), "g", "id", 0, &dest, func() (interface{}, error) {
		calls++
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, dest)
	assert.Equal(t, 1, calls)

	// 无缓存后端：每次调用都直读
	err = cache.Remember(context.Background(), "g", "id", 0, &dest, func() (interface{}, error) {
		calls++
		return []string{"c"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, dest)
	assert.Equal(t, 2, calls)
}

func TestRememberPropagatesFetchError(t *testing.T) {
	cache := NewCacheService(nil)

	want := errors.New("db unavailable")
	var dest int
	err := cache.Remember(context.Background(), "g", "id", 0, &dest, func() (interface{}, error) {
		return nil, want
	})
	require.ErrorIs(t, err, want)
}

func TestForgetWithoutRedisIsNoop(t *testing.T) {
	cache := NewCacheService(nil)
	cache.Forget(context.Background(), "g", "id")
	cache.ForgetGroup(context.Background(), "g")
}

func TestPageIdentifier(t *testing.T) {
	assert.Equal(t, "p2-l20", PageIdentifier(2, 20))
}
