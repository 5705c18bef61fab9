package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	keys   map[string]int
	setErr error
}

func (f *fakeStore) SetnxExCtx(_ context.Context, key, _ string, seconds int) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = seconds
	return true, nil
}

func (f *fakeStore) DelCtx(_ context.Context, keys ...string) (int, error) {
	for _, k := range keys {
		delete(f.keys, k)
	}
	return len(keys), nil
}

func TestRedisGuard(t *testing.T) {
	store := &fakeStore{keys: map[string]int{}}
	g := NewRedisGuard(store, "EasySwap", 0)
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "5:1:0xabc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, DefaultPeriod, store.keys["cache:easyswap:listing:submit:guard:5:1:0xabc"])

	ok, err = g.Acquire(ctx, "5:1:0xabc")
	require.NoError(t, err)
	assert.False(t, ok)

	g.Release(ctx, "5:1:0xabc")
	ok, _ = g.Acquire(ctx, "5:1:0xabc")
	assert.True(t, ok)

	store.setErr = errors.New("connection refused")
	_, err = g.Acquire(ctx, "5:2:0xabc")
	assert.ErrorContains(t, err, "failed on set submit guard")
}

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard(60)
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Acquire(ctx, "k")
	assert.False(t, ok)

	g.Release(ctx, "k")
	ok, _ = g.Acquire(ctx, "k")
	assert.True(t, ok)
}
