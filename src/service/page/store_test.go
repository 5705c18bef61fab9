package page

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSessions(t *testing.T) {
	contract := newFakeContract()
	contract.directs["0"] = directListing("0")
	contract.directs["1"] = directListing("1")
	store := NewStore(time.Minute, func() *Page {
		return New(Options{Contract: contract, Wallet: &fakeWallet{}})
	})
	ctx := context.Background()

	p, sid := store.Visit(ctx, "not-a-uuid", "0")
	_, err := uuid.Parse(sid)
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	assert.Equal(t, StateReady, p.State())
	assert.Equal(t, 1, store.Count())

	p.SetBidAmount("0.3")
	same, sid2 := store.Current(ctx, sid, "0")
	assert.Same(t, p, same)
	assert.Equal(t, sid, sid2)
	assert.Equal(t, "0.3", same.View().BidAmount)

	moved, _ := store.Current(ctx, sid, "1")
	assert.Same(t, p, moved)
	require.NoError(t, moved.Wait(ctx))
	assert.Equal(t, "1", moved.View().ListingID)
	assert.Empty(t, moved.View().BidAmount)

	other, otherSid := store.Visit(ctx, "", "0")
	assert.NotSame(t, p, other)
	assert.NotEqual(t, sid, otherSid)
	assert.Equal(t, 2, store.Count())
}

func TestStoreVisitKeepsInFlightFetch(t *testing.T) {
	contract := newFakeContract()
	block := make(chan struct{})
	contract.blocks["0"] = block
	contract.directs["0"] = directListing("0")
	store := NewStore(time.Minute, func() *Page {
		return New(Options{Contract: contract, Wallet: &fakeWallet{}})
	})
	ctx := context.Background()

	p, sid := store.Visit(ctx, "", "0")
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()

	again, _ := store.Visit(ctx, sid, "0")
	assert.Same(t, p, again)
	p.mu.Lock()
	assert.Equal(t, gen, p.gen)
	p.mu.Unlock()

	close(block)
	require.NoError(t, p.Wait(ctx))
	assert.Equal(t, StateReady, p.State())
}
