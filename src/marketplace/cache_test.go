package marketplace

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingContract struct {
	Contract
	directCalls  int
	auctionCalls int
	direct       *DirectListing
}

func (c *countingContract) DirectListing(ctx context.Context, listingID string) (*DirectListing, error) {
	c.directCalls++
	return c.direct, nil
}

func (c *countingContract) EnglishAuction(ctx context.Context, auctionID string) (*EnglishAuction, error) {
	c.auctionCalls++
	return nil, nil
}

func TestCachedContract(t *testing.T) {
	inner := &countingContract{direct: &DirectListing{ListingID: "1"}}
	cc := NewCachedContract(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l, err := cc.DirectListing(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "1", l.ListingID)
	}
	assert.Equal(t, 1, inner.directCalls)

	cc.Invalidate("1")
	_, _ = cc.DirectListing(ctx, "1")
	assert.Equal(t, 2, inner.directCalls)

	// 不存在的拍卖不缓存
	for i := 0; i < 2; i++ {
		a, err := cc.EnglishAuction(ctx, "1")
		require.NoError(t, err)
		assert.Nil(t, a)
	}
	assert.Equal(t, 2, inner.auctionCalls)
}

func TestFormatUnits(t *testing.T) {
	wei, _ := new(big.Int).SetString("50000000000000000", 10)
	assert.Equal(t, "0.05", FormatUnits(wei, NativeDecimals))
	assert.Equal(t, "", FormatUnits(nil, NativeDecimals))
}

func TestCachedContractDisabled(t *testing.T) {
	inner := &countingContract{direct: &DirectListing{ListingID: "1"}}
	cc := NewCachedContract(inner, 0)

	_, _ = cc.DirectListing(context.Background(), "1")
	_, _ = cc.DirectListing(context.Background(), "1")
	cc.Invalidate("1")
	assert.Equal(t, 2, inner.directCalls)
}
