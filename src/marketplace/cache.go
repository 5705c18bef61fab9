package marketplace

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	directKeyPrefix  = "direct:"
	auctionKeyPrefix = "auction:"
)

// CachedContract 对挂单查询做短期缓存, 写操作直接透传
// 查询不到的挂单不缓存
type CachedContract struct {
	Contract
	c *cache.Cache
}

// NewCachedContract 创建带缓存的合约访问, ttl <= 0 时不缓存
func NewCachedContract(inner Contract, ttl time.Duration) *CachedContract {
	if ttl <= 0 {
		return &CachedContract{Contract: inner}
	}
	return &CachedContract{
		Contract: inner,
		c:        cache.New(ttl, 2*ttl),
	}
}

func (cc *CachedContract) DirectListing(ctx context.Context, listingID string) (*DirectListing, error) {
	if cc.c == nil {
		return cc.Contract.DirectListing(ctx, listingID)
	}
	if v, ok := cc.c.Get(directKeyPrefix + listingID); ok {
		return v.(*DirectListing), nil
	}

	listing, err := cc.Contract.DirectListing(ctx, listingID)
	if err != nil || listing == nil {
		return listing, err
	}
	cc.c.SetDefault(directKeyPrefix+listingID, listing)
	return listing, nil
}

func (cc *CachedContract) EnglishAuction(ctx context.Context, auctionID string) (*EnglishAuction, error) {
	if cc.c == nil {
		return cc.Contract.EnglishAuction(ctx, auctionID)
	}
	if v, ok := cc.c.Get(auctionKeyPrefix + auctionID); ok {
		return v.(*EnglishAuction), nil
	}

	auction, err := cc.Contract.EnglishAuction(ctx, auctionID)
	if err != nil || auction == nil {
		return auction, err
	}
	cc.c.SetDefault(auctionKeyPrefix+auctionID, auction)
	return auction, nil
}

// Invalidate 删除某个挂单的缓存, 在成交或出价后调用
func (cc *CachedContract) Invalidate(listingID string) {
	if cc.c == nil {
		return
	}
	cc.c.Delete(directKeyPrefix + listingID)
	cc.c.Delete(auctionKeyPrefix + listingID)
}
