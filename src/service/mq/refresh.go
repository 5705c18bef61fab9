package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
)

const CacheRefreshListingKey = "cache:%s:%s:listing:refresh"

func GetRefreshListingKey(project, chain string) string {
	return fmt.Sprintf(CacheRefreshListingKey, strings.ToLower(project), strings.ToLower(chain))
}

const CacheRefreshPreventReentrancyKeyPrefix = "cache:es:listing:refresh:prevent:reentrancy:%d:%s"
const PreventReentrancyPeriod = 10 //second

// RefreshListing 推送给索引服务的刷新请求
type RefreshListing struct {
	ChainID   int64  `json:"chain_id"`
	ListingID string `json:"listing_id"`
}

// QueueStore 刷新队列依赖的 kv 能力, *xkv.Store 满足该接口
type QueueStore interface {
	GetCtx(ctx context.Context, key string) (string, error)
	SaddCtx(ctx context.Context, key string, values ...interface{}) (int, error)
	SetexCtx(ctx context.Context, key, value string, seconds int) error
}

// AddListingToRefreshQueue 添加单个挂单到刷新队列
// 1. 检查防重入锁, 10 秒内同一挂单只入队一次
// 2. 将刷新请求序列化为 JSON
// 3. 推送到 Redis Set 队列 (SAdd)
// 4. 设置防重入锁过期时间
func AddListingToRefreshQueue(ctx context.Context, kvStore QueueStore, project, chainName string, chainID int64, listingID string) error {
	reentrancyKey := fmt.Sprintf(CacheRefreshPreventReentrancyKeyPrefix, chainID, listingID)
	isRefreshed, err := kvStore.GetCtx(ctx, reentrancyKey)
	if err != nil {
		return errors.Wrap(err, "failed on check reentrancy status")
	}

	if isRefreshed != "" {
		xzap.WithContext(ctx).Info("refresh within 10s", zap.String("listing_id", listingID))
		return nil
	}

	rawInfo, err := json.Marshal(&RefreshListing{ChainID: chainID, ListingID: listingID})
	if err != nil {
		return errors.Wrap(err, "failed on marshal listing info")
	}

	if _, err := kvStore.SaddCtx(ctx, GetRefreshListingKey(project, chainName), string(rawInfo)); err != nil {
		return errors.Wrap(err, "failed on push listing to refresh queue")
	}

	_ = kvStore.SetexCtx(ctx, reentrancyKey, "true", PreventReentrancyPeriod)

	return nil
}

// Invalidator 本地挂单缓存
type Invalidator interface {
	Invalidate(listingID string)
}

// Refresher 交易成功后失效本地缓存, 并在配置了 redis 时通知索引服务
type Refresher struct {
	KvStore   QueueStore
	Cache     Invalidator
	Project   string
	ChainName string
	ChainID   int64
}

func (r *Refresher) RefreshListing(ctx context.Context, listingID string) error {
	if r.Cache != nil {
		r.Cache.Invalidate(listingID)
	}
	if r.KvStore == nil {
		return nil
	}
	return AddListingToRefreshQueue(ctx, r.KvStore, r.Project, r.ChainName, r.ChainID, listingID)
}
