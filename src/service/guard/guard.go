// Package guard 防止同一钱包在同一条链上对同一挂单重复提交交易
// key 由调用方按 "chainID:listingID:wallet" 组成
package guard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
)

const (
	SubmitGuardKeyPrefix = "cache:%s:listing:submit:guard:"
	DefaultPeriod        = 120 // second
)

// GetSubmitGuardKeyPrefix 提交锁 key 前缀
func GetSubmitGuardKeyPrefix(project string) string {
	return fmt.Sprintf(SubmitGuardKeyPrefix, strings.ToLower(project))
}

// KeyStore 提交锁依赖的 kv 能力, *xkv.Store 满足该接口
type KeyStore interface {
	SetnxExCtx(ctx context.Context, key, value string, seconds int) (bool, error)
	DelCtx(ctx context.Context, keys ...string) (int, error)
}

// RedisGuard 基于 redis SETNX 的跨实例提交锁
// 锁带过期时间, 进程异常退出也不会永久占用
type RedisGuard struct {
	store  KeyStore
	prefix string
	period int
}

func NewRedisGuard(store KeyStore, project string, period int) *RedisGuard {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &RedisGuard{
		store:  store,
		prefix: GetSubmitGuardKeyPrefix(project),
		period: period,
	}
}

// Acquire 占用 key, 已被占用时返回 false
func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.store.SetnxExCtx(ctx, g.prefix+key, "1", g.period)
	if err != nil {
		return false, errors.Wrap(err, "failed on set submit guard")
	}
	return ok, nil
}

// Release 释放 key
func (g *RedisGuard) Release(ctx context.Context, key string) {
	if _, err := g.store.DelCtx(ctx, g.prefix+key); err != nil {
		xzap.WithContext(ctx).Warn("failed on release submit guard", zap.String("key", key), zap.Error(err))
	}
}

// MemoryGuard 未配置 redis 时使用的进程内提交锁
type MemoryGuard struct {
	c *cache.Cache
}

func NewMemoryGuard(period int) *MemoryGuard {
	if period <= 0 {
		period = DefaultPeriod
	}
	ttl := time.Duration(period) * time.Second
	return &MemoryGuard{c: cache.New(ttl, ttl)}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	// Add 在 key 已存在且未过期时返回错误
	if err := g.c.Add(key, struct{}{}, cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) {
	g.c.Delete(key)
}
