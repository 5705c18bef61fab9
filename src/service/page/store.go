package page

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store 按浏览器会话保存页面, 过期的页面会被关闭
type Store struct {
	c       *cache.Cache
	newPage func() *Page
}

// NewStore 创建页面会话存储, newPage 为每个新会话构造页面
func NewStore(ttl time.Duration, newPage func() *Page) *Store {
	cleanup := ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(_ string, v interface{}) {
		if p, ok := v.(*Page); ok {
			p.Close()
		}
	})

	return &Store{c: c, newPage: newPage}
}

// Visit 处理一次页面访问 (GET)
// 同一挂单仍在加载时沿用进行中的拉取, 其余情况重新导航
func (s *Store) Visit(ctx context.Context, sid, listingID string) (*Page, string) {
	p, sid, created := s.lookup(sid)
	if created || p.ListingID() != listingID || p.State() != StateLoading {
		p.Navigate(ctx, listingID)
	}
	s.c.SetDefault(sid, p)

	return p, sid
}

// Current 返回会话当前页面, 挂单 ID 变化时才重新导航 (用于动作提交)
func (s *Store) Current(ctx context.Context, sid, listingID string) (*Page, string) {
	p, sid, created := s.lookup(sid)
	if created || p.ListingID() != listingID {
		p.Navigate(ctx, listingID)
	}
	s.c.SetDefault(sid, p)

	return p, sid
}

// Count 当前会话数
func (s *Store) Count() int {
	return s.c.ItemCount()
}

func (s *Store) lookup(sid string) (*Page, string, bool) {
	if _, err := uuid.Parse(sid); err != nil {
		return s.newPage(), uuid.NewString(), true
	}
	if v, ok := s.c.Get(sid); ok {
		if p, ok := v.(*Page); ok {
			return p, sid, false
		}
	}

	return s.newPage(), sid, true
}
