package svc

import (
	"time"

	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapListing/src/common/xkv"
	"github.com/ProjectsTask/EasySwapListing/src/dao"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace"
	"github.com/ProjectsTask/EasySwapListing/src/service/page"
)

// CtxConfig 服务上下文配置构建器
// 用于使用 Option 模式构建 ServerCtx
type CtxConfig struct {
	db        *gorm.DB
	dao       *dao.Dao
	KvStore   *xkv.Store
	wallet    marketplace.Wallet
	contract  marketplace.Contract
	guard     page.SubmitGuard
	refresher page.Refresher
	recorder  page.Recorder
	pageOpts  PageOptions
}

// PageOptions 页面相关的时间参数
type PageOptions struct {
	FetchTimeout time.Duration
	RenderWait   time.Duration
	SessionTTL   time.Duration
}

type CtxOption func(conf *CtxConfig)

// NewServerCtx 创建新的服务上下文
// 未提供的可选组件使用进程内实现或直接关闭
func NewServerCtx(options ...CtxOption) *ServerCtx {
	c := &CtxConfig{}
	for _, opt := range options {
		opt(c)
	}
	if c.pageOpts.SessionTTL <= 0 {
		c.pageOpts.SessionTTL = 30 * time.Minute
	}

	s := &ServerCtx{
		DB:         c.db,
		KvStore:    c.KvStore,
		Dao:        c.dao,
		Wallet:     c.wallet,
		Contract:   c.contract,
		Guard:      c.guard,
		Refresher:  c.refresher,
		Recorder:   c.recorder,
		RenderWait: c.pageOpts.RenderWait,
	}
	fetchTimeout := c.pageOpts.FetchTimeout
	s.Pages = page.NewStore(c.pageOpts.SessionTTL, func() *page.Page {
		return s.NewPage(fetchTimeout, nil)
	})

	return s
}

func WithKv(kv *xkv.Store) CtxOption {
	return func(conf *CtxConfig) {
		conf.KvStore = kv
	}
}

func WithDB(db *gorm.DB) CtxOption {
	return func(conf *CtxConfig) {
		conf.db = db
	}
}

func WithDao(dao *dao.Dao) CtxOption {
	return func(conf *CtxConfig) {
		conf.dao = dao
	}
}

func WithWallet(wallet marketplace.Wallet) CtxOption {
	return func(conf *CtxConfig) {
		conf.wallet = wallet
	}
}

func WithContract(contract marketplace.Contract) CtxOption {
	return func(conf *CtxConfig) {
		conf.contract = contract
	}
}

func WithGuard(guard page.SubmitGuard) CtxOption {
	return func(conf *CtxConfig) {
		conf.guard = guard
	}
}

func WithRefresher(refresher page.Refresher) CtxOption {
	return func(conf *CtxConfig) {
		conf.refresher = refresher
	}
}

func WithRecorder(recorder page.Recorder) CtxOption {
	return func(conf *CtxConfig) {
		conf.recorder = recorder
	}
}

func WithPageOptions(opts PageOptions) CtxOption {
	return func(conf *CtxConfig) {
		conf.pageOpts = opts
	}
}
