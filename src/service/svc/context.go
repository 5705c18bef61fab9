package svc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapListing/src/common/gdb"
	"github.com/ProjectsTask/EasySwapListing/src/common/xkv"
	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
	"github.com/ProjectsTask/EasySwapListing/src/config"
	"github.com/ProjectsTask/EasySwapListing/src/dao"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace/evm"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace/metadata"
	"github.com/ProjectsTask/EasySwapListing/src/service/guard"
	"github.com/ProjectsTask/EasySwapListing/src/service/mq"
	"github.com/ProjectsTask/EasySwapListing/src/service/page"
)

type ServerCtx struct {
	C          *config.Config
	DB         *gorm.DB
	Dao        *dao.Dao
	KvStore    *xkv.Store
	Wallet     marketplace.Wallet
	Contract   marketplace.Contract
	Guard      page.SubmitGuard
	Refresher  page.Refresher
	Recorder   page.Recorder
	Pages      *page.Store
	RenderWait time.Duration

	session *evm.Session
}

// NewPage 创建一个详情页控制器, notifier 为空时提示写入日志
func (s *ServerCtx) NewPage(fetchTimeout time.Duration, notifier page.Notifier) *page.Page {
	return page.New(page.Options{
		Contract:     s.Contract,
		Wallet:       s.Wallet,
		Notifier:     notifier,
		Guard:        s.Guard,
		Recorder:     s.Recorder,
		Refresher:    s.Refresher,
		FetchTimeout: fetchTimeout,
	})
}

// ChainID 市场合约所在链
func (s *ServerCtx) ChainID() int64 {
	if s.Wallet == nil {
		return 0
	}
	return s.Wallet.TargetChainID()
}

// ConnectedChainID 钱包当前连接的链, 与 ChainID 不一致时下一次动作会先切换网络
func (s *ServerCtx) ConnectedChainID() int64 {
	if w, ok := s.Wallet.(interface{ ConnectedChainID() int64 }); ok {
		return w.ConnectedChainID()
	}
	return s.ChainID()
}

// Close 释放链节点连接
func (s *ServerCtx) Close() {
	if s.session != nil {
		s.session.Close()
	}
}

// NewServiceContext 初始化服务上下文
// 该函数负责初始化服务所需的所有基础设施组件
func NewServiceContext(ctx context.Context, c *config.Config) (*ServerCtx, error) {
	// 1. 初始化日志系统 (Zap Logger)
	if _, err := xzap.SetUp(c.Log); err != nil {
		return nil, err
	}

	// 2. 初始化 Redis 客户端 (xkv Store), 未配置时不启用
	var store *xkv.Store
	if c.Kv.Enabled() {
		store = xkv.NewStore(c.Kv.Redis)
	}

	// 3. 初始化数据库连接 (GORM), 未配置时不记录审计
	var db *gorm.DB
	if c.DB.Enabled() {
		var err error
		db, err = gdb.NewDB(c.DB)
		if err != nil {
			return nil, err
		}
		if c.Page.AutoMigrate {
			if err := db.Table(dao.ListingActionTableName()).AutoMigrate(&dao.ListingAction{}); err != nil {
				return nil, errors.Wrap(err, "failed on migrate listing actions")
			}
		}
	}

	// 4. 初始化钱包会话 (连接链节点)
	session, err := evm.NewSession(ctx, evm.SessionConfig{
		TargetChainID:  c.ChainCfg.ID,
		InitialChainID: c.Wallet.ChainID,
		Endpoints:      c.ChainCfg.EndpointMap(),
		PrivateKey:     c.Wallet.PrivateKey,
	}, evm.DialEthClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create wallet session")
	}

	// 5. 初始化市场合约, 挂单查询带本地缓存
	contract, err := evm.NewMarketplace(session, evm.MarketplaceConfig{
		Address:       c.ContractCfg.MarketplaceAddress,
		WrappedNative: c.ContractCfg.WethAddress,
		WaitMined:     c.ContractCfg.WaitMined,
	}, metadata.NewResolver(c.Metadata))
	if err != nil {
		session.Close()
		return nil, errors.Wrap(err, "failed on create marketplace contract")
	}
	cached := marketplace.NewCachedContract(contract, c.Page.ListingCacheTTL())

	// 6. 提交锁与刷新队列
	refresher := &mq.Refresher{
		Cache:     cached,
		Project:   c.ProjectCfg.Name,
		ChainName: c.ChainCfg.Name,
		ChainID:   c.ChainCfg.ID,
	}
	var submitGuard page.SubmitGuard = guard.NewMemoryGuard(c.Page.SubmitGuardSec)
	if store != nil {
		refresher.KvStore = store
		submitGuard = guard.NewRedisGuard(store, c.ProjectCfg.Name, c.Page.SubmitGuardSec)
	}

	// 7. 初始化数据访问层 (DAO) 与审计记录
	options := []CtxOption{
		WithKv(store),
		WithWallet(session),
		WithContract(cached),
		WithGuard(submitGuard),
		WithRefresher(refresher),
		WithPageOptions(PageOptions{
			FetchTimeout: c.Page.FetchTimeout(),
			RenderWait:   c.Page.RenderWait(),
			SessionTTL:   c.Page.SessionTTL(),
		}),
	}
	if db != nil {
		d := dao.New(db, store)
		options = append(options, WithDB(db), WithDao(d), WithRecorder(NewActionRecorder(d, c.ChainCfg.ID)))
	}

	// 8. 组装 ServerCtx 对象
	serverCtx := NewServerCtx(options...)
	serverCtx.C = c
	serverCtx.session = session

	return serverCtx, nil
}
