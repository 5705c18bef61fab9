// Package page 实现列表详情页的控制器
// 一个 Page 对应一次访问: 导航时拉取挂单, 之后响应 Buy / Make Offer 两个动作,
// 每个动作的结果通过 Notifier 以阻塞提示的形式输出一次
package page

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/mr"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace"
)

const (
	MsgLoading = "Listing is still loading"

	DefaultFetchTimeout = 30 * time.Second
)

// 审计记录状态
const (
	RecordSuccess  = "success"
	RecordFailed   = "failed"
	RecordSwitched = "switched"
)

// SubmitGuard 跨实例的重复提交保护
type SubmitGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string)
}

// ActionRecord 一次链上动作的审计记录
type ActionRecord struct {
	ListingID string
	Action    Action
	Wallet    string
	Amount    string
	TxHash    string
	Status    string
	Err       string
	CreatedAt time.Time
}

// Recorder 保存审计记录
type Recorder interface {
	RecordAction(ctx context.Context, rec ActionRecord) error
}

// Refresher 动作成功后通知数据层刷新挂单
type Refresher interface {
	RefreshListing(ctx context.Context, listingID string) error
}

// Options 页面依赖, Contract Wallet 必填
type Options struct {
	Contract     marketplace.Contract
	Wallet       marketplace.Wallet
	Notifier     Notifier
	Guard        SubmitGuard
	Recorder     Recorder
	Refresher    Refresher
	FetchTimeout time.Duration
}

// Page 列表详情页
type Page struct {
	opts Options

	mu         sync.Mutex
	gen        uint64
	listingID  string
	state      State
	direct     *marketplace.DirectListing
	auction    *marketplace.EnglishAuction
	bidAmount  string
	notice     *Notice
	submitting bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// New 创建页面, 需要调用 Navigate 开始一次访问
func New(opts Options) *Page {
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	return &Page{opts: opts, state: StateLoading}
}

// Navigate 以新的挂单 ID 开始一次访问
// 之前未完成的拉取会被取消, 其结果即使返回也会被丢弃
func (p *Page) Navigate(ctx context.Context, listingID string) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
	gen := p.gen
	p.listingID = listingID
	p.direct, p.auction = nil, nil
	p.bidAmount = ""
	p.notice = nil
	done := make(chan struct{})
	p.done = done

	if listingID == "" {
		p.state = StateNotFound
		close(done)
		p.mu.Unlock()
		return
	}

	p.state = StateLoading
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.opts.FetchTimeout)
	p.cancel = cancel
	p.mu.Unlock()

	threading.GoSafe(func() {
		p.fetch(fetchCtx, gen, listingID, done)
	})
}

func (p *Page) fetch(ctx context.Context, gen uint64, listingID string, done chan struct{}) {
	defer close(done)

	var (
		direct     *marketplace.DirectListing
		auction    *marketplace.EnglishAuction
		directErr  error
		auctionErr error
	)
	// 固定价格挂单与拍卖并发查询, 各自的错误单独处理
	_ = mr.Finish(func() error {
		direct, directErr = p.opts.Contract.DirectListing(ctx, listingID)
		return nil
	}, func() error {
		auction, auctionErr = p.opts.Contract.EnglishAuction(ctx, listingID)
		return nil
	})

	logger := xzap.WithContext(ctx)
	if directErr != nil {
		logger.Warn("failed on get direct listing", zap.String("listing_id", listingID), zap.Error(directErr))
	}
	if auctionErr != nil {
		logger.Warn("failed on get english auction", zap.String("listing_id", listingID), zap.Error(auctionErr))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		logger.Debug("discard stale listing fetch", zap.String("listing_id", listingID))
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	p.direct, p.auction = direct, auction
	if direct == nil && auction == nil {
		p.state = StateNotFound
		return
	}
	p.state = StateReady
}

// Wait 阻塞直到当前拉取结束或 ctx 结束
func (p *Page) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 结束访问, 取消进行中的拉取
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// ListingID 当前访问的挂单 ID
func (p *Page) ListingID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listingID
}

// State 当前渲染状态
func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetBidAmount 保存用户输入的出价文本, 不做任何校验
func (p *Page) SetBidAmount(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bidAmount = text
}

// submission 动作开始时的页面快照
type submission struct {
	listingID string
	direct    *marketplace.DirectListing
	auction   *marketplace.EnglishAuction
	bidAmount string
}

// begin 检查页面状态并占用提交位
func (p *Page) begin() (submission, *Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := submission{
		listingID: p.listingID,
		direct:    p.direct,
		auction:   p.auction,
		bidAmount: p.bidAmount,
	}
	switch {
	case p.state == StateLoading:
		return s, &Notice{Kind: NoticeInfo, Message: MsgLoading}
	case p.state != StateReady:
		return s, &Notice{Kind: NoticeFailure, Message: MsgListingNotFound}
	case p.submitting:
		return s, &Notice{Kind: NoticeInfo, Message: MsgInProgress}
	}
	p.submitting = true

	return s, nil
}

func (p *Page) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitting = false
}

func (p *Page) notify(ctx context.Context, listingID string, n Notice) Notice {
	p.mu.Lock()
	if p.listingID == listingID {
		notice := n
		p.notice = &notice
	}
	p.mu.Unlock()

	p.opts.Notifier.Alert(ctx, listingID, n)
	return n
}

// Buy 以挂单价格购买一份
func (p *Page) Buy(ctx context.Context) Notice {
	s, n := p.begin()
	if n != nil {
		return p.notify(ctx, s.listingID, *n)
	}
	defer p.end()

	return p.notify(ctx, s.listingID, p.buy(ctx, s))
}

func (p *Page) buy(ctx context.Context, s submission) Notice {
	if n, handled := p.ensureNetwork(ctx, s); handled {
		return n
	}

	release, n, ok := p.acquire(ctx, s)
	if !ok {
		return n
	}
	defer release()

	return p.submit(ctx, s, ActionBuy, "", MsgBought, func() (*marketplace.TxResult, error) {
		return p.opts.Contract.BuyFromListing(ctx, s.listingID, 1)
	})
}

// MakeOffer 有固定价格挂单时发起报价, 否则对拍卖出价
// 分支基于动作开始时的挂单快照
func (p *Page) MakeOffer(ctx context.Context) Notice {
	s, n := p.begin()
	if n != nil {
		return p.notify(ctx, s.listingID, *n)
	}
	defer p.end()

	return p.notify(ctx, s.listingID, p.makeOffer(ctx, s))
}

func (p *Page) makeOffer(ctx context.Context, s submission) Notice {
	if n, handled := p.ensureNetwork(ctx, s); handled {
		return n
	}

	release, n, ok := p.acquire(ctx, s)
	if !ok {
		return n
	}
	defer release()

	switch {
	case s.direct != nil:
		// 报价针对 NFT 本身, tokenId 取挂单中的 NFT 编号而不是挂单 ID
		params := marketplace.OfferParams{
			AssetContract: s.direct.AssetContract,
			TokenID:       s.direct.TokenID,
			Quantity:      1,
			TotalPrice:    s.bidAmount,
			Currency:      marketplace.NativeCurrency,
		}
		return p.submit(ctx, s, ActionOffer, s.bidAmount, MsgOfferCreated, func() (*marketplace.TxResult, error) {
			return p.opts.Contract.MakeOffer(ctx, params)
		})
	case s.auction != nil:
		return p.submit(ctx, s, ActionBid, s.bidAmount, MsgBidCreated, func() (*marketplace.TxResult, error) {
			return p.opts.Contract.MakeBid(ctx, s.listingID, s.bidAmount)
		})
	default:
		return Notice{Kind: NoticeFailure, Message: MsgListingNotFound}
	}
}

// ensureNetwork 钱包不在目标链时发起切换并中止本次动作, 不会自动重试
func (p *Page) ensureNetwork(ctx context.Context, s submission) (Notice, bool) {
	logger := xzap.WithContext(ctx).With(zap.String("listing_id", s.listingID))

	mismatch, err := p.opts.Wallet.NetworkMismatch(ctx)
	if err != nil {
		logger.Error("failed on check wallet network", zap.Error(err))
		return Notice{Kind: NoticeFailure, Message: err.Error()}, true
	}
	if !mismatch {
		return Notice{}, false
	}

	target := p.opts.Wallet.TargetChainID()
	rec := ActionRecord{
		ListingID: s.listingID,
		Action:    ActionSwitch,
		Wallet:    p.opts.Wallet.Address(),
		CreatedAt: time.Now(),
	}
	if err := p.opts.Wallet.SwitchNetwork(ctx, target); err != nil {
		logger.Error("failed on switch wallet network", zap.Int64("chain_id", target), zap.Error(err))
		rec.Status, rec.Err = RecordFailed, err.Error()
		p.record(ctx, rec)
		return Notice{Kind: NoticeFailure, Message: err.Error()}, true
	}

	rec.Status = RecordSwitched
	p.record(ctx, rec)
	return Notice{Kind: NoticeInfo, Message: fmt.Sprintf(MsgNetworkSwitchFmt, target)}, true
}

// acquire 获取跨实例提交锁, 按 链 + 挂单 + 钱包 加锁, 锁服务异常时放行
func (p *Page) acquire(ctx context.Context, s submission) (func(), Notice, bool) {
	if p.opts.Guard == nil {
		return func() {}, Notice{}, true
	}

	key := fmt.Sprintf("%d:%s:%s", p.opts.Wallet.TargetChainID(), s.listingID, p.opts.Wallet.Address())
	ok, err := p.opts.Guard.Acquire(ctx, key)
	if err != nil {
		xzap.WithContext(ctx).Warn("failed on acquire submit guard", zap.String("key", key), zap.Error(err))
		return func() {}, Notice{}, true
	}
	if !ok {
		return nil, Notice{Kind: NoticeInfo, Message: MsgInProgress}, false
	}

	// 请求中断后仍需释放, 否则锁会保留到过期
	releaseCtx := context.WithoutCancel(ctx)
	return func() { p.opts.Guard.Release(releaseCtx, key) }, Notice{}, true
}

// submit 执行一次链上调用, 失败时记录日志并原样返回错误信息
func (p *Page) submit(ctx context.Context, s submission, action Action, amount, okMsg string,
	call func() (*marketplace.TxResult, error)) Notice {
	rec := ActionRecord{
		ListingID: s.listingID,
		Action:    action,
		Wallet:    p.opts.Wallet.Address(),
		Amount:    amount,
		CreatedAt: time.Now(),
	}

	res, err := call()
	if err != nil {
		xzap.WithContext(ctx).Error("listing action failed",
			zap.String("listing_id", s.listingID), zap.String("action", string(action)), zap.Error(err))
		rec.Status, rec.Err = RecordFailed, err.Error()
		p.record(ctx, rec)
		return Notice{Kind: NoticeFailure, Message: err.Error()}
	}

	n := Notice{Kind: NoticeSuccess, Message: okMsg}
	if res != nil {
		n.TxHash = res.TxHash
		rec.TxHash = res.TxHash
	}
	rec.Status = RecordSuccess
	p.record(ctx, rec)

	if p.opts.Refresher != nil {
		if err := p.opts.Refresher.RefreshListing(ctx, s.listingID); err != nil {
			xzap.WithContext(ctx).Warn("failed on refresh listing", zap.String("listing_id", s.listingID), zap.Error(err))
		}
	}

	return n
}

func (p *Page) record(ctx context.Context, rec ActionRecord) {
	if p.opts.Recorder == nil {
		return
	}
	if err := p.opts.Recorder.RecordAction(ctx, rec); err != nil {
		xzap.WithContext(ctx).Warn("failed on record listing action",
			zap.String("listing_id", rec.ListingID), zap.String("action", string(rec.Action)), zap.Error(err))
	}
}
