package service

import (
	"context"
	"time"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapListing/src/common/utils"
	"github.com/ProjectsTask/EasySwapListing/src/dao"
	"github.com/ProjectsTask/EasySwapListing/src/service/page"
	"github.com/ProjectsTask/EasySwapListing/src/service/svc"
	"github.com/ProjectsTask/EasySwapListing/src/types/v1"
)

// GetListingView 访问详情页
// 在 RenderWait 内等待挂单查询结果, 仍未返回时给出 loading 状态
func GetListingView(ctx context.Context, svcCtx *svc.ServerCtx, sid, listingID string) (*types.ListingView, string) {
	p, sid := svcCtx.Pages.Visit(ctx, sid, listingID)
	waitFor(ctx, p, svcCtx.RenderWait)

	return BuildListingView(svcCtx.ChainID(), p.View()), sid
}

// BuyListing 购买当前页面的挂单
func BuyListing(ctx context.Context, svcCtx *svc.ServerCtx, sid, listingID string) (*types.ActionResp, string) {
	p, sid := svcCtx.Pages.Current(ctx, sid, listingID)
	waitFor(ctx, p, svcCtx.RenderWait)

	n := p.Buy(ctx)
	return &types.ActionResp{
		Notice:  toNoticeInfo(n),
		Listing: BuildListingView(svcCtx.ChainID(), p.View()),
	}, sid
}

// MakeListingOffer 对当前页面的挂单报价, 只有拍卖时对拍卖出价
// bidAmount 原样传给合约层, 这里不做校验
func MakeListingOffer(ctx context.Context, svcCtx *svc.ServerCtx, sid, listingID, bidAmount string) (*types.ActionResp, string) {
	p, sid := svcCtx.Pages.Current(ctx, sid, listingID)
	waitFor(ctx, p, svcCtx.RenderWait)

	p.SetBidAmount(bidAmount)
	n := p.MakeOffer(ctx)
	return &types.ActionResp{
		Notice:  toNoticeInfo(n),
		Listing: BuildListingView(svcCtx.ChainID(), p.View()),
	}, sid
}

// GetListingActions 查询挂单最近的动作审计记录
// 未配置数据库时返回空列表
func GetListingActions(ctx context.Context, svcCtx *svc.ServerCtx, listingID string, limit int) (*types.ListingActionsResp, error) {
	resp := &types.ListingActionsResp{Result: []types.ListingActionInfo{}}
	if svcCtx.Dao == nil {
		return resp, nil
	}

	maxNum := dao.MaxActionQueryLimit
	if svcCtx.C != nil && svcCtx.C.Api.MaxNum > 0 {
		maxNum = int(svcCtx.C.Api.MaxNum)
	}
	if limit <= 0 {
		limit = maxNum
	}
	limit = utils.Min(limit, maxNum)

	actions, err := svcCtx.Dao.QueryListingActions(ctx, svcCtx.ChainID(), listingID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed on get listing actions")
	}
	count, err := svcCtx.Dao.CountListingActions(ctx, svcCtx.ChainID(), listingID)
	if err != nil {
		return nil, errors.Wrap(err, "failed on count listing actions")
	}

	for _, a := range actions {
		resp.Result = append(resp.Result, types.ListingActionInfo{
			Action:     a.Action,
			Wallet:     a.Wallet,
			Amount:     a.Amount,
			TxHash:     a.TxHash,
			Status:     a.Status,
			Error:      a.Error,
			CreateTime: a.CreateTime,
		})
	}
	resp.Count = count

	return resp, nil
}

// BuildListingView 将页面快照转换为接口数据
func BuildListingView(chainID int64, v page.View) *types.ListingView {
	lv := &types.ListingView{
		ChainID:       chainID,
		Chain:         ChainName(chainID),
		ListingID:     v.ListingID,
		State:         v.State.String(),
		Kind:          string(v.Kind),
		Name:          v.Name,
		Description:   v.Description,
		Image:         v.Image,
		Owner:         v.Owner,
		OwnerShort:    utils.ShortAddress(v.Owner),
		AssetContract: v.AssetContract,
		TokenID:       v.TokenID,
		Price:         v.Price,
		BuyoutPrice:   v.BuyoutPrice,
		Currency:      v.Currency,
		EndTime:       v.EndTimestamp,
		BidAmount:     v.BidAmount,
	}
	if v.Name != "" {
		lv.Slug = slug.Make(v.Name)
	}
	if v.Notice != nil {
		n := toNoticeInfo(*v.Notice)
		lv.Notice = &n
	}

	return lv
}

func toNoticeInfo(n page.Notice) types.NoticeInfo {
	return types.NoticeInfo{
		Kind:    string(n.Kind),
		Message: n.Message,
		TxHash:  n.TxHash,
	}
}

func waitFor(ctx context.Context, p *page.Page, d time.Duration) {
	if d <= 0 {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	_ = p.Wait(wctx)
}
