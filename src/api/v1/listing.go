package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/common/errcode"
	"github.com/ProjectsTask/EasySwapListing/src/common/validator"
	"github.com/ProjectsTask/EasySwapListing/src/common/xhttp"
	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
	"github.com/ProjectsTask/EasySwapListing/src/service/page"
	"github.com/ProjectsTask/EasySwapListing/src/service/svc"
	"github.com/ProjectsTask/EasySwapListing/src/service/v1"
	"github.com/ProjectsTask/EasySwapListing/src/types/v1"
)

func bindListingUri(c *gin.Context) (string, bool) {
	var uri types.ListingUri
	if err := c.ShouldBindUri(&uri); err != nil {
		xhttp.Error(c, errcode.ErrInvalidParams)
		return "", false
	}
	if err := validator.Verify(&uri); err != nil {
		xhttp.Error(c, errcode.NewCustomErr(err.Error()))
		return "", false
	}
	return uri.ListingID, true
}

// ListingHandler 查询挂单详情
// 挂单不存在时返回 ErrListingNotFound, 仍在加载时返回 state=loading
func ListingHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 校验路径参数
		listingID, ok := bindListingUri(c)
		if !ok {
			return
		}

		// 2. 访问页面并等待查询结果
		res, sid := service.GetListingView(c.Request.Context(), svcCtx, sessionID(c), listingID)
		setSessionID(c, svcCtx, sid)

		// 3. 返回结果
		if res.State == page.StateNotFound.String() {
			xhttp.Error(c, errcode.ErrListingNotFound)
			return
		}
		xhttp.OkJson(c, res)
	}
}

// ListingBuyHandler 购买挂单
// 动作结果放在 data.notice 中, 失败提示同样以 200 返回
func ListingBuyHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := bindListingUri(c)
		if !ok {
			return
		}

		res, sid := service.BuyListing(c.Request.Context(), svcCtx, sessionID(c), listingID)
		setSessionID(c, svcCtx, sid)
		xhttp.OkJson(c, res)
	}
}

// ListingOfferHandler 对挂单报价 (只有拍卖时出价)
func ListingOfferHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 校验路径参数
		listingID, ok := bindListingUri(c)
		if !ok {
			return
		}

		// 2. 解析请求体, 金额不做格式校验
		var req types.OfferReq
		if err := c.ShouldBind(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		// 3. 发起报价
		res, sid := service.MakeListingOffer(c.Request.Context(), svcCtx, sessionID(c), listingID, req.BidAmount)
		setSessionID(c, svcCtx, sid)
		xhttp.OkJson(c, res)
	}
}

// ListingActionsHandler 查询挂单最近的动作审计记录
func ListingActionsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := bindListingUri(c)
		if !ok {
			return
		}

		var req types.ActionsReq
		if err := c.ShouldBindQuery(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if err := validator.Verify(&req); err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}

		res, err := service.GetListingActions(c.Request.Context(), svcCtx, listingID, req.Limit)
		if err != nil {
			xzap.WithContext(c.Request.Context()).Error("failed on get listing actions", zap.String("listing_id", listingID), zap.Error(err))
			xhttp.Error(c, errcode.ErrUnexpected)
			return
		}
		xhttp.OkJson(c, res)
	}
}

// HealthHandler 存活检查
func HealthHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":             "ok",
			"chain_id":           svcCtx.ChainID(),
			"connected_chain_id": svcCtx.ConnectedChainID(),
			"sessions":           svcCtx.Pages.Count(),
		})
	}
}
