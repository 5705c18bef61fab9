package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapListing/src/api/v1"
	"github.com/ProjectsTask/EasySwapListing/src/service/svc"
)

func loadV1(r *gin.Engine, svcCtx *svc.ServerCtx) {
	r.GET("/healthz", v1.HealthHandler(svcCtx))

	// 详情页 (HTML)
	page := r.Group("/listing")
	{
		page.GET("/:listingId", v1.ListingPageHandler(svcCtx))             // 详情页
		page.POST("/:listingId/buy", v1.ListingBuyPageHandler(svcCtx))     // 表单购买
		page.POST("/:listingId/offer", v1.ListingOfferPageHandler(svcCtx)) // 表单报价
	}

	apiV1 := r.Group("/api/v1")

	listings := apiV1.Group("/listings")
	{
		listings.GET("/:listingId", v1.ListingHandler(svcCtx))                 // 挂单详情
		listings.POST("/:listingId/buy", v1.ListingBuyHandler(svcCtx))         // 购买
		listings.POST("/:listingId/offer", v1.ListingOfferHandler(svcCtx))     // 报价 / 出价
		listings.GET("/:listingId/actions", v1.ListingActionsHandler(svcCtx)) // 动作审计记录
	}
}
