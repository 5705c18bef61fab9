package v1

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapListing/src/service/page"
	"github.com/ProjectsTask/EasySwapListing/src/service/svc"
	"github.com/ProjectsTask/EasySwapListing/src/service/v1"
	"github.com/ProjectsTask/EasySwapListing/src/types/v1"
)

const ListingTemplate = "listing.tmpl"

//go:embed templates/listing.tmpl
var templateFS embed.FS

// Templates 详情页模板, 由 router 注册到 gin
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/listing.tmpl"))
}

// pageData 模板数据
type pageData struct {
	*types.ListingView
	Alert   string
	Loading bool
}

func renderListing(c *gin.Context, view *types.ListingView, alert string) {
	status := http.StatusOK
	if view.State == page.StateNotFound.String() {
		status = http.StatusNotFound
	}
	c.HTML(status, ListingTemplate, pageData{
		ListingView: view,
		Alert:       alert,
		Loading:     view.State == page.StateLoading.String(),
	})
}

// ListingPageHandler 渲染详情页
func ListingPageHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, sid := service.GetListingView(c.Request.Context(), svcCtx, sessionID(c), c.Param("listingId"))
		setSessionID(c, svcCtx, sid)
		renderListing(c, view, "")
	}
}

// ListingBuyPageHandler 表单购买, 结果以 alert 弹出
func ListingBuyPageHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, sid := service.BuyListing(c.Request.Context(), svcCtx, sessionID(c), c.Param("listingId"))
		setSessionID(c, svcCtx, sid)
		renderListing(c, res.Listing, res.Notice.Message)
	}
}

// ListingOfferPageHandler 表单报价, 结果以 alert 弹出
func ListingOfferPageHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, sid := service.MakeListingOffer(c.Request.Context(), svcCtx, sessionID(c), c.Param("listingId"), c.PostForm("bidAmount"))
		setSessionID(c, svcCtx, sid)
		renderListing(c, res.Listing, res.Notice.Message)
	}
}
