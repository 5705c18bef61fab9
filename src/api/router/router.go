package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapListing/src/api/middleware"
	"github.com/ProjectsTask/EasySwapListing/src/api/v1"
	"github.com/ProjectsTask/EasySwapListing/src/service/svc"
)

func NewRouter(svcCtx *svc.ServerCtx) *gin.Engine {
	// 强制控制台颜色输出，使日志更易读
	gin.ForceConsoleColor()
	// 设置 Gin 为发布模式 (ReleaseMode)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()                        // 新建一个gin引擎实例
	r.Use(middleware.RecoverMiddleware()) // 使用自定义的恢复中间件，处理 Panic
	r.Use(middleware.RLog())              // 使用请求日志中间件，记录API访问日志

	r.Use(cors.New(cors.Config{ // 使用cors中间件，配置跨域访问策略
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", v1.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", v1.SessionHeader},
		AllowCredentials: true,
		MaxAge:           1 * time.Hour,
	}))
	r.SetHTMLTemplate(v1.Templates()) // 详情页模板

	loadV1(r, svcCtx) // 加载 v1 版本的路由分组

	return r
}
