package middleware

import (
	"fmt"
	"net/http/httputil"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-stack/stack"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/common/errcode"
	"github.com/ProjectsTask/EasySwapListing/src/common/xhttp"
	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
)

// RecoverMiddleware 捕获 handler 中的 panic, 记录堆栈并返回统一错误
func RecoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				request, _ := httputil.DumpRequest(c.Request, false)
				xzap.WithContext(c.Request.Context()).Error("[Recovery] panic recovered",
					zap.String("panic", fmt.Sprint(r)),
					zap.String("request", string(request)),
					zap.String("stack", fmt.Sprintf("%+v", stack.Trace().TrimRuntime())))
				xhttp.Error(c, errcode.ErrUnexpected)
			}
		}()
		c.Next()
	}
}

// RLog 记录每个请求的访问日志
func RLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}
		xzap.WithContext(c.Request.Context()).Info("api request", fields...)
	}
}
