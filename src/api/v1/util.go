package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapListing/src/service/svc"
)

const (
	SessionCookie = "esl_sid"
	SessionHeader = "X-Session-Id"
)

// sessionID 读取会话 ID, 优先使用请求头
func sessionID(c *gin.Context) string {
	if sid := c.GetHeader(SessionHeader); sid != "" {
		return sid
	}
	sid, _ := c.Cookie(SessionCookie)
	return sid
}

// setSessionID 回写会话 ID
func setSessionID(c *gin.Context, svcCtx *svc.ServerCtx, sid string) {
	c.Header(SessionHeader, sid)
	maxAge := 0
	if svcCtx.C != nil {
		maxAge = int(svcCtx.C.Page.SessionTTL().Seconds())
	}
	c.SetCookie(SessionCookie, sid, maxAge, "/", "", false, true)
}
