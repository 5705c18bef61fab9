package xhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapListing/src/common/errcode"
)

// Response 统一的 JSON 返回结构
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

const codeOK = 200

// OkJson 返回成功结果
func OkJson(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: codeOK,
		Msg:  "Successful",
		Data: data,
	})
}

// Error 返回错误结果, HTTP 状态码取自 errcode.Err
func Error(c *gin.Context, err error) {
	e := errcode.ParseErr(err)
	if e == nil {
		e = errcode.ErrUnexpected
	}

	status := e.HTTPStatus
	if status == 0 {
		status = http.StatusBadRequest
	}

	c.AbortWithStatusJSON(status, Response{
		Code: e.Code,
		Msg:  e.Msg,
	})
}
