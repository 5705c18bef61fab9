package errcode

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Err 带业务错误码的错误
type Err struct {
	Code       int    `json:"code"`
	Msg        string `json:"msg"`
	HTTPStatus int    `json:"-"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

const (
	CodeCustom = 10000 + iota
	CodeInvalidParams
	CodeListingNotFound
	CodeInternal
	CodeUnexpected
)

var (
	ErrInvalidParams   = &Err{Code: CodeInvalidParams, Msg: "Invalid params.", HTTPStatus: http.StatusBadRequest}
	ErrListingNotFound = &Err{Code: CodeListingNotFound, Msg: "Listing not found.", HTTPStatus: http.StatusNotFound}
	ErrInternal        = &Err{Code: CodeInternal, Msg: "Internal error.", HTTPStatus: http.StatusInternalServerError}
	ErrUnexpected      = &Err{Code: CodeUnexpected, Msg: "Unexpected error.", HTTPStatus: http.StatusInternalServerError}
)

// NewCustomErr 创建自定义提示信息的错误, 默认使用 CodeCustom
func NewCustomErr(msg string, code ...int) *Err {
	e := &Err{Code: CodeCustom, Msg: msg, HTTPStatus: http.StatusBadRequest}
	if len(code) > 0 {
		e.Code = code[0]
	}
	return e
}

// ParseErr 将任意 error 转为 *Err, 非业务错误统一视为 ErrUnexpected
func ParseErr(err error) *Err {
	if err == nil {
		return nil
	}

	var e *Err
	if errors.As(err, &e) {
		return e
	}

	return ErrUnexpected
}
