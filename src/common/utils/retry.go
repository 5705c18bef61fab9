package utils

import (
	"time"

	"github.com/pkg/errors"
)

// Retry 通用重试函数
// @param name: 操作名称(用于错误提示)
// @param attempts: 最大重试次数
// @param sleep: 每次重试间隔时间
// @param fn: 需要执行的函数,返回 error 表示失败需要重试
// @return error: 所有尝试都失败时返回最后一次的错误
func Retry(name string, attempts int, sleep time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(sleep)
		}
	}
	if err == nil {
		return errors.Errorf("%s: no attempt made", name)
	}
	return errors.Wrapf(err, "%s: retry time over", name)
}
