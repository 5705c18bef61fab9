package evm

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParseUnits 将用户输入的十进制金额转换为最小单位, 例如 "0.05" ETH -> wei
// 空串 负数 非数字 以及超出精度的小数位都返回错误
func ParseUnits(text string, decimals int32) (*big.Int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("invalid amount: empty")
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, errors.Errorf("invalid amount: %q", text)
	}
	if d.IsNegative() {
		return nil, errors.Errorf("invalid amount: %q is negative", text)
	}

	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, errors.Errorf("invalid amount: %q has more than %d decimals", text, decimals)
	}

	return shifted.BigInt(), nil
}

// parseID 解析 uint256 形式的挂单 / 拍卖 ID
func parseID(id string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(id), 10)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}
