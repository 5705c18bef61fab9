package utils

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// addressPattern 以太坊地址正则: 0x开头,后接40位16进制字符
var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsAddress 判断字符串是否为合法的以太坊地址格式
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ToValidateAddress 将以太坊地址转换为校验和格式 (EIP-55)
// 非法地址原样返回
func ToValidateAddress(address string) string {
	if !IsAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}

// ShortAddress 缩略展示地址, 例如 0x5FbD...0aa3
func ShortAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// IsZeroAddress 判断地址是否为空地址
func IsZeroAddress(address string) bool {
	return address == "" || strings.TrimLeft(strings.TrimPrefix(strings.ToLower(address), "0x"), "0") == ""
}
