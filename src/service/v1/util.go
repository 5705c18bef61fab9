package service

import "strconv"

type chainIDMap map[int64]string

// chainIDToChain 链 ID 到链名称的映射配置
// 用于将数字 ID 转换为人类可读的字符串标识
var chainIDToChain = chainIDMap{
	1:        "eth",
	10:       "optimism",
	137:      "polygon",
	8453:     "base",
	11155111: "sepolia",
}

// ChainName 返回链名称, 未知链返回 chain id
func ChainName(chainID int64) string {
	if name, ok := chainIDToChain[chainID]; ok {
		return name
	}
	return strconv.FormatInt(chainID, 10)
}
