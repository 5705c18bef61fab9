// Package marketplace 定义列表详情页依赖的市场合约能力
// 具体实现见 evm 子包, 页面层只依赖这里的接口
package marketplace

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// NativeCurrency 原生代币占位地址 (与 thirdweb 合约约定一致)
	NativeCurrency = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

	// NativeDecimals 原生代币精度
	NativeDecimals = 18

	// DefaultOfferDuration 报价默认有效期 10 年
	DefaultOfferDuration = 10 * 365 * 24 * time.Hour
)

// ListingStatus 链上挂单状态
type ListingStatus uint8

const (
	StatusUnset ListingStatus = iota
	StatusCreated
	StatusCompleted
	StatusCancelled
)

// Asset NFT 元数据
type Asset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// DirectListing 固定价格挂单
type DirectListing struct {
	ListingID        string
	TokenID          *big.Int
	Quantity         *big.Int
	PricePerToken    *big.Int
	Currency         string
	CurrencyDecimals int32 // 0 表示 NativeDecimals
	AssetContract    string
	CreatorAddress   string
	StartTimestamp   int64
	EndTimestamp     int64
	Status           ListingStatus
	Asset            Asset
}

// EnglishAuction 英式拍卖
type EnglishAuction struct {
	AuctionID        string
	TokenID          *big.Int
	Quantity         *big.Int
	MinimumBidAmount *big.Int
	BuyoutBidAmount  *big.Int
	Currency         string
	CurrencyDecimals int32 // 0 表示 NativeDecimals
	AssetContract    string
	CreatorAddress   string
	StartTimestamp   int64
	EndTimestamp     int64
	Status           ListingStatus
	Asset            Asset
}

// OfferParams 报价参数
type OfferParams struct {
	AssetContract string
	TokenID       *big.Int
	Quantity      int64
	TotalPrice    string    // 用户输入的原始文本, 不做校验
	Currency      string    // 为空或 NativeCurrency 时使用原生代币
	ExpiresAt     time.Time // 零值表示 DefaultOfferDuration
}

// TxResult 交易提交结果
type TxResult struct {
	TxHash string
}

// Wallet 钱包会话: 网络检测与切换
type Wallet interface {
	// Address 当前签名地址
	Address() string
	// TargetChainID 市场合约所在链
	TargetChainID() int64
	// NetworkMismatch 当前连接的链是否与目标链不一致
	NetworkMismatch(ctx context.Context) (bool, error)
	// SwitchNetwork 切换到指定链
	SwitchNetwork(ctx context.Context, chainID int64) error
}

// Contract 市场合约访问
// 查询不到挂单时返回 (nil, nil)
type Contract interface {
	DirectListing(ctx context.Context, listingID string) (*DirectListing, error)
	EnglishAuction(ctx context.Context, auctionID string) (*EnglishAuction, error)
	BuyFromListing(ctx context.Context, listingID string, quantity int64) (*TxResult, error)
	MakeOffer(ctx context.Context, params OfferParams) (*TxResult, error)
	MakeBid(ctx context.Context, auctionID string, bidAmount string) (*TxResult, error)
}

// AmountDecimals 金额精度, 未知时按原生代币处理
func AmountDecimals(decimals int32) int32 {
	if decimals <= 0 {
		return NativeDecimals
	}
	return decimals
}

// FormatUnits 将最小单位金额转换为可读的十进制字符串, 例如 wei -> ETH
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}
