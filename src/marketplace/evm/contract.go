package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/common/utils"
	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace"
)

var nativeCurrency = common.HexToAddress(marketplace.NativeCurrency)

// MetadataFetcher 读取 tokenURI 指向的元数据
type MetadataFetcher interface {
	Fetch(ctx context.Context, uri string) (*marketplace.Asset, error)
}

// MarketplaceConfig 市场合约配置
type MarketplaceConfig struct {
	Address       string // MarketplaceV3 合约地址
	WrappedNative string // 原生代币对应的包装代币 (WETH), 报价使用
	WaitMined     bool   // 是否等待交易上链
}

// Marketplace 基于 go-ethereum 的 MarketplaceV3 合约访问
type Marketplace struct {
	session       *Session
	address       common.Address
	wrappedNative common.Address
	waitMined     bool
	metadata      MetadataFetcher
}

var _ marketplace.Contract = (*Marketplace)(nil)

// NewMarketplace 按地址获取市场合约句柄
func NewMarketplace(session *Session, c MarketplaceConfig, metadata MetadataFetcher) (*Marketplace, error) {
	if !utils.IsAddress(c.Address) {
		return nil, errors.Errorf("invalid marketplace contract address %q", c.Address)
	}

	m := &Marketplace{
		session:   session,
		address:   common.HexToAddress(c.Address),
		waitMined: c.WaitMined,
		metadata:  metadata,
	}
	if c.WrappedNative != "" {
		if !utils.IsAddress(c.WrappedNative) {
			return nil, errors.Errorf("invalid wrapped native address %q", c.WrappedNative)
		}
		m.wrappedNative = common.HexToAddress(c.WrappedNative)
	}

	return m, nil
}

func (m *Marketplace) bound(backend Backend, address common.Address, parsed abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(address, parsed, backend, backend, backend)
}

// DirectListing 查询固定价格挂单
func (m *Marketplace) DirectListing(ctx context.Context, listingID string) (*marketplace.DirectListing, error) {
	id, ok := parseID(listingID)
	if !ok {
		return nil, nil
	}

	backend := m.session.Backend()
	t, err := m.getListing(ctx, backend, id)
	if err != nil || t == nil {
		return nil, err
	}

	listing := toDirectListing(t)
	listing.CurrencyDecimals = m.currencyDecimals(ctx, backend, t.Currency)
	listing.Asset = m.asset(ctx, backend, t.AssetContract, t.TokenId, t.TokenType)

	return listing, nil
}

// EnglishAuction 查询英式拍卖
func (m *Marketplace) EnglishAuction(ctx context.Context, auctionID string) (*marketplace.EnglishAuction, error) {
	id, ok := parseID(auctionID)
	if !ok {
		return nil, nil
	}

	backend := m.session.Backend()
	t, err := m.getAuction(ctx, backend, id)
	if err != nil || t == nil {
		return nil, err
	}

	auction := toEnglishAuction(t)
	auction.CurrencyDecimals = m.currencyDecimals(ctx, backend, t.Currency)
	auction.Asset = m.asset(ctx, backend, t.AssetContract, t.TokenId, t.TokenType)

	return auction, nil
}

// BuyFromListing 以挂单价格购买 quantity 份
func (m *Marketplace) BuyFromListing(ctx context.Context, listingID string, quantity int64) (*marketplace.TxResult, error) {
	id, ok := parseID(listingID)
	if !ok {
		return nil, errors.Errorf("invalid listing id %q", listingID)
	}

	backend := m.session.Backend()
	t, err := m.getListing(ctx, backend, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.Errorf("listing %s not found", listingID)
	}

	qty := big.NewInt(quantity)
	total := new(big.Int).Mul(t.PricePerToken, qty)

	var value *big.Int
	if t.Currency == nativeCurrency {
		value = total
	}
	opts, err := m.session.TransactOpts(ctx, value)
	if err != nil {
		return nil, err
	}

	tx, err := m.bound(backend, m.address, parsedMarketplaceAbi).
		Transact(opts, "buyFromListing", id, opts.From, qty, t.Currency, total)
	if err != nil {
		return nil, errors.Wrap(err, "failed on buy from listing")
	}

	return m.result(ctx, backend, tx)
}

// MakeOffer 对 NFT 发起报价, TotalPrice 原样解析, 非法值由此处返回错误
func (m *Marketplace) MakeOffer(ctx context.Context, params marketplace.OfferParams) (*marketplace.TxResult, error) {
	if !utils.IsAddress(params.AssetContract) {
		return nil, errors.Errorf("invalid asset contract %q", params.AssetContract)
	}
	if params.TokenID == nil {
		return nil, errors.New("token id is required")
	}

	currency := nativeCurrency
	if params.Currency != "" {
		currency = common.HexToAddress(params.Currency)
	}
	// 报价只支持 ERC20, 原生代币使用其包装代币
	if currency == nativeCurrency {
		if m.wrappedNative == (common.Address{}) {
			return nil, errors.New("wrapped native currency not configured")
		}
		currency = m.wrappedNative
	}

	backend := m.session.Backend()
	decimals, err := m.decimals(ctx, backend, currency)
	if err != nil {
		return nil, err
	}
	total, err := ParseUnits(params.TotalPrice, decimals)
	if err != nil {
		return nil, err
	}

	expiresAt := params.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(marketplace.DefaultOfferDuration)
	}
	quantity := params.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	opts, err := m.session.TransactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx, err := m.bound(backend, m.address, parsedMarketplaceAbi).Transact(opts, "makeOffer", offerParamsTuple{
		AssetContract:       common.HexToAddress(params.AssetContract),
		TokenId:             params.TokenID,
		Quantity:            big.NewInt(quantity),
		Currency:            currency,
		TotalPrice:          total,
		ExpirationTimestamp: big.NewInt(expiresAt.Unix()),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on make offer")
	}

	return m.result(ctx, backend, tx)
}

// MakeBid 对英式拍卖出价
func (m *Marketplace) MakeBid(ctx context.Context, auctionID string, bidAmount string) (*marketplace.TxResult, error) {
	id, ok := parseID(auctionID)
	if !ok {
		return nil, errors.Errorf("invalid auction id %q", auctionID)
	}

	backend := m.session.Backend()
	t, err := m.getAuction(ctx, backend, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.Errorf("auction %s not found", auctionID)
	}

	decimals, err := m.decimals(ctx, backend, t.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := ParseUnits(bidAmount, decimals)
	if err != nil {
		return nil, err
	}

	var value *big.Int
	if t.Currency == nativeCurrency {
		value = amount
	}
	opts, err := m.session.TransactOpts(ctx, value)
	if err != nil {
		return nil, err
	}

	tx, err := m.bound(backend, m.address, parsedMarketplaceAbi).Transact(opts, "bidInAuction", id, amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed on bid in auction")
	}

	return m.result(ctx, backend, tx)
}

func (m *Marketplace) getListing(ctx context.Context, backend Backend, id *big.Int) (*listingTuple, error) {
	var out []interface{}
	err := m.bound(backend, m.address, parsedMarketplaceAbi).Call(&bind.CallOpts{Context: ctx}, &out, "getListing", id)
	if err != nil {
		if isRevert(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed on get listing")
	}
	return unpackListing(out)
}

func (m *Marketplace) getAuction(ctx context.Context, backend Backend, id *big.Int) (*auctionTuple, error) {
	var out []interface{}
	err := m.bound(backend, m.address, parsedMarketplaceAbi).Call(&bind.CallOpts{Context: ctx}, &out, "getAuction", id)
	if err != nil {
		if isRevert(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed on get auction")
	}
	return unpackAuction(out)
}

func (m *Marketplace) decimals(ctx context.Context, backend Backend, currency common.Address) (int32, error) {
	if currency == nativeCurrency || currency == m.wrappedNative {
		return marketplace.NativeDecimals, nil
	}

	var out []interface{}
	err := m.bound(backend, currency, parsedTokenAbi).Call(&bind.CallOpts{Context: ctx}, &out, "decimals")
	if err != nil {
		return 0, errors.Wrap(err, "failed on get currency decimals")
	}
	if len(out) == 0 {
		return 0, errors.New("empty decimals result")
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, errors.Errorf("unexpected decimals type %T", out[0])
	}
	return int32(d), nil
}

// currencyDecimals 展示用精度, 查询失败时按原生代币精度展示
func (m *Marketplace) currencyDecimals(ctx context.Context, backend Backend, currency common.Address) int32 {
	d, err := m.decimals(ctx, backend, currency)
	if err != nil {
		xzap.WithContext(ctx).Warn("failed on get currency decimals",
			zap.String("currency", currency.Hex()), zap.Error(err))
		return marketplace.NativeDecimals
	}
	return d
}

// asset 读取 NFT 元数据, 失败时只记录日志, 页面仍可展示挂单
func (m *Marketplace) asset(ctx context.Context, backend Backend, contract common.Address, tokenID *big.Int, tokenType uint8) marketplace.Asset {
	if m.metadata == nil || tokenID == nil {
		return marketplace.Asset{}
	}

	method := "tokenURI"
	if tokenType == TokenTypeERC1155 {
		method = "uri"
	}

	var out []interface{}
	err := m.bound(backend, contract, parsedTokenAbi).Call(&bind.CallOpts{Context: ctx}, &out, method, tokenID)
	if err != nil || len(out) == 0 {
		xzap.WithContext(ctx).Warn("failed on get token uri",
			zap.String("contract", contract.Hex()), zap.String("token_id", tokenID.String()), zap.Error(err))
		return marketplace.Asset{}
	}

	uri, _ := out[0].(string)
	if tokenType == TokenTypeERC1155 {
		uri = strings.ReplaceAll(uri, "{id}", fmt.Sprintf("%064x", tokenID))
	}

	asset, err := m.metadata.Fetch(ctx, uri)
	if err != nil {
		xzap.WithContext(ctx).Warn("failed on fetch token metadata",
			zap.String("uri", uri), zap.Error(err))
		return marketplace.Asset{}
	}

	return *asset
}

func (m *Marketplace) result(ctx context.Context, backend Backend, tx *types.Transaction) (*marketplace.TxResult, error) {
	res := &marketplace.TxResult{TxHash: tx.Hash().Hex()}
	if !m.waitMined {
		return res, nil
	}

	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed on wait transaction %s", res.TxHash)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, errors.Errorf("transaction %s reverted", res.TxHash)
	}

	return res, nil
}

func isRevert(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "revert")
}

func unpackListing(out []interface{}) (*listingTuple, error) {
	if len(out) == 0 {
		return nil, errors.New("empty listing result")
	}
	t := *abi.ConvertType(out[0], new(listingTuple)).(*listingTuple)
	if utils.IsZeroAddress(t.ListingCreator.Hex()) {
		return nil, nil
	}
	return &t, nil
}

func unpackAuction(out []interface{}) (*auctionTuple, error) {
	if len(out) == 0 {
		return nil, errors.New("empty auction result")
	}
	t := *abi.ConvertType(out[0], new(auctionTuple)).(*auctionTuple)
	if utils.IsZeroAddress(t.AuctionCreator.Hex()) {
		return nil, nil
	}
	return &t, nil
}

func toDirectListing(t *listingTuple) *marketplace.DirectListing {
	return &marketplace.DirectListing{
		ListingID:      t.ListingId.String(),
		TokenID:        t.TokenId,
		Quantity:       t.Quantity,
		PricePerToken:  t.PricePerToken,
		Currency:       t.Currency.Hex(),
		AssetContract:  t.AssetContract.Hex(),
		CreatorAddress: t.ListingCreator.Hex(),
		StartTimestamp: t.StartTimestamp.Int64(),
		EndTimestamp:   t.EndTimestamp.Int64(),
		Status:         marketplace.ListingStatus(t.Status),
	}
}

func toEnglishAuction(t *auctionTuple) *marketplace.EnglishAuction {
	return &marketplace.EnglishAuction{
		AuctionID:        t.AuctionId.String(),
		TokenID:          t.TokenId,
		Quantity:         t.Quantity,
		MinimumBidAmount: t.MinimumBidAmount,
		BuyoutBidAmount:  t.BuyoutBidAmount,
		Currency:         t.Currency.Hex(),
		AssetContract:    t.AssetContract.Hex(),
		CreatorAddress:   t.AuctionCreator.Hex(),
		StartTimestamp:   int64(t.StartTimestamp),
		EndTimestamp:     int64(t.EndTimestamp),
		Status:           marketplace.ListingStatus(t.Status),
	}
}
