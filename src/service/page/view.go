package page

import (
	"math/big"

	"github.com/ProjectsTask/EasySwapListing/src/common/utils"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace"
)

// View 页面当前可渲染的内容
type View struct {
	State         State
	ListingID     string
	Kind          ListingKind
	Name          string
	Description   string
	Image         string
	Owner         string
	AssetContract string
	TokenID       string
	Price         string // 固定价格为单价, 拍卖为最低出价
	BuyoutPrice   string
	Currency      string
	EndTimestamp  int64
	BidAmount     string
	Notice        *Notice
}

// View 返回当前状态的快照
// 固定价格挂单优先于同 ID 的拍卖展示
func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{
		State:     p.state,
		ListingID: p.listingID,
		BidAmount: p.bidAmount,
	}
	if p.notice != nil {
		n := *p.notice
		v.Notice = &n
	}
	if p.state != StateReady {
		return v
	}

	switch {
	case p.direct != nil:
		l := p.direct
		v.Kind = KindDirect
		v.fill(l.Asset, l.CreatorAddress, l.AssetContract, l.TokenID, l.Currency, l.EndTimestamp)
		v.Price = marketplace.FormatUnits(l.PricePerToken, marketplace.AmountDecimals(l.CurrencyDecimals))
	case p.auction != nil:
		a := p.auction
		v.Kind = KindAuction
		v.fill(a.Asset, a.CreatorAddress, a.AssetContract, a.TokenID, a.Currency, a.EndTimestamp)
		decimals := marketplace.AmountDecimals(a.CurrencyDecimals)
		v.Price = marketplace.FormatUnits(a.MinimumBidAmount, decimals)
		v.BuyoutPrice = marketplace.FormatUnits(a.BuyoutBidAmount, decimals)
	}

	return v
}

func (v *View) fill(asset marketplace.Asset, owner, assetContract string, tokenID *big.Int, currency string, end int64) {
	v.Name = asset.Name
	v.Description = asset.Description
	v.Image = asset.Image
	v.Owner = utils.ToValidateAddress(owner)
	v.AssetContract = utils.ToValidateAddress(assetContract)
	if tokenID != nil {
		v.TokenID = tokenID.String()
	}
	v.Currency = currency
	v.EndTimestamp = end
}
