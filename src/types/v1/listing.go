package types

// ListingUri 挂单路由参数
type ListingUri struct {
	ListingID string `uri:"listingId" validate:"required,max=78"`
}

// OfferReq 报价/出价请求, 金额为用户输入的原始文本
type OfferReq struct {
	BidAmount string `json:"bid_amount" form:"bidAmount"`
}

// ActionsReq 审计记录查询参数
type ActionsReq struct {
	Limit int `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

// NoticeInfo 动作结果提示
type NoticeInfo struct {
	Kind    string `json:"kind"`    // success / failure / info
	Message string `json:"message"` // 提示文本
	TxHash  string `json:"tx_hash,omitempty"`
}

// ListingView 详情页渲染数据
type ListingView struct {
	ChainID       int64       `json:"chain_id"`
	Chain         string      `json:"chain"`
	ListingID     string      `json:"listing_id"`
	State         string      `json:"state"` // loading / not_found / ready
	Kind          string      `json:"kind,omitempty"`
	Name          string      `json:"name,omitempty"`
	Slug          string      `json:"slug,omitempty"`
	Description   string      `json:"description,omitempty"`
	Image         string      `json:"image,omitempty"`
	Owner         string      `json:"owner,omitempty"`
	OwnerShort    string      `json:"owner_short,omitempty"`
	AssetContract string      `json:"asset_contract,omitempty"`
	TokenID       string      `json:"token_id,omitempty"`
	Price         string      `json:"price,omitempty"`
	BuyoutPrice   string      `json:"buyout_price,omitempty"`
	Currency      string      `json:"currency,omitempty"`
	EndTime       int64       `json:"end_time,omitempty"`
	BidAmount     string      `json:"bid_amount,omitempty"`
	Notice        *NoticeInfo `json:"notice,omitempty"`
}

// ActionResp 动作响应
type ActionResp struct {
	Notice  NoticeInfo   `json:"notice"`
	Listing *ListingView `json:"listing"`
}

// ListingActionInfo 审计记录
type ListingActionInfo struct {
	Action     string `json:"action"`
	Wallet     string `json:"wallet"`
	Amount     string `json:"amount,omitempty"`
	TxHash     string `json:"tx_hash,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	CreateTime int64  `json:"create_time"`
}

// ListingActionsResp 审计记录响应
type ListingActionsResp struct {
	Result []ListingActionInfo `json:"result"`
	Count  int64               `json:"count"`
}
