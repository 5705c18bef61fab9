package page

// State 页面渲染状态, 单次访问内只会 Loading -> NotFound 或 Loading -> Ready
type State int

const (
	StateLoading State = iota
	StateNotFound
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateNotFound:
		return "not_found"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ListingKind 当前展示的挂单类型
type ListingKind string

const (
	KindNone    ListingKind = ""
	KindDirect  ListingKind = "direct"
	KindAuction ListingKind = "auction"
)

// Action 用户动作, 同时用于审计记录
type Action string

const (
	ActionBuy    Action = "buy"
	ActionOffer  Action = "offer"
	ActionBid    Action = "bid"
	ActionSwitch Action = "switch_network"
)
