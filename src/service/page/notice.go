package page

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
)

const (
	MsgListingNotFound  = "Listing not found"
	MsgBought           = "NFT bought successfully!"
	MsgOfferCreated     = "Offer created successfully!"
	MsgBidCreated       = "Bid created successfully!"
	MsgInProgress       = "A submission is already in progress"
	MsgNetworkSwitchFmt = "Wallet switched to chain %d, please try again"
)

// NoticeKind 提示类型
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeFailure NoticeKind = "failure"
	NoticeInfo    NoticeKind = "info"
)

// Notice 一次动作的结果提示, 每次动作恰好产生一个
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	TxHash  string     `json:"tx_hash,omitempty"`
}

// Notifier 阻塞式提示 (alert) 的输出端
type Notifier interface {
	Alert(ctx context.Context, listingID string, n Notice)
}

// NotifierFunc 函数适配 Notifier
type NotifierFunc func(ctx context.Context, listingID string, n Notice)

func (f NotifierFunc) Alert(ctx context.Context, listingID string, n Notice) {
	f(ctx, listingID, n)
}

// LogNotifier 把提示写入日志, HTTP 场景下提示由页面自行渲染
type LogNotifier struct{}

func (LogNotifier) Alert(ctx context.Context, listingID string, n Notice) {
	xzap.WithContext(ctx).Info("listing notice",
		zap.String("listing_id", listingID),
		zap.String("kind", string(n.Kind)),
		zap.String("message", n.Message),
		zap.String("tx_hash", n.TxHash))
}

// WriterNotifier 把提示写到终端
type WriterNotifier struct {
	W io.Writer
}

func (w WriterNotifier) Alert(ctx context.Context, listingID string, n Notice) {
	if n.TxHash != "" {
		_, _ = fmt.Fprintf(w.W, "[%s] %s (tx %s)\n", n.Kind, n.Message, n.TxHash)
		return
	}
	_, _ = fmt.Fprintf(w.W, "[%s] %s\n", n.Kind, n.Message)
}
