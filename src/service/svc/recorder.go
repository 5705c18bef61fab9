package svc

import (
	"context"

	"github.com/ProjectsTask/EasySwapListing/src/dao"
	"github.com/ProjectsTask/EasySwapListing/src/service/page"
)

// ActionRecorder 将页面动作写入审计表
type ActionRecorder struct {
	dao     *dao.Dao
	chainID int64
}

func NewActionRecorder(d *dao.Dao, chainID int64) *ActionRecorder {
	return &ActionRecorder{dao: d, chainID: chainID}
}

func (r *ActionRecorder) RecordAction(ctx context.Context, rec page.ActionRecord) error {
	return r.dao.CreateListingAction(ctx, &dao.ListingAction{
		ChainID:    r.chainID,
		ListingID:  rec.ListingID,
		Action:     string(rec.Action),
		Wallet:     rec.Wallet,
		Amount:     rec.Amount,
		TxHash:     rec.TxHash,
		Status:     rec.Status,
		Error:      rec.Err,
		CreateTime: rec.CreatedAt.UnixMilli(),
	})
}
