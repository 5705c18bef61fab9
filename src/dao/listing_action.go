package dao

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

const (
	MaxActionQueryLimit     = 100
	cacheListingActionCount = "cache:listing:actions:count:%d:%s"
	actionCountCachePeriod  = 30 // second
)

// ListingAction 列表详情页发起的链上动作审计记录
type ListingAction struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ChainID    int64  `gorm:"column:chain_id" json:"chain_id"`
	ListingID  string `gorm:"column:listing_id" json:"listing_id"`
	Action     string `gorm:"column:action" json:"action"`
	Wallet     string `gorm:"column:wallet" json:"wallet"`
	Amount     string `gorm:"column:amount" json:"amount"`
	TxHash     string `gorm:"column:tx_hash" json:"tx_hash"`
	Status     string `gorm:"column:status" json:"status"`
	Error      string `gorm:"column:error" json:"error"`
	CreateTime int64  `gorm:"column:create_time" json:"create_time"`
}

func ListingActionTableName() string {
	return "listing_actions"
}

// CreateListingAction 写入一条审计记录
func (d *Dao) CreateListingAction(ctx context.Context, action *ListingAction) error {
	if err := d.DB.WithContext(ctx).Table(ListingActionTableName()).Create(action).Error; err != nil {
		return errors.Wrap(err, "failed on create listing action")
	}

	// 计数缓存失效, 失败不影响写入
	if d.KvStore != nil {
		_, _ = d.KvStore.DelCtx(ctx, fmt.Sprintf(cacheListingActionCount, action.ChainID, action.ListingID))
	}

	return nil
}

// QueryListingActions 按时间倒序查询某个挂单最近的审计记录
// SQL 逻辑:
// SELECT * FROM listing_actions WHERE chain_id = ? AND listing_id = ? ORDER BY id DESC LIMIT ?
func (d *Dao) QueryListingActions(ctx context.Context, chainID int64, listingID string, limit int) ([]ListingAction, error) {
	if limit <= 0 || limit > MaxActionQueryLimit {
		limit = MaxActionQueryLimit
	}

	var actions []ListingAction
	if err := d.DB.WithContext(ctx).
		Table(ListingActionTableName()).
		Where("chain_id = ? and listing_id = ?", chainID, listingID).
		Order("id desc").
		Limit(limit).
		Find(&actions).Error; err != nil {
		return nil, errors.Wrap(err, "failed on query listing actions")
	}

	return actions, nil
}

// CountListingActions 统计某个挂单的审计记录数, 结果在 redis 中缓存 30 秒
func (d *Dao) CountListingActions(ctx context.Context, chainID int64, listingID string) (int64, error) {
	cacheKey := fmt.Sprintf(cacheListingActionCount, chainID, listingID)
	if d.KvStore != nil {
		if cached, err := d.KvStore.GetCtx(ctx, cacheKey); err == nil && cached != "" {
			if total, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return total, nil
			}
		}
	}

	var total int64
	if err := d.DB.WithContext(ctx).
		Table(ListingActionTableName()).
		Where("chain_id = ? and listing_id = ?", chainID, listingID).
		Count(&total).Error; err != nil {
		return 0, errors.Wrap(err, "failed on count listing actions")
	}

	if d.KvStore != nil {
		_ = d.KvStore.SetexCtx(ctx, cacheKey, strconv.FormatInt(total, 10), actionCountCachePeriod)
	}

	return total, nil
}
