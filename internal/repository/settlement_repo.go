package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"linkbux_dev_v1_202601/internal/model"
)

// ==================== SettlementRepository 结算仓库 ====================

// SettlementRepository 结算仓库接口
type SettlementRepository interface {
	// UpsertBatch 批量写入结算记录，唯一键冲突时覆盖全部业务字段
	// （平台会修订历史结算：补发、更正打款日期等）
	UpsertBatch(ctx context.Context, settlements []model.Settlement) error

	// HasAny 账户是否已有结算记录
	HasAny(ctx context.Context, accountID int64) (bool, error)
}

type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository 创建结算仓库
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) UpsertBatch(ctx context.Context, settlements []model.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "platform"},
			{Name: "platform_account_id"},
			{Name: "settlement_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"platform_ad_id", "settlement_date", "sale_comm", "paid_date",
			"payment_id", "settlement_type", "merchant_name", "note", "updated_at",
		}),
	}).CreateInBatches(settlements, insertBatchSize).Error
}

func (r *settlementRepository) HasAny(ctx context.Context, accountID int64) (bool, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Settlement{}).
		Where("platform_account_id = ?", accountID).
		Limit(1).
		Pluck("id", &ids).Error
	return len(ids) > 0, err
}
