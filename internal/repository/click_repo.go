package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"linkbux_dev_v1_202601/internal/model"
)

// ==================== ClickRepository 点击仓库 ====================

// ClickRepository 点击仓库接口
type ClickRepository interface {
	// InsertIgnoreBatch 批量写入点击，自然键冲突时静默丢弃（不更新）
	InsertIgnoreBatch(ctx context.Context, clicks []model.Click) error

	// CountByAccount 账户点击总数
	CountByAccount(ctx context.Context, accountID int64) (int64, error)
}

type clickRepository struct {
	db *gorm.DB
}

// NewClickRepository 创建点击仓库
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) InsertIgnoreBatch(ctx context.Context, clicks []model.Click) error {
	if len(clicks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).CreateInBatches(clicks, insertBatchSize).Error
}

func (r *clickRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Click{}).
		Where("platform_account_id = ?", accountID).
		Count(&count).Error
	return count, err
}
