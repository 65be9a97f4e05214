package repository

import (
	"context"

	"gorm.io/gorm"

	"linkbux_dev_v1_202601/internal/model"
)

// ==================== AdRepository 广告仓库 ====================

// AdRepository 广告目录仓库接口
type AdRepository interface {
	// ReplaceForAccount 全量镜像替换账户的广告目录：
	// 同一事务内先删后插，任一步失败整体回滚，旧快照保持完整。
	// 传入空集是 no-op：空响应大概率是接口抖动，不能据此清空目录
	ReplaceForAccount(ctx context.Context, accountID int64, ads []model.Ad) error

	// HasAny 账户是否已有广告目录
	HasAny(ctx context.Context, accountID int64) (bool, error)

	// CountByAccount 账户广告条目数
	CountByAccount(ctx context.Context, accountID int64) (int64, error)
}

type adRepository struct {
	db *gorm.DB
}

// NewAdRepository 创建广告仓库
func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) ReplaceForAccount(ctx context.Context, accountID int64, ads []model.Ad) error {
	if len(ads) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("platform_account_id = ?", accountID).Delete(&model.Ad{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(ads, insertBatchSize).Error
	})
}

func (r *adRepository) HasAny(ctx context.Context, accountID int64) (bool, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Ad{}).
		Where("platform_account_id = ?", accountID).
		Limit(1).
		Pluck("id", &ids).Error
	return len(ids) > 0, err
}

func (r *adRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Ad{}).
		Where("platform_account_id = ?", accountID).
		Count(&count).Error
	return count, err
}
