package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"linkbux_dev_v1_202601/internal/model"
)

// 批量写入的分批大小
const insertBatchSize = 500

// ==================== TransactionRepository 交易仓库 ====================

// TransactionRepository 交易仓库接口
type TransactionRepository interface {
	// UpsertBatch 批量写入交易，唯一键冲突时覆盖可变字段
	// 传入空集是 no-op（不做删除）
	UpsertBatch(ctx context.Context, txs []model.Transaction) error

	// EarliestOrderTime 查询账户最早一笔交易的下单时间（出生边界）
	// 账户无任何交易时返回 (nil, nil)
	EarliestOrderTime(ctx context.Context, accountID int64) (*time.Time, error)

	// HasAny 账户是否已有交易记录
	HasAny(ctx context.Context, accountID int64) (bool, error)

	// CountByAccount 账户交易总数（状态查询接口使用）
	CountByAccount(ctx context.Context, accountID int64) (int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易仓库
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) UpsertBatch(ctx context.Context, txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "platform"},
			{Name: "platform_account_id"},
			{Name: "platform_transaction_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"sale_amount", "sale_comm", "validation_date", "status", "updated_at",
		}),
	}).CreateInBatches(txs, insertBatchSize).Error
}

func (r *transactionRepository) EarliestOrderTime(ctx context.Context, accountID int64) (*time.Time, error) {
	var tx model.Transaction
	err := r.db.WithContext(ctx).
		Where("platform_account_id = ?", accountID).
		Where("order_time IS NOT NULL").
		Order("order_time ASC").
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx.OrderTime, nil
}

func (r *transactionRepository) HasAny(ctx context.Context, accountID int64) (bool, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("platform_account_id = ?", accountID).
		Limit(1).
		Pluck("id", &ids).Error
	return len(ids) > 0, err
}

func (r *transactionRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("platform_account_id = ?", accountID).
		Count(&count).Error
	return count, err
}
