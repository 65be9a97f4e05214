package repository

import (
	"context"
	"encoding/base64"
	"log"

	"gorm.io/gorm"

	"linkbux_dev_v1_202601/internal/model"
)

// ==================== AccountRepository 账户仓库 ====================

// AccountRepository 平台账户仓库接口（同步引擎只读）
type AccountRepository interface {
	// ListSyncAccounts 枚举某平台下可同步的账户（token 非空），并解码 token
	ListSyncAccounts(ctx context.Context, platform string) ([]model.SyncAccount, error)

	// GetSyncAccount 按主键读取单个账户（手动同步入口使用）
	GetSyncAccount(ctx context.Context, accountID int64) (*model.SyncAccount, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账户仓库
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) ListSyncAccounts(ctx context.Context, platform string) ([]model.SyncAccount, error) {
	var rows []model.UserPlatformAccount
	err := r.db.WithContext(ctx).
		Where("platform_name = ?", platform).
		Where("api_token IS NOT NULL AND api_token <> ''").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]model.SyncAccount, 0, len(rows))
	for i := range rows {
		acc, ok := toSyncAccount(&rows[i])
		if !ok {
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (r *accountRepository) GetSyncAccount(ctx context.Context, accountID int64) (*model.SyncAccount, error) {
	var row model.UserPlatformAccount
	err := r.db.WithContext(ctx).First(&row, accountID).Error
	if err != nil {
		return nil, err
	}
	acc, ok := toSyncAccount(&row)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &acc, nil
}

// toSyncAccount 解码 token 并生成同步账户快照
// token 解码失败的账户跳过，只打日志，不中断枚举
func toSyncAccount(row *model.UserPlatformAccount) (model.SyncAccount, bool) {
	if row.APIToken == nil || *row.APIToken == "" {
		return model.SyncAccount{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(*row.APIToken)
	if err != nil {
		log.Printf("[AccountRepo] 账户 %d token 解码失败，跳过: %v", row.ID, err)
		return model.SyncAccount{}, false
	}
	return model.SyncAccount{
		UserID:      row.UserID,
		AccountID:   row.ID,
		AccountName: row.AccountName,
		Token:       string(raw),
	}, true
}
