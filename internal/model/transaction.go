package model

import (
	"time"
)

// ==================== Transaction 交易表 ====================

// Transaction 联盟平台的订单级佣金记录
// 唯一键 (platform, platform_account_id, platform_transaction_id)：
// 重复拉取同一笔交易时只更新可变字段，绝不产生重复行
type Transaction struct {
	ID                    int64  `gorm:"primaryKey;autoIncrement"`
	UserID                int64  `gorm:"index;not null"`
	Platform              string `gorm:"size:64;not null;uniqueIndex:uk_platform_tx"`
	PlatformAccountID     int64  `gorm:"not null;uniqueIndex:uk_platform_tx;index:idx_tx_account_time,priority:1"`
	PlatformTransactionID string `gorm:"size:128;not null;uniqueIndex:uk_platform_tx"`
	PlatformAdID          string `gorm:"size:128;index"`

	// 推广参数
	UID string `gorm:"size:255"`

	// 下单时间（历史回归任务按它确定账户的出生边界）
	OrderTime *time.Time `gorm:"index:idx_tx_account_time,priority:2"`

	// 金额与状态（可变字段，重复同步时覆盖）
	SaleAmount     float64 `gorm:"type:decimal(12,2)"`
	SaleComm       float64 `gorm:"type:decimal(12,2)"`
	ValidationDate *string `gorm:"size:32"`
	Status         string  `gorm:"size:32"`

	OrderUnit    int
	IP           string `gorm:"size:64"`
	RefererURL   string `gorm:"size:1024"`
	MerchantName string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Transaction) TableName() string {
	return "transactions"
}
