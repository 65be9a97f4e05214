package model

import (
	"time"
)

// ==================== Settlement 结算表 ====================

// Settlement 联盟平台的打款流水
// 唯一键 (platform, platform_account_id, settlement_id)，
// 平台会修订历史结算（补发、更正），因此采用全字段覆盖式 upsert
type Settlement struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	UserID            int64  `gorm:"index;not null"`
	Platform          string `gorm:"size:64;not null;uniqueIndex:uk_platform_settlement"`
	PlatformAccountID int64  `gorm:"not null;uniqueIndex:uk_platform_settlement;index"`
	SettlementID      string `gorm:"size:128;not null;uniqueIndex:uk_platform_settlement"`
	PlatformAdID      string `gorm:"size:128"`

	SettlementDate *time.Time
	SaleComm       float64 `gorm:"type:decimal(12,2)"`
	PaidDate       *time.Time
	PaymentID      string `gorm:"size:128"`
	SettlementType string `gorm:"size:64"`
	MerchantName   string `gorm:"size:255"`
	Note           *string `gorm:"size:1024"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Settlement) TableName() string {
	return "settlements"
}
