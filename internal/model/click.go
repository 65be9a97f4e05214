package model

import (
	"time"
)

// ==================== Click 点击表 ====================

// Click 联盟平台的点击明细
// 点击量大且写入后不再变化，去重采用 INSERT IGNORE 语义：
// 自然键 (account, ad, click_time) 冲突时直接丢弃，不做更新
type Click struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	UserID            int64  `gorm:"index;not null"`
	Platform          string `gorm:"size:64;not null"`
	PlatformAccountID int64  `gorm:"not null;uniqueIndex:uk_click_dedup"`
	PlatformAdID      string `gorm:"size:128;uniqueIndex:uk_click_dedup"`

	MerchantName string `gorm:"size:255"`
	UID          string `gorm:"size:255"`
	IP           string `gorm:"size:64"`

	ClickTime *time.Time `gorm:"uniqueIndex:uk_click_dedup;index"`

	CreatedAt time.Time
}

func (*Click) TableName() string {
	return "clicks"
}
