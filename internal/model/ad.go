package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== Ad 广告（商家/Offer）表 ====================

// Ad 联盟平台的商家广告目录条目
// 目录按账户整体镜像：每次同步先删后插并包在一个事务里，
// 保证任一时刻要么是旧快照，要么是新快照，不会出现半份目录
type Ad struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	UserID            int64  `gorm:"index;not null"`
	Platform          string `gorm:"size:64;not null;uniqueIndex:uk_platform_ad"`
	PlatformAccountID int64  `gorm:"not null;uniqueIndex:uk_platform_ad;index"`
	PlatformAdID      string `gorm:"size:128;not null;uniqueIndex:uk_platform_ad"`

	MerchantName string `gorm:"size:255"`
	CommRate     string `gorm:"size:64"`
	TrackingURL  string `gorm:"size:1024"`
	Relationship string `gorm:"size:64"`
	CommDetail   string `gorm:"type:text"`
	SiteURL      string `gorm:"size:1024"`
	Logo         string `gorm:"size:1024"`

	// 平台返回的分类数组，原样保存
	Categories datatypes.JSON `gorm:"type:jsonb"`

	OfferType       string `gorm:"size:64"`
	AvgPaymentCycle string `gorm:"size:64"`
	AvgPayout       string `gorm:"size:64"`
	PrimaryRegion   string `gorm:"size:64"`
	SupportRegion   string `gorm:"size:255"`
	RD              string `gorm:"size:64;column:rd"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Ad) TableName() string {
	return "ads"
}
