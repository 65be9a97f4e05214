package model

import (
	"time"
)

// ==================== 平台常量 ====================

const (
	PlatformLinkbux = "Linkbux" // 目前唯一接入的联盟平台
)

// ==================== UserPlatformAccount 用户平台账户 ====================

// UserPlatformAccount 用户在联盟平台的授权账户
// 该表由账户管理模块负责写入，同步引擎只读，不做任何修改
type UserPlatformAccount struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	UserID       int64  `gorm:"index;not null"`
	PlatformName string `gorm:"size:64;index;not null"`
	AccountName  string `gorm:"size:255"`

	// API Token，按 base64 编码存储
	APIToken *string `gorm:"size:1024"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*UserPlatformAccount) TableName() string {
	return "user_platform_accounts"
}

// ==================== SyncAccount 同步用账户视图 ====================

// SyncAccount 同步任务使用的账户快照，token 已解码
// 每次任务启动时重新读取，不跨任务缓存
type SyncAccount struct {
	UserID      int64
	AccountID   int64
	AccountName string
	Token       string
}
