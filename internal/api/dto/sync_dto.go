package dto

// ==================== 手动同步接口 DTO ====================

// InitialSyncRequest 新账户深度同步请求
type InitialSyncRequest struct {
	AccountID int64  `json:"account_id" binding:"required"`
	StartDate string `json:"start_date"` // YYYY-MM-DD，缺省 2024-01-01
}

// BackfillClicksRequest 点击数据按日回填请求
type BackfillClicksRequest struct {
	StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string `json:"end_date" binding:"required"`   // YYYY-MM-DD
}

// ManualResyncRequest 手动全量补数请求
type ManualResyncRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// JobAcceptedResponse 异步任务受理响应
type JobAcceptedResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// SyncStatusResponse 账户同步状态概览
type SyncStatusResponse struct {
	AccountID    int64  `json:"account_id"`
	Transactions int64  `json:"transactions"`
	Clicks       int64  `json:"clicks"`
	Ads          int64  `json:"ads"`
	EarliestTx   string `json:"earliest_tx,omitempty"`
}
