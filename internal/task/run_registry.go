package task

import (
	"sync"
)

// ==================== RunRegistry 在途任务登记表 ====================

// 同步类别，登记表按 (账户, 类别) 粒度互斥
const (
	KindTransactions = "transactions"
	KindClicks       = "clicks"
	KindAds          = "ads"
	KindSettlements  = "settlements"
)

type runKey struct {
	accountID int64
	kind      string
}

// RunRegistry 记录正在被处理的 (账户, 类别) 组合
// 多个节拍的时间窗口有重叠，upsert 本身可交换，重叠写入无害；
// 但同一账户同一类别不允许两个节拍同时处理——后来者直接跳过，
// 尤其是广告目录的先删后插，绝不能并发执行
type RunRegistry struct {
	mu       sync.Mutex
	inflight map[runKey]struct{}
}

// NewRunRegistry 创建登记表
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{
		inflight: make(map[runKey]struct{}),
	}
}

// TryAcquire 尝试登记，已被占用时返回 false
func (r *RunRegistry) TryAcquire(accountID int64, kind string) bool {
	key := runKey{accountID: accountID, kind: kind}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[key]; busy {
		return false
	}
	r.inflight[key] = struct{}{}
	return true
}

// Release 释放登记
func (r *RunRegistry) Release(accountID int64, kind string) {
	key := runKey{accountID: accountID, kind: kind}
	r.mu.Lock()
	delete(r.inflight, key)
	r.mu.Unlock()
}

// InflightCount 当前在途数量（状态接口使用）
func (r *RunRegistry) InflightCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}
