package service

import (
	"sync"
)

// ==================== 事件定义 ====================

// 事件类型，与前端 dashboard 约定的事件名保持一致
const (
	EventSyncProgress = "sync_progress"
	EventSyncComplete = "sync_complete"
	EventSyncError    = "sync_error"
)

// SyncEvent 推送给用户的同步事件
type SyncEvent struct {
	Type     string `json:"type"`
	Progress int    `json:"progress,omitempty"`
	Message  string `json:"message"`
}

// Notifier 进度通知接口
// 实现必须是非阻塞的：通知只是副作用，不允许反过来拖慢同步流程
type Notifier interface {
	Progress(userID int64, progress int, message string)
	Complete(userID int64, message string)
	Error(userID int64, message string)
}

// ==================== NotifyHub 通知中心 ====================

// NotifyHub 按用户维度分发同步事件的内存通知中心
// 没有订阅者的用户，事件直接丢弃；订阅者消费慢时丢弃最新事件
type NotifyHub struct {
	mu   sync.RWMutex
	subs map[int64]map[chan SyncEvent]struct{}
}

var _ Notifier = (*NotifyHub)(nil)

// NewNotifyHub 创建通知中心
func NewNotifyHub() *NotifyHub {
	return &NotifyHub{
		subs: make(map[int64]map[chan SyncEvent]struct{}),
	}
}

// Subscribe 订阅某用户的事件流，返回事件通道和取消函数
func (h *NotifyHub) Subscribe(userID int64) (<-chan SyncEvent, func()) {
	ch := make(chan SyncEvent, 16)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan SyncEvent]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// publish 非阻塞投递，通道满了就丢
func (h *NotifyHub) publish(userID int64, ev SyncEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *NotifyHub) Progress(userID int64, progress int, message string) {
	h.publish(userID, SyncEvent{Type: EventSyncProgress, Progress: progress, Message: message})
}

func (h *NotifyHub) Complete(userID int64, message string) {
	h.publish(userID, SyncEvent{Type: EventSyncComplete, Message: message})
}

func (h *NotifyHub) Error(userID int64, message string) {
	h.publish(userID, SyncEvent{Type: EventSyncError, Message: message})
}
