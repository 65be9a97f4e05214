package database

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
)

// ==================== 连接状态机 ====================

// State 连接管理器状态
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	default:
		return "disconnected"
	}
}

// ==================== Manager 连接管理器 ====================

// Manager 显式的数据库连接管理器
// 周期性 ping 底层连接池并维护 Disconnected → Connecting → Ready 状态，
// 失联时按固定间隔重试 ping（连接池本身会惰性重建连接），
// 取代到处散落的全局单例 + 隐式重连
type Manager struct {
	db       *gorm.DB
	interval time.Duration

	mu    sync.RWMutex
	state State

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewManager 创建连接管理器
func NewManager(db *gorm.DB, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Manager{
		db:       db,
		interval: interval,
		state:    StateDisconnected,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start 启动健康巡检循环
func (m *Manager) Start() {
	go func() {
		defer close(m.doneCh)

		// 启动时先探一次
		m.check()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.check()
			}
		}
	}()
	log.Println("[DBManager] 健康巡检已启动")
}

// Stop 停止巡检
func (m *Manager) Stop() {
	close(m.stopCh)
	<-m.doneCh
	m.setState(StateDisconnected)
	log.Println("[DBManager] 已停止")
}

// State 当前状态
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// HealthCheck 主动探活（就绪探针使用）
func (m *Manager) HealthCheck(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != s {
		log.Printf("[DBManager] 状态变更: %s -> %s", m.state, s)
	}
	m.state = s
}

func (m *Manager) check() {
	// 已就绪时探活失败才降级，避免 Ready 和 Connecting 之间反复横跳
	if m.State() != StateReady {
		m.setState(StateConnecting)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.HealthCheck(ctx); err != nil {
		log.Printf("[DBManager] 数据库探活失败: %v", err)
		m.setState(StateDisconnected)
		return
	}
	m.setState(StateReady)
}
