package task

import (
	"sync"
	"testing"
)

func TestRunRegistry_AcquireRelease(t *testing.T) {
	reg := NewRunRegistry()

	if !reg.TryAcquire(100, KindTransactions) {
		t.Fatal("空登记表首次登记应成功")
	}
	if reg.TryAcquire(100, KindTransactions) {
		t.Error("同一 (账户, 类别) 重复登记应失败")
	}

	// 不同类别、不同账户互不影响
	if !reg.TryAcquire(100, KindAds) {
		t.Error("同账户不同类别应可登记")
	}
	if !reg.TryAcquire(200, KindTransactions) {
		t.Error("不同账户同类别应可登记")
	}

	if got := reg.InflightCount(); got != 3 {
		t.Errorf("在途数量应为 3，实际 %d", got)
	}

	reg.Release(100, KindTransactions)
	if !reg.TryAcquire(100, KindTransactions) {
		t.Error("释放后应可重新登记")
	}
}

func TestRunRegistry_ConcurrentSingleWinner(t *testing.T) {
	reg := NewRunRegistry()

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reg.TryAcquire(100, KindAds) {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if won != 1 {
		t.Errorf("并发抢占应恰好一个赢家，实际 %d", won)
	}
	if got := reg.InflightCount(); got != 1 {
		t.Errorf("在途数量应为 1，实际 %d", got)
	}
}

func TestRunRegistry_ReleaseUnknownIsNoop(t *testing.T) {
	reg := NewRunRegistry()

	// 释放没登记过的组合不应 panic
	reg.Release(999, KindClicks)
	if got := reg.InflightCount(); got != 0 {
		t.Errorf("在途数量应为 0，实际 %d", got)
	}
}
