package service

import (
	"testing"
	"time"
)

func TestNotifyHub_SubscribePublish(t *testing.T) {
	hub := NewNotifyHub()

	ch, cancel := hub.Subscribe(1)
	defer cancel()

	hub.Progress(1, 42, "同步中")
	hub.Complete(1, "完成")
	hub.Progress(2, 10, "别的用户的事件") // 不应出现在用户 1 的通道里

	ev := <-ch
	if ev.Type != EventSyncProgress || ev.Progress != 42 || ev.Message != "同步中" {
		t.Errorf("首个事件不符: %+v", ev)
	}

	ev = <-ch
	if ev.Type != EventSyncComplete || ev.Message != "完成" {
		t.Errorf("第二个事件不符: %+v", ev)
	}

	select {
	case ev := <-ch:
		t.Errorf("不应收到其他用户的事件: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestNotifyHub_MultipleSubscribers(t *testing.T) {
	hub := NewNotifyHub()

	ch1, cancel1 := hub.Subscribe(1)
	ch2, cancel2 := hub.Subscribe(1)
	defer cancel1()
	defer cancel2()

	hub.Error(1, "出错了")

	for i, ch := range []<-chan SyncEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventSyncError {
				t.Errorf("订阅者 %d 事件类型不符: %+v", i, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("订阅者 %d 没有收到事件", i)
		}
	}
}

func TestNotifyHub_DropWhenFull(t *testing.T) {
	hub := NewNotifyHub()

	ch, cancel := hub.Subscribe(1)
	defer cancel()

	// 超出缓冲上限，publish 不允许阻塞
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Progress(1, i, "刷屏")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish 阻塞了，慢消费者不应拖住通知中心")
	}

	// 通道里应只有缓冲上限内的事件
	if got := len(ch); got > 16 {
		t.Errorf("缓冲内事件数不应超过 16，实际 %d", got)
	}
}

func TestNotifyHub_PublishWithoutSubscriber(t *testing.T) {
	hub := NewNotifyHub()

	// 没有订阅者时直接丢弃，不 panic 不阻塞
	hub.Progress(99, 1, "无人订阅")
	hub.Complete(99, "无人订阅")
	hub.Error(99, "无人订阅")
}

func TestNotifyHub_CancelStopsDelivery(t *testing.T) {
	hub := NewNotifyHub()

	ch, cancel := hub.Subscribe(1)
	cancel()

	// 取消后再 publish 不应写已关闭的通道（写了会 panic）
	hub.Progress(1, 1, "取消后")

	if _, ok := <-ch; ok {
		t.Error("取消后通道应已关闭且无残留事件")
	}
}
