package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"linkbux_dev_v1_202601/internal/model"
	"linkbux_dev_v1_202601/internal/service"
)

// ==================== PlatformSyncTask 平台同步任务 ====================

// PlatformSyncTask 联盟平台数据同步的定时任务集合
//
// 五个节拍相互独立，各自在运行开头重新枚举账户：
//
//	每 10 分钟  近 3 天交易        upsert
//	每小时      近 1 小时点击      insert-ignore
//	每日 02:00  近 60 天交易 + 全量广告目录
//	每日 04:00  历史交易阶段性回归（窗口见 HistoricalWindow）
//	每月 5/15/30 日 03:00  近一年结算
//
// 节拍之间的时间窗口有意重叠，靠 upsert 的可交换性自愈；
// 单账户失败只跳过该账户，枚举失败中止整轮
type PlatformSyncTask struct {
	syncService *service.SyncService
	registry    *RunRegistry
	cron        *cron.Cron
}

// NewPlatformSyncTask 创建平台同步任务
func NewPlatformSyncTask(syncService *service.SyncService, registry *RunRegistry, loc *time.Location) *PlatformSyncTask {
	if loc == nil {
		loc = time.Local
	}
	return &PlatformSyncTask{
		syncService: syncService,
		registry:    registry,
		cron:        cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
	}
}

// Start 注册并启动全部节拍
func (t *PlatformSyncTask) Start() error {
	entries := []struct {
		spec string
		name string
		fn   func(ctx context.Context)
		ttl  time.Duration
	}{
		{"0 */10 * * * *", "近期交易", t.syncRecentTransactions, 10 * time.Minute},
		{"0 0 * * * *", "小时点击", t.syncHourlyClicks, 30 * time.Minute},
		{"0 0 2 * * *", "每日主数据", t.syncDailyMajor, 2 * time.Hour},
		{"0 0 4 * * *", "历史回归", t.syncHistorical, 2 * time.Hour},
		{"0 0 3 5,15,30 * *", "财务结算", t.syncMonthlyFinancials, 2 * time.Hour},
	}

	for _, e := range entries {
		e := e
		_, err := t.cron.AddFunc(e.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), e.ttl)
			defer cancel()
			e.fn(ctx)
		})
		if err != nil {
			return fmt.Errorf("注册定时任务 [%s] 失败: %w", e.name, err)
		}
		log.Printf("[PlatformSyncTask] 已注册: %s (%s)", e.name, e.spec)
	}

	t.cron.Start()
	log.Println("[PlatformSyncTask] 定时任务已全部启动")
	return nil
}

// Stop 停止任务，等待在途节拍执行完
func (t *PlatformSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[PlatformSyncTask] 已停止")
}

// ==================== 账户循环 ====================

// forEachAccount 枚举账户并逐个执行 fn
// 账户串行处理是有意为之：平台接口有隐性限速，并发拉取容易被封。
// 已被其他节拍占用的 (账户, 类别) 直接跳过
func (t *PlatformSyncTask) forEachAccount(ctx context.Context, logPrefix, kind string, fn func(ctx context.Context, acc model.SyncAccount) error) {
	accounts, err := t.syncService.ListSyncAccounts(ctx)
	if err != nil {
		// 枚举失败中止整轮，绝不用残缺的账户列表继续跑
		log.Printf("%s 枚举账户失败，本轮中止: %v", logPrefix, err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	for _, acc := range accounts {
		select {
		case <-ctx.Done():
			log.Printf("%s 任务超时停止", logPrefix)
			return
		default:
		}

		if !t.registry.TryAcquire(acc.AccountID, kind) {
			log.Printf("%s 账户 %d 正在被其他节拍处理，跳过", logPrefix, acc.AccountID)
			continue
		}
		err := fn(ctx, acc)
		t.registry.Release(acc.AccountID, kind)
		if err != nil {
			log.Printf("%s 账户 %d 同步失败: %v", logPrefix, acc.AccountID, err)
			continue
		}
	}
}

// ==================== 各节拍实现 ====================

// syncRecentTransactions 每 10 分钟：同步近 3 天交易
func (t *PlatformSyncTask) syncRecentTransactions(ctx context.Context) {
	logPrefix := "[任务-近期交易]"
	log.Printf("%s 启动", logPrefix)

	now := time.Now()
	begin := now.AddDate(0, 0, -3)

	t.forEachAccount(ctx, logPrefix, KindTransactions, func(ctx context.Context, acc model.SyncAccount) error {
		_, err := t.syncService.SyncAccountTransactions(ctx, acc, begin, now, nil)
		return err
	})
	log.Printf("%s 结束", logPrefix)
}

// syncHourlyClicks 每小时：同步近 1 小时点击
func (t *PlatformSyncTask) syncHourlyClicks(ctx context.Context) {
	logPrefix := "[任务-小时点击]"
	log.Printf("%s 启动", logPrefix)

	now := time.Now()
	begin := now.Add(-1 * time.Hour)

	t.forEachAccount(ctx, logPrefix, KindClicks, func(ctx context.Context, acc model.SyncAccount) error {
		_, err := t.syncService.SyncAccountClicks(ctx, acc, begin, now)
		return err
	})
	log.Printf("%s 结束", logPrefix)
}

// syncDailyMajor 每日：同步近 60 天交易 + 全量广告目录
func (t *PlatformSyncTask) syncDailyMajor(ctx context.Context) {
	t.runDailyMajor(ctx, time.Now())
}

func (t *PlatformSyncTask) runDailyMajor(ctx context.Context, now time.Time) {
	logPrefix := "[任务-每日主数据]"
	log.Printf("%s 启动", logPrefix)

	begin := now.AddDate(0, 0, -60)

	t.forEachAccount(ctx, logPrefix, KindTransactions, func(ctx context.Context, acc model.SyncAccount) error {
		_, err := t.syncService.SyncAccountTransactions(ctx, acc, begin, now, nil)
		return err
	})
	t.forEachAccount(ctx, logPrefix, KindAds, func(ctx context.Context, acc model.SyncAccount) error {
		n, err := t.syncService.SyncAccountAds(ctx, acc, nil)
		if err == nil && n > 0 {
			log.Printf("%s 账户 %d 广告目录已刷新 %d 条", logPrefix, acc.AccountID, n)
		}
		return err
	})
	log.Printf("%s 结束", logPrefix)
}

// syncHistorical 每日：历史交易阶段性回归
func (t *PlatformSyncTask) syncHistorical(ctx context.Context) {
	now := time.Now()
	dow := int(now.Weekday())
	logPrefix := fmt.Sprintf("[历史回归任务-周%d]", dow)

	start, end, ok := HistoricalWindow(now)
	if !ok {
		log.Printf("%s 任务跳过：要查询的日期范围已超过 %d 天的最大限制", logPrefix, maxLookbackDays)
		return
	}
	log.Printf("%s 启动，窗口 [%s, %s]", logPrefix, start.Format("2006-01-02"), end.Format("2006-01-02"))

	t.forEachAccount(ctx, logPrefix, KindTransactions, func(ctx context.Context, acc model.SyncAccount) error {
		birth, err := t.syncService.EarliestOrderTime(ctx, acc.AccountID)
		if err != nil {
			return fmt.Errorf("查询出生边界失败: %w", err)
		}

		effectiveStart, ok := PlanAccountWindow(start, end, birth)
		if !ok {
			if birth == nil {
				log.Printf("%s 账户 %d 无任何交易记录，跳过", logPrefix, acc.AccountID)
			} else {
				log.Printf("%s 账户 %d 跳过：查询窗口早于该账户的第一条记录(%s)", logPrefix, acc.AccountID, birth.Format("2006-01-02"))
			}
			return nil
		}

		n, err := t.syncService.SyncAccountTransactions(ctx, acc, effectiveStart, end, nil)
		if err == nil && n > 0 {
			log.Printf("%s 账户 %d 同步了 %d 条历史交易", logPrefix, acc.AccountID, n)
		}
		return err
	})
	log.Printf("%s 结束", logPrefix)
}

// syncMonthlyFinancials 每月 3 次：同步近一年结算
func (t *PlatformSyncTask) syncMonthlyFinancials(ctx context.Context) {
	logPrefix := "[任务-财务结算]"
	log.Printf("%s 启动", logPrefix)

	now := time.Now()
	begin := now.AddDate(-1, 0, 0)

	t.forEachAccount(ctx, logPrefix, KindSettlements, func(ctx context.Context, acc model.SyncAccount) error {
		_, err := t.syncService.SyncAccountSettlements(ctx, acc, begin, now)
		return err
	})
	log.Printf("%s 结束", logPrefix)
}

// ==================== 手动触发 ====================

// ManualResync 手动补数：先跑一遍每日主数据，再按天回填指定范围的点击
func (t *PlatformSyncTask) ManualResync(ctx context.Context, start, end time.Time) error {
	log.Printf("[ManualResync] 开始执行，点击回填范围 [%s, %s]", start.Format("2006-01-02"), end.Format("2006-01-02"))

	t.runDailyMajor(ctx, time.Now())

	if err := t.syncService.BackfillClicks(ctx, start, end); err != nil {
		return err
	}
	log.Println("[ManualResync] 全部完成")
	return nil
}
