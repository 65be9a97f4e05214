package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"

	"linkbux_dev_v1_202601/internal/api/dto"
	"linkbux_dev_v1_202601/internal/model"
	"linkbux_dev_v1_202601/internal/repository"
)

// 新账户深度同步的默认起始日期
const defaultInitialSyncStart = "2024-01-01"

// ==================== SyncService 同步服务 ====================

// SyncService 把"拉取 + 落库"组合成按账户的同步单元
// 所有方法都只处理单个账户（或全账户循环），错误向上抛给任务层隔离
type SyncService struct {
	accountRepo    repository.AccountRepository
	txRepo         repository.TransactionRepository
	clickRepo      repository.ClickRepository
	adRepo         repository.AdRepository
	settlementRepo repository.SettlementRepository

	linkbux  *LinkbuxService
	notifier Notifier
}

// NewSyncService 创建同步服务
func NewSyncService(
	accountRepo repository.AccountRepository,
	txRepo repository.TransactionRepository,
	clickRepo repository.ClickRepository,
	adRepo repository.AdRepository,
	settlementRepo repository.SettlementRepository,
	linkbux *LinkbuxService,
	notifier Notifier,
) *SyncService {
	return &SyncService{
		accountRepo:    accountRepo,
		txRepo:         txRepo,
		clickRepo:      clickRepo,
		adRepo:         adRepo,
		settlementRepo: settlementRepo,
		linkbux:        linkbux,
		notifier:       notifier,
	}
}

// ListSyncAccounts 枚举可同步账户（任务层每轮运行开头调用，不缓存）
func (s *SyncService) ListSyncAccounts(ctx context.Context) ([]model.SyncAccount, error) {
	return s.accountRepo.ListSyncAccounts(ctx, model.PlatformLinkbux)
}

// EarliestOrderTime 账户最早交易时间（历史回归任务的出生边界）
func (s *SyncService) EarliestOrderTime(ctx context.Context, accountID int64) (*time.Time, error) {
	return s.txRepo.EarliestOrderTime(ctx, accountID)
}

// ==================== 按账户的同步单元 ====================

// SyncAccountTransactions 拉取并 upsert 时间范围内的交易
func (s *SyncService) SyncAccountTransactions(ctx context.Context, acc model.SyncAccount, begin, end time.Time, pc *ProgressContext) (int, error) {
	txs, err := s.linkbux.FetchTransactions(ctx, acc.Token, begin, end, pc)
	if err != nil {
		return 0, fmt.Errorf("拉取交易失败: %w", err)
	}
	rows := buildTransactions(acc, txs)
	if err := s.txRepo.UpsertBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("交易落库失败: %w", err)
	}
	return len(rows), nil
}

// SyncAccountClicks 拉取并去重写入时间范围内的点击
func (s *SyncService) SyncAccountClicks(ctx context.Context, acc model.SyncAccount, begin, end time.Time) (int, error) {
	clicks, err := s.linkbux.FetchClicks(ctx, acc.Token, begin, end, nil)
	if err != nil {
		return 0, fmt.Errorf("拉取点击失败: %w", err)
	}
	rows := buildClicks(acc, clicks)
	if err := s.clickRepo.InsertIgnoreBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("点击落库失败: %w", err)
	}
	return len(rows), nil
}

// SyncAccountAds 拉取账户全量广告并整体镜像替换
// 空结果直接跳过，不清空既有目录
func (s *SyncService) SyncAccountAds(ctx context.Context, acc model.SyncAccount, pc *ProgressContext) (int, error) {
	ads, err := s.linkbux.FetchAds(ctx, acc.Token, pc)
	if err != nil {
		return 0, fmt.Errorf("拉取广告失败: %w", err)
	}
	rows := buildAds(acc, ads)
	if err := s.adRepo.ReplaceForAccount(ctx, acc.AccountID, rows); err != nil {
		return 0, fmt.Errorf("广告目录替换失败: %w", err)
	}
	return len(rows), nil
}

// SyncAccountSettlements 拉取并 upsert 时间范围内的结算记录
func (s *SyncService) SyncAccountSettlements(ctx context.Context, acc model.SyncAccount, begin, end time.Time) (int, error) {
	settlements, err := s.linkbux.FetchSettlements(ctx, acc.Token, begin, end, nil)
	if err != nil {
		return 0, fmt.Errorf("拉取结算失败: %w", err)
	}
	rows := buildSettlements(acc, settlements)
	if err := s.settlementRepo.UpsertBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("结算落库失败: %w", err)
	}
	return len(rows), nil
}

// ==================== 新账户深度同步 ====================

// RunInitialSync 为新接入的账户补齐历史数据
// 检查交易/广告/结算三类数据哪些还是空的，只补缺失的部分；
// 交易按 60 天一片从全局起始日期向今天推进，进度通过通知中心推给用户
func (s *SyncService) RunInitialSync(ctx context.Context, acc model.SyncAccount, startDate string) error {
	logPrefix := fmt.Sprintf("[InitialSync] 用户 %d 账户 %d", acc.UserID, acc.AccountID)

	if startDate == "" {
		startDate = defaultInitialSyncStart
	}
	globalStart, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return fmt.Errorf("起始日期格式错误: %w", err)
	}

	s.notifier.Progress(acc.UserID, 0, fmt.Sprintf("正在准备任务: %s...", acc.AccountName))

	needTx, err := s.isEmpty(ctx, acc.AccountID, s.txRepo.HasAny)
	if err != nil {
		return s.failInitialSync(acc, err)
	}
	needAds, err := s.isEmpty(ctx, acc.AccountID, s.adRepo.HasAny)
	if err != nil {
		return s.failInitialSync(acc, err)
	}
	needSettlements, err := s.isEmpty(ctx, acc.AccountID, s.settlementRepo.HasAny)
	if err != nil {
		return s.failInitialSync(acc, err)
	}

	if !needTx && !needAds && !needSettlements {
		s.notifier.Complete(acc.UserID, "所有核心数据均已存在，无需执行历史同步。")
		return nil
	}

	// 1. 广告目录（整体镜像，一次到位）
	if needAds {
		pc := &ProgressContext{
			Notifier:       s.notifier,
			UserID:         acc.UserID,
			AccountName:    acc.AccountName,
			DataType:       "广告",
			BaseProgress:   5,
			ProgressWeight: 25,
		}
		if _, err := s.SyncAccountAds(ctx, acc, pc); err != nil {
			return s.failInitialSync(acc, err)
		}
		s.notifier.Progress(acc.UserID, 30, fmt.Sprintf("[%s] 广告数据同步完成!", acc.AccountName))
	} else {
		s.notifier.Progress(acc.UserID, 30, fmt.Sprintf("[%s] 广告数据已存在，跳过同步。", acc.AccountName))
	}

	// 2. 交易 / 结算按 60 天分片向前推进
	if needTx || needSettlements {
		now := time.Now()
		totalDays := now.Sub(globalStart).Hours() / 24
		sliceStart := globalStart
		for sliceStart.Before(now) || sliceStart.Equal(now) {
			sliceEnd := sliceStart.AddDate(0, 0, 60)

			if needTx {
				if _, err := s.SyncAccountTransactions(ctx, acc, sliceStart, sliceEnd, nil); err != nil {
					return s.failInitialSync(acc, err)
				}
			}
			if needSettlements {
				if _, err := s.SyncAccountSettlements(ctx, acc, sliceStart, sliceEnd); err != nil {
					return s.failInitialSync(acc, err)
				}
			}

			// 进度区间 30~95，按已覆盖天数折算
			if totalDays > 0 {
				covered := sliceEnd.Sub(globalStart).Hours() / 24
				progress := 30 + int(covered/totalDays*65)
				if progress > 95 {
					progress = 95
				}
				s.notifier.Progress(acc.UserID, progress,
					fmt.Sprintf("[%s] 已同步至 %s...", acc.AccountName, formatDate(sliceEnd)))
			}

			sliceStart = sliceStart.AddDate(0, 0, 61)
		}
	}

	s.notifier.Complete(acc.UserID, fmt.Sprintf("账户 [%s] 的数据补充同步完成！", acc.AccountName))
	log.Printf("%s 同步成功", logPrefix)
	return nil
}

// failInitialSync 深度同步失败时推送错误事件并返回原错误
func (s *SyncService) failInitialSync(acc model.SyncAccount, err error) error {
	s.notifier.Error(acc.UserID, fmt.Sprintf("账户 [%s] 同步失败: %v", acc.AccountName, err))
	return err
}

func (s *SyncService) isEmpty(ctx context.Context, accountID int64, hasAny func(context.Context, int64) (bool, error)) (bool, error) {
	has, err := hasAny(ctx, accountID)
	if err != nil {
		return false, err
	}
	return !has, nil
}

// ==================== 手动补数 ====================

// BackfillClicks 按天回填点击数据
// 点击接口对单次查询的时间跨度敏感，按天循环保证每次不超过 24 小时
func (s *SyncService) BackfillClicks(ctx context.Context, start, end time.Time) error {
	accounts, err := s.ListSyncAccounts(ctx)
	if err != nil {
		return fmt.Errorf("枚举账户失败: %w", err)
	}
	if len(accounts) == 0 {
		log.Println("[BackfillClicks] 没有找到需要同步的账户")
		return nil
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for _, acc := range accounts {
			n, err := s.SyncAccountClicks(ctx, acc, day, day)
			if err != nil {
				// 单账户单日失败只记日志，继续回填其余部分
				log.Printf("[BackfillClicks] 账户 %d 在 %s 回填失败: %v", acc.AccountID, formatDate(day), err)
				continue
			}
			if n > 0 {
				log.Printf("[BackfillClicks] 账户 %d 在 %s 处理了 %d 条点击", acc.AccountID, formatDate(day), n)
			}
		}
	}
	return nil
}

// ==================== 数据转换 ====================

func buildTransactions(acc model.SyncAccount, txs []dto.LinkbuxTransaction) []model.Transaction {
	rows := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, model.Transaction{
			UserID:                acc.UserID,
			Platform:              model.PlatformLinkbux,
			PlatformAccountID:     acc.AccountID,
			PlatformTransactionID: tx.LinkbuxID,
			PlatformAdID:          tx.MID,
			UID:                   tx.UID,
			OrderTime:             unixPtr(int64(tx.OrderTime)),
			SaleAmount:            float64(tx.SaleAmount),
			SaleComm:              float64(tx.SaleComm),
			ValidationDate:        strPtr(tx.ValidationDate),
			OrderUnit:             int(tx.OrderUnit),
			IP:                    tx.IP,
			RefererURL:            tx.RefererURL,
			Status:                tx.Status,
			MerchantName:          tx.MerchantName,
		})
	}
	return rows
}

func buildClicks(acc model.SyncAccount, clicks []dto.LinkbuxClick) []model.Click {
	rows := make([]model.Click, 0, len(clicks))
	for _, c := range clicks {
		rows = append(rows, model.Click{
			UserID:            acc.UserID,
			Platform:          model.PlatformLinkbux,
			PlatformAccountID: acc.AccountID,
			PlatformAdID:      c.MID,
			MerchantName:      c.MerchantName,
			UID:               c.UID,
			IP:                c.IP,
			ClickTime:         unixPtr(int64(c.ClickTime)),
		})
	}
	return rows
}

func buildAds(acc model.SyncAccount, ads []dto.LinkbuxAd) []model.Ad {
	rows := make([]model.Ad, 0, len(ads))
	for _, ad := range ads {
		row := model.Ad{
			UserID:            acc.UserID,
			Platform:          model.PlatformLinkbux,
			PlatformAccountID: acc.AccountID,
			PlatformAdID:      ad.MID,
			MerchantName:      ad.MerchantName,
			CommRate:          ad.CommRate,
			TrackingURL:       ad.TrackingURL,
			Relationship:      ad.Relationship,
			CommDetail:        ad.CommDetail,
			SiteURL:           ad.SiteURL,
			Logo:              ad.Logo,
			OfferType:         ad.OfferType,
			AvgPaymentCycle:   ad.AvgPaymentCycle,
			AvgPayout:         ad.AvgPayout,
			PrimaryRegion:     ad.PrimaryRegion,
			SupportRegion:     ad.SupportRegion,
			RD:                ad.RD,
		}
		if len(ad.Categories) > 0 {
			row.Categories = datatypes.JSON(ad.Categories)
		}
		rows = append(rows, row)
	}
	return rows
}

func buildSettlements(acc model.SyncAccount, settlements []dto.LinkbuxSettlement) []model.Settlement {
	rows := make([]model.Settlement, 0, len(settlements))
	for _, st := range settlements {
		rows = append(rows, model.Settlement{
			UserID:            acc.UserID,
			Platform:          model.PlatformLinkbux,
			PlatformAccountID: acc.AccountID,
			SettlementID:      st.SettlementID,
			PlatformAdID:      st.MID,
			SettlementDate:    datePtr(st.SettlementDate),
			SaleComm:          float64(st.SaleComm),
			PaidDate:          datePtr(st.PaidDate),
			PaymentID:         st.PaymentID,
			SettlementType:    st.SettlementType,
			MerchantName:      st.MerchantName,
			Note:              strPtr(st.Note),
		})
	}
	return rows
}

// unixPtr Unix 秒转时间指针，0 视为缺失
func unixPtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0)
	return &t
}

// datePtr "YYYY-MM-DD" 转时间指针，解析失败视为缺失
func datePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
