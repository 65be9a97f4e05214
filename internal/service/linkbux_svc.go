package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"linkbux_dev_v1_202601/internal/api/dto"
)

// ==================== 常量 ====================

const (
	defaultLinkbuxBaseURL = "https://www.linkbux.com/api.php"

	// 分页拉取的重试策略：每页最多 5 次，等待时间按次数线性递增
	defaultMaxRetries     = 5
	defaultRetryBaseDelay = 30 * time.Second

	// 单页条数上限（交易/点击接口与广告接口限额不同）
	txPageLimit = 2000
	adPageLimit = 1000
)

// ==================== ProgressContext 进度上报上下文 ====================

// ProgressContext 长任务的进度上报上下文
// 为 nil 时不产生任何副作用，定时任务通常传 nil
type ProgressContext struct {
	Notifier       Notifier
	UserID         int64
	AccountName    string
	DataType       string
	BaseProgress   int
	ProgressWeight int
}

// emitPage 每成功拉取一页后上报一次进度
func (pc *ProgressContext) emitPage(page, totalPages int) {
	if pc == nil || pc.Notifier == nil {
		return
	}
	progress := pc.BaseProgress
	if totalPages > 0 {
		progress += page * pc.ProgressWeight / totalPages
	}
	msg := fmt.Sprintf("[%s] 正在获取%s数据，第 %d / %d 页...", pc.AccountName, pc.DataType, page, totalPages)
	pc.Notifier.Progress(pc.UserID, progress, msg)
}

// emitRetryWait 每次重试等待前上报一次
func (pc *ProgressContext) emitRetryWait(wait time.Duration) {
	if pc == nil || pc.Notifier == nil {
		return
	}
	msg := fmt.Sprintf("[%s] API 请求失败，将在 %d 秒后重试...", pc.AccountName, int(wait/time.Second))
	pc.Notifier.Progress(pc.UserID, pc.BaseProgress, msg)
}

// ==================== LinkbuxService Linkbux API 客户端 ====================

// LinkbuxService Linkbux 联盟接口客户端，含分页拉取引擎
type LinkbuxService struct {
	client  *resty.Client
	baseURL string

	maxRetries     int
	retryBaseDelay time.Duration
}

// NewLinkbuxService 创建 Linkbux 客户端
func NewLinkbuxService(baseURL string) *LinkbuxService {
	if baseURL == "" {
		baseURL = defaultLinkbuxBaseURL
	}
	client := resty.New().
		SetTimeout(60 * time.Second).
		SetHeader("User-Agent", "Affiliate-Sync/1.0")

	return &LinkbuxService{
		client:         client,
		baseURL:        baseURL,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}
}

// SetRetryPolicy 调整重试参数（测试环境把等待调短）
func (s *LinkbuxService) SetRetryPolicy(maxRetries int, baseDelay time.Duration) {
	if maxRetries > 0 {
		s.maxRetries = maxRetries
	}
	if baseDelay > 0 {
		s.retryBaseDelay = baseDelay
	}
}

// ==================== 响应解析 ====================

// Linkbux 的成败不看 HTTP 状态码，看响应体里的 status.code：
// 0 = 成功；1 = 查询范围内无数据（正常结束，不是错误）；其余 = 错误。
// 部分接口用另一种信封：payliad.list + payliad.total.total_page
// （payliad 是平台方的拼写错误，必须原样对待）
type apiEnvelope struct {
	Status  json.RawMessage `json:"status"`
	Data    json.RawMessage `json:"data"`
	Payliad *payliadBody    `json:"payliad"`
}

type apiStatus struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type pagedData struct {
	List      []json.RawMessage `json:"list"`
	TotalPage int               `json:"total_page"`
}

type payliadBody struct {
	List  []json.RawMessage `json:"list"`
	Total *payliadTotal     `json:"total"`
}

type payliadTotal struct {
	TotalPage int `json:"total_page"`
}

// parsePage 解析单页响应
// 返回 totalPages == 0 表示平台明确告知无数据，调用方应正常终止翻页
func parsePage(body []byte) ([]json.RawMessage, int, error) {
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, 0, fmt.Errorf("响应不是合法 JSON: %w", err)
	}

	// 标准信封：status 为对象
	if len(env.Status) > 0 && env.Status[0] == '{' {
		var st apiStatus
		if err := json.Unmarshal(env.Status, &st); err != nil {
			return nil, 0, fmt.Errorf("status 字段解析失败: %w", err)
		}
		switch st.Code {
		case 0:
			return parseData(env.Data)
		case 1:
			// 无数据属于正常结束
			return nil, 0, nil
		default:
			msg := st.Msg
			if msg == "" {
				msg = "未在响应中找到明确的错误信息"
			}
			return nil, 0, fmt.Errorf("API 返回错误: %s (code=%d)", msg, st.Code)
		}
	}

	// 备用信封：payliad
	if env.Payliad != nil {
		totalPages := 1
		if env.Payliad.Total != nil && env.Payliad.Total.TotalPage > 0 {
			totalPages = env.Payliad.Total.TotalPage
		}
		return env.Payliad.List, totalPages, nil
	}

	return nil, 0, fmt.Errorf("API 返回了非预期的格式")
}

// parseData 解析 data 字段：对象带 list/total_page（交易、广告、点击），
// 或一个裸数组（结算接口不分页）
func parseData(data []byte) ([]json.RawMessage, int, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, 1, nil
	}
	switch data[0] {
	case '{':
		var pd pagedData
		if err := json.Unmarshal(data, &pd); err != nil {
			return nil, 0, fmt.Errorf("data 字段解析失败: %w", err)
		}
		totalPages := pd.TotalPage
		if totalPages <= 0 {
			totalPages = 1
		}
		return pd.List, totalPages, nil
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, 0, fmt.Errorf("data 数组解析失败: %w", err)
		}
		return list, 1, nil
	default:
		return nil, 0, fmt.Errorf("data 字段类型非预期")
	}
}

// ==================== 分页拉取引擎 ====================

// fetchPage 拉取单页
func (s *LinkbuxService) fetchPage(ctx context.Context, params map[string]string, page int) ([]json.RawMessage, int, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("page", strconv.Itoa(page)).
		Get(s.baseURL)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode() >= 400 {
		return nil, 0, fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	return parsePage(resp.Body())
}

// FetchAll 顺序翻页拉取整个结果集
// totalPages 以每页响应为准滚动更新（平台会在翻页过程中修正总页数）；
// 每页失败后按 attempt*retryBaseDelay 线性退避重试，重试耗尽则整体失败
func (s *LinkbuxService) FetchAll(ctx context.Context, params map[string]string, pc *ProgressContext) ([]json.RawMessage, error) {
	var all []json.RawMessage

	page := 1
	totalPages := 1
	for page <= totalPages {
		var (
			list []json.RawMessage
			tp   int
			err  error
		)

		for attempt := 1; attempt <= s.maxRetries; attempt++ {
			list, tp, err = s.fetchPage(ctx, params, page)
			if err == nil {
				break
			}
			log.Printf("[Linkbux] 请求 [%s] 第 %d 页失败（第 %d 次尝试）: %v", params["op"], page, attempt, err)
			if attempt == s.maxRetries {
				return nil, fmt.Errorf("接口 [%s] 第 %d 页拉取失败（已重试 %d 次）: %w", params["op"], page, s.maxRetries, err)
			}

			wait := time.Duration(attempt) * s.retryBaseDelay
			pc.emitRetryWait(wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		if tp == 0 {
			// 平台明确返回"无数据"，任务正常结束
			log.Printf("[Linkbux] 接口 [%s] 在第 %d 页没有返回数据，正常结束", params["op"], page)
			break
		}

		totalPages = tp
		all = append(all, list...)
		if len(list) > 0 {
			pc.emitPage(page, totalPages)
		}
		page++
	}

	return all, nil
}

// ==================== 各数据类型的拉取入口 ====================

// formatDate 接口只接受日历日期，不带时间部分
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FetchTransactions 拉取时间范围内的交易
func (s *LinkbuxService) FetchTransactions(ctx context.Context, token string, begin, end time.Time, pc *ProgressContext) ([]dto.LinkbuxTransaction, error) {
	raw, err := s.FetchAll(ctx, map[string]string{
		"mod":        "medium",
		"op":         "transaction_v2",
		"token":      token,
		"begin_date": formatDate(begin),
		"end_date":   formatDate(end),
		"limit":      strconv.Itoa(txPageLimit),
	}, pc)
	if err != nil {
		return nil, err
	}

	txs := make([]dto.LinkbuxTransaction, 0, len(raw))
	for _, item := range raw {
		var tx dto.LinkbuxTransaction
		if err := json.Unmarshal(item, &tx); err != nil {
			return nil, fmt.Errorf("交易记录解析失败: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// FetchClicks 拉取时间范围内的点击
func (s *LinkbuxService) FetchClicks(ctx context.Context, token string, begin, end time.Time, pc *ProgressContext) ([]dto.LinkbuxClick, error) {
	raw, err := s.FetchAll(ctx, map[string]string{
		"mod":        "medium",
		"op":         "user_click",
		"token":      token,
		"begin_date": formatDate(begin),
		"end_date":   formatDate(end),
		"limit":      strconv.Itoa(txPageLimit),
	}, pc)
	if err != nil {
		return nil, err
	}

	clicks := make([]dto.LinkbuxClick, 0, len(raw))
	for _, item := range raw {
		var c dto.LinkbuxClick
		if err := json.Unmarshal(item, &c); err != nil {
			return nil, fmt.Errorf("点击记录解析失败: %w", err)
		}
		clicks = append(clicks, c)
	}
	return clicks, nil
}

// FetchAds 拉取账户的全量广告目录（该接口不按日期过滤）
func (s *LinkbuxService) FetchAds(ctx context.Context, token string, pc *ProgressContext) ([]dto.LinkbuxAd, error) {
	raw, err := s.FetchAll(ctx, map[string]string{
		"mod":   "medium",
		"op":    "monetization_api",
		"token": token,
		"limit": strconv.Itoa(adPageLimit),
	}, pc)
	if err != nil {
		return nil, err
	}

	ads := make([]dto.LinkbuxAd, 0, len(raw))
	for _, item := range raw {
		var ad dto.LinkbuxAd
		if err := json.Unmarshal(item, &ad); err != nil {
			return nil, fmt.Errorf("广告记录解析失败: %w", err)
		}
		ads = append(ads, ad)
	}
	return ads, nil
}

// FetchSettlements 拉取时间范围内的结算记录
func (s *LinkbuxService) FetchSettlements(ctx context.Context, token string, begin, end time.Time, pc *ProgressContext) ([]dto.LinkbuxSettlement, error) {
	raw, err := s.FetchAll(ctx, map[string]string{
		"mod":        "settlement",
		"op":         "merchant_commission",
		"token":      token,
		"begin_date": formatDate(begin),
		"end_date":   formatDate(end),
	}, pc)
	if err != nil {
		return nil, err
	}

	settlements := make([]dto.LinkbuxSettlement, 0, len(raw))
	for _, item := range raw {
		var st dto.LinkbuxSettlement
		if err := json.Unmarshal(item, &st); err != nil {
			return nil, fmt.Errorf("结算记录解析失败: %w", err)
		}
		settlements = append(settlements, st)
	}
	return settlements, nil
}
