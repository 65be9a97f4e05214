package controller

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"linkbux_dev_v1_202601/internal/api/dto"
	"linkbux_dev_v1_202601/internal/repository"
	"linkbux_dev_v1_202601/internal/service"
	"linkbux_dev_v1_202601/internal/task"
)

// 手动任务的兜底超时，防止后台协程悬挂
const manualJobTimeout = 6 * time.Hour

// ==================== SyncController 手动同步入口 ====================

type SyncController struct {
	syncService *service.SyncService
	syncTask    *task.PlatformSyncTask
	accountRepo repository.AccountRepository
	txRepo      repository.TransactionRepository
	clickRepo   repository.ClickRepository
	adRepo      repository.AdRepository
	hub         *service.NotifyHub
}

func NewSyncController(
	syncService *service.SyncService,
	syncTask *task.PlatformSyncTask,
	accountRepo repository.AccountRepository,
	txRepo repository.TransactionRepository,
	clickRepo repository.ClickRepository,
	adRepo repository.AdRepository,
	hub *service.NotifyHub,
) *SyncController {
	return &SyncController{
		syncService: syncService,
		syncTask:    syncTask,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		clickRepo:   clickRepo,
		adRepo:      adRepo,
		hub:         hub,
	}
}

// InitialSync 触发新账户深度同步
// POST /api/jobs/initial-sync
// 任务在后台执行，进度通过 /api/jobs/events 推送
func (ctl *SyncController) InitialSync(c *gin.Context) {
	var req dto.InitialSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误", "detail": err.Error()})
		return
	}

	acc, err := ctl.accountRepo.GetSyncAccount(c.Request.Context(), req.AccountID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "账户不存在或 token 无效"})
		return
	}

	jobID := uuid.NewString()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), manualJobTimeout)
		defer cancel()
		if err := ctl.syncService.RunInitialSync(ctx, *acc, req.StartDate); err != nil {
			log.Printf("[SyncController] 深度同步任务 %s 失败: %v", jobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, dto.JobAcceptedResponse{
		JobID:   jobID,
		Message: "任务已接收，进度将通过事件流推送",
	})
}

// BackfillClicks 触发点击数据按日回填
// POST /api/jobs/backfill-clicks
func (ctl *SyncController) BackfillClicks(c *gin.Context) {
	var req dto.BackfillClicksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误", "detail": err.Error()})
		return
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID := uuid.NewString()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), manualJobTimeout)
		defer cancel()
		if err := ctl.syncService.BackfillClicks(ctx, start, end); err != nil {
			log.Printf("[SyncController] 点击回填任务 %s 失败: %v", jobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, dto.JobAcceptedResponse{JobID: jobID, Message: "回填任务已接收"})
}

// ManualResync 触发手动全量补数（每日主数据 + 点击按日回填）
// POST /api/jobs/resync
func (ctl *SyncController) ManualResync(c *gin.Context) {
	var req dto.ManualResyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误", "detail": err.Error()})
		return
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID := uuid.NewString()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), manualJobTimeout)
		defer cancel()
		if err := ctl.syncTask.ManualResync(ctx, start, end); err != nil {
			log.Printf("[SyncController] 手动补数任务 %s 失败: %v", jobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, dto.JobAcceptedResponse{JobID: jobID, Message: "补数任务已接收"})
}

// Status 查询账户同步状态概览
// GET /api/jobs/status/:account_id
func (ctl *SyncController) Status(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("account_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id 必须是数字"})
		return
	}

	ctx := c.Request.Context()
	resp := dto.SyncStatusResponse{AccountID: accountID}

	if resp.Transactions, err = ctl.txRepo.CountByAccount(ctx, accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败", "detail": err.Error()})
		return
	}
	if resp.Clicks, err = ctl.clickRepo.CountByAccount(ctx, accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败", "detail": err.Error()})
		return
	}
	if resp.Ads, err = ctl.adRepo.CountByAccount(ctx, accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败", "detail": err.Error()})
		return
	}
	if earliest, err := ctl.txRepo.EarliestOrderTime(ctx, accountID); err == nil && earliest != nil {
		resp.EarliestTx = earliest.Format("2006-01-02")
	}

	c.JSON(http.StatusOK, resp)
}

// Events 订阅同步事件流（SSE）
// GET /api/jobs/events?user_id=1
func (ctl *SyncController) Events(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id 必须是数字"})
		return
	}

	ch, cancel := ctl.hub.Subscribe(userID)
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// parseDateRange 解析并校验日期范围
func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date 格式必须为 YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date 格式必须为 YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date 不能早于 start_date")
	}
	return start, end, nil
}
