package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkbux_dev_v1_202601/internal/controller"
	"linkbux_dev_v1_202601/pkg/database"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	syncCtl *controller.SyncController,
	dbManager *database.Manager) {

	// 健康检查，带数据库连接状态
	r.GET("/healthz", func(c *gin.Context) {
		state := dbManager.State()
		status := http.StatusOK
		if state != database.StateReady {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"db": state.String()})
	})

	// API 路由组
	api := r.Group("/api")
	{
		// jobs 手动同步任务
		jobs := api.Group("/jobs")
		{
			// POST /api/jobs/initial-sync
			jobs.POST("/initial-sync", syncCtl.InitialSync)

			// POST /api/jobs/backfill-clicks
			jobs.POST("/backfill-clicks", syncCtl.BackfillClicks)

			// POST /api/jobs/resync
			jobs.POST("/resync", syncCtl.ManualResync)

			// GET /api/jobs/status/:account_id
			jobs.GET("/status/:account_id", syncCtl.Status)

			// GET /api/jobs/events?user_id=1 同步进度事件流（SSE）
			jobs.GET("/events", syncCtl.Events)
		}
	}
}
