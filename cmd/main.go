package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkbux_dev_v1_202601/internal/controller"
	"linkbux_dev_v1_202601/internal/model"
	"linkbux_dev_v1_202601/internal/repository"
	"linkbux_dev_v1_202601/internal/router"
	"linkbux_dev_v1_202601/internal/service"
	"linkbux_dev_v1_202601/internal/task"
	"linkbux_dev_v1_202601/pkg/config"
	"linkbux_dev_v1_202601/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化数据库
	db := initDatabase(cfg)
	dbManager := database.NewManager(db, 30*time.Second)
	dbManager.Start()

	// 3. 初始化依赖
	deps := initDependencies(db, cfg, dbManager)

	// 4. 启动定时任务
	initTasks(deps, cfg)

	// 5. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Sync, dbManager)

	// 6. 启动服务
	startServer(r, cfg, deps, dbManager)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Manager     *database.Manager
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	SyncTask    *task.PlatformSyncTask
}

// Repositories 仓库集合
type Repositories struct {
	Account    repository.AccountRepository
	Tx         repository.TransactionRepository
	Click      repository.ClickRepository
	Ad         repository.AdRepository
	Settlement repository.SettlementRepository
}

// Services 服务集合
type Services struct {
	Linkbux *service.LinkbuxService
	Sync    *service.SyncService
	Hub     *service.NotifyHub
}

// Controllers 控制器集合
type Controllers struct {
	Sync *controller.SyncController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.Database.DSN(),
		// 账户表只读，不参与迁移
		&model.Transaction{},
		&model.Click{},
		&model.Ad{},
		&model.Settlement{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config, dbManager *database.Manager) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Account:    repository.NewAccountRepository(db),
		Tx:         repository.NewTransactionRepository(db),
		Click:      repository.NewClickRepository(db),
		Ad:         repository.NewAdRepository(db),
		Settlement: repository.NewSettlementRepository(db),
	}

	// -------- 基础服务 --------
	hub := service.NewNotifyHub()
	linkbuxSvc := service.NewLinkbuxService(cfg.Linkbux.BaseURL)
	linkbuxSvc.SetRetryPolicy(cfg.Linkbux.MaxRetries, cfg.Linkbux.RetryBase())

	// -------- 业务服务 --------
	syncSvc := service.NewSyncService(
		repos.Account, repos.Tx, repos.Click, repos.Ad, repos.Settlement,
		linkbuxSvc, hub,
	)

	// -------- 定时任务 --------
	registry := task.NewRunRegistry()
	syncTask := task.NewPlatformSyncTask(syncSvc, registry, cfg.Cron.Location())

	// -------- Controller 层 --------
	controllers := &Controllers{
		Sync: controller.NewSyncController(
			syncSvc, syncTask,
			repos.Account, repos.Tx, repos.Click, repos.Ad,
			hub,
		),
	}

	return &Dependencies{
		DB:          db,
		Manager:     dbManager,
		Repos:       repos,
		Services:    &Services{Linkbux: linkbuxSvc, Sync: syncSvc, Hub: hub},
		Controllers: controllers,
		SyncTask:    syncTask,
	}
}

// ==================== 定时任务 ====================

// initTasks 启动定时任务
func initTasks(deps *Dependencies, cfg *config.Config) {
	if err := deps.SyncTask.Start(); err != nil {
		log.Fatalf("定时任务启动失败: %v", err)
	}
	log.Printf("定时任务已启动，时区 %s", cfg.Cron.Timezone)
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, cfg *config.Config, deps *Dependencies, dbManager *database.Manager) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停定时任务，等在途同步收尾
	deps.SyncTask.Stop()
	dbManager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
