package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"linkbux_dev_v1_202601/internal/model"
)

// setupSyncTestDB 内存库 + 全部同步相关表，本包各测试共用
func setupSyncTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.UserPlatformAccount{},
		&model.Transaction{},
		&model.Click{},
		&model.Ad{},
		&model.Settlement{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

func makeTx(accountID int64, txID string, amount float64, orderTime time.Time) model.Transaction {
	return model.Transaction{
		UserID:                1,
		Platform:              model.PlatformLinkbux,
		PlatformAccountID:     accountID,
		PlatformTransactionID: txID,
		SaleAmount:            amount,
		SaleComm:              amount * 0.1,
		Status:                "pending",
		OrderTime:             &orderTime,
	}
}

func TestTransactionRepo_UpsertBatch_Idempotent(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	orderTime := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	batch := []model.Transaction{
		makeTx(100, "LB-001", 50, orderTime),
		makeTx(100, "LB-002", 80, orderTime),
	}

	if err := repo.UpsertBatch(ctx, batch); err != nil {
		t.Fatalf("UpsertBatch() 首次写入失败: %v", err)
	}

	// 同一批数据再写一次，金额和状态有变化
	batch[0].SaleAmount = 55
	batch[0].SaleComm = 5.5
	batch[0].Status = "approved"
	vd := "2025-02-01"
	batch[0].ValidationDate = &vd

	if err := repo.UpsertBatch(ctx, batch); err != nil {
		t.Fatalf("UpsertBatch() 二次写入失败: %v", err)
	}

	count, err := repo.CountByAccount(ctx, 100)
	if err != nil {
		t.Fatalf("CountByAccount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("重复写入后应仍为 2 条记录，实际 %d", count)
	}

	var got model.Transaction
	if err := db.Where("platform_transaction_id = ?", "LB-001").First(&got).Error; err != nil {
		t.Fatalf("查询 LB-001 失败: %v", err)
	}
	if got.SaleAmount != 55 {
		t.Errorf("SaleAmount 应被覆盖为 55，实际 %v", got.SaleAmount)
	}
	if got.Status != "approved" {
		t.Errorf("Status 应被覆盖为 approved，实际 %q", got.Status)
	}
	if got.ValidationDate == nil || *got.ValidationDate != "2025-02-01" {
		t.Errorf("ValidationDate 应被覆盖为 2025-02-01，实际 %v", got.ValidationDate)
	}
}

func TestTransactionRepo_UpsertBatch_Empty(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewTransactionRepository(db)

	if err := repo.UpsertBatch(context.Background(), nil); err != nil {
		t.Errorf("空集应是 no-op，error = %v", err)
	}
}

func TestTransactionRepo_EarliestOrderTime(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	// 空账户返回 (nil, nil)
	got, err := repo.EarliestOrderTime(ctx, 100)
	if err != nil {
		t.Fatalf("EarliestOrderTime() 空账户 error = %v", err)
	}
	if got != nil {
		t.Errorf("空账户应返回 nil，实际 %v", got)
	}

	early := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	batch := []model.Transaction{
		makeTx(100, "LB-010", 10, late),
		makeTx(100, "LB-011", 20, early),
		makeTx(200, "LB-012", 30, late.AddDate(-1, 0, 0)), // 别的账户不影响
	}
	if err := repo.UpsertBatch(ctx, batch); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	got, err = repo.EarliestOrderTime(ctx, 100)
	if err != nil {
		t.Fatalf("EarliestOrderTime() error = %v", err)
	}
	if got == nil || !got.Equal(early) {
		t.Errorf("最早下单时间应为 %v，实际 %v", early, got)
	}
}

func TestTransactionRepo_HasAny(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	ok, err := repo.HasAny(ctx, 100)
	if err != nil {
		t.Fatalf("HasAny() error = %v", err)
	}
	if ok {
		t.Error("空账户 HasAny 应为 false")
	}

	orderTime := time.Now()
	if err := repo.UpsertBatch(ctx, []model.Transaction{makeTx(100, "LB-020", 10, orderTime)}); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	ok, err = repo.HasAny(ctx, 100)
	if err != nil {
		t.Fatalf("HasAny() error = %v", err)
	}
	if !ok {
		t.Error("写入后 HasAny 应为 true")
	}
}
