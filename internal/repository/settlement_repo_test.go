package repository

import (
	"context"
	"testing"
	"time"

	"linkbux_dev_v1_202601/internal/model"
)

func makeSettlement(accountID int64, settlementID string, comm float64) model.Settlement {
	date := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	return model.Settlement{
		UserID:            1,
		Platform:          model.PlatformLinkbux,
		PlatformAccountID: accountID,
		SettlementID:      settlementID,
		SaleComm:          comm,
		SettlementDate:    &date,
		SettlementType:    "commission",
	}
}

func TestSettlementRepo_UpsertBatch_Revision(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewSettlementRepository(db)
	ctx := context.Background()

	if err := repo.UpsertBatch(ctx, []model.Settlement{
		makeSettlement(100, "ST-1", 12.5),
		makeSettlement(100, "ST-2", 30),
	}); err != nil {
		t.Fatalf("UpsertBatch() 首次写入失败: %v", err)
	}

	// 平台修订了 ST-1：补了打款日期和备注
	revised := makeSettlement(100, "ST-1", 15)
	paid := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	note := "补发差额"
	revised.PaidDate = &paid
	revised.PaymentID = "PAY-881"
	revised.Note = &note

	if err := repo.UpsertBatch(ctx, []model.Settlement{revised}); err != nil {
		t.Fatalf("UpsertBatch() 修订写入失败: %v", err)
	}

	var count int64
	if err := db.Model(&model.Settlement{}).Where("platform_account_id = ?", 100).Count(&count).Error; err != nil {
		t.Fatalf("Count error = %v", err)
	}
	if count != 2 {
		t.Errorf("修订后应仍为 2 条，实际 %d", count)
	}

	var got model.Settlement
	if err := db.Where("settlement_id = ?", "ST-1").First(&got).Error; err != nil {
		t.Fatalf("查询 ST-1 失败: %v", err)
	}
	if got.SaleComm != 15 {
		t.Errorf("SaleComm 应被修订为 15，实际 %v", got.SaleComm)
	}
	if got.PaymentID != "PAY-881" {
		t.Errorf("PaymentID 应被修订，实际 %q", got.PaymentID)
	}
	if got.Note == nil || *got.Note != "补发差额" {
		t.Errorf("Note 应被修订，实际 %v", got.Note)
	}
}

func TestSettlementRepo_HasAny(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewSettlementRepository(db)
	ctx := context.Background()

	ok, err := repo.HasAny(ctx, 100)
	if err != nil {
		t.Fatalf("HasAny() error = %v", err)
	}
	if ok {
		t.Error("空账户 HasAny 应为 false")
	}

	if err := repo.UpsertBatch(ctx, []model.Settlement{makeSettlement(100, "ST-1", 5)}); err != nil {
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
