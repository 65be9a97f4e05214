package repository

import (
	"context"
	"testing"

	"linkbux_dev_v1_202601/internal/model"
)

func makeAd(accountID int64, adID, merchant string) model.Ad {
	return model.Ad{
		UserID:            1,
		Platform:          model.PlatformLinkbux,
		PlatformAccountID: accountID,
		PlatformAdID:      adID,
		MerchantName:      merchant,
		Categories:        []byte(`["Fashion","Shoes"]`),
	}
}

func TestAdRepo_ReplaceForAccount(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewAdRepository(db)
	ctx := context.Background()

	old := []model.Ad{
		makeAd(100, "AD-1", "商家A"),
		makeAd(100, "AD-2", "商家B"),
		makeAd(100, "AD-3", "商家C"),
	}
	if err := repo.ReplaceForAccount(ctx, 100, old); err != nil {
		t.Fatalf("ReplaceForAccount() 初始快照失败: %v", err)
	}

	// 别的账户的目录不受影响
	if err := repo.ReplaceForAccount(ctx, 200, []model.Ad{makeAd(200, "AD-9", "商家X")}); err != nil {
		t.Fatalf("ReplaceForAccount() 账户 200 失败: %v", err)
	}

	// 新快照条目更少，旧条目应整体消失
	fresh := []model.Ad{
		makeAd(100, "AD-2", "商家B改名"),
	}
	if err := repo.ReplaceForAccount(ctx, 100, fresh); err != nil {
		t.Fatalf("ReplaceForAccount() 替换失败: %v", err)
	}

	count, err := repo.CountByAccount(ctx, 100)
	if err != nil {
		t.Fatalf("CountByAccount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("替换后账户 100 应只剩 1 条，实际 %d", count)
	}

	var got model.Ad
	if err := db.Where("platform_account_id = ? AND platform_ad_id = ?", 100, "AD-2").First(&got).Error; err != nil {
		t.Fatalf("查询 AD-2 失败: %v", err)
	}
	if got.MerchantName != "商家B改名" {
		t.Errorf("MerchantName 应为新快照值，实际 %q", got.MerchantName)
	}

	otherCount, err := repo.CountByAccount(ctx, 200)
	if err != nil {
		t.Fatalf("CountByAccount() error = %v", err)
	}
	if otherCount != 1 {
		t.Errorf("账户 200 的目录不应被动到，实际 %d 条", otherCount)
	}
}

func TestAdRepo_ReplaceForAccount_EmptyKeepsSnapshot(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewAdRepository(db)
	ctx := context.Background()

	if err := repo.ReplaceForAccount(ctx, 100, []model.Ad{makeAd(100, "AD-1", "商家A")}); err != nil {
		t.Fatalf("ReplaceForAccount() error = %v", err)
	}

	// 空响应不能清空目录
	if err := repo.ReplaceForAccount(ctx, 100, nil); err != nil {
		t.Fatalf("ReplaceForAccount() 空集应是 no-op，error = %v", err)
	}

	count, err := repo.CountByAccount(ctx, 100)
	if err != nil {
		t.Fatalf("CountByAccount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("空集替换后旧快照应保留，实际 %d 条", count)
	}
}

func TestAdRepo_ReplaceForAccount_RollbackOnFailure(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewAdRepository(db)
	ctx := context.Background()

	old := []model.Ad{
		makeAd(100, "AD-1", "商家A"),
		makeAd(100, "AD-2", "商家B"),
	}
	if err := repo.ReplaceForAccount(ctx, 100, old); err != nil {
		t.Fatalf("ReplaceForAccount() error = %v", err)
	}

	// 新快照内部撞唯一键，插入必然失败，整个事务应回滚
	bad := []model.Ad{
		makeAd(100, "AD-9", "商家X"),
		makeAd(100, "AD-9", "商家X"),
	}
	if err := repo.ReplaceForAccount(ctx, 100, bad); err == nil {
		t.Fatal("唯一键冲突应返回错误")
	}

	count, err := repo.CountByAccount(ctx, 100)
	if err != nil {
		t.Fatalf("CountByAccount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("失败后旧快照应完整保留 2 条，实际 %d", count)
	}

	var got model.Ad
	if err := db.Where("platform_account_id = ? AND platform_ad_id = ?", 100, "AD-1").First(&got).Error; err != nil {
		t.Errorf("旧快照条目 AD-1 应仍存在: %v", err)
	}
}
