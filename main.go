package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 1. 定义与数据库表对应的结构体
type PlatformAccount struct {
	ID           int64
	UserID       int64
	PlatformName string
	AccountName  string
	APIToken     *string `gorm:"column:api_token"`
}

func (PlatformAccount) TableName() string { return "user_platform_accounts" }

func main() {
	fmt.Println(">>> 开始执行全链路测试...")

	// ------------------------------------------------
	// 2. 连接数据库
	// ------------------------------------------------
	dsn := "host=localhost user=linkbux_admin password=1234 dbname=affiliate_dashboard port=5432 sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ 数据库连接失败: %v", err)
	}
	fmt.Println("✅ 数据库连接成功！")

	// ------------------------------------------------
	// 3. 从数据库读取一个 Linkbux 账户
	// ------------------------------------------------
	var account PlatformAccount
	result := db.Where("platform_name = ? AND api_token IS NOT NULL", "Linkbux").First(&account)
	if result.Error != nil {
		log.Fatalf("❌ 未找到可用的 Linkbux 账户，请检查 user_platform_accounts 表: %v", result.Error)
	}
	fmt.Printf("✅ 读取账户成功: [ID: %d] [Name: %s]\n", account.ID, account.AccountName)

	// token 在库里是 base64 存储的
	token, err := base64.StdEncoding.DecodeString(*account.APIToken)
	if err != nil {
		log.Fatalf("❌ api_token base64 解码失败: %v", err)
	}
	fmt.Printf("✅ token 解码成功 (长度 %d)\n", len(token))

	// ------------------------------------------------
	// 4. 发起 Linkbux API 请求
	// ------------------------------------------------
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(3)

	fmt.Println(">>> 正在向 Linkbux 发起测试请求...")

	end := time.Now()
	start := end.AddDate(0, 0, -1)
	resp, err := client.R().
		SetQueryParams(map[string]string{
			"mod":        "medium",
			"op":         "transaction_v2",
			"token":      string(token),
			"begin_date": start.Format("2006-01-02"),
			"end_date":   end.Format("2006-01-02"),
			"limit":      "10",
			"page":       "1",
		}).
		Get("https://www.linkbux.com/api.php")

	// ------------------------------------------------
	// 5. 结果验证
	// ------------------------------------------------
	if err != nil {
		log.Fatalf("❌ 请求失败: %v", err)
	}

	if resp.StatusCode() == 200 {
		fmt.Println("🎉🎉🎉 测试成功！全链路已打通！")
		fmt.Printf("Linkbux 响应: %s\n", resp.String())
	} else {
		fmt.Printf("⚠️ 连接通了，但 Linkbux 拒绝了请求 (状态码 %d)\n", resp.StatusCode())
		fmt.Printf("错误信息: %s\n", resp.String())
		fmt.Println("提示: 如果 status.code 非 0，通常是 token 失效或日期范围不对。")
	}
}
