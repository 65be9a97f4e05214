package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("默认端口应为 8080，实际 %q", cfg.Server.Port)
	}
	if cfg.Database.DBName != "affiliate_dashboard" {
		t.Errorf("默认库名不符: %q", cfg.Database.DBName)
	}
	if cfg.Linkbux.MaxRetries != 5 {
		t.Errorf("默认重试次数应为 5，实际 %d", cfg.Linkbux.MaxRetries)
	}
	if cfg.Linkbux.RetryBase() != 30*time.Second {
		t.Errorf("默认退避基数应为 30s，实际 %v", cfg.Linkbux.RetryBase())
	}
	if cfg.Cron.Timezone != "Asia/Shanghai" {
		t.Errorf("默认时区不符: %q", cfg.Cron.Timezone)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SYNC_SERVER_PORT", "9090")
	t.Setenv("SYNC_DATABASE_HOST", "db.internal")
	t.Setenv("SYNC_LINKBUX_MAX_RETRIES", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("环境变量应覆盖端口，实际 %q", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("环境变量应覆盖数据库地址，实际 %q", cfg.Database.Host)
	}
	if cfg.Linkbux.MaxRetries != 2 {
		t.Errorf("环境变量应覆盖重试次数，实际 %d", cfg.Linkbux.MaxRetries)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "u",
		Password: "p",
		DBName:   "db",
		SSLMode:  "disable",
	}
	want := "host=localhost user=u password=p dbname=db port=5432 sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN 不符:\n got %q\nwant %q", got, want)
	}
}

func TestCronConfig_Location(t *testing.T) {
	c := CronConfig{Timezone: "Asia/Shanghai"}
	if got := c.Location(); got.String() != "Asia/Shanghai" {
		t.Errorf("时区解析不符: %v", got)
	}

	bad := CronConfig{Timezone: "Not/AZone"}
	if got := bad.Location(); got != time.Local {
		t.Errorf("非法时区应回退到系统时区，实际 %v", got)
	}
}
