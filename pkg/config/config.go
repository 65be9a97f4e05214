package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ==================== Config 全局配置 ====================

// Config 应用配置，来源优先级：环境变量 > config.yaml > 默认值
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Linkbux  LinkbuxConfig  `mapstructure:"linkbux"`
	Cron     CronConfig     `mapstructure:"cron"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN 拼接 PostgreSQL 连接串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
}

type LinkbuxConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	MaxRetries     int    `mapstructure:"max_retries"`
	RetryBaseDelay int    `mapstructure:"retry_base_delay"` // 秒
}

func (l *LinkbuxConfig) RetryBase() time.Duration {
	return time.Duration(l.RetryBaseDelay) * time.Second
}

type CronConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location 解析任务时区，解析失败回退到系统时区
func (c *CronConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("[Config] 时区 %q 解析失败，使用系统时区: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

// ==================== 加载 ====================

// Load 加载配置
// config.yaml 不存在不是错误，环境变量照常生效
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "linkbux_admin")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "affiliate_dashboard")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("linkbux.base_url", "")
	v.SetDefault("linkbux.max_retries", 5)
	v.SetDefault("linkbux.retry_base_delay", 30)
	v.SetDefault("cron.timezone", "Asia/Shanghai")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("配置解析失败: %w", err)
	}
	return &cfg, nil
}
