package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Reminder   ReminderConfig   `mapstructure:"reminder"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// 存储后端
const (
	StoreBackendMemory   = "memory"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
)

// StoreConfig 键值存储配置
type StoreConfig struct {
	Backend   string `mapstructure:"backend"`    // memory | redis | postgres
	KeyPrefix string `mapstructure:"key_prefix"` // 所有逻辑键的统一前缀
}

// DatabaseConfig PostgreSQL 数据库配置（store.backend=postgres 时生效）
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（store.backend=redis 时生效）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AttendanceConfig 出勤统计相关参数
type AttendanceConfig struct {
	// DefaultAllowedPercentage 默认允许缺勤比例，用于推算缺勤额度
	DefaultAllowedPercentage float64 `mapstructure:"default_allowed_percentage"`
	// DefaultCreditHours 未填写学分时使用的默认值
	DefaultCreditHours float64 `mapstructure:"default_credit_hours"`
}

// ReminderConfig 出勤提醒任务配置
type ReminderConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 2<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("store.backend", StoreBackendMemory)
	v.SetDefault("store.key_prefix", "attendance:")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "attendance")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("attendance.default_allowed_percentage", 0.2)
	v.SetDefault("attendance.default_credit_hours", 3)

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.check_interval", "1m")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("ATTEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Store.Backend {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendPostgres:
	default:
		return fmt.Errorf("配置校验失败: 不支持的 store.backend %q", c.Store.Backend)
	}
	if c.Attendance.DefaultAllowedPercentage <= 0 || c.Attendance.DefaultAllowedPercentage > 1 {
		return fmt.Errorf("配置校验失败: attendance.default_allowed_percentage 必须在 (0, 1] 之间")
	}
	if c.Attendance.DefaultCreditHours < 0 || c.Attendance.DefaultCreditHours > 10 {
		return fmt.Errorf("配置校验失败: attendance.default_credit_hours 必须在 0-10 之间")
	}
	if c.Reminder.Enabled && c.Reminder.CheckInterval <= 0 {
		return fmt.Errorf("配置校验失败: reminder.check_interval 必须大于 0")
	}
	return nil
}
