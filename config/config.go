package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Roster   RosterConfig   `mapstructure:"roster"`
	Import   ImportConfig   `mapstructure:"import"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int             `mapstructure:"port"`
	BaseURL   string          `mapstructure:"base_url"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 写接口限流配置（基于 Redis 计数器）
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
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

// RosterConfig 学生名册配置
// 班级与班次取值均来自此处的枚举列表，学号格式由前缀 + 数字位数约束
type RosterConfig struct {
	Sections        []string `mapstructure:"sections"`
	Shifts          []string `mapstructure:"shifts"`
	DefaultShift    string   `mapstructure:"default_shift"`
	StudentIDPrefix string   `mapstructure:"student_id_prefix"`
	StudentIDDigits int      `mapstructure:"student_id_digits"`

	patternOnce      sync.Once
	studentIDPattern *regexp.Regexp
}

// StudentIDPattern 返回学号格式正则（前缀 + 1..N 位数字）
// 前缀为空时不做格式约束，学号仅作为不透明唯一字符串处理
// 配置实例被所有请求共享，首次编译用 sync.Once 保护
func (c *RosterConfig) StudentIDPattern() *regexp.Regexp {
	if c.StudentIDPrefix == "" {
		return nil
	}
	c.patternOnce.Do(func() {
		digits := c.StudentIDDigits
		if digits <= 0 {
			digits = 3
		}
		c.studentIDPattern = regexp.MustCompile(
			fmt.Sprintf("^%s\\d{1,%d}$", regexp.QuoteMeta(c.StudentIDPrefix), digits),
		)
	})
	return c.studentIDPattern
}

// HasSection 检查班级是否在允许列表内
func (c *RosterConfig) HasSection(section string) bool {
	for _, s := range c.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// HasShift 检查班次是否在允许列表内
func (c *RosterConfig) HasShift(shift string) bool {
	for _, s := range c.Shifts {
		if s == shift {
			return true
		}
	}
	return false
}

// ImportConfig 外部表格导入配置
type ImportConfig struct {
	MaxRows      int           `mapstructure:"max_rows"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.limit", 120)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "club_attendance")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Kolkata")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("roster.sections", []string{
		"BBA A", "BBA B", "BBA C", "BBA D",
		"B.COM A", "B.COM B", "B.COM C", "B.COM D",
		"B.COM E", "B.COM F", "B.COM G", "B.COM I",
		"BA English", "BSc Eco",
	})
	v.SetDefault("roster.shifts", []string{"Shift 1", "Shift 2"})
	v.SetDefault("roster.default_shift", "Shift 1")
	v.SetDefault("roster.student_id_prefix", "24SJCCC")
	v.SetDefault("roster.student_id_digits", 3)

	v.SetDefault("import.max_rows", 1000)
	v.SetDefault("import.fetch_timeout", "15s")

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
	v.SetEnvPrefix("CLUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
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
	if len(c.Roster.Sections) == 0 {
		return fmt.Errorf("配置校验失败: roster.sections 不能为空")
	}
	if len(c.Roster.Shifts) == 0 {
		return fmt.Errorf("配置校验失败: roster.shifts 不能为空")
	}
	if c.Roster.DefaultShift != "" && !c.Roster.HasShift(c.Roster.DefaultShift) {
		return fmt.Errorf("配置校验失败: roster.default_shift 必须在 roster.shifts 列表内")
	}
	if c.Import.MaxRows <= 0 {
		return fmt.Errorf("配置校验失败: import.max_rows 必须大于 0")
	}
	return nil
}
