package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var GlobalConfig *Config

// Config 全局配置
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Crypto       CryptoConfig       `mapstructure:"crypto"`
	Log          LogConfig          `mapstructure:"log"`
	Helm         HelmConfig         `mapstructure:"helm"`
	Workflow     WorkflowConfig     `mapstructure:"workflow"`
	DNS          DNSConfig          `mapstructure:"dns"`
	Notification NotificationConfig `mapstructure:"notification"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Webhook      WebhookConfig      `mapstructure:"webhook"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name         string   `mapstructure:"name"`
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"` // debug, release
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // mysql, postgres
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level"`         // SQL日志级别: silent/error/warn/info
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置, 用于 SSE 消息分发
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	GitHub   GitHubConfig   `mapstructure:"github"`
	Callback CallbackConfig `mapstructure:"callback"`
}

// GitHubConfig GitHub OAuth App 配置
type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	APIBaseURL   string `mapstructure:"api_base_url"` // 默认 https://api.github.com
}

// CallbackConfig 构建回调令牌配置, secret 为空时不校验
type CallbackConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // 秒
}

// CryptoConfig 加密配置
type CryptoConfig struct {
	AESKey string `mapstructure:"aes_key"` // 任意长度, 经 HKDF 派生为 32 字节
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, console
	Output     string `mapstructure:"output"` // stdout, file
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// HelmConfig 项目 chart 配置
type HelmConfig struct {
	Kubeconfig      string `mapstructure:"kubeconfig"` // 为空时使用 in-cluster 配置
	Namespace       string `mapstructure:"namespace"`
	RepoName        string `mapstructure:"repo_name"`
	RepoURL         string `mapstructure:"repo_url"`
	RepoUsername    string `mapstructure:"repo_username"`
	RepoPassword    string `mapstructure:"repo_password"`
	Chart           string `mapstructure:"chart"`
	ChartVersion    string `mapstructure:"chart_version"`
	ValuesFile      string `mapstructure:"values_file"` // 基础 values.yaml
	BaseDomain      string `mapstructure:"base_domain"`
	DomainTemplate  string `mapstructure:"domain_template"`  // 例如 {{.subdomain}}.{{.base_domain}}
	WebhookTemplate string `mapstructure:"webhook_template"` // 例如 {{.subdomain}}-ci.webhook.{{.base_domain}}
	Timeout         string `mapstructure:"timeout"`
}

// WorkflowConfig 构建触发配置
type WorkflowConfig struct {
	Scheme    string `mapstructure:"scheme"` // https
	Path      string `mapstructure:"path"`   // EventSource 路径, 例如 /build
	Timeout   string `mapstructure:"timeout"`
	ImageRepo string `mapstructure:"image_repo"`
}

// DNSConfig DNS 配置
type DNSConfig struct {
	Provider     string `mapstructure:"provider"` // route53, log
	HostedZoneID string `mapstructure:"hosted_zone_id"`
	Region       string `mapstructure:"region"`
	Target       string `mapstructure:"target"` // CNAME 指向的 ingress 地址
	TTL          int64  `mapstructure:"ttl"`
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	ChannelPrefix string `mapstructure:"channel_prefix"`
	Heartbeat     string `mapstructure:"heartbeat"`
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	RolloutCron string `mapstructure:"rollout_cron"` // 为空时不启动发布状态巡检
}

// WebhookConfig 回调接口限流
type WebhookConfig struct {
	RateLimit float64 `mapstructure:"rate_limit"` // 每秒请求数, <=0 不限流
	Burst     int     `mapstructure:"burst"`
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// 读取环境变量, 例如 PITAPAT_DATABASE_PASSWORD
	v.SetEnvPrefix("pitapat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 设置全局配置
	GlobalConfig = config

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "pitapat")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("auth.github.api_base_url", "https://api.github.com")
	v.SetDefault("auth.callback.expire", 3600)
	v.SetDefault("helm.namespace", "default")
	v.SetDefault("helm.repo_name", "pitapat")
	v.SetDefault("helm.timeout", "5m")
	v.SetDefault("helm.domain_template", "{{.subdomain}}.{{.base_domain}}")
	v.SetDefault("helm.webhook_template", "{{.subdomain}}-ci.webhook.{{.base_domain}}")
	v.SetDefault("workflow.scheme", "https")
	v.SetDefault("workflow.timeout", "10s")
	v.SetDefault("dns.provider", "log")
	v.SetDefault("dns.ttl", 300)
	v.SetDefault("notification.channel_prefix", "pitapat:sse:")
	v.SetDefault("notification.heartbeat", "15s")
	v.SetDefault("webhook.rate_limit", 20)
	v.SetDefault("webhook.burst", 40)
}

// GetDSN 获取数据库DSN
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=Local",
			c.Host,
			c.Port,
			c.Username,
			c.Password,
			c.Database,
		)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// ParseDuration 解析时长配置, 失败时返回默认值
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
