// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config 聚合了服务运行所需的全部配置。
// 来源优先级：环境变量 > 配置文件 > 默认值。
type Config struct {
	App struct {
		ServiceName  string   `yaml:"serviceName"`
		Port         int      `yaml:"port"`
		FixedFeeUSD  float64  `yaml:"fixedFeeUsd"`  // 每笔订单的固定手续费
		SessionTTL   int      `yaml:"sessionTtl"`   // 会话过期时间（秒）
		AdminUserIDs []string `yaml:"adminUserIds"` // 特权操作员
		Retry        struct {
			MaxAttempts int `yaml:"maxAttempts"`
			BaseDelayMs int `yaml:"baseDelayMs"`
		} `yaml:"retry"`
	} `yaml:"app"`
	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers           string `yaml:"brokers"`
			ConfirmationTopic string `yaml:"confirmationTopic"`
		} `yaml:"kafka"`
		Provider struct {
			BaseURL string `yaml:"baseUrl"` // 下游履约供应商 API
		} `yaml:"provider"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Nacos struct {
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`
}

// SessionTTLDuration 返回会话 TTL 的 time.Duration 形式。
func (c *Config) SessionTTLDuration() time.Duration {
	return time.Duration(c.App.SessionTTL) * time.Second
}

// RetryBaseDelay 返回重试基础延迟的 time.Duration 形式。
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.App.Retry.BaseDelayMs) * time.Millisecond
}

var currentConfig atomic.Pointer[Config]

// Init 加载配置。CONFIG_PATH 指向 yaml 文件；文件缺失时仅使用默认值和环境变量。
func Init() {
	cfg := defaultConfig()

	if path := getEnv("CONFIG_PATH", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			panic(errors.Wrapf(err, "failed to read config file %s", path))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic(errors.Wrapf(err, "failed to parse config file %s", path))
		}
	}

	applyEnvOverrides(cfg)
	currentConfig.Store(cfg)
}

// GetCurrentConfig 返回当前生效的配置快照。
func GetCurrentConfig() *Config {
	if cfg := currentConfig.Load(); cfg != nil {
		return cfg
	}
	// 未显式 Init 时（例如单测）退化为默认配置
	cfg := defaultConfig()
	currentConfig.Store(cfg)
	return cfg
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.ServiceName = "intake-service"
	cfg.App.Port = 8086
	cfg.App.FixedFeeUSD = 0.5
	cfg.App.SessionTTL = 1800
	cfg.App.Retry.MaxAttempts = 3
	cfg.App.Retry.BaseDelayMs = 1000
	cfg.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/boost?charset=utf8mb4&parseTime=True"
	cfg.Infra.Redis.Addrs = "localhost:6379"
	cfg.Infra.Kafka.Brokers = "localhost:9092"
	cfg.Infra.Kafka.ConfirmationTopic = "order-confirmations"
	cfg.Infra.Provider.BaseURL = "http://localhost:9100"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Nacos.ServerAddrs = "localhost:8848"
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	cfg.Infra.Mysql.DSN = getEnv("MYSQL_DSN", cfg.Infra.Mysql.DSN)
	cfg.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", cfg.Infra.Redis.Addrs)
	cfg.Infra.Kafka.Brokers = getEnv("KAFKA_BROKERS", cfg.Infra.Kafka.Brokers)
	cfg.Infra.Provider.BaseURL = getEnv("PROVIDER_BASE_URL", cfg.Infra.Provider.BaseURL)
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", cfg.Infra.Nacos.ServerAddrs)
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Infra.Nacos.Namespace)
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", cfg.Infra.Nacos.Group)

	if v := getEnv("SERVICE_PORT", ""); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = port
		}
	}
	if v := getEnv("FIXED_FEE_USD", ""); v != "" {
		if fee, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.App.FixedFeeUSD = fee
		}
	}
	if v := getEnv("ADMIN_USER_ID", ""); v != "" {
		cfg.App.AdminUserIDs = append(cfg.App.AdminUserIDs, v)
	}
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
