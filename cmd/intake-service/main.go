// cmd/intake-service/main.go
package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"boost/internal/pkg/bootstrap"
	"boost/internal/pkg/httpclient"
	"boost/internal/pkg/logger"
	"boost/internal/pkg/mq"
	"boost/internal/pkg/redis"
	"boost/internal/pkg/retry"
	"boost/internal/service/intake/application"
	"boost/internal/service/intake/infrastructure"
	"boost/internal/service/intake/infrastructure/adapter"
	"boost/internal/service/intake/interfaces"
)

const serviceName = "intake-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	var kafkaWriter *kafka.Writer

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			tracer := otel.Tracer(serviceName)

			// 1. 初始化存储：MySQL 目录/订单，Redis 会话
			db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
			if err != nil {
				logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
			}
			if err := infrastructure.AutoMigrate(db); err != nil {
				logger.Logger.Fatal().Err(err).Msg("failed to migrate schema")
			}
			if os.Getenv("SEED_CATALOG") == "1" {
				if err := infrastructure.Seed(db); err != nil {
					logger.Logger.Fatal().Err(err).Msg("failed to seed catalog")
				}
			}

			redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
			if err != nil {
				logger.Logger.Fatal().Err(err).Msg("failed to initialize redis client")
			}

			// 2. 出站适配器：履约供应商 + 确认事件
			kafkaWriter = mq.NewKafkaWriter(
				strings.Split(cfg.Infra.Kafka.Brokers, ","),
				cfg.Infra.Kafka.ConfirmationTopic,
			)
			notifier := adapter.NewConfirmationKafkaAdapter(kafkaWriter)
			provider := adapter.NewProviderHTTPAdapter(httpclient.NewClient(tracer), cfg.Infra.Provider.BaseURL)

			orderRepo := infrastructure.NewGormOrderRepository(db)
			submission := adapter.NewOrderSubmissionAdapter(orderRepo, provider, notifier, tracer)

			// 3. 目录走短 TTL 缓存，所有会话共享
			catalog := infrastructure.NewCachedCatalog(
				infrastructure.NewGormCatalogRepository(db),
				30*time.Second,
			)

			// 4. 会话引擎
			engine := application.NewConversationEngine(
				catalog,
				infrastructure.NewRedisSessionStore(redisClient),
				submission,
				tracer,
				cfg.App.FixedFeeUSD,
				cfg.SessionTTLDuration(),
				retry.Policy{
					MaxAttempts: cfg.App.Retry.MaxAttempts,
					BaseDelay:   cfg.RetryBaseDelay(),
				},
			)

			// 5. 注册传输层：webhook + websocket 网关
			interfaces.NewIntakeHandler(engine).RegisterRoutes(appCtx.Mux)
			interfaces.NewChatGateway(engine).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if kafkaWriter != nil {
				if err := kafkaWriter.Close(); err != nil {
					logger.Logger.Error().Err(err).Msg("failed to close kafka writer")
				}
			}
		},
	})
}
