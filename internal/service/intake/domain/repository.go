// internal/service/intake/domain/repository.go
package domain

import (
	"context"
	"time"
)

// Catalog 是平台/服务/计价规则的只读查询接口。
// 位于领域层，由基础设施层实现。
type Catalog interface {
	ListPlatforms(ctx context.Context) ([]Platform, error)
	ListServices(ctx context.Context, platform string) ([]Service, error)
	GetService(ctx context.Context, id string) (*Service, error)
	GetPricingRules(ctx context.Context, serviceID string) ([]PricingRule, error)
}

// SessionStore 按用户身份保存会话。条目由其用户身份独占，
// 永远不允许跨会话修改。
type SessionStore interface {
	// Get 返回用户的会话；不存在时返回 (nil, nil)。
	Get(ctx context.Context, userID string) (*Session, error)
	Put(ctx context.Context, s *Session, ttl time.Duration) error
	Del(ctx context.Context, userID string) error
}

// OrderRepository 定义了订单实体的持久化接口。
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
}

// OrderSubmission 是确认草稿后的订单提交协作方。
// 只在 confirm 转移中被调用；失败时引擎必须停留在摘要状态。
type OrderSubmission interface {
	Submit(ctx context.Context, order *Order) error
}
