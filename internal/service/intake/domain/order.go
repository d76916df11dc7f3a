// internal/service/intake/domain/order.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// OrderStatus 定义了已确认订单的生命周期状态。
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"   // 已确认，尚未推送给履约供应商
	OrderStatusSubmitted OrderStatus = "SUBMITTED" // 已推送给供应商
	OrderStatusCompleted OrderStatus = "COMPLETED" // 供应商回报完成
	OrderStatusFailed    OrderStatus = "FAILED"    // 推送或履约失败
)

// Order 是一份确认后的订单。创建后不可变，
// 之后只有下游履约状态字段会被更新。
type Order struct {
	ID              string
	UserID          string
	CorrelationID   string
	Platform        string
	ServiceID       string
	ServiceType     ServiceType
	Target          string
	Quantity        int
	Comments        []string
	BasePrice       float64
	Fee             float64
	TotalPrice      float64
	ProviderOrderID string
	ProviderStatus  string
	Status          OrderStatus
	CreatedAt       time.Time
}

// NewOrderFromDraft 把一份完成的草稿固化为订单实体。
func NewOrderFromDraft(userID string, d *OrderDraft) (*Order, error) {
	if d == nil {
		return nil, errors.New("cannot create order from nil draft")
	}
	if d.Target == "" || d.Quantity <= 0 {
		return nil, errors.New("cannot create order with empty required fields")
	}
	return &Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		CorrelationID: d.CorrelationID,
		Platform:      d.Platform,
		ServiceID:     d.ServiceID,
		ServiceType:   d.ServiceType,
		Target:        d.Target,
		Quantity:      d.Quantity,
		Comments:      d.Comments,
		BasePrice:     d.BasePrice,
		Fee:           d.Fee,
		TotalPrice:    d.TotalPrice,
		Status:        OrderStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}

// MarkSubmitted 记录供应商侧的订单号和状态。
func (o *Order) MarkSubmitted(providerOrderID, providerStatus string) {
	o.ProviderOrderID = providerOrderID
	o.ProviderStatus = providerStatus
	o.Status = OrderStatusSubmitted
}

// MarkFailed 把订单标记为失败。
func (o *Order) MarkFailed(providerStatus string) {
	o.ProviderStatus = providerStatus
	o.Status = OrderStatusFailed
}
