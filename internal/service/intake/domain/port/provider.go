// internal/service/intake/domain/port/provider.go
package port

import "context"

// FulfillmentRequest 是推送给履约供应商的下单载荷。
type FulfillmentRequest struct {
	CorrelationID string   `json:"correlationId"`
	Platform      string   `json:"platform"`
	ServiceType   string   `json:"serviceType"`
	Target        string   `json:"target"`
	Quantity      int      `json:"quantity"`
	Comments      []string `json:"comments,omitempty"`
}

// FulfillmentResult 是供应商返回的受理结果。
type FulfillmentResult struct {
	ProviderOrderID string `json:"orderId"`
	Status          string `json:"status"`
}

// FulfillmentProvider 是履约供应商的出站端口。
type FulfillmentProvider interface {
	CreateOrder(ctx context.Context, req FulfillmentRequest) (*FulfillmentResult, error)
}

// ConfirmationNotifier 在订单确认后向下游广播事件。
type ConfirmationNotifier interface {
	NotifyOrderConfirmed(ctx context.Context, orderID, userID string, totalPrice float64) error
}
