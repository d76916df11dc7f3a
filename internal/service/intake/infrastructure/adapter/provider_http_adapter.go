// internal/service/intake/infrastructure/adapter/provider_http_adapter.go
package adapter

import (
	"context"

	"github.com/pkg/errors"

	"boost/internal/pkg/httpclient"
	"boost/internal/service/intake/domain/port"
)

// ProviderHTTPAdapter 是 port.FulfillmentProvider 的 HTTP 实现，
// 把确认后的订单推送给履约供应商 API。
type ProviderHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewProviderHTTPAdapter(client *httpclient.Client, baseURL string) *ProviderHTTPAdapter {
	return &ProviderHTTPAdapter{client: client, baseURL: baseURL}
}

var _ port.FulfillmentProvider = (*ProviderHTTPAdapter)(nil)

func (a *ProviderHTTPAdapter) CreateOrder(ctx context.Context, req port.FulfillmentRequest) (*port.FulfillmentResult, error) {
	var result port.FulfillmentResult
	if err := a.client.PostJSON(ctx, a.baseURL+"/api/v2/order", req, &result); err != nil {
		return nil, errors.Wrap(err, "provider order creation failed")
	}
	if result.ProviderOrderID == "" {
		return nil, errors.New("provider returned empty order id")
	}
	return &result, nil
}
