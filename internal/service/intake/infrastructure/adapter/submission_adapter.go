// internal/service/intake/infrastructure/adapter/submission_adapter.go
package adapter

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"boost/internal/pkg/logger"
	"boost/internal/service/intake/domain"
	"boost/internal/service/intake/domain/port"
)

// OrderSubmissionAdapter 实现 domain.OrderSubmission：
// 持久化订单 → 推送给履约供应商 → 广播确认事件。
// 供应商失败时订单落库为 FAILED 并把错误上抛，引擎据此停留在摘要状态。
type OrderSubmissionAdapter struct {
	orders   domain.OrderRepository
	provider port.FulfillmentProvider
	notifier port.ConfirmationNotifier
	tracer   trace.Tracer
}

func NewOrderSubmissionAdapter(
	orders domain.OrderRepository,
	provider port.FulfillmentProvider,
	notifier port.ConfirmationNotifier,
	tracer trace.Tracer,
) *OrderSubmissionAdapter {
	return &OrderSubmissionAdapter{
		orders:   orders,
		provider: provider,
		notifier: notifier,
		tracer:   tracer,
	}
}

var _ domain.OrderSubmission = (*OrderSubmissionAdapter)(nil)

func (a *OrderSubmissionAdapter) Submit(ctx context.Context, order *domain.Order) error {
	ctx, span := a.tracer.Start(ctx, "intake.SubmitOrder")
	defer span.End()

	// 1. 先落库，确认的事实不依赖供应商是否在线
	if err := a.orders.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist order")
		return errors.Wrap(err, "failed to persist order")
	}

	// 2. 推送给履约供应商
	result, err := a.provider.CreateOrder(ctx, port.FulfillmentRequest{
		CorrelationID: order.CorrelationID,
		Platform:      order.Platform,
		ServiceType:   string(order.ServiceType),
		Target:        order.Target,
		Quantity:      order.Quantity,
		Comments:      order.Comments,
	})
	if err != nil {
		order.MarkFailed("provider_rejected")
		if saveErr := a.orders.Save(ctx, order); saveErr != nil {
			logger.Ctx(ctx).Error().Err(saveErr).Str("order_id", order.ID).
				Msg("failed to record provider failure")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider submission failed")
		return err
	}

	order.MarkSubmitted(result.ProviderOrderID, result.Status)
	if err := a.orders.Save(ctx, order); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to update submitted order")
	}

	// 3. 广播确认事件。订单已经成立，通知失败只记录不上抛。
	if err := a.notifier.NotifyOrderConfirmed(ctx, order.ID, order.UserID, order.TotalPrice); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_id", order.ID).
			Msg("failed to publish confirmation event")
	}
	return nil
}
