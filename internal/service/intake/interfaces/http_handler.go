// internal/service/intake/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"boost/internal/pkg/logger"
	"boost/internal/service/intake/application"
)

const serviceName = "intake-service"

// IntakeHandler 封装了会话引擎的 HTTP 处理器。
// 消息传输层（机器人网关）把用户动作转成入站事件打到 webhook 上。
type IntakeHandler struct {
	engine *application.ConversationEngine
}

// NewIntakeHandler 创建一个新的 HTTP 处理器实例
func NewIntakeHandler(engine *application.ConversationEngine) *IntakeHandler {
	return &IntakeHandler{engine: engine}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *IntakeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/webhook/event", h.eventHandler)
}

func (h *IntakeHandler) eventHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "intake.WebhookEvent")
	defer span.End()

	var event application.InboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("intake.user_id", event.UserID),
		attribute.String("intake.event_kind", string(event.Kind)),
	)

	reply, err := h.engine.HandleEvent(ctx, event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to handle inbound event")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to encode reply")
	}
}
