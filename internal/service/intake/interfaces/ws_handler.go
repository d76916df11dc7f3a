// internal/service/intake/interfaces/ws_handler.go
package interfaces

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"boost/internal/pkg/logger"
	"boost/internal/service/intake/application"
)

// ChatGateway 是一个 websocket 传输：每个连接代表一个用户的会话通道，
// 收到的 JSON 消息转成入站事件，回复按原路写回。
// 主要用于本地调试和不走 webhook 的前端。
type ChatGateway struct {
	engine   *application.ConversationEngine
	upgrader websocket.Upgrader
}

func NewChatGateway(engine *application.ConversationEngine) *ChatGateway {
	return &ChatGateway{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// 网关面向内部前端，放行所有 Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes 在 ServeMux 上注册 websocket 入口
func (g *ChatGateway) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/chat", g.serveChat)
}

func (g *ChatGateway) serveChat(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger.Logger.Info().Str("user_id", userID).Msg("chat connection opened")
	tracer := otel.Tracer(serviceName)

	// 一个连接一个读循环；同一用户的事件天然串行，
	// 引擎内部的会话锁依然兜底跨连接的并发。
	for {
		var event application.InboundEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Logger.Warn().Err(err).Str("user_id", userID).Msg("chat connection dropped")
			}
			return
		}
		event.UserID = userID // 身份以连接参数为准，不信任消息体

		ctx, span := tracer.Start(r.Context(), "intake.ChatEvent")
		reply, err := g.engine.HandleEvent(ctx, event)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("failed to handle chat event")
			span.End()
			continue
		}
		span.End()

		if err := conn.WriteJSON(reply); err != nil {
			logger.Logger.Warn().Err(err).Str("user_id", userID).Msg("failed to write chat reply")
			return
		}
	}
}
