// internal/service/intake/application/dto.go
package application

// EventKind 区分入站事件的类别。
type EventKind string

const (
	EventMenuSelection EventKind = "menu_selection" // 用户点了某个按钮
	EventFreeText      EventKind = "free_text"      // 用户输入了自由文本
)

// InboundEvent 是驱动会话引擎的入站事件，由传输层（webhook、websocket）构造。
type InboundEvent struct {
	UserID  string    `json:"userId"`
	ChatID  string    `json:"chatId,omitempty"`
	Kind    EventKind `json:"kind"`
	Payload string    `json:"payload,omitempty"` // 菜单选择的 action id
	Text    string    `json:"text,omitempty"`    // 自由文本内容
}

// Action 是回复中一个可点击的动作。
type Action struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// Reply 是出站响应描述：文本加有序的动作列表。
// 渲染/传输层负责把它转成自己的展现格式。
type Reply struct {
	Text    string   `json:"text"`
	Actions []Action `json:"actions,omitempty"`
}

// 菜单 action id。platform_/service_ 为带参前缀。
const (
	ActionStart         = "start"
	ActionBackPlatforms = "back_platforms"
	ActionBackServices  = "back_service"
	ActionBackSummary   = "back_order_summary"
	ActionEditUsername  = "edit_username"
	ActionEditQuantity  = "edit_quantity"
	ActionEditComments  = "edit_comments"
	ActionConfirmOrder  = "confirm_order"
	ActionCancelOrder   = "cancel_order"

	actionPlatformPrefix = "platform_"
	actionServicePrefix  = "service_"
)
