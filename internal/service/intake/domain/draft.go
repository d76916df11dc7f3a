// internal/service/intake/domain/draft.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderDraft 是一次会话中正在累积的订单状态。
// 只存在于“已选服务”和“确认/取消”之间，且同一会话同时最多一份。
type OrderDraft struct {
	CorrelationID string // 生成的关联 ID，贯穿提交与履约
	Platform      string
	ServiceID     string
	ServiceType   ServiceType
	ServiceName   string
	Target        string   // 目标账号（不含 @）
	Quantity      int      // comment 类服务等于评论条数
	Comments      []string // 仅 comment 类服务使用
	BasePrice     float64
	Fee           float64
	TotalPrice    float64
}

// NewOrderDraft 组装一份新的订单草稿。
// basePrice 必须已经由 ResolvePrice 计算完成；Fee 与 Total 在此一并写入，
// 保证价格字段永远同时更新。
func NewOrderDraft(svc *Service, target string, quantity int, comments []string, basePrice, fee float64) *OrderDraft {
	return &OrderDraft{
		CorrelationID: fmt.Sprintf("tg_%s_%d", uuid.New().String()[:8], time.Now().UnixMilli()),
		Platform:      svc.Platform,
		ServiceID:     svc.ID,
		ServiceType:   svc.Type,
		ServiceName:   svc.DisplayName,
		Target:        target,
		Quantity:      quantity,
		Comments:      comments,
		BasePrice:     basePrice,
		Fee:           fee,
		TotalPrice:    basePrice + fee,
	}
}

// SetTarget 更新目标账号。价格与目标无关，不触发重算。
func (d *OrderDraft) SetTarget(target string) {
	d.Target = target
}

// Reprice 更新数量（或评论列表）并同时重写全部价格字段。
// basePrice 与 total 永远不会被单独更新。
func (d *OrderDraft) Reprice(quantity int, comments []string, basePrice float64) {
	d.Quantity = quantity
	d.Comments = comments
	d.BasePrice = basePrice
	d.TotalPrice = basePrice + d.Fee
}
