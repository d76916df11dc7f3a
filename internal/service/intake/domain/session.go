// internal/service/intake/domain/session.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

// Step 定义了会话的生命周期状态。
type Step string

const (
	StepIdle             Step = "IDLE"              // 尚未选择平台
	StepPlatformChosen   Step = "PLATFORM_CHOSEN"   // 已选平台，等待选服务
	StepAwaitingTarget   Step = "AWAITING_TARGET"   // 已选服务，等待目标账号
	StepAwaitingQuantity Step = "AWAITING_QUANTITY" // 等待数量（comment 类为评论列表）
	StepSummaryReady     Step = "SUMMARY_READY"     // 草稿就绪，等待确认/编辑/取消
)

// EditField 是 SummaryReady 之上的正交编辑子状态。
type EditField string

const (
	EditNone     EditField = ""
	EditTarget   EditField = "target"
	EditQuantity EditField = "quantity"
	EditComments EditField = "comments"
)

// Session 持有一个用户身份的会话状态，生命周期为一次对话。
// 同一会话同时最多一份 OrderDraft，且草稿引用的服务必须是当前选中的服务。
type Session struct {
	UserID    string
	Step      Step
	Platform  string
	Service   *Service // 选中服务的快照
	Target    string
	Editing   EditField
	Draft     *OrderDraft
	UpdatedAt time.Time
}

// NewSession 创建一个空会话。
func NewSession(userID string) *Session {
	return &Session{UserID: userID, Step: StepIdle, UpdatedAt: time.Now()}
}

// Reset 把会话清空到初始状态（对话重启或取消）。
func (s *Session) Reset() {
	s.Step = StepIdle
	s.Platform = ""
	s.Service = nil
	s.Target = ""
	s.Editing = EditNone
	s.Draft = nil
	s.UpdatedAt = time.Now()
}

// ChoosePlatform 记录平台选择并清空所有下游字段。
func (s *Session) ChoosePlatform(platform string) {
	s.Platform = platform
	s.Service = nil
	s.Target = ""
	s.Editing = EditNone
	s.Draft = nil
	s.Step = StepPlatformChosen
	s.UpdatedAt = time.Now()
}

// ChooseService 记录服务选择并清空目标与草稿。
// 服务必须属于当前已选平台。
func (s *Session) ChooseService(svc *Service) error {
	if s.Platform == "" {
		return errors.New("cannot choose service before platform")
	}
	if svc.Platform != s.Platform {
		return errors.Errorf("service %s does not belong to platform %s", svc.ID, s.Platform)
	}
	s.Service = svc
	s.Target = ""
	s.Editing = EditNone
	s.Draft = nil
	s.Step = StepAwaitingTarget
	s.UpdatedAt = time.Now()
	return nil
}

// BackToServices 丢弃服务与草稿，保留平台选择。
func (s *Session) BackToServices() {
	s.Service = nil
	s.Target = ""
	s.Editing = EditNone
	s.Draft = nil
	if s.Platform != "" {
		s.Step = StepPlatformChosen
	} else {
		s.Step = StepIdle
	}
	s.UpdatedAt = time.Now()
}

// SetTarget 记录目标账号并进入数量录入阶段。
func (s *Session) SetTarget(target string) error {
	if s.Service == nil {
		return errors.New("cannot set target before service is chosen")
	}
	s.Target = target
	s.Step = StepAwaitingQuantity
	s.UpdatedAt = time.Now()
	return nil
}

// AttachDraft 绑定草稿并进入摘要状态。
// 草稿必须引用当前选中的服务。
func (s *Session) AttachDraft(d *OrderDraft) error {
	if s.Service == nil || d.ServiceID != s.Service.ID {
		return errors.New("draft must reference the currently selected service")
	}
	s.Draft = d
	s.Editing = EditNone
	s.Step = StepSummaryReady
	s.UpdatedAt = time.Now()
	return nil
}

// StartEditing 从摘要状态进入字段编辑子状态。
func (s *Session) StartEditing(field EditField) error {
	if s.Step != StepSummaryReady || s.Draft == nil {
		return errors.New("editing is only reachable from a ready summary")
	}
	s.Editing = field
	s.UpdatedAt = time.Now()
	return nil
}

// StopEditing 退出编辑子状态，回到摘要。
func (s *Session) StopEditing() {
	s.Editing = EditNone
	s.UpdatedAt = time.Now()
}
