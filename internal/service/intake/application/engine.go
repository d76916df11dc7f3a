// internal/service/intake/application/engine.go
package application

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"boost/internal/pkg/logger"
	"boost/internal/pkg/retry"
	"boost/internal/service/intake/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ConversationEngine 持有每用户的会话，解释入站事件，
// 调用计价引擎并产出下一个状态加出站回复。
// 所有外部依赖都以领域端口注入。
type ConversationEngine struct {
	catalog     domain.Catalog
	sessions    domain.SessionStore
	submission  domain.OrderSubmission
	tracer      trace.Tracer
	fixedFee    float64
	sessionTTL  time.Duration
	retryPolicy retry.Policy

	// 同一用户的事件必须串行处理，防止双击确认这类竞态。
	// 不同用户之间完全独立，可并行。
	locks sync.Map // userID -> *sync.Mutex
}

func NewConversationEngine(
	catalog domain.Catalog,
	sessions domain.SessionStore,
	submission domain.OrderSubmission,
	tracer trace.Tracer,
	fixedFee float64,
	sessionTTL time.Duration,
	retryPolicy retry.Policy,
) *ConversationEngine {
	return &ConversationEngine{
		catalog:     catalog,
		sessions:    sessions,
		submission:  submission,
		tracer:      tracer,
		fixedFee:    fixedFee,
		sessionTTL:  sessionTTL,
		retryPolicy: retryPolicy,
	}
}

// sessionOp 表示一次事件处理后对会话存储的动作。
// 校验失败时返回 opNone，保证失败的转移不落任何状态。
type sessionOp int

const (
	opNone sessionOp = iota
	opSave
	opDelete
)

// HandleEvent 是引擎的唯一入口：入站事件 → 查会话 → 按当前状态校验
// → 变更草稿/会话指针 → 产出回复描述。
func (e *ConversationEngine) HandleEvent(ctx context.Context, ev InboundEvent) (Reply, error) {
	ctx, span := e.tracer.Start(ctx, "intake.HandleEvent")
	defer span.End()

	if ev.UserID == "" {
		return Reply{}, errors.New("inbound event is missing user identity")
	}
	span.SetAttributes(
		attribute.String("intake.user_id", ev.UserID),
		attribute.String("intake.event_kind", string(ev.Kind)),
	)

	mu := e.lockFor(ev.UserID)
	mu.Lock()
	defer mu.Unlock()

	s, err := e.sessions.Get(ctx, ev.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session store read failed")
		logger.Ctx(ctx).Error().Err(err).Str("user_id", ev.UserID).Msg("failed to load session")
		return collaboratorFailureReply(), nil
	}
	if s == nil {
		s = domain.NewSession(ev.UserID)
	}

	var reply Reply
	var op sessionOp
	switch ev.Kind {
	case EventMenuSelection:
		reply, op = e.handleMenu(ctx, s, ev.Payload)
	case EventFreeText:
		reply, op = e.handleText(ctx, s, ev.Text)
	default:
		reply, op = Reply{Text: "Unsupported event."}, opNone
	}

	switch op {
	case opSave:
		if err := e.sessions.Put(ctx, s, e.sessionTTL); err != nil {
			span.RecordError(err)
			logger.Ctx(ctx).Error().Err(err).Str("user_id", ev.UserID).Msg("failed to persist session")
			return collaboratorFailureReply(), nil
		}
	case opDelete:
		if err := e.sessions.Del(ctx, ev.UserID); err != nil {
			// 订单侧的事实已经成立，只记录，不向用户暴露
			logger.Ctx(ctx).Error().Err(err).Str("user_id", ev.UserID).Msg("failed to clear session")
		}
	}
	return reply, nil
}

// handleMenu 处理按钮类事件（平台/服务选择、返回、编辑、确认、取消）。
func (e *ConversationEngine) handleMenu(ctx context.Context, s *domain.Session, payload string) (Reply, sessionOp) {
	switch {
	case payload == ActionStart || payload == ActionBackPlatforms:
		return e.showPlatforms(ctx, s)

	case strings.HasPrefix(payload, actionPlatformPrefix):
		return e.selectPlatform(ctx, s, strings.TrimPrefix(payload, actionPlatformPrefix))

	case strings.HasPrefix(payload, actionServicePrefix):
		return e.selectService(ctx, s, strings.TrimPrefix(payload, actionServicePrefix))

	case payload == ActionBackServices:
		return e.backToServices(ctx, s)

	case payload == ActionBackSummary:
		if s.Draft == nil {
			return e.invariantViolation(ctx, s, errors.New("back to summary without a draft"))
		}
		s.StopEditing()
		return summaryReply(s.Draft), opSave

	case payload == ActionEditUsername:
		return e.startEditing(ctx, s, domain.EditTarget)
	case payload == ActionEditQuantity:
		return e.startEditing(ctx, s, domain.EditQuantity)
	case payload == ActionEditComments:
		return e.startEditing(ctx, s, domain.EditComments)

	case payload == ActionConfirmOrder:
		return e.confirmOrder(ctx, s)

	case payload == ActionCancelOrder:
		return cancelledReply(), opDelete

	default:
		logger.Ctx(ctx).Warn().Str("payload", payload).Msg("unknown menu action")
		return Reply{Text: "Unknown action."}, opNone
	}
}

func (e *ConversationEngine) showPlatforms(ctx context.Context, s *domain.Session) (Reply, sessionOp) {
	platforms, err := e.listPlatforms(ctx)
	if err != nil {
		return e.collaboratorFailure(ctx, err)
	}
	s.Reset()
	if len(platforms) == 0 {
		return Reply{Text: "No platforms available now."}, opSave
	}
	return platformMenu("Welcome! Please select a platform:", platforms), opSave
}

func (e *ConversationEngine) selectPlatform(ctx context.Context, s *domain.Session, name string) (Reply, sessionOp) {
	platforms, err := e.listPlatforms(ctx)
	if err != nil {
		return e.collaboratorFailure(ctx, err)
	}
	known := false
	for _, p := range platforms {
		if p.Name == name {
			known = true
			break
		}
	}
	if !known {
		return validationFailure(domain.NewValidationError("Unknown platform. Please pick one from the list."), ActionBackPlatforms)
	}

	services, err := e.listServices(ctx, name)
	if err != nil {
		return e.collaboratorFailure(ctx, err)
	}

	// 外部调用全部成功后才提交状态转移
	s.ChoosePlatform(name)
	if len(services) == 0 {
		return validationReply("No services for this platform.", ActionBackPlatforms), opSave
	}
	return serviceMenu(name, services), opSave
}

func (e *ConversationEngine) selectService(ctx context.Context, s *domain.Session, id string) (Reply, sessionOp) {
	if s.Platform == "" {
		return e.invariantViolation(ctx, s, errors.New("service selected before platform"))
	}
	svc, err := e.getService(ctx, id)
	if err != nil {
		return e.collaboratorFailure(ctx, err)
	}
	if svc == nil || svc.Platform != s.Platform {
		return validationFailure(domain.NewValidationError("Service not found."), ActionBackPlatforms)
	}
	if err := s.ChooseService(svc); err != nil {
		return e.invariantViolation(ctx, s, err)
	}
	return targetPrompt(svc), opSave
}

func (e *ConversationEngine) backToServices(ctx context.Context, s *domain.Session) (Reply, sessionOp) {
	if s.Platform == "" {
		return e.showPlatforms(ctx, s)
	}
	services, err := e.listServices(ctx, s.Platform)
	if err != nil {
		return e.collaboratorFailure(ctx, err)
	}
	s.BackToServices()
	return serviceMenu(s.Platform, services), opSave
}

func (e *ConversationEngine) startEditing(ctx context.Context, s *domain.Session, field domain.EditField) (Reply, sessionOp) {
	if s.Step != domain.StepSummaryReady || s.Draft == nil || s.Service == nil {
		return e.invariantViolation(ctx, s, errors.New("edit requested outside summary"))
	}
	// comment 类服务编辑评论，其余编辑数量；不匹配时重发摘要
	if field == domain.EditQuantity && s.Service.IsCommentType() ||
		field == domain.EditComments && !s.Service.IsCommentType() {
		return summaryReply(s.Draft), opNone
	}
	if err := s.StartEditing(field); err != nil {
		return e.invariantViolation(ctx, s, err)
	}
	return editPrompt(field), opSave
}

// confirmOrder 把草稿移交给订单提交协作方。
// 只有提交成功才离开 SummaryReady；失败时草稿原封不动。
func (e *ConversationEngine) confirmOrder(ctx context.Context, s *domain.Session) (Reply, sessionOp) {
	if s.Step != domain.StepSummaryReady || s.Draft == nil {
		return e.invariantViolation(ctx, s, errors.New("confirm without a ready draft"))
	}

	order, err := domain.NewOrderFromDraft(s.UserID, s.Draft)
	if err != nil {
		return e.invariantViolation(ctx, s, err)
	}

	err = retry.Do(ctx, e.retryPolicy, func(ctx context.Context) error {
		return e.submission.Submit(ctx, order)
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("correlation_id", order.CorrelationID).
			Msg("order submission failed, session stays at summary")
		return Reply{
			Text:    "We could not submit your order right now. Please try again.",
			Actions: summaryReply(s.Draft).Actions,
		}, opNone
	}

	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("user_id", s.UserID).
		Float64("total", order.TotalPrice).
		Msg("order confirmed")
	return confirmedReply(order.ID, order.TotalPrice), opDelete
}

// handleText 处理自由文本：编辑子状态优先，然后才是主流程。
func (e *ConversationEngine) handleText(ctx context.Context, s *domain.Session, text string) (Reply, sessionOp) {
	if s.Editing != domain.EditNone && s.Draft != nil {
		return e.applyEdit(ctx, s, text)
	}

	switch s.Step {
	case domain.StepAwaitingTarget:
		return e.acceptTarget(ctx, s, text)
	case domain.StepAwaitingQuantity:
		return e.acceptQuantityOrComments(ctx, s, text)
	case domain.StepSummaryReady:
		if s.Draft == nil {
			return e.invariantViolation(ctx, s, errors.New("summary state with no draft"))
		}
		return summaryReply(s.Draft), opNone
	default:
		// Idle / PlatformChosen 阶段收到文本：提示用户用菜单
		return Reply{
			Text:    "Please use the menu to continue.",
			Actions: []Action{{Label: "Start", ID: ActionStart}},
		}, opNone
	}
}

func (e *ConversationEngine) acceptTarget(ctx context.Context, s *domain.Session, text string) (Reply, sessionOp) {
	if s.Service == nil {
		return e.invariantViolation(ctx, s, errors.New("awaiting target with no service selected"))
	}
	target := normalizeTarget(text)
	if target == "" {
		return validationFailure(domain.NewValidationError("Invalid username. Please try again."), ActionBackServices)
	}
	if err := s.SetTarget(target); err != nil {
		return e.invariantViolation(ctx, s, err)
	}
	if s.Service.IsCommentType() {
		return commentsPrompt(), opSave
	}
	return quantityPrompt(), opSave
}

func (e *ConversationEngine) acceptQuantityOrComments(ctx context.Context, s *domain.Session, text string) (Reply, sessionOp) {
	svc := s.Service
	if svc == nil || s.Target == "" {
		return e.invariantViolation(ctx, s, errors.New("awaiting quantity with incomplete session"))
	}

	var quantity int
	var comments []string
	if svc.IsCommentType() {
		comments = parseComments(text)
		if len(comments) == 0 || !svc.QuantityInRange(len(comments)) {
			return validationFailure(commentCountError(svc), ActionBackServices)
		}
		quantity = len(comments)
	} else {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || !svc.QuantityInRange(n) {
			return validationFailure(quantityRangeError(svc), ActionBackServices)
		}
		quantity = n
	}

	basePrice, err := e.resolveBasePrice(ctx, svc, quantity)
	if err != nil {
		return e.priceFailure(ctx, err, ActionBackServices)
	}

	draft := domain.NewOrderDraft(svc, s.Target, quantity, comments, basePrice, e.fixedFee)
	if err := s.AttachDraft(draft); err != nil {
		return e.invariantViolation(ctx, s, err)
	}
	return summaryReply(draft), opSave
}

// applyEdit 对已有草稿做就地字段编辑。
// 编辑账号不触发重算；编辑数量/评论必须同时重算 base 与 total。
func (e *ConversationEngine) applyEdit(ctx context.Context, s *domain.Session, text string) (Reply, sessionOp) {
	svc := s.Service
	if svc == nil {
		return e.invariantViolation(ctx, s, errors.New("editing with no service selected"))
	}

	switch s.Editing {
	case domain.EditTarget:
		target := normalizeTarget(text)
		if target == "" {
			return validationFailure(domain.NewValidationError("Invalid username. Please try again."), ActionBackSummary)
		}
		s.Draft.SetTarget(target)
		s.Target = target
		s.StopEditing()
		return summaryReply(s.Draft), opSave

	case domain.EditQuantity:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || !svc.QuantityInRange(n) {
			return validationFailure(quantityRangeError(svc), ActionBackSummary)
		}
		basePrice, err := e.resolveBasePrice(ctx, svc, n)
		if err != nil {
			return e.priceFailure(ctx, err, ActionBackSummary)
		}
		s.Draft.Reprice(n, nil, basePrice)
		s.StopEditing()
		return summaryReply(s.Draft), opSave

	case domain.EditComments:
		comments := parseComments(text)
		if len(comments) == 0 || !svc.QuantityInRange(len(comments)) {
			return validationFailure(commentCountError(svc), ActionBackSummary)
		}
		basePrice, err := e.resolveBasePrice(ctx, svc, len(comments))
		if err != nil {
			return e.priceFailure(ctx, err, ActionBackSummary)
		}
		s.Draft.Reprice(len(comments), comments, basePrice)
		s.StopEditing()
		return summaryReply(s.Draft), opSave

	default:
		return e.invariantViolation(ctx, s, errors.Errorf("unknown edit field %q", s.Editing))
	}
}

// resolveBasePrice 取计价规则（带重试）并调用纯函数 ResolvePrice。
func (e *ConversationEngine) resolveBasePrice(ctx context.Context, svc *domain.Service, quantity int) (float64, error) {
	var rules []domain.PricingRule
	err := retry.Do(ctx, e.retryPolicy, func(ctx context.Context) error {
		var inner error
		rules, inner = e.catalog.GetPricingRules(ctx, svc.ID)
		return inner
	})
	if err != nil {
		return 0, &domain.CollaboratorError{Op: "catalog.GetPricingRules", Cause: err}
	}
	price, err := domain.ResolvePrice(svc, rules, quantity)
	if err != nil {
		return 0, &domain.PricingError{Cause: err}
	}
	return price, nil
}

func (e *ConversationEngine) priceFailure(ctx context.Context, err error, backAction string) (Reply, sessionOp) {
	var pricingErr *domain.PricingError
	if errors.As(err, &pricingErr) {
		logger.Ctx(ctx).Warn().Err(err).Msg("pricing resolution failed")
		return pricingUnavailableReply(backAction), opNone
	}
	return e.collaboratorFailure(ctx, err)
}

func (e *ConversationEngine) collaboratorFailure(ctx context.Context, err error) (Reply, sessionOp) {
	logger.Ctx(ctx).Error().Err(err).Msg("collaborator call failed after retries")
	return collaboratorFailureReply(), opNone
}

// invariantViolation 处理程序级错误：记录日志、重置会话，引导用户重新开始。
func (e *ConversationEngine) invariantViolation(ctx context.Context, s *domain.Session, err error) (Reply, sessionOp) {
	logger.Ctx(ctx).Error().Err(err).Str("user_id", s.UserID).Str("step", string(s.Step)).
		Msg("session invariant violated, resetting conversation")
	s.Reset()
	return restartReply(), opSave
}

// 带重试的 Catalog 访问封装。重试只作用于协作方边界。

func (e *ConversationEngine) listPlatforms(ctx context.Context) ([]domain.Platform, error) {
	var out []domain.Platform
	err := retry.Do(ctx, e.retryPolicy, func(ctx context.Context) error {
		var inner error
		out, inner = e.catalog.ListPlatforms(ctx)
		return inner
	})
	if err != nil {
		return nil, &domain.CollaboratorError{Op: "catalog.ListPlatforms", Cause: err}
	}
	return out, nil
}

func (e *ConversationEngine) listServices(ctx context.Context, platform string) ([]domain.Service, error) {
	var out []domain.Service
	err := retry.Do(ctx, e.retryPolicy, func(ctx context.Context) error {
		var inner error
		out, inner = e.catalog.ListServices(ctx, platform)
		return inner
	})
	if err != nil {
		return nil, &domain.CollaboratorError{Op: "catalog.ListServices", Cause: err}
	}
	return out, nil
}

func (e *ConversationEngine) getService(ctx context.Context, id string) (*domain.Service, error) {
	var out *domain.Service
	err := retry.Do(ctx, e.retryPolicy, func(ctx context.Context) error {
		var inner error
		out, inner = e.catalog.GetService(ctx, id)
		return inner
	})
	if err != nil {
		return nil, &domain.CollaboratorError{Op: "catalog.GetService", Cause: err}
	}
	return out, nil
}

func (e *ConversationEngine) lockFor(userID string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// validationFailure 把校验错误渲染给用户。校验失败永远不落状态。
func validationFailure(verr *domain.ValidationError, backAction string) (Reply, sessionOp) {
	return validationReply(verr.Message, backAction), opNone
}

func quantityRangeError(svc *domain.Service) *domain.ValidationError {
	return domain.NewValidationError("Enter a number between %d and %d.", svc.MinQty, svc.MaxQty)
}

func commentCountError(svc *domain.Service) *domain.ValidationError {
	return domain.NewValidationError("Enter at least %d, at most %d comments.", svc.MinQty, svc.MaxQty)
}

// normalizeTarget 去掉首尾空白和可选的前导 @。
func normalizeTarget(text string) string {
	return strings.TrimPrefix(strings.TrimSpace(text), "@")
}

// parseComments 按逗号切分评论，丢弃空项。
func parseComments(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := strings.TrimSpace(p); c != "" {
			out = append(out, c)
		}
	}
	return out
}
