package application

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"boost/internal/pkg/retry"
	"boost/internal/service/intake/domain"
	"boost/internal/service/intake/infrastructure"
)

// fakeCatalog 返回固定目录数据，并支持按方法注入失败。
type fakeCatalog struct {
	platforms []domain.Platform
	services  map[string][]domain.Service
	rules     map[string][]domain.PricingRule

	rulesErr     error
	rulesErrLeft int // 前 N 次 GetPricingRules 调用失败
	rulesCalls   int
}

func (f *fakeCatalog) ListPlatforms(context.Context) ([]domain.Platform, error) {
	return f.platforms, nil
}

func (f *fakeCatalog) ListServices(_ context.Context, platform string) ([]domain.Service, error) {
	return f.services[platform], nil
}

func (f *fakeCatalog) GetService(_ context.Context, id string) (*domain.Service, error) {
	for _, svcs := range f.services {
		for i := range svcs {
			if svcs[i].ID == id {
				svc := svcs[i]
				return &svc, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeCatalog) GetPricingRules(_ context.Context, serviceID string) ([]domain.PricingRule, error) {
	f.rulesCalls++
	if f.rulesErrLeft > 0 {
		f.rulesErrLeft--
		return nil, f.rulesErr
	}
	return f.rules[serviceID], nil
}

// fakeSubmission 记录收到的订单，并可注入固定失败。
type fakeSubmission struct {
	err    error
	orders []*domain.Order
}

func (f *fakeSubmission) Submit(_ context.Context, order *domain.Order) error {
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, order)
	return nil
}

func newTestCatalog() *fakeCatalog {
	followers := domain.Service{
		ID: "1", Platform: "instagram", Type: domain.ServiceTypeFollower,
		DisplayName: "Instagram Followers", MinQty: 10, MaxQty: 10000,
		PricingMode: domain.PricingModeFlat, Description: "Real followers",
	}
	comments := domain.Service{
		ID: "3", Platform: "instagram", Type: domain.ServiceTypeComment,
		DisplayName: "Instagram Comments", MinQty: 1, MaxQty: 500,
		PricingMode: domain.PricingModeFlat, Description: "Custom comments",
	}
	return &fakeCatalog{
		platforms: []domain.Platform{{Name: "instagram"}, {Name: "tiktok"}},
		services:  map[string][]domain.Service{"instagram": {followers, comments}},
		rules: map[string][]domain.PricingRule{
			"1": {{ServiceID: "1", Mode: domain.PricingModeFlat, UnitSize: 100, PriceUSD: 3}},
			"3": {{ServiceID: "3", Mode: domain.PricingModeFlat, UnitSize: 100, PriceUSD: 10}},
		},
	}
}

func newTestEngine(catalog *fakeCatalog, submission *fakeSubmission) (*ConversationEngine, *infrastructure.InMemorySessionStore) {
	store := infrastructure.NewInMemorySessionStore(time.Minute)
	engine := NewConversationEngine(
		catalog,
		store,
		submission,
		noop.NewTracerProvider().Tracer("test"),
		0.5,
		time.Minute,
		retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	)
	return engine, store
}

func menuEvent(userID, payload string) InboundEvent {
	return InboundEvent{UserID: userID, Kind: EventMenuSelection, Payload: payload}
}

func textEvent(userID, text string) InboundEvent {
	return InboundEvent{UserID: userID, Kind: EventFreeText, Text: text}
}

// 驱动会话走到摘要就绪：instagram followers，@alice，250 个。
func driveToSummary(t *testing.T, engine *ConversationEngine, userID string) Reply {
	t.Helper()
	ctx := context.Background()
	for _, ev := range []InboundEvent{
		menuEvent(userID, ActionStart),
		menuEvent(userID, "platform_instagram"),
		menuEvent(userID, "service_1"),
		textEvent(userID, "@alice"),
	} {
		_, err := engine.HandleEvent(ctx, ev)
		require.NoError(t, err)
	}
	reply, err := engine.HandleEvent(ctx, textEvent(userID, "250"))
	require.NoError(t, err)
	return reply
}

func TestEngine_HappyPathFollowerOrder(t *testing.T) {
	catalog := newTestCatalog()
	submission := &fakeSubmission{}
	engine, store := newTestEngine(catalog, submission)
	ctx := context.Background()

	reply, err := engine.HandleEvent(ctx, menuEvent("u1", ActionStart))
	require.NoError(t, err)
	require.Len(t, reply.Actions, 2)
	assert.Equal(t, "platform_instagram", reply.Actions[0].ID)
	assert.Equal(t, "Instagram", reply.Actions[0].Label)

	reply, err = engine.HandleEvent(ctx, menuEvent("u1", "platform_instagram"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Platform selected: instagram")
	assert.Equal(t, "service_1", reply.Actions[0].ID)

	reply, err = engine.HandleEvent(ctx, menuEvent("u1", "service_1"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "target username")

	reply, err = engine.HandleEvent(ctx, textEvent("u1", "@alice"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "quantity")

	// 250 个，100 一包 $3：3 包 $9 + $0.50 手续费
	reply, err = engine.HandleEvent(ctx, textEvent("u1", "250"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Username: @alice")
	assert.Contains(t, reply.Text, "Quantity: 250")
	assert.Contains(t, reply.Text, "Base Price: $9.00")
	assert.Contains(t, reply.Text, "Fee: $0.50")
	assert.Contains(t, reply.Text, "Total: $9.50")

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, domain.StepSummaryReady, s.Step)
	require.NotNil(t, s.Draft)
	assert.Equal(t, "alice", s.Draft.Target)
}

func TestEngine_ConfirmSubmitsAndClearsSession(t *testing.T) {
	catalog := newTestCatalog()
	submission := &fakeSubmission{}
	engine, store := newTestEngine(catalog, submission)
	ctx := context.Background()

	driveToSummary(t, engine, "u1")

	reply, err := engine.HandleEvent(ctx, menuEvent("u1", ActionConfirmOrder))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Order confirmed")

	require.Len(t, submission.orders, 1)
	order := submission.orders[0]
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, "alice", order.Target)
	assert.Equal(t, 250, order.Quantity)
	assert.InDelta(t, 9.5, order.TotalPrice, 1e-9)
	assert.NotEmpty(t, order.CorrelationID)

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestEngine_ConfirmFailureKeepsSummary(t *testing.T) {
	catalog := newTestCatalog()
	submission := &fakeSubmission{err: errors.New("provider down")}
	engine, store := newTestEngine(catalog, submission)
	ctx := context.Background()

	driveToSummary(t, engine, "u1")

	reply, err := engine.HandleEvent(ctx, menuEvent("u1", ActionConfirmOrder))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "could not submit")

	// 草稿原封不动，可以直接重试确认
	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, domain.StepSummaryReady, s.Step)
	require.NotNil(t, s.Draft)
	assert.InDelta(t, 9.5, s.Draft.TotalPrice, 1e-9)

	submission.err = nil
	reply, err = engine.HandleEvent(ctx, menuEvent("u1", ActionConfirmOrder))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Order confirmed")
}

func TestEngine_CancelClearsSession(t *testing.T) {
	catalog := newTestCatalog()
	engine, store := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	driveToSummary(t, engine, "u1")

	reply, err := engine.HandleEvent(ctx, menuEvent("u1", ActionCancelOrder))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "cancelled")

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestEngine_InvalidQuantityLeavesStateUntouched(t *testing.T) {
	catalog := newTestCatalog()
	engine, store := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	for _, ev := range []InboundEvent{
		menuEvent("u1", ActionStart),
		menuEvent("u1", "platform_instagram"),
		menuEvent("u1", "service_1"),
		textEvent("u1", "alice"),
	} {
		_, err := engine.HandleEvent(ctx, ev)
		require.NoError(t, err)
	}

	// 超出 [10, 10000]：会话停在数量录入，没有草稿
	reply, err := engine.HandleEvent(ctx, textEvent("u1", "5"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "between 10 and 10000")

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, domain.StepAwaitingQuantity, s.Step)
	assert.Nil(t, s.Draft)

	// 重新输入合法值直接成功
	reply, err = engine.HandleEvent(ctx, textEvent("u1", "250"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Total: $9.50")
}

func TestEngine_CommentServiceFlow(t *testing.T) {
	catalog := newTestCatalog()
	engine, store := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	for _, ev := range []InboundEvent{
		menuEvent("u1", ActionStart),
		menuEvent("u1", "platform_instagram"),
		menuEvent("u1", "service_3"),
	} {
		_, err := engine.HandleEvent(ctx, ev)
		require.NoError(t, err)
	}

	// comment 类服务跳过数量提示，直接要评论列表
	reply, err := engine.HandleEvent(ctx, textEvent("u1", "alice"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "separated by commas")

	reply, err = engine.HandleEvent(ctx, textEvent("u1", "Nice pic!, Awesome!, , Cool!"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Comments: 3")
	// 3 条评论按一整包计价：$10 + $0.50
	assert.Contains(t, reply.Text, "Total: $10.50")

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, s)
	require.NotNil(t, s.Draft)
	assert.Equal(t, []string{"Nice pic!", "Awesome!", "Cool!"}, s.Draft.Comments)
	assert.Equal(t, 3, s.Draft.Quantity)
}

func TestEngine_EditTargetDoesNotReprice(t *testing.T) {
	catalog := newTestCatalog()
	engine, store := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	driveToSummary(t, engine, "u1")

	reply, err := engine.HandleEvent(ctx, menuEvent("u1", ActionEditUsername))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "new target username")

	reply, err = engine.HandleEvent(ctx, textEvent("u1", "@bob"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Username: @bob")
	assert.Contains(t, reply.Text, "Total: $9.50")

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.EditNone, s.Editing)
	assert.Equal(t, "bob", s.Draft.Target)
}

func TestEngine_EditQuantityReprices(t *testing.T) {
	catalog := newTestCatalog()
	engine, store := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	driveToSummary(t, engine, "u1")

	_, err := engine.HandleEvent(ctx, menuEvent("u1", ActionEditQuantity))
	require.NoError(t, err)

	reply, err := engine.HandleEvent(ctx, textEvent("u1", "500"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Quantity: 500")
	assert.Contains(t, reply.Text, "Base Price: $15.00")
	assert.Contains(t, reply.Text, "Total: $15.50")

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 500, s.Draft.Quantity)
	assert.InDelta(t, 15.0, s.Draft.BasePrice, 1e-9)
	assert.InDelta(t, 15.5, s.Draft.TotalPrice, 1e-9)
}

func TestEngine_InvalidEditKeepsDraft(t *testing.T) {
	catalog := newTestCatalog()
	engine, store := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	driveToSummary(t, engine, "u1")

	_, err := engine.HandleEvent(ctx, menuEvent("u1", ActionEditQuantity))
	require.NoError(t, err)

	reply, err := engine.HandleEvent(ctx, textEvent("u1", "not a number"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "between 10 and 10000")

	// 编辑子状态和旧价格都保留
	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.EditQuantity, s.Editing)
	assert.Equal(t, 250, s.Draft.Quantity)
	assert.InDelta(t, 9.5, s.Draft.TotalPrice, 1e-9)
}

func TestEngine_PricingUnavailableKeepsState(t *testing.T) {
	catalog := newTestCatalog()
	catalog.rules["1"] = nil // 服务没有任何计价规则
	engine, store := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	for _, ev := range []InboundEvent{
		menuEvent("u1", ActionStart),
		menuEvent("u1", "platform_instagram"),
		menuEvent("u1", "service_1"),
		textEvent("u1", "alice"),
	} {
		_, err := engine.HandleEvent(ctx, ev)
		require.NoError(t, err)
	}

	reply, err := engine.HandleEvent(ctx, textEvent("u1", "250"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Pricing is unavailable")

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, domain.StepAwaitingQuantity, s.Step)
	assert.Nil(t, s.Draft)
}

func TestEngine_PricingRulesFetchRetriedThenSucceeds(t *testing.T) {
	catalog := newTestCatalog()
	catalog.rulesErr = errors.New("transient db failure")
	catalog.rulesErrLeft = 2 // 前两次失败，第三次成功
	engine, _ := newTestEngine(catalog, &fakeSubmission{})

	reply := driveToSummary(t, engine, "u1")
	assert.Contains(t, reply.Text, "Total: $9.50")
	assert.Equal(t, 3, catalog.rulesCalls)
}

func TestEngine_BackToServicesDropsDraft(t *testing.T) {
	catalog := newTestCatalog()
	engine, store := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	driveToSummary(t, engine, "u1")

	reply, err := engine.HandleEvent(ctx, menuEvent("u1", ActionBackServices))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Please select a service")

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepPlatformChosen, s.Step)
	assert.Equal(t, "instagram", s.Platform)
	assert.Nil(t, s.Draft)
	assert.Nil(t, s.Service)
}

func TestEngine_UnknownPlatformRejected(t *testing.T) {
	catalog := newTestCatalog()
	engine, store := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	_, err := engine.HandleEvent(ctx, menuEvent("u1", ActionStart))
	require.NoError(t, err)

	reply, err := engine.HandleEvent(ctx, menuEvent("u1", "platform_myspace"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Unknown platform")

	s, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepIdle, s.Step)
}

func TestEngine_ServiceFromOtherPlatformRejected(t *testing.T) {
	catalog := newTestCatalog()
	engine, _ := newTestEngine(catalog, &fakeSubmission{})
	ctx := context.Background()

	_, err := engine.HandleEvent(ctx, menuEvent("u1", ActionStart))
	require.NoError(t, err)
	_, err = engine.HandleEvent(ctx, menuEvent("u1", "platform_tiktok"))
	require.NoError(t, err)

	// service_1 属于 instagram，不能在 tiktok 会话里选
	reply, err := engine.HandleEvent(ctx, menuEvent("u1", "service_1"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Service not found")
}

func TestEngine_FreeTextBeforeMenuPromptsMenu(t *testing.T) {
	catalog := newTestCatalog()
	engine, _ := newTestEngine(catalog, &fakeSubmission{})

	reply, err := engine.HandleEvent(context.Background(), textEvent("u1", "hello"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "use the menu")
	require.Len(t, reply.Actions, 1)
	assert.Equal(t, ActionStart, reply.Actions[0].ID)
}

func TestEngine_MissingUserIDRejected(t *testing.T) {
	catalog := newTestCatalog()
	engine, _ := newTestEngine(catalog, &fakeSubmission{})

	_, err := engine.HandleEvent(context.Background(), InboundEvent{Kind: EventFreeText, Text: "hi"})
	assert.Error(t, err)
}
