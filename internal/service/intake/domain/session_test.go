package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return &Service{
		ID:          "1",
		Platform:    "instagram",
		Type:        ServiceTypeFollower,
		DisplayName: "Instagram Followers",
		MinQty:      10,
		MaxQty:      10000,
		PricingMode: PricingModeFlat,
	}
}

func readySession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("u1")
	s.ChoosePlatform("instagram")
	require.NoError(t, s.ChooseService(testService()))
	require.NoError(t, s.SetTarget("alice"))
	d := NewOrderDraft(testService(), "alice", 250, nil, 9, 0.5)
	require.NoError(t, s.AttachDraft(d))
	return s
}

func TestSession_HappyPathSteps(t *testing.T) {
	s := NewSession("u1")
	assert.Equal(t, StepIdle, s.Step)

	s.ChoosePlatform("instagram")
	assert.Equal(t, StepPlatformChosen, s.Step)

	require.NoError(t, s.ChooseService(testService()))
	assert.Equal(t, StepAwaitingTarget, s.Step)

	require.NoError(t, s.SetTarget("alice"))
	assert.Equal(t, StepAwaitingQuantity, s.Step)
	assert.Equal(t, "alice", s.Target)

	d := NewOrderDraft(testService(), "alice", 250, nil, 9, 0.5)
	require.NoError(t, s.AttachDraft(d))
	assert.Equal(t, StepSummaryReady, s.Step)
	assert.Same(t, d, s.Draft)
}

func TestSession_ChooseServiceRequiresPlatform(t *testing.T) {
	s := NewSession("u1")
	assert.Error(t, s.ChooseService(testService()))
	assert.Equal(t, StepIdle, s.Step)
}

func TestSession_ChooseServiceRejectsForeignPlatform(t *testing.T) {
	s := NewSession("u1")
	s.ChoosePlatform("tiktok")

	err := s.ChooseService(testService())
	assert.Error(t, err)
	assert.Nil(t, s.Service)
	assert.Equal(t, StepPlatformChosen, s.Step)
}

func TestSession_ChoosePlatformClearsDownstream(t *testing.T) {
	s := readySession(t)

	s.ChoosePlatform("tiktok")
	assert.Equal(t, StepPlatformChosen, s.Step)
	assert.Nil(t, s.Service)
	assert.Nil(t, s.Draft)
	assert.Empty(t, s.Target)
}

func TestSession_BackToServicesKeepsPlatform(t *testing.T) {
	s := readySession(t)

	s.BackToServices()
	assert.Equal(t, StepPlatformChosen, s.Step)
	assert.Equal(t, "instagram", s.Platform)
	assert.Nil(t, s.Service)
	assert.Nil(t, s.Draft)
}

func TestSession_SetTargetRequiresService(t *testing.T) {
	s := NewSession("u1")
	s.ChoosePlatform("instagram")
	assert.Error(t, s.SetTarget("alice"))
}

func TestSession_AttachDraftRejectsStaleService(t *testing.T) {
	s := NewSession("u1")
	s.ChoosePlatform("instagram")
	require.NoError(t, s.ChooseService(testService()))
	require.NoError(t, s.SetTarget("alice"))

	other := testService()
	other.ID = "99"
	d := NewOrderDraft(other, "alice", 250, nil, 9, 0.5)
	assert.Error(t, s.AttachDraft(d))
	assert.Nil(t, s.Draft)
}

func TestSession_EditingOnlyFromSummary(t *testing.T) {
	s := NewSession("u1")
	s.ChoosePlatform("instagram")
	require.NoError(t, s.ChooseService(testService()))
	assert.Error(t, s.StartEditing(EditTarget))

	ready := readySession(t)
	require.NoError(t, ready.StartEditing(EditQuantity))
	assert.Equal(t, EditQuantity, ready.Editing)

	ready.StopEditing()
	assert.Equal(t, EditNone, ready.Editing)
	assert.Equal(t, StepSummaryReady, ready.Step)
}

func TestSession_ResetClearsEverything(t *testing.T) {
	s := readySession(t)
	require.NoError(t, s.StartEditing(EditTarget))

	s.Reset()
	assert.Equal(t, StepIdle, s.Step)
	assert.Empty(t, s.Platform)
	assert.Nil(t, s.Service)
	assert.Nil(t, s.Draft)
	assert.Equal(t, EditNone, s.Editing)
}

func TestOrderDraft_RepriceUpdatesAllPriceFields(t *testing.T) {
	d := NewOrderDraft(testService(), "alice", 250, nil, 9, 0.5)
	assert.InDelta(t, 9.5, d.TotalPrice, 1e-9)

	d.Reprice(500, nil, 15)
	assert.Equal(t, 500, d.Quantity)
	assert.InDelta(t, 15.0, d.BasePrice, 1e-9)
	assert.InDelta(t, 15.5, d.TotalPrice, 1e-9)
}

func TestOrderDraft_SetTargetDoesNotReprice(t *testing.T) {
	d := NewOrderDraft(testService(), "alice", 250, nil, 9, 0.5)
	d.SetTarget("bob")
	assert.Equal(t, "bob", d.Target)
	assert.InDelta(t, 9.0, d.BasePrice, 1e-9)
	assert.InDelta(t, 9.5, d.TotalPrice, 1e-9)
}
