package automation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository/memory"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(i int) *int { return &i }

func TestMatchesAmountBounds(t *testing.T) {
	cond := models.RuleCondition{MinAmount: decPtr("500"), MaxAmount: decPtr("1000")}

	assert.True(t, Matches(cond, map[string]any{models.PayloadAmount: decimal.NewFromInt(500)}))
	assert.True(t, Matches(cond, map[string]any{models.PayloadAmount: "1000.00"}))
	assert.False(t, Matches(cond, map[string]any{models.PayloadAmount: 1000.01}))
	assert.False(t, Matches(cond, map[string]any{models.PayloadAmount: json.Number("499.99")}))
}

func TestMatchesMissingFieldNeverMatches(t *testing.T) {
	cond := models.RuleCondition{MinStock: intPtr(1)}
	assert.False(t, Matches(cond, map[string]any{models.PayloadAmount: "10"}))
	assert.False(t, Matches(cond, nil))
	assert.True(t, Matches(models.RuleCondition{}, nil))
}

func TestMatchesStockBounds(t *testing.T) {
	cond := models.RuleCondition{MaxStock: intPtr(5)}
	assert.True(t, Matches(cond, map[string]any{models.PayloadStock: 5}))
	assert.False(t, Matches(cond, map[string]any{models.PayloadStock: float64(6)}))
	assert.False(t, Matches(cond, map[string]any{models.PayloadStock: 5.5}))
}

func TestValidateCondition(t *testing.T) {
	assert.NoError(t, ValidateCondition(models.RuleCondition{MinAmount: decPtr("1"), MaxAmount: decPtr("1")}))
	assert.Error(t, ValidateCondition(models.RuleCondition{MinAmount: decPtr("2"), MaxAmount: decPtr("1")}))
	assert.Error(t, ValidateCondition(models.RuleCondition{MinStock: intPtr(3), MaxStock: intPtr(2)}))
}

func seedRule(t *testing.T, repos *repository.Repositories, rule models.AutomationRule) {
	t.Helper()
	require.NoError(t, repos.AutomationRules.Create(context.Background(), &rule))
}

func TestEngineRunsMatchingActiveRulesInOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos, err := store.Scoped("tenant-a")
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedRule(t, repos, models.AutomationRule{ID: "r-big", Trigger: models.EventOrderCreated, Action: models.ActionNotifyStaff,
		Condition: models.RuleCondition{MinAmount: decPtr("1000")}, IsActive: true, CreatedAt: base})
	seedRule(t, repos, models.AutomationRule{ID: "r-all", Trigger: models.EventOrderCreated, Action: models.ActionNotifyStaff,
		IsActive: true, CreatedAt: base.Add(time.Minute)})
	seedRule(t, repos, models.AutomationRule{ID: "r-off", Trigger: models.EventOrderCreated, Action: models.ActionNotifyStaff,
		IsActive: false, CreatedAt: base})
	seedRule(t, repos, models.AutomationRule{ID: "r-other", Trigger: models.EventPaymentVerified, Action: models.ActionNotifyStaff,
		IsActive: true, CreatedAt: base})

	var fired []string
	engine := NewEngine(zerolog.Nop())
	engine.Register(models.ActionNotifyStaff, func(_ context.Context, _ *repository.Repositories, rule models.AutomationRule, _ models.Event) ([]models.Event, error) {
		fired = append(fired, rule.ID)
		return []models.Event{{Type: models.EventOrderStatusChanged}}, nil
	})

	evt := models.Event{Type: models.EventOrderCreated, TenantID: "tenant-a", EntityID: "o-1",
		Payload: map[string]any{models.PayloadAmount: decimal.NewFromInt(1500)}}
	out, err := engine.Run(ctx, repos, evt)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-big", "r-all"}, fired)
	assert.Len(t, out, 2)

	fired = nil
	evt.Payload[models.PayloadAmount] = decimal.NewFromInt(10)
	_, err = engine.Run(ctx, repos, evt)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-all"}, fired)
}

func TestEngineActionFailureAborts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos, err := store.Scoped("tenant-a")
	require.NoError(t, err)
	seedRule(t, repos, models.AutomationRule{ID: "r1", Trigger: models.EventOrderCreated, Action: models.ActionConfirmOrder, IsActive: true})

	boom := errors.New("boom")
	engine := NewEngine(zerolog.Nop())
	engine.Register(models.ActionConfirmOrder, func(context.Context, *repository.Repositories, models.AutomationRule, models.Event) ([]models.Event, error) {
		return nil, boom
	})

	_, err = engine.Run(ctx, repos, models.Event{Type: models.EventOrderCreated})
	assert.ErrorIs(t, err, boom)
}

func TestEngineUnknownActionIsAnError(t *testing.T) {
	ctx := context.Background()
	repos, err := memory.NewStore().Scoped("tenant-a")
	require.NoError(t, err)
	seedRule(t, repos, models.AutomationRule{ID: "r1", Trigger: models.EventOrderCreated, Action: models.ActionNotifyCustomer, IsActive: true})

	_, err = NewEngine(zerolog.Nop()).Run(ctx, repos, models.Event{Type: models.EventOrderCreated})
	assert.Error(t, err)
}
