package automation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

// Handler performs one rule action inside the triggering transaction. The
// events it returns are published after commit but are not fed back into
// the engine.
type Handler func(ctx context.Context, repos *repository.Repositories, rule models.AutomationRule, evt models.Event) ([]models.Event, error)

type Engine struct {
	handlers map[models.RuleAction]Handler
	logger   zerolog.Logger
}

func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		handlers: make(map[models.RuleAction]Handler),
		logger:   logger.With().Str("component", "automation").Logger(),
	}
}

func (e *Engine) Register(action models.RuleAction, h Handler) {
	e.handlers[action] = h
}

// Run evaluates the active rules for evt.Type in repos' tenant, in creation
// order, and executes the matching ones. The first failing action aborts the
// run so the caller's transaction rolls back.
func (e *Engine) Run(ctx context.Context, repos *repository.Repositories, evt models.Event) ([]models.Event, error) {
	rules, err := repos.AutomationRules.ListActiveByTrigger(ctx, evt.Type)
	if err != nil {
		return nil, fmt.Errorf("list rules for %s: %w", evt.Type, err)
	}

	var produced []models.Event
	for _, rule := range rules {
		if !Matches(rule.Condition, evt.Payload) {
			continue
		}
		h, ok := e.handlers[rule.Action]
		if !ok {
			return nil, fmt.Errorf("rule %s: no handler for action %s", rule.ID, rule.Action)
		}
		out, err := h(ctx, repos, rule, evt)
		if err != nil {
			return nil, fmt.Errorf("rule %s action %s: %w", rule.ID, rule.Action, err)
		}
		e.logger.Info().
			Str("tenant_id", evt.TenantID).
			Str("rule_id", rule.ID).
			Str("action", string(rule.Action)).
			Str("event", string(evt.Type)).
			Str("entity_id", evt.EntityID).
			Msg("automation rule fired")
		produced = append(produced, out...)
	}
	return produced, nil
}
