// Package service holds the use cases. Every mutation runs in one
// transaction through a Dispatcher, which also runs automation rules for the
// events the mutation raised and publishes everything after commit.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
	"github.com/anu-devcode/deploy-test-sub001/internal/automation"
	"github.com/anu-devcode/deploy-test-sub001/internal/events"
	"github.com/anu-devcode/deploy-test-sub001/internal/fsm"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

// Clock returns the current time. Services never call time.Now directly.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

// Batch collects the events raised inside one transaction.
type Batch struct {
	tenantID string
	at       time.Time
	events   []models.Event
}

// Emit records an event for entityID stamped with the transaction time.
func (b *Batch) Emit(typ models.EventType, entityID string, payload map[string]any) {
	b.events = append(b.events, events.New(typ, b.tenantID, entityID, payload, b.at))
}

func (b *Batch) add(evts ...models.Event) {
	b.events = append(b.events, evts...)
}

// Dispatcher owns the transaction boundary of every mutating use case.
type Dispatcher struct {
	store     repository.Store
	engine    *automation.Engine
	publisher events.Publisher
	now       Clock
	logger    zerolog.Logger
}

func NewDispatcher(store repository.Store, engine *automation.Engine, publisher events.Publisher, now Clock, logger zerolog.Logger) *Dispatcher {
	if store == nil || engine == nil || publisher == nil {
		panic("dispatcher requires a store, an automation engine and a publisher")
	}
	if now == nil {
		now = SystemClock
	}
	return &Dispatcher{store: store, engine: engine, publisher: publisher, now: now, logger: logger}
}

// Now is the clock shared by every service built on this dispatcher.
func (d *Dispatcher) Now() time.Time { return d.now() }

// Scoped returns non-transactional repositories for reads.
func (d *Dispatcher) Scoped(tenantID string) (*repository.Repositories, error) {
	repos, err := d.store.Scoped(tenantID)
	return repos, classify(err, "")
}

// Do runs fn in a transaction. The events fn emits are fed to the automation
// engine inside the same transaction; events produced by rule actions are
// published but not fed back. Nothing is published unless the commit
// succeeds.
func (d *Dispatcher) Do(ctx context.Context, tenantID string, fn func(repos *repository.Repositories, b *Batch) error) error {
	var batch *Batch
	err := d.store.ExecTx(ctx, tenantID, func(repos *repository.Repositories) error {
		batch = &Batch{tenantID: tenantID, at: d.now()}
		if err := fn(repos, batch); err != nil {
			return err
		}
		raised := append([]models.Event(nil), batch.events...)
		for _, evt := range raised {
			produced, err := d.engine.Run(ctx, repos, evt)
			if err != nil {
				return err
			}
			batch.add(produced...)
		}
		return nil
	})
	if err != nil {
		return classify(err, "")
	}

	d.publish(ctx, batch.events)
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, evts []models.Event) {
	if len(evts) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := d.publisher.Publish(ctx, evts...); err != nil {
		d.logger.Error().Err(err).
			Str("tenant_id", evts[0].TenantID).
			Int("events", len(evts)).
			Msg("publish domain events failed")
	}
}

func newID() string { return uuid.NewString() }

// classify turns repository and transition errors into apperr values.
// Errors that already carry a kind pass through unchanged. entity names the
// record for not-found and duplicate codes; it may be empty.
func classify(err error, entity string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	var te *fsm.TransitionError
	if errors.As(err, &te) {
		return apperr.Conflict("illegal_transition", te.Error()).Wrap(err)
	}

	if entity == "" {
		entity = "record"
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(entity+"_not_found", entity+" not found").Wrap(err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict(entity+"_exists", entity+" already exists").Wrap(err)
	case errors.Is(err, repository.ErrInUse):
		return apperr.Conflict(entity+"_in_use", entity+" is still referenced").Wrap(err)
	case errors.Is(err, repository.ErrConstraint):
		return apperr.Conflict(entity+"_constraint_violation", entity+" violates a constraint").Wrap(err)
	case errors.Is(err, repository.ErrUsageLimitReached):
		return apperr.Conflict("usage_limit_reached", "promotion usage limit reached").Wrap(err)
	case errors.Is(err, repository.ErrInsufficientStock):
		return apperr.Conflict("insufficient_stock", "insufficient stock").Wrap(err)
	case errors.Is(err, repository.ErrMissingTenant):
		return apperr.Validation("tenant_required", "tenant id is required").Wrap(err)
	}
	return apperr.Internal(err)
}

func invalid(code, format string, args ...any) *apperr.Error {
	return apperr.Validation(code, fmt.Sprintf(format, args...))
}

func decimalInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }
