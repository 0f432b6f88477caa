// Package events publishes domain events after the mutation that produced
// them has committed.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

var ErrPublisherClosed = errors.New("event publisher is closed")

type Publisher interface {
	Publish(ctx context.Context, evts ...models.Event) error
	Close() error
}

// New builds an event envelope with a fresh id.
func New(typ models.EventType, tenantID, entityID string, payload map[string]any, at time.Time) models.Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return models.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		TenantID:   tenantID,
		EntityID:   entityID,
		Payload:    payload,
		OccurredAt: at.UTC(),
	}
}

// LogPublisher writes events to the log. It is used when no broker is
// configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, evts ...models.Event) error {
	for _, e := range evts {
		p.logger.Info().
			Str("event_id", e.ID).
			Str("type", string(e.Type)).
			Str("tenant_id", e.TenantID).
			Str("entity_id", e.EntityID).
			Interface("payload", e.Payload).
			Msg("domain event")
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *Recorder) Publish(_ context.Context, evts ...models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evts...)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
