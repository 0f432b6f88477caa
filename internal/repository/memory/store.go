// Package memory is an in-process implementation of repository.Store. It is
// used when the database is disabled and as the backend for service tests.
// A transaction works on a copy of the state that replaces the live state
// only when the callback succeeds.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

type redemption struct {
	tenantID string
	models.PromotionRedemption
}

type state struct {
	customers     map[string]models.Customer
	products      map[string]models.Product
	orders        map[string]models.Order
	orderItems    map[string][]models.OrderItem
	deliveries    map[string]models.Delivery
	reviews       map[string]models.Review
	promotions    map[string]models.Promotion
	redemptions   []redemption
	rules         map[string]models.AutomationRule
	notifications map[string]models.Notification
}

func newState() *state {
	return &state{
		customers:     make(map[string]models.Customer),
		products:      make(map[string]models.Product),
		orders:        make(map[string]models.Order),
		orderItems:    make(map[string][]models.OrderItem),
		deliveries:    make(map[string]models.Delivery),
		reviews:       make(map[string]models.Review),
		promotions:    make(map[string]models.Promotion),
		rules:         make(map[string]models.AutomationRule),
		notifications: make(map[string]models.Notification),
	}
}

func cloneMap[T any](m map[string]T) map[string]T {
	out := make(map[string]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every table. Stored values are never mutated in place, so
// copying the maps is enough.
func (s *state) clone() *state {
	return &state{
		customers:     cloneMap(s.customers),
		products:      cloneMap(s.products),
		orders:        cloneMap(s.orders),
		orderItems:    cloneMap(s.orderItems),
		deliveries:    cloneMap(s.deliveries),
		reviews:       cloneMap(s.reviews),
		promotions:    cloneMap(s.promotions),
		redemptions:   append([]redemption(nil), s.redemptions...),
		rules:         cloneMap(s.rules),
		notifications: cloneMap(s.notifications),
	}
}

type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) Scoped(tenantID string) (*repository.Repositories, error) {
	if tenantID == "" {
		return nil, repository.ErrMissingTenant
	}
	return newRepositories(&view{store: s, tenantID: tenantID}), nil
}

// ExecTx serializes transactions on the store mutex. Repositories handed to
// fn must not be used after it returns.
func (s *Store) ExecTx(ctx context.Context, tenantID string, fn func(*repository.Repositories) error) error {
	if tenantID == "" {
		return repository.ErrMissingTenant
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(newRepositories(&view{tx: work, tenantID: tenantID})); err != nil {
		return err
	}
	s.st = work
	return nil
}

// view binds a tenant to either the live state (locking per call) or a
// transaction's working copy (already serialized by ExecTx).
type view struct {
	store    *Store
	tx       *state
	tenantID string
}

func (v *view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func newRepositories(v *view) *repository.Repositories {
	return &repository.Repositories{
		TenantID:        v.tenantID,
		Customers:       &customerRepo{v},
		Products:        &productRepo{v},
		Orders:          &orderRepo{v},
		Deliveries:      &deliveryRepo{v},
		Reviews:         &reviewRepo{v},
		Promotions:      &promotionRepo{v},
		AutomationRules: &ruleRepo{v},
		Notifications:   &notificationRepo{v},
		Analytics:       &analyticsRepo{v},
	}
}

// owned is the single tenant check every lookup goes through. A row that
// exists under another tenant is reported as not found.
func owned[T any](m map[string]T, id, tenantID string, tenantOf func(T) string) (T, error) {
	v, ok := m[id]
	if !ok || tenantOf(v) != tenantID {
		var zero T
		return zero, repository.ErrNotFound
	}
	return v, nil
}

// scan returns the tenant's rows that satisfy keep.
func scan[T any](m map[string]T, tenantID string, tenantOf func(T) string, keep func(T) bool) []T {
	var out []T
	for _, v := range m {
		if tenantOf(v) != tenantID {
			continue
		}
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func paginate[T any](items []T, p models.Page) []T {
	p = p.Normalize()
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

// newestFirst orders rows by creation time descending, then id.
func newestFirst[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		a, b := createdAt(items[i]), createdAt(items[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return id(items[i]) < id(items[j])
	})
}

func oldestFirst[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		a, b := createdAt(items[i]), createdAt(items[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return id(items[i]) < id(items[j])
	})
}
