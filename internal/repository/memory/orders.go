package memory

import (
	"context"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

func orderTenant(o models.Order) string { return o.TenantID }

type orderRepo struct{ v *view }

func (r *orderRepo) Create(_ context.Context, o *models.Order, items []models.OrderItem) error {
	o.TenantID = r.v.tenantID
	return r.v.do(func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return repository.ErrDuplicate
		}
		for _, existing := range st.orders {
			if existing.TenantID == o.TenantID && existing.OrderNumber == o.OrderNumber {
				return repository.ErrDuplicate
			}
		}
		st.orders[o.ID] = *o
		st.orderItems[o.ID] = append([]models.OrderItem(nil), items...)
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*models.Order, error) {
	var out models.Order
	err := r.v.do(func(st *state) error {
		o, err := owned(st.orders, id, r.v.tenantID, orderTenant)
		out = o
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no extra locking: transactions are already serialized.
func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*models.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) Items(_ context.Context, orderID string) ([]models.OrderItem, error) {
	var out []models.OrderItem
	err := r.v.do(func(st *state) error {
		if _, err := owned(st.orders, orderID, r.v.tenantID, orderTenant); err != nil {
			return err
		}
		out = append([]models.OrderItem(nil), st.orderItems[orderID]...)
		return nil
	})
	return out, err
}

func (r *orderRepo) List(_ context.Context, f models.OrderFilter) ([]models.Order, error) {
	var out []models.Order
	_ = r.v.do(func(st *state) error {
		out = scan(st.orders, r.v.tenantID, orderTenant, func(o models.Order) bool {
			if f.Status != "" && o.Status != f.Status {
				return false
			}
			if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
				return false
			}
			return f.CustomerID == "" || o.CustomerID == f.CustomerID
		})
		return nil
	})
	newestFirst(out, func(o models.Order) time.Time { return o.CreatedAt }, func(o models.Order) string { return o.ID })
	return paginate(out, f.Page), nil
}

func (r *orderRepo) UpdateStatus(_ context.Context, id string, status models.OrderStatus, at time.Time) error {
	return r.v.do(func(st *state) error {
		o, err := owned(st.orders, id, r.v.tenantID, orderTenant)
		if err != nil {
			return err
		}
		o.Status = status
		o.UpdatedAt = at
		st.orders[id] = o
		return nil
	})
}

func (r *orderRepo) UpdatePaymentStatus(_ context.Context, id string, status models.PaymentStatus, at time.Time) error {
	return r.v.do(func(st *state) error {
		o, err := owned(st.orders, id, r.v.tenantID, orderTenant)
		if err != nil {
			return err
		}
		o.PaymentStatus = status
		o.UpdatedAt = at
		st.orders[id] = o
		return nil
	})
}
