package memory

import (
	"context"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

func deliveryTenant(d models.Delivery) string { return d.TenantID }

type deliveryRepo struct{ v *view }

func (r *deliveryRepo) Create(_ context.Context, d *models.Delivery) error {
	d.TenantID = r.v.tenantID
	return r.v.do(func(st *state) error {
		if _, err := owned(st.orders, d.OrderID, r.v.tenantID, orderTenant); err != nil {
			return err
		}
		for _, existing := range st.deliveries {
			if existing.OrderID == d.OrderID {
				return repository.ErrDuplicate
			}
		}
		st.deliveries[d.ID] = *d
		return nil
	})
}

func (r *deliveryRepo) GetByID(_ context.Context, id string) (*models.Delivery, error) {
	var out models.Delivery
	err := r.v.do(func(st *state) error {
		d, err := owned(st.deliveries, id, r.v.tenantID, deliveryTenant)
		out = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *deliveryRepo) GetForUpdate(ctx context.Context, id string) (*models.Delivery, error) {
	return r.GetByID(ctx, id)
}

func (r *deliveryRepo) List(_ context.Context, f models.DeliveryFilter) ([]models.Delivery, error) {
	var out []models.Delivery
	_ = r.v.do(func(st *state) error {
		out = scan(st.deliveries, r.v.tenantID, deliveryTenant, func(d models.Delivery) bool {
			return f.Status == "" || d.Status == f.Status
		})
		return nil
	})
	newestFirst(out, func(d models.Delivery) time.Time { return d.CreatedAt }, func(d models.Delivery) string { return d.ID })
	return paginate(out, f.Page), nil
}

func (r *deliveryRepo) Update(_ context.Context, d *models.Delivery) error {
	return r.v.do(func(st *state) error {
		existing, err := owned(st.deliveries, d.ID, r.v.tenantID, deliveryTenant)
		if err != nil {
			return err
		}
		d.TenantID = existing.TenantID
		d.OrderID = existing.OrderID
		d.CreatedAt = existing.CreatedAt
		st.deliveries[d.ID] = *d
		return nil
	})
}

func (r *deliveryRepo) CountOpen(_ context.Context) (int, error) {
	var n int
	_ = r.v.do(func(st *state) error {
		n = len(scan(st.deliveries, r.v.tenantID, deliveryTenant, func(d models.Delivery) bool {
			return d.Status == models.DeliveryStatusPending || d.Status == models.DeliveryStatusInTransit
		}))
		return nil
	})
	return n, nil
}
