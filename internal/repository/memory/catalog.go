package memory

import (
	"context"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

func customerTenant(c models.Customer) string { return c.TenantID }
func productTenant(p models.Product) string   { return p.TenantID }

type customerRepo struct{ v *view }

func (r *customerRepo) Create(_ context.Context, c *models.Customer) error {
	c.TenantID = r.v.tenantID
	return r.v.do(func(st *state) error {
		for _, existing := range st.customers {
			if existing.TenantID == c.TenantID && existing.UserID == c.UserID {
				return repository.ErrDuplicate
			}
		}
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*models.Customer, error) {
	var out models.Customer
	err := r.v.do(func(st *state) error {
		c, err := owned(st.customers, id, r.v.tenantID, customerTenant)
		out = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *customerRepo) GetByUserID(_ context.Context, userID string) (*models.Customer, error) {
	var out []models.Customer
	_ = r.v.do(func(st *state) error {
		out = scan(st.customers, r.v.tenantID, customerTenant, func(c models.Customer) bool {
			return c.UserID == userID
		})
		return nil
	})
	if len(out) == 0 {
		return nil, repository.ErrNotFound
	}
	return &out[0], nil
}

type productRepo struct{ v *view }

func (r *productRepo) Create(_ context.Context, p *models.Product) error {
	p.TenantID = r.v.tenantID
	return r.v.do(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return repository.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*models.Product, error) {
	var out models.Product
	err := r.v.do(func(st *state) error {
		p, err := owned(st.products, id, r.v.tenantID, productTenant)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepo) List(_ context.Context, activeOnly bool, page models.Page) ([]models.Product, error) {
	var out []models.Product
	_ = r.v.do(func(st *state) error {
		out = scan(st.products, r.v.tenantID, productTenant, func(p models.Product) bool {
			return !activeOnly || p.IsActive
		})
		return nil
	})
	newestFirst(out, func(p models.Product) time.Time { return p.CreatedAt }, func(p models.Product) string { return p.ID })
	return paginate(out, page), nil
}

func (r *productRepo) Update(_ context.Context, p *models.Product) error {
	return r.v.do(func(st *state) error {
		if _, err := owned(st.products, p.ID, r.v.tenantID, productTenant); err != nil {
			return err
		}
		p.TenantID = r.v.tenantID
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) AdjustStock(_ context.Context, id string, delta int, at time.Time) (int, error) {
	var stock int
	err := r.v.do(func(st *state) error {
		p, err := owned(st.products, id, r.v.tenantID, productTenant)
		if err != nil {
			return err
		}
		if p.Stock+delta < 0 {
			return repository.ErrInsufficientStock
		}
		p.Stock += delta
		p.UpdatedAt = at
		st.products[id] = p
		stock = p.Stock
		return nil
	})
	return stock, err
}
