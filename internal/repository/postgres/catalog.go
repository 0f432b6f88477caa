package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

const customerColumns = `id, tenant_id, user_id, name, email, phone, segment, created_at`

type customerRepo struct{ q *tenantQuerier }

func scanCustomer(s scanner) (*models.Customer, error) {
	var c models.Customer
	if err := s.Scan(&c.ID, &c.TenantID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Segment, &c.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	c.TenantID = r.q.tenantID
	_, err := r.q.exec(ctx, `
		INSERT INTO customers (tenant_id, id, user_id, name, email, phone, segment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Segment, c.CreatedAt)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	return scanCustomer(r.q.queryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE tenant_id = $1 AND id = $2`, id))
}

func (r *customerRepo) GetByUserID(ctx context.Context, userID string) (*models.Customer, error) {
	return scanCustomer(r.q.queryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE tenant_id = $1 AND user_id = $2`, userID))
}

const productColumns = `id, tenant_id, category_id, name, price, stock, is_active, created_at, updated_at`

type productRepo struct{ q *tenantQuerier }

func scanProduct(s scanner) (*models.Product, error) {
	var p models.Product
	if err := s.Scan(&p.ID, &p.TenantID, &p.CategoryID, &p.Name, &p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	p.TenantID = r.q.tenantID
	_, err := r.q.exec(ctx, `
		INSERT INTO products (tenant_id, id, category_id, name, price, stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.CategoryID, p.Name, p.Price, p.Stock, p.IsActive, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return scanProduct(r.q.queryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2`, id))
}

func (r *productRepo) List(ctx context.Context, activeOnly bool, page models.Page) ([]models.Product, error) {
	page = page.Normalize()
	var f filter
	if activeOnly {
		f.add("is_active = $%d", true)
	}
	limit := f.page(page.Limit, page.Offset)

	rows, err := r.q.query(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1`+f.where()+
			` ORDER BY created_at DESC, id`+limit, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	return r.q.execOne(ctx, `
		UPDATE products
		SET category_id = $3, name = $4, price = $5, stock = $6, is_active = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2`,
		p.ID, p.CategoryID, p.Name, p.Price, p.Stock, p.IsActive, p.UpdatedAt)
}

// AdjustStock is a single conditional update, so concurrent orders for the
// same product cannot oversell.
func (r *productRepo) AdjustStock(ctx context.Context, id string, delta int, at time.Time) (int, error) {
	var stock int
	err := r.q.queryRow(ctx, `
		UPDATE products SET stock = stock + $3, updated_at = $4
		WHERE tenant_id = $1 AND id = $2 AND stock + $3 >= 0
		RETURNING stock`, id, delta, at).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if err = mapError(err); !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	var exists bool
	if err := r.q.queryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE tenant_id = $1 AND id = $2)`, id).Scan(&exists); err != nil {
		return 0, mapError(err)
	}
	if exists {
		return 0, repository.ErrInsufficientStock
	}
	return 0, repository.ErrNotFound
}
