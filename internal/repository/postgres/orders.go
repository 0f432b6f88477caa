package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

const orderColumns = `id, tenant_id, order_number, customer_id, status, payment_status, segment,
	subtotal, discount_total, shipping_total, total, promotion_id, promotion_code,
	shipping_address, created_at, updated_at`

type orderRepo struct{ q *tenantQuerier }

func scanOrder(s scanner) (*models.Order, error) {
	var (
		o       models.Order
		address []byte
	)
	err := s.Scan(&o.ID, &o.TenantID, &o.OrderNumber, &o.CustomerID, &o.Status, &o.PaymentStatus, &o.Segment,
		&o.Subtotal, &o.DiscountTotal, &o.ShippingTotal, &o.Total, &o.PromotionID, &o.PromotionCode,
		&address, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
	}
	return &o, nil
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	o.TenantID = r.q.tenantID
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}

	_, err = r.q.exec(ctx, `
		INSERT INTO orders (tenant_id, id, order_number, customer_id, status, payment_status, segment,
			subtotal, discount_total, shipping_total, total, promotion_id, promotion_code,
			shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		o.ID, o.OrderNumber, o.CustomerID, o.Status, o.PaymentStatus, o.Segment,
		o.Subtotal, o.DiscountTotal, o.ShippingTotal, o.Total, o.PromotionID, o.PromotionCode,
		string(address), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, it := range items {
		_, err := r.q.exec(ctx, `
			INSERT INTO order_items (tenant_id, id, order_id, product_id, product_name, category_id,
				quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, o.ID, it.ProductID, it.ProductName, it.CategoryID, it.Quantity, it.UnitPrice, it.LineTotal)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", it.ID, err)
		}
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return scanOrder(r.q.queryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE tenant_id = $1 AND id = $2`, id))
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*models.Order, error) {
	return scanOrder(r.q.queryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, id))
}

func (r *orderRepo) Items(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.q.query(ctx, `
		SELECT id, order_id, product_id, product_name, category_id, quantity, unit_price, line_total
		FROM order_items
		WHERE tenant_id = $1 AND order_id = $2
		ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.CategoryID,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, mapError(err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *orderRepo) List(ctx context.Context, of models.OrderFilter) ([]models.Order, error) {
	page := of.Page.Normalize()
	var f filter
	if of.Status != "" {
		f.add("status = $%d", of.Status)
	}
	if of.PaymentStatus != "" {
		f.add("payment_status = $%d", of.PaymentStatus)
	}
	if of.CustomerID != "" {
		f.add("customer_id = $%d", of.CustomerID)
	}
	limit := f.page(page.Limit, page.Offset)

	rows, err := r.q.query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE tenant_id = $1`+f.where()+
			` ORDER BY created_at DESC, id`+limit, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) error {
	return r.q.execOne(ctx,
		`UPDATE orders SET status = $3, updated_at = $4 WHERE tenant_id = $1 AND id = $2`,
		id, status, at)
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus, at time.Time) error {
	return r.q.execOne(ctx,
		`UPDATE orders SET payment_status = $3, updated_at = $4 WHERE tenant_id = $1 AND id = $2`,
		id, status, at)
}
