package postgres

import (
	"context"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

const deliveryColumns = `id, tenant_id, order_id, status, driver_name, driver_phone, vehicle_info,
	estimated_time, actual_delivery, notes, created_at, updated_at`

type deliveryRepo struct{ q *tenantQuerier }

func scanDelivery(s scanner) (*models.Delivery, error) {
	var d models.Delivery
	err := s.Scan(&d.ID, &d.TenantID, &d.OrderID, &d.Status, &d.DriverName, &d.DriverPhone, &d.VehicleInfo,
		&d.EstimatedTime, &d.ActualDelivery, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

// Create inserts only when the order exists in the same tenant. A missing
// order yields repository.ErrNotFound, a second delivery for the order
// repository.ErrDuplicate.
func (r *deliveryRepo) Create(ctx context.Context, d *models.Delivery) error {
	d.TenantID = r.q.tenantID
	return r.q.execOne(ctx, `
		INSERT INTO deliveries (tenant_id, id, order_id, status, driver_name, driver_phone, vehicle_info,
			estimated_time, actual_delivery, notes, created_at, updated_at)
		SELECT $1, $2::text, o.id, $4::text, $5::text, $6::text, $7::text,
			$8::timestamptz, $9::timestamptz, $10::text, $11::timestamptz, $12::timestamptz
		FROM orders o
		WHERE o.tenant_id = $1 AND o.id = $3`,
		d.ID, d.OrderID, d.Status, d.DriverName, d.DriverPhone, d.VehicleInfo,
		d.EstimatedTime, d.ActualDelivery, d.Notes, d.CreatedAt, d.UpdatedAt)
}

func (r *deliveryRepo) GetByID(ctx context.Context, id string) (*models.Delivery, error) {
	return scanDelivery(r.q.queryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE tenant_id = $1 AND id = $2`, id))
}

func (r *deliveryRepo) GetForUpdate(ctx context.Context, id string) (*models.Delivery, error) {
	return scanDelivery(r.q.queryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, id))
}

func (r *deliveryRepo) List(ctx context.Context, df models.DeliveryFilter) ([]models.Delivery, error) {
	page := df.Page.Normalize()
	var f filter
	if df.Status != "" {
		f.add("status = $%d", df.Status)
	}
	limit := f.page(page.Limit, page.Offset)

	rows, err := r.q.query(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE tenant_id = $1`+f.where()+
			` ORDER BY created_at DESC, id`+limit, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *deliveryRepo) Update(ctx context.Context, d *models.Delivery) error {
	return r.q.execOne(ctx, `
		UPDATE deliveries
		SET status = $3, driver_name = $4, driver_phone = $5, vehicle_info = $6,
			estimated_time = $7, actual_delivery = $8, notes = $9, updated_at = $10
		WHERE tenant_id = $1 AND id = $2`,
		d.ID, d.Status, d.DriverName, d.DriverPhone, d.VehicleInfo,
		d.EstimatedTime, d.ActualDelivery, d.Notes, d.UpdatedAt)
}

func (r *deliveryRepo) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.q.queryRow(ctx, `
		SELECT COUNT(*) FROM deliveries
		WHERE tenant_id = $1 AND status IN ('PENDING', 'IN_TRANSIT')`).Scan(&n)
	return n, mapError(err)
}
