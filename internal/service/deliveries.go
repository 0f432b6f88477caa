package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

type CreateDeliveryInput struct {
	OrderID string
	models.DriverInfo
	EstimatedTime *time.Time
	Notes         *string
}

type DeliveryService struct {
	tx     *Dispatcher
	logger zerolog.Logger
}

func NewDeliveryService(tx *Dispatcher, logger zerolog.Logger) *DeliveryService {
	if tx == nil {
		panic("delivery service requires a dispatcher")
	}
	return &DeliveryService{tx: tx, logger: logger.With().Str("service", "deliveries").Logger()}
}

func (s *DeliveryService) Create(ctx context.Context, tenantID string, in CreateDeliveryInput) (*models.Delivery, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, invalid("order_required", "order id is required")
	}
	var out *models.Delivery
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		order, err := repos.Orders.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return classify(err, "order")
		}
		if order.Status == models.OrderStatusCancelled {
			return apperr.Conflict("order_cancelled", "cannot deliver a cancelled order")
		}

		d := &models.Delivery{
			ID:            newID(),
			OrderID:       order.ID,
			Status:        models.DeliveryStatusPending,
			DriverName:    in.DriverName,
			DriverPhone:   in.DriverPhone,
			VehicleInfo:   in.VehicleInfo,
			EstimatedTime: in.EstimatedTime,
			Notes:         in.Notes,
			CreatedAt:     b.at,
			UpdatedAt:     b.at,
		}
		if err := repos.Deliveries.Create(ctx, d); err != nil {
			return classify(err, "delivery")
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DeliveryService) Get(ctx context.Context, tenantID, id string) (*models.Delivery, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	d, err := repos.Deliveries.GetByID(ctx, id)
	return d, classify(err, "delivery")
}

func (s *DeliveryService) List(ctx context.Context, tenantID string, f models.DeliveryFilter) ([]models.Delivery, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("invalid_status", "unknown delivery status %q", f.Status)
	}
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	out, err := repos.Deliveries.List(ctx, f)
	return out, classify(err, "delivery")
}

// UpdateStatus moves the delivery to status to. Repeating the current
// status is an illegal transition.
func (s *DeliveryService) UpdateStatus(ctx context.Context, tenantID, id string, to models.DeliveryStatus) (*models.Delivery, error) {
	return s.apply(ctx, tenantID, id, models.DeliveryPatch{Status: &to}, true)
}

// Update patches driver info, the estimate and notes. A status in the patch
// goes through the same transition as UpdateStatus, except that repeating
// the current status is ignored.
func (s *DeliveryService) Update(ctx context.Context, tenantID, id string, patch models.DeliveryPatch) (*models.Delivery, error) {
	return s.apply(ctx, tenantID, id, patch, false)
}

func (s *DeliveryService) apply(ctx context.Context, tenantID, id string, patch models.DeliveryPatch, strict bool) (*models.Delivery, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalid("invalid_status", "unknown delivery status %q", *patch.Status)
	}
	var out *models.Delivery
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		d, err := repos.Deliveries.GetForUpdate(ctx, id)
		if err != nil {
			return classify(err, "delivery")
		}

		if patch.DriverName != nil {
			d.DriverName = patch.DriverName
		}
		if patch.DriverPhone != nil {
			d.DriverPhone = patch.DriverPhone
		}
		if patch.VehicleInfo != nil {
			d.VehicleInfo = patch.VehicleInfo
		}
		if patch.EstimatedTime != nil {
			d.EstimatedTime = patch.EstimatedTime
		}
		if patch.Notes != nil {
			d.Notes = patch.Notes
		}

		if patch.Status != nil && (strict || *patch.Status != d.Status) {
			if err := s.transition(ctx, repos, b, d, *patch.Status); err != nil {
				return err
			}
		}

		d.UpdatedAt = b.at
		if err := repos.Deliveries.Update(ctx, d); err != nil {
			return classify(err, "delivery")
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// transition is the single place that derives ActualDelivery: it is stamped
// when, and only when, the delivery enters DELIVERED. DELIVERED and FAILED
// are terminal, so the stamp can never be cleared afterwards.
func (s *DeliveryService) transition(ctx context.Context, repos *repository.Repositories, b *Batch, d *models.Delivery, to models.DeliveryStatus) error {
	from := d.Status
	if err := models.DeliveryTransitions.Check(from, to); err != nil {
		return classify(err, "delivery")
	}
	order, err := repos.Orders.GetForUpdate(ctx, d.OrderID)
	if err != nil {
		return classify(err, "order")
	}
	// A cancelled order's delivery may only be failed.
	if order.Status == models.OrderStatusCancelled && to != models.DeliveryStatusFailed {
		return apperr.Conflict("order_cancelled", "order is cancelled")
	}

	d.Status = to
	if to == models.DeliveryStatusDelivered {
		at := b.at
		d.ActualDelivery = &at
	}
	if err := syncOrder(ctx, repos, b, order, to); err != nil {
		return err
	}

	if to == models.DeliveryStatusDelivered {
		b.Emit(models.EventDeliveryCompleted, d.ID, map[string]any{
			"order_id":           d.OrderID,
			models.PayloadAmount: order.Total,
		})
	}
	s.logger.Info().
		Str("tenant_id", b.tenantID).
		Str("delivery_id", d.ID).
		Str("order_id", d.OrderID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("delivery status changed")
	return nil
}

// syncOrder walks the order forward along legal steps to match the
// delivery. Orders the table cannot move are left alone.
func syncOrder(ctx context.Context, repos *repository.Repositories, b *Batch, o *models.Order, to models.DeliveryStatus) error {
	var path []models.OrderStatus
	switch to {
	case models.DeliveryStatusInTransit:
		if o.Status == models.OrderStatusConfirmed {
			path = []models.OrderStatus{models.OrderStatusShipped}
		}
	case models.DeliveryStatusDelivered:
		switch o.Status {
		case models.OrderStatusConfirmed:
			path = []models.OrderStatus{models.OrderStatusShipped, models.OrderStatusDelivered}
		case models.OrderStatusShipped:
			path = []models.OrderStatus{models.OrderStatusDelivered}
		}
	}
	for _, next := range path {
		if err := changeOrderStatus(ctx, repos, b, o, next); err != nil {
			return err
		}
	}
	return nil
}
