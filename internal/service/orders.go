package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
	"github.com/anu-devcode/deploy-test-sub001/internal/cache"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/promotion"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

type OrderLine struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	Items           []OrderLine
	ShippingAddress models.Address
	ShippingTotal   decimal.Decimal
	PromotionCode   *string
}

type OrderService struct {
	tx     *Dispatcher
	cache  *cache.PromotionCache
	logger zerolog.Logger
}

func NewOrderService(tx *Dispatcher, promotions *cache.PromotionCache, logger zerolog.Logger) *OrderService {
	if tx == nil {
		panic("order service requires a dispatcher")
	}
	return &OrderService{tx: tx, cache: promotions, logger: logger.With().Str("service", "orders").Logger()}
}

func validateLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return invalid("empty_order", "an order needs at least one item")
	}
	for _, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return invalid("invalid_item", "product id is required")
		}
		if l.Quantity < 1 {
			return invalid("invalid_quantity", "quantity for product %s must be at least 1", l.ProductID)
		}
	}
	return nil
}

// priceLines captures the current price of every product into a cart
// snapshot. Unknown products are NotFound, inactive ones a Validation error.
func priceLines(ctx context.Context, repos *repository.Repositories, lines []OrderLine) (models.Cart, []*models.Product, error) {
	cart := models.Cart{Lines: make([]models.CartLine, 0, len(lines))}
	products := make([]*models.Product, 0, len(lines))
	for _, l := range lines {
		p, err := repos.Products.GetByID(ctx, l.ProductID)
		if err != nil {
			return models.Cart{}, nil, classify(err, "product")
		}
		if !p.IsActive {
			return models.Cart{}, nil, invalid("product_inactive", "product %s is not available", p.ID)
		}
		cart.Lines = append(cart.Lines, models.CartLine{
			ProductID:  p.ID,
			CategoryID: p.CategoryID,
			UnitPrice:  p.Price,
			Quantity:   l.Quantity,
		})
		products = append(products, p)
	}
	return cart, products, nil
}

func orderNumber(at time.Time, id string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102"), suffix)
}

// Create places an order for the caller's customer profile. Prices, the
// promotion evaluation and the redemption all happen in one transaction.
func (s *OrderService) Create(ctx context.Context, tenantID, userID string, in CreateOrderInput) (*models.OrderDetail, error) {
	if err := validateLines(in.Items); err != nil {
		return nil, err
	}
	if in.ShippingTotal.IsNegative() {
		return nil, invalid("invalid_shipping_total", "shipping total cannot be negative")
	}

	var (
		out          *models.OrderDetail
		redeemedCode *string
	)
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		customer, err := repos.Customers.GetByUserID(ctx, userID)
		if err != nil {
			return classify(err, "customer")
		}

		cart, products, err := priceLines(ctx, repos, in.Items)
		if err != nil {
			return err
		}

		now := b.at
		id := newID()
		order := models.Order{
			ID:              id,
			OrderNumber:     orderNumber(now, id),
			CustomerID:      customer.ID,
			Status:          models.OrderStatusDraft,
			PaymentStatus:   models.PaymentStatusPending,
			Segment:         customer.Segment,
			Subtotal:        cart.Subtotal().Round(promotion.MinorUnits),
			DiscountTotal:   decimal.Zero,
			ShippingTotal:   in.ShippingTotal.Round(promotion.MinorUnits),
			ShippingAddress: in.ShippingAddress,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		applied, err := s.redeem(ctx, repos, customer, cart, in.PromotionCode, order.ID, now)
		if err != nil {
			return err
		}
		if applied != nil {
			order.PromotionID = &applied.ID
			order.PromotionCode = applied.Code
			order.DiscountTotal = applied.discount
		}
		order.Total = promotion.ApplyDiscount(order.Subtotal, order.DiscountTotal, order.ShippingTotal)

		items := make([]models.OrderItem, len(cart.Lines))
		lowestStock := -1
		for i, l := range cart.Lines {
			stock, err := repos.Products.AdjustStock(ctx, l.ProductID, -l.Quantity, now)
			if err != nil {
				return classify(err, "product")
			}
			if lowestStock < 0 || stock < lowestStock {
				lowestStock = stock
			}
			items[i] = models.OrderItem{
				ID:          newID(),
				OrderID:     order.ID,
				ProductID:   l.ProductID,
				ProductName: products[i].Name,
				CategoryID:  l.CategoryID,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				LineTotal:   l.Total().Round(promotion.MinorUnits),
			}
		}

		if err := repos.Orders.Create(ctx, &order, items); err != nil {
			return classify(err, "order")
		}
		if applied != nil {
			err := repos.Promotions.CreateRedemption(ctx, models.PromotionRedemption{
				PromotionID: applied.ID,
				CustomerID:  customer.ID,
				OrderID:     order.ID,
				RedeemedAt:  now,
			})
			if err != nil {
				return classify(err, "promotion")
			}
			redeemedCode = applied.Code
		}

		payload := map[string]any{
			models.PayloadAmount: order.Total,
			models.PayloadStock:  lowestStock,
			"order_number":       order.OrderNumber,
			"customer_id":        customer.ID,
		}
		if order.PromotionCode != nil {
			payload["promotion_code"] = *order.PromotionCode
		}
		b.Emit(models.EventOrderCreated, order.ID, payload)

		out = &models.OrderDetail{Order: order, Items: items, Customer: customer}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Automation may already have moved the order on inside the same
	// transaction.
	if repos, err := s.tx.Scoped(tenantID); err == nil {
		if fresh, err := repos.Orders.GetByID(ctx, out.ID); err == nil {
			out.Order = *fresh
		}
	}

	if redeemedCode != nil {
		// Usage counts changed; cached definitions must not serve them.
		if err := s.cache.Invalidate(context.WithoutCancel(ctx), tenantID, *redeemedCode); err != nil {
			s.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("invalidate promotion cache")
		}
	}
	s.logger.Info().
		Str("tenant_id", tenantID).
		Str("order_id", out.ID).
		Str("total", out.Total.StringFixed(promotion.MinorUnits)).
		Msg("order created")
	return out, nil
}

type appliedPromotion struct {
	models.Promotion
	discount decimal.Decimal
}

// redeem selects the promotion for the cart and consumes one use of it.
// With a code only that promotion is considered; without one the best
// automatic promotion wins. The usage increment locks the promotion row, so
// the per-customer count that follows cannot race.
func (s *OrderService) redeem(ctx context.Context, repos *repository.Repositories, customer *models.Customer,
	cart models.Cart, code *string, orderID string, now time.Time) (*appliedPromotion, error) {

	var chosen *models.Promotion
	var result promotion.Result

	if code = normalizeCode(code); code != nil {
		p, err := repos.Promotions.GetByCode(ctx, *code)
		if err != nil {
			return nil, classify(err, "promotion")
		}
		result = promotion.Evaluate(*p, cart, customer.Segment, now)
		if !result.Eligible {
			if result.Reason == promotion.ReasonUsageLimit {
				return nil, apperr.Conflict("usage_limit_reached", "promotion usage limit reached")
			}
			return nil, apperr.Validation("promotion_not_applicable",
				fmt.Sprintf("promotion %s does not apply: %s", *p.Code, result.Reason))
		}
		chosen = p
	} else {
		available, err := automaticCandidates(ctx, repos, customer.ID)
		if err != nil {
			return nil, err
		}
		best, ok := promotion.Best(available, cart, customer.Segment, now)
		if !ok {
			return nil, nil
		}
		for i := range available {
			if available[i].ID == best.PromotionID {
				chosen = &available[i]
				break
			}
		}
		result = best
	}

	if _, err := repos.Promotions.IncrementUsage(ctx, chosen.ID); err != nil {
		return nil, classify(err, "promotion")
	}
	if chosen.PerCustomerLimit != nil {
		used, err := repos.Promotions.CountRedemptions(ctx, chosen.ID, customer.ID)
		if err != nil {
			return nil, classify(err, "promotion")
		}
		if used >= *chosen.PerCustomerLimit {
			return nil, apperr.Conflict("per_customer_limit_reached", "promotion already used the allowed number of times")
		}
	}

	s.logger.Debug().
		Str("promotion_id", chosen.ID).
		Str("order_id", orderID).
		Str("discount", result.DiscountAmount.String()).
		Msg("promotion redeemed")
	return &appliedPromotion{Promotion: *chosen, discount: result.DiscountAmount}, nil
}

func (s *OrderService) hydrate(ctx context.Context, repos *repository.Repositories, o *models.Order, inc models.OrderInclude) (*models.OrderDetail, error) {
	detail := &models.OrderDetail{Order: *o}
	if inc.Items {
		items, err := repos.Orders.Items(ctx, o.ID)
		if err != nil {
			return nil, classify(err, "order")
		}
		detail.Items = items
	}
	if inc.Customer {
		c, err := repos.Customers.GetByID(ctx, o.CustomerID)
		if err != nil {
			return nil, classify(err, "customer")
		}
		detail.Customer = c
	}
	return detail, nil
}

func (s *OrderService) Get(ctx context.Context, tenantID, id string, inc models.OrderInclude) (*models.OrderDetail, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	o, err := repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "order")
	}
	return s.hydrate(ctx, repos, o, inc)
}

// GetMine returns the order only when it belongs to the caller's customer
// profile. Someone else's order is reported as not found.
func (s *OrderService) GetMine(ctx context.Context, tenantID, userID, id string) (*models.OrderDetail, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	customer, err := repos.Customers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, classify(err, "customer")
	}
	o, err := repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "order")
	}
	if o.CustomerID != customer.ID {
		return nil, apperr.NotFound("order_not_found", "order not found")
	}
	return s.hydrate(ctx, repos, o, models.OrderInclude{Items: true})
}

func (s *OrderService) List(ctx context.Context, tenantID string, f models.OrderFilter) ([]models.Order, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	out, err := repos.Orders.List(ctx, f)
	return out, classify(err, "order")
}

func (s *OrderService) ListMine(ctx context.Context, tenantID, userID string, f models.OrderFilter) ([]models.Order, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	customer, err := repos.Customers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, classify(err, "customer")
	}
	f.CustomerID = customer.ID
	out, err := repos.Orders.List(ctx, f)
	return out, classify(err, "order")
}

func (s *OrderService) TransitionStatus(ctx context.Context, tenantID, id string, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, invalid("invalid_status", "unknown order status %q", to)
	}
	var out *models.Order
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		o, err := repos.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return classify(err, "order")
		}
		from := o.Status
		if err := changeOrderStatus(ctx, repos, b, o, to); err != nil {
			return err
		}
		s.logger.Info().
			Str("tenant_id", tenantID).
			Str("order_id", o.ID).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("order status changed")
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// changeOrderStatus is the only writer of Order.Status. It checks the
// transition table, restocks cancelled orders and emits
// ORDER_STATUS_CHANGED. o is updated in place.
func changeOrderStatus(ctx context.Context, repos *repository.Repositories, b *Batch, o *models.Order, to models.OrderStatus) error {
	from := o.Status
	if err := models.OrderTransitions.Check(from, to); err != nil {
		return classify(err, "order")
	}
	if err := repos.Orders.UpdateStatus(ctx, o.ID, to, b.at); err != nil {
		return classify(err, "order")
	}

	if to == models.OrderStatusCancelled {
		items, err := repos.Orders.Items(ctx, o.ID)
		if err != nil {
			return classify(err, "order")
		}
		for _, it := range items {
			if _, err := repos.Products.AdjustStock(ctx, it.ProductID, it.Quantity, b.at); err != nil {
				return classify(err, "product")
			}
		}
	}

	o.Status = to
	o.UpdatedAt = b.at
	b.Emit(models.EventOrderStatusChanged, o.ID, map[string]any{
		"from":               string(from),
		"to":                 string(to),
		models.PayloadAmount: o.Total,
	})
	return nil
}

func (s *OrderService) TransitionPaymentStatus(ctx context.Context, tenantID, id string, to models.PaymentStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, invalid("invalid_payment_status", "unknown payment status %q", to)
	}
	var out *models.Order
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		o, err := repos.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return classify(err, "order")
		}
		if to == models.PaymentStatusVerified && o.Status == models.OrderStatusCancelled {
			return apperr.Conflict("order_cancelled", "cannot verify payment of a cancelled order")
		}
		from := o.PaymentStatus
		if err := models.PaymentTransitions.Check(from, to); err != nil {
			return classify(err, "order")
		}
		if err := repos.Orders.UpdatePaymentStatus(ctx, o.ID, to, b.at); err != nil {
			return classify(err, "order")
		}
		o.PaymentStatus = to
		o.UpdatedAt = b.at

		payload := map[string]any{models.PayloadAmount: o.Total, "order_number": o.OrderNumber}
		switch to {
		case models.PaymentStatusVerified:
			b.Emit(models.EventPaymentVerified, o.ID, payload)
		case models.PaymentStatusFailed:
			b.Emit(models.EventPaymentFailed, o.ID, payload)
		}
		s.logger.Info().
			Str("tenant_id", tenantID).
			Str("order_id", o.ID).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("payment status changed")
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
