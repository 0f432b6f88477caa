package service

import (
	"context"
	"errors"
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

var maxPercentage = decimal.NewFromInt(100)

type PromotionInput struct {
	Name             string
	Code             *string
	Type             models.PromotionType
	Target           models.PromotionTarget
	TargetIDs        []string
	Value            decimal.Decimal
	MinAmount        decimal.Decimal
	UsageLimit       *int
	PerCustomerLimit *int
	StartsAt         *time.Time
	EndsAt           *time.Time
	BusinessType     models.BusinessType
	IsActive         bool
}

type PreviewInput struct {
	Code  *string
	Items []OrderLine
}

type PreviewResult struct {
	Promotion *models.Promotion `json:"promotion,omitempty"`
	Result    promotion.Result  `json:"result"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Total     decimal.Decimal   `json:"total"`
}

type PromotionService struct {
	tx     *Dispatcher
	cache  *cache.PromotionCache
	logger zerolog.Logger
}

func NewPromotionService(tx *Dispatcher, promotions *cache.PromotionCache, logger zerolog.Logger) *PromotionService {
	if tx == nil {
		panic("promotion service requires a dispatcher")
	}
	return &PromotionService{tx: tx, cache: promotions, logger: logger.With().Str("service", "promotions").Logger()}
}

// normalizeCode trims and upper-cases a code; blank codes become nil.
func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	c := strings.ToUpper(strings.TrimSpace(*code))
	if c == "" {
		return nil
	}
	return &c
}

func validatePromotion(in PromotionInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name_required", "name is required")
	}
	switch in.Type {
	case models.PromotionTypePercentage, models.PromotionTypeFixedAmount:
	default:
		return invalid("invalid_type", "unknown promotion type %q", in.Type)
	}
	switch in.Target {
	case models.PromotionTargetCart:
	case models.PromotionTargetProduct, models.PromotionTargetCategory:
		if len(in.TargetIDs) == 0 {
			return invalid("target_ids_required", "%s promotions need at least one target id", in.Target)
		}
	default:
		return invalid("invalid_target", "unknown promotion target %q", in.Target)
	}
	switch in.BusinessType {
	case models.BusinessTypeRetail, models.BusinessTypeBulk, models.BusinessTypeBoth:
	default:
		return invalid("invalid_business_type", "unknown business type %q", in.BusinessType)
	}
	if !in.Value.IsPositive() {
		return invalid("invalid_value", "value must be greater than zero")
	}
	if in.Type == models.PromotionTypePercentage && in.Value.GreaterThan(maxPercentage) {
		return invalid("invalid_value", "percentage cannot exceed 100")
	}
	if in.MinAmount.IsNegative() {
		return invalid("invalid_min_amount", "minimum amount cannot be negative")
	}
	if in.UsageLimit != nil && *in.UsageLimit < 1 {
		return invalid("invalid_usage_limit", "usage limit must be at least 1")
	}
	if in.PerCustomerLimit != nil && *in.PerCustomerLimit < 1 {
		return invalid("invalid_per_customer_limit", "per-customer limit must be at least 1")
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.StartsAt.Before(*in.EndsAt) {
		return invalid("invalid_window", "start must be before end")
	}
	return nil
}

func (in PromotionInput) apply(p *models.Promotion) {
	p.Name = strings.TrimSpace(in.Name)
	p.Code = normalizeCode(in.Code)
	p.Type = in.Type
	p.Target = in.Target
	p.TargetIDs = nil
	if in.Target != models.PromotionTargetCart {
		p.TargetIDs = append([]string(nil), in.TargetIDs...)
	}
	p.Value = in.Value
	p.MinAmount = in.MinAmount
	p.UsageLimit = in.UsageLimit
	p.PerCustomerLimit = in.PerCustomerLimit
	p.StartsAt = in.StartsAt
	p.EndsAt = in.EndsAt
	p.BusinessType = in.BusinessType
	p.IsActive = in.IsActive
}

func (s *PromotionService) Create(ctx context.Context, tenantID string, in PromotionInput) (*models.Promotion, error) {
	if err := validatePromotion(in); err != nil {
		return nil, err
	}
	var out *models.Promotion
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		p := &models.Promotion{ID: newID(), CreatedAt: b.at, UpdatedAt: b.at}
		in.apply(p)
		if err := repos.Promotions.Create(ctx, p); err != nil {
			return classify(err, "promotion")
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, out.Code)
	return out, nil
}

func (s *PromotionService) Get(ctx context.Context, tenantID, id string) (*models.Promotion, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	p, err := repos.Promotions.GetByID(ctx, id)
	return p, classify(err, "promotion")
}

func (s *PromotionService) List(ctx context.Context, tenantID string, f models.PromotionFilter) ([]models.Promotion, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	out, err := repos.Promotions.List(ctx, f)
	return out, classify(err, "promotion")
}

// Update replaces the definition. The usage count is kept.
func (s *PromotionService) Update(ctx context.Context, tenantID, id string, in PromotionInput) (*models.Promotion, error) {
	if err := validatePromotion(in); err != nil {
		return nil, err
	}
	var (
		out     *models.Promotion
		oldCode *string
	)
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		p, err := repos.Promotions.GetByID(ctx, id)
		if err != nil {
			return classify(err, "promotion")
		}
		oldCode = p.Code
		if in.UsageLimit != nil && *in.UsageLimit < p.UsageCount {
			return apperr.Conflict("usage_limit_below_usage",
				fmt.Sprintf("usage limit %d is below the %d redemptions already made", *in.UsageLimit, p.UsageCount))
		}
		in.apply(p)
		p.UpdatedAt = b.at
		if err := repos.Promotions.Update(ctx, p); err != nil {
			return classify(err, "promotion")
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, oldCode, out.Code)
	return out, nil
}

// Delete fails with a Conflict once the promotion has been redeemed.
func (s *PromotionService) Delete(ctx context.Context, tenantID, id string) error {
	var code *string
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, _ *Batch) error {
		p, err := repos.Promotions.GetByID(ctx, id)
		if err != nil {
			return classify(err, "promotion")
		}
		code = p.Code
		return classify(repos.Promotions.Delete(ctx, id), "promotion")
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, tenantID, code)
	return nil
}

func (s *PromotionService) invalidate(ctx context.Context, tenantID string, codes ...*string) {
	var keys []string
	for _, c := range codes {
		if c != nil {
			keys = append(keys, *c)
		}
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), tenantID, keys...); err != nil {
		s.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("invalidate promotion cache")
	}
}

// byCode reads through the cache. The cache only ever serves previews.
func (s *PromotionService) byCode(ctx context.Context, repos *repository.Repositories, code string) (*models.Promotion, error) {
	cached, err := s.cache.Get(ctx, repos.TenantID, code)
	if err != nil {
		s.logger.Warn().Err(err).Str("tenant_id", repos.TenantID).Msg("promotion cache read")
	}
	if cached != nil {
		return cached, nil
	}

	p, err := repos.Promotions.GetByCode(ctx, code)
	if err != nil {
		return nil, classify(err, "promotion")
	}
	if err := s.cache.Set(ctx, p); err != nil {
		s.logger.Warn().Err(err).Str("tenant_id", repos.TenantID).Msg("promotion cache write")
	}
	return p, nil
}

// Preview prices the items and evaluates promotions exactly as checkout
// would, without redeeming anything. Anonymous callers are treated as
// RETAIL.
func (s *PromotionService) Preview(ctx context.Context, tenantID, userID string, in PreviewInput) (*PreviewResult, error) {
	if err := validateLines(in.Items); err != nil {
		return nil, err
	}
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}

	segment := models.SegmentRetail
	var customerID string
	if userID != "" {
		c, err := repos.Customers.GetByUserID(ctx, userID)
		switch {
		case err == nil:
			segment = c.Segment
			customerID = c.ID
		case !errors.Is(err, repository.ErrNotFound):
			return nil, classify(err, "customer")
		}
	}

	cart, _, err := priceLines(ctx, repos, in.Items)
	if err != nil {
		return nil, err
	}
	now := s.tx.Now()
	out := &PreviewResult{Subtotal: cart.Subtotal().Round(promotion.MinorUnits)}

	if code := normalizeCode(in.Code); code != nil {
		p, err := s.byCode(ctx, repos, *code)
		if err != nil {
			return nil, err
		}
		out.Promotion = p
		out.Result = promotion.Evaluate(*p, cart, segment, now)
	} else {
		candidates, err := automaticCandidates(ctx, repos, customerID)
		if err != nil {
			return nil, err
		}
		if best, ok := promotion.Best(candidates, cart, segment, now); ok {
			out.Result = best
			for i := range candidates {
				if candidates[i].ID == best.PromotionID {
					out.Promotion = &candidates[i]
					break
				}
			}
		} else {
			out.Result = promotion.Result{DiscountAmount: decimal.Zero, EligibleSubtotal: decimal.Zero}
		}
	}

	discount := decimal.Zero
	if out.Result.Eligible {
		discount = out.Result.DiscountAmount
	}
	out.Total = promotion.ApplyDiscount(out.Subtotal, discount, decimal.Zero)
	return out, nil
}

// automaticCandidates lists the active code-less promotions the customer can
// still redeem. Checkout and preview both choose from this list. An empty
// customerID skips the per-customer limit.
func automaticCandidates(ctx context.Context, repos *repository.Repositories, customerID string) ([]models.Promotion, error) {
	candidates, err := repos.Promotions.ListAutomatic(ctx)
	if err != nil {
		return nil, classify(err, "promotion")
	}
	available := candidates[:0]
	for _, p := range candidates {
		if p.PerCustomerLimit != nil && customerID != "" {
			used, err := repos.Promotions.CountRedemptions(ctx, p.ID, customerID)
			if err != nil {
				return nil, classify(err, "promotion")
			}
			if used >= *p.PerCustomerLimit {
				continue
			}
		}
		available = append(available, p)
	}
	return available, nil
}
