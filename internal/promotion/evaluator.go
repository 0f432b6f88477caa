// Package promotion computes promotion eligibility and discount value.
//
// Evaluate is a pure function of its arguments: the clock is passed in, no
// lookups happen, and all money arithmetic is decimal with a single rounding
// rule (half-up to MinorUnits). The same inputs always produce the same
// bytes when the Result is marshalled, so a storefront preview and the
// checkout path agree.
package promotion

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

// MinorUnits is the number of decimal places of the tenant currency.
const MinorUnits int32 = 2

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonInactive        Reason = "inactive"
	ReasonNotStarted      Reason = "not_started"
	ReasonExpired         Reason = "expired"
	ReasonSegmentMismatch Reason = "segment_mismatch"
	ReasonUsageLimit      Reason = "usage_limit_reached"
	ReasonEmptyCart       Reason = "empty_cart"
	ReasonMinAmount       Reason = "min_amount_not_met"
	ReasonNoMatchingItems Reason = "no_matching_items"
)

var hundred = decimal.NewFromInt(100)

type Result struct {
	PromotionID      string
	Eligible         bool
	DiscountAmount   decimal.Decimal
	EligibleSubtotal decimal.Decimal
	Reason           Reason
}

// MarshalJSON fixes the money representation so output is byte-stable.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PromotionID      string `json:"promotion_id"`
		Eligible         bool   `json:"eligible"`
		DiscountAmount   string `json:"discount_amount"`
		EligibleSubtotal string `json:"eligible_subtotal"`
		Reason           string `json:"reason,omitempty"`
	}{
		PromotionID:      r.PromotionID,
		Eligible:         r.Eligible,
		DiscountAmount:   r.DiscountAmount.StringFixed(MinorUnits),
		EligibleSubtotal: r.EligibleSubtotal.StringFixed(MinorUnits),
		Reason:           string(r.Reason),
	})
}

func rejected(p models.Promotion, reason Reason) Result {
	return Result{
		PromotionID:      p.ID,
		DiscountAmount:   decimal.Zero,
		EligibleSubtotal: decimal.Zero,
		Reason:           reason,
	}
}

// Evaluate checks, in order: active flag, date window (inclusive), customer
// segment, global usage limit, non-empty cart, minimum cart amount, and for
// PRODUCT/CATEGORY targets at least one matching line.
func Evaluate(p models.Promotion, cart models.Cart, segment models.Segment, now time.Time) Result {
	if !p.IsActive {
		return rejected(p, ReasonInactive)
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return rejected(p, ReasonNotStarted)
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return rejected(p, ReasonExpired)
	}
	if !p.BusinessType.Matches(segment) {
		return rejected(p, ReasonSegmentMismatch)
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return rejected(p, ReasonUsageLimit)
	}
	if len(cart.Lines) == 0 {
		return rejected(p, ReasonEmptyCart)
	}
	if cart.Subtotal().LessThan(p.MinAmount) {
		return rejected(p, ReasonMinAmount)
	}

	eligible, matched := EligibleSubtotal(p, cart)
	if !matched {
		return rejected(p, ReasonNoMatchingItems)
	}

	return Result{
		PromotionID:      p.ID,
		Eligible:         true,
		DiscountAmount:   discount(p, eligible),
		EligibleSubtotal: eligible,
	}
}

// EligibleSubtotal returns the value the discount is computed against and
// whether any line matched the promotion target.
func EligibleSubtotal(p models.Promotion, cart models.Cart) (decimal.Decimal, bool) {
	if p.Target == models.PromotionTargetCart {
		return cart.Subtotal(), true
	}

	targets := make(map[string]struct{}, len(p.TargetIDs))
	for _, id := range p.TargetIDs {
		targets[id] = struct{}{}
	}

	sum := decimal.Zero
	matched := false
	for _, l := range cart.Lines {
		key := l.ProductID
		if p.Target == models.PromotionTargetCategory {
			key = l.CategoryID
		}
		if _, ok := targets[key]; ok {
			sum = sum.Add(l.Total())
			matched = true
		}
	}
	return sum, matched
}

func discount(p models.Promotion, eligible decimal.Decimal) decimal.Decimal {
	if !eligible.IsPositive() || !p.Value.IsPositive() {
		return decimal.Zero
	}

	var d decimal.Decimal
	switch p.Type {
	case models.PromotionTypePercentage:
		d = eligible.Mul(p.Value).Div(hundred)
	case models.PromotionTypeFixedAmount:
		d = p.Value
	default:
		return decimal.Zero
	}

	// decimal.Round is half away from zero, which is half-up for d >= 0.
	d = d.Round(MinorUnits)
	if d.GreaterThan(eligible) {
		d = eligible.Truncate(MinorUnits)
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Best evaluates every candidate and returns the single largest eligible
// discount. Ties go to the earliest CreatedAt, then the smallest ID. The
// returned bool is false when nothing is eligible.
func Best(candidates []models.Promotion, cart models.Cart, segment models.Segment, now time.Time) (Result, bool) {
	sorted := make([]models.Promotion, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var best Result
	found := false
	for _, p := range sorted {
		r := Evaluate(p, cart, segment, now)
		if !r.Eligible {
			continue
		}
		if !found || r.DiscountAmount.GreaterThan(best.DiscountAmount) {
			best = r
			found = true
		}
	}
	return best, found
}

// ApplyDiscount returns subtotal - discount + shipping, never below zero.
func ApplyDiscount(subtotal, discount, shipping decimal.Decimal) decimal.Decimal {
	goods := subtotal.Sub(discount)
	if goods.IsNegative() {
		goods = decimal.Zero
	}
	return goods.Add(shipping).Round(MinorUnits)
}
