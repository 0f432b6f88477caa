package memory

import (
	"context"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

func promotionTenant(p models.Promotion) string { return p.TenantID }

type promotionRepo struct{ v *view }

func codeTaken(st *state, tenantID string, p *models.Promotion) bool {
	if p.Code == nil {
		return false
	}
	for _, existing := range st.promotions {
		if existing.ID != p.ID && existing.TenantID == tenantID && existing.Code != nil && *existing.Code == *p.Code {
			return true
		}
	}
	return false
}

func (r *promotionRepo) Create(_ context.Context, p *models.Promotion) error {
	p.TenantID = r.v.tenantID
	p.TargetIDs = append([]string(nil), p.TargetIDs...)
	return r.v.do(func(st *state) error {
		if _, ok := st.promotions[p.ID]; ok || codeTaken(st, r.v.tenantID, p) {
			return repository.ErrDuplicate
		}
		st.promotions[p.ID] = *p
		return nil
	})
}

func (r *promotionRepo) GetByID(_ context.Context, id string) (*models.Promotion, error) {
	var out models.Promotion
	err := r.v.do(func(st *state) error {
		p, err := owned(st.promotions, id, r.v.tenantID, promotionTenant)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *promotionRepo) GetByCode(_ context.Context, code string) (*models.Promotion, error) {
	var out []models.Promotion
	_ = r.v.do(func(st *state) error {
		out = scan(st.promotions, r.v.tenantID, promotionTenant, func(p models.Promotion) bool {
			return p.Code != nil && *p.Code == code
		})
		return nil
	})
	if len(out) == 0 {
		return nil, repository.ErrNotFound
	}
	return &out[0], nil
}

func (r *promotionRepo) List(_ context.Context, f models.PromotionFilter) ([]models.Promotion, error) {
	var out []models.Promotion
	_ = r.v.do(func(st *state) error {
		out = scan(st.promotions, r.v.tenantID, promotionTenant, func(p models.Promotion) bool {
			return !f.ActiveOnly || p.IsActive
		})
		return nil
	})
	newestFirst(out, func(p models.Promotion) time.Time { return p.CreatedAt }, func(p models.Promotion) string { return p.ID })
	return paginate(out, f.Page), nil
}

func (r *promotionRepo) ListAutomatic(_ context.Context) ([]models.Promotion, error) {
	var out []models.Promotion
	_ = r.v.do(func(st *state) error {
		out = scan(st.promotions, r.v.tenantID, promotionTenant, func(p models.Promotion) bool {
			return p.IsActive && p.Code == nil
		})
		return nil
	})
	oldestFirst(out, func(p models.Promotion) time.Time { return p.CreatedAt }, func(p models.Promotion) string { return p.ID })
	return out, nil
}

// Update writes the definition; usage_count is owned by IncrementUsage and
// is never overwritten here.
func (r *promotionRepo) Update(_ context.Context, p *models.Promotion) error {
	p.TargetIDs = append([]string(nil), p.TargetIDs...)
	return r.v.do(func(st *state) error {
		existing, err := owned(st.promotions, p.ID, r.v.tenantID, promotionTenant)
		if err != nil {
			return err
		}
		if codeTaken(st, r.v.tenantID, p) {
			return repository.ErrDuplicate
		}
		p.TenantID = existing.TenantID
		p.UsageCount = existing.UsageCount
		p.CreatedAt = existing.CreatedAt
		st.promotions[p.ID] = *p
		return nil
	})
}

func (r *promotionRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, err := owned(st.promotions, id, r.v.tenantID, promotionTenant); err != nil {
			return err
		}
		for _, red := range st.redemptions {
			if red.PromotionID == id {
				return repository.ErrInUse
			}
		}
		delete(st.promotions, id)
		return nil
	})
}

func (r *promotionRepo) IncrementUsage(_ context.Context, id string) (int, error) {
	var count int
	err := r.v.do(func(st *state) error {
		p, err := owned(st.promotions, id, r.v.tenantID, promotionTenant)
		if err != nil {
			return err
		}
		if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
			return repository.ErrUsageLimitReached
		}
		p.UsageCount++
		st.promotions[id] = p
		count = p.UsageCount
		return nil
	})
	return count, err
}

func (r *promotionRepo) CountRedemptions(_ context.Context, promotionID, customerID string) (int, error) {
	var n int
	_ = r.v.do(func(st *state) error {
		for _, red := range st.redemptions {
			if red.tenantID == r.v.tenantID && red.PromotionID == promotionID && red.CustomerID == customerID {
				n++
			}
		}
		return nil
	})
	return n, nil
}

func (r *promotionRepo) CreateRedemption(_ context.Context, red models.PromotionRedemption) error {
	return r.v.do(func(st *state) error {
		if _, err := owned(st.promotions, red.PromotionID, r.v.tenantID, promotionTenant); err != nil {
			return err
		}
		st.redemptions = append(st.redemptions, redemption{tenantID: r.v.tenantID, PromotionRedemption: red})
		return nil
	})
}
