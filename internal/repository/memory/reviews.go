package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

func reviewTenant(r models.Review) string { return r.TenantID }

type reviewRepo struct{ v *view }

func (r *reviewRepo) Create(_ context.Context, rv *models.Review) error {
	rv.TenantID = r.v.tenantID
	return r.v.do(func(st *state) error {
		for _, existing := range st.reviews {
			if existing.TenantID == rv.TenantID && existing.CustomerID == rv.CustomerID && existing.ProductID == rv.ProductID {
				return repository.ErrDuplicate
			}
		}
		st.reviews[rv.ID] = *rv
		return nil
	})
}

func (r *reviewRepo) GetByID(_ context.Context, id string) (*models.Review, error) {
	var out models.Review
	err := r.v.do(func(st *state) error {
		rv, err := owned(st.reviews, id, r.v.tenantID, reviewTenant)
		out = rv
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reviewRepo) Update(_ context.Context, rv *models.Review) error {
	return r.v.do(func(st *state) error {
		existing, err := owned(st.reviews, rv.ID, r.v.tenantID, reviewTenant)
		if err != nil {
			return err
		}
		rv.TenantID = existing.TenantID
		rv.CustomerID = existing.CustomerID
		rv.ProductID = existing.ProductID
		rv.CreatedAt = existing.CreatedAt
		st.reviews[rv.ID] = *rv
		return nil
	})
}

func (r *reviewRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, err := owned(st.reviews, id, r.v.tenantID, reviewTenant); err != nil {
			return err
		}
		delete(st.reviews, id)
		return nil
	})
}

func (r *reviewRepo) List(_ context.Context, f models.ReviewFilter) ([]models.Review, error) {
	var out []models.Review
	_ = r.v.do(func(st *state) error {
		out = scan(st.reviews, r.v.tenantID, reviewTenant, func(rv models.Review) bool {
			if f.Status != "" && rv.Status != f.Status {
				return false
			}
			if f.ProductID != "" && rv.ProductID != f.ProductID {
				return false
			}
			return f.CustomerID == "" || rv.CustomerID == f.CustomerID
		})
		return nil
	})
	newestFirst(out, func(rv models.Review) time.Time { return rv.CreatedAt }, func(rv models.Review) string { return rv.ID })
	return paginate(out, f.Page), nil
}

func (r *reviewRepo) Stats(_ context.Context, productID string) (*models.ReviewStats, error) {
	stats := &models.ReviewStats{
		ProductID:     productID,
		AverageRating: decimal.Zero,
		Distribution:  make(map[int]int, models.MaxRating),
	}
	for rating := models.MinRating; rating <= models.MaxRating; rating++ {
		stats.Distribution[rating] = 0
	}

	sum := 0
	_ = r.v.do(func(st *state) error {
		for _, rv := range scan(st.reviews, r.v.tenantID, reviewTenant, func(rv models.Review) bool {
			return rv.ProductID == productID && rv.Status == models.ReviewStatusApproved
		}) {
			sum += rv.Rating
			stats.TotalReviews++
			stats.Distribution[rv.Rating]++
		}
		return nil
	})
	if stats.TotalReviews > 0 {
		stats.AverageRating = decimal.NewFromInt(int64(sum)).
			Div(decimal.NewFromInt(int64(stats.TotalReviews))).
			Round(2)
	}
	return stats, nil
}

func (r *reviewRepo) CountByStatus(_ context.Context, status models.ReviewStatus) (int, error) {
	var n int
	_ = r.v.do(func(st *state) error {
		n = len(scan(st.reviews, r.v.tenantID, reviewTenant, func(rv models.Review) bool {
			return rv.Status == status
		}))
		return nil
	})
	return n, nil
}
