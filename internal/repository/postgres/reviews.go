package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

const reviewColumns = `id, tenant_id, customer_id, product_id, rating, comment, status, created_at, updated_at`

type reviewRepo struct{ q *tenantQuerier }

func scanReview(s scanner) (*models.Review, error) {
	var rv models.Review
	err := s.Scan(&rv.ID, &rv.TenantID, &rv.CustomerID, &rv.ProductID, &rv.Rating, &rv.Comment,
		&rv.Status, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &rv, nil
}

func (r *reviewRepo) Create(ctx context.Context, rv *models.Review) error {
	rv.TenantID = r.q.tenantID
	_, err := r.q.exec(ctx, `
		INSERT INTO reviews (tenant_id, id, customer_id, product_id, rating, comment, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rv.ID, rv.CustomerID, rv.ProductID, rv.Rating, rv.Comment, rv.Status, rv.CreatedAt, rv.UpdatedAt)
	return err
}

func (r *reviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	return scanReview(r.q.queryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE tenant_id = $1 AND id = $2`, id))
}

func (r *reviewRepo) Update(ctx context.Context, rv *models.Review) error {
	return r.q.execOne(ctx, `
		UPDATE reviews SET rating = $3, comment = $4, status = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`,
		rv.ID, rv.Rating, rv.Comment, rv.Status, rv.UpdatedAt)
}

func (r *reviewRepo) Delete(ctx context.Context, id string) error {
	return r.q.execOne(ctx, `DELETE FROM reviews WHERE tenant_id = $1 AND id = $2`, id)
}

func (r *reviewRepo) List(ctx context.Context, rf models.ReviewFilter) ([]models.Review, error) {
	page := rf.Page.Normalize()
	var f filter
	if rf.Status != "" {
		f.add("status = $%d", rf.Status)
	}
	if rf.ProductID != "" {
		f.add("product_id = $%d", rf.ProductID)
	}
	if rf.CustomerID != "" {
		f.add("customer_id = $%d", rf.CustomerID)
	}
	limit := f.page(page.Limit, page.Offset)

	rows, err := r.q.query(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE tenant_id = $1`+f.where()+
			` ORDER BY created_at DESC, id`+limit, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

// Stats reads the per-rating histogram and derives the average in Go so the
// rounding matches the in-memory store exactly.
func (r *reviewRepo) Stats(ctx context.Context, productID string) (*models.ReviewStats, error) {
	rows, err := r.q.query(ctx, `
		SELECT rating, COUNT(*) FROM reviews
		WHERE tenant_id = $1 AND product_id = $2 AND status = 'APPROVED'
		GROUP BY rating`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.ReviewStats{
		ProductID:     productID,
		AverageRating: decimal.Zero,
		Distribution:  make(map[int]int, models.MaxRating),
	}
	for rating := models.MinRating; rating <= models.MaxRating; rating++ {
		stats.Distribution[rating] = 0
	}

	sum := 0
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, mapError(err)
		}
		stats.Distribution[rating] = count
		stats.TotalReviews += count
		sum += rating * count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalReviews > 0 {
		stats.AverageRating = decimal.NewFromInt(int64(sum)).
			Div(decimal.NewFromInt(int64(stats.TotalReviews))).
			Round(2)
	}
	return stats, nil
}

func (r *reviewRepo) CountByStatus(ctx context.Context, status models.ReviewStatus) (int, error) {
	var n int
	err := r.q.queryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE tenant_id = $1 AND status = $2`, status).Scan(&n)
	return n, mapError(err)
}
