package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

const maxCommentLength = 2000

type CreateReviewInput struct {
	ProductID string
	Rating    int
	Comment   *string
}

type ReviewPatch struct {
	Rating  *int
	Comment *string
}

type ReviewService struct {
	tx     *Dispatcher
	logger zerolog.Logger
}

func NewReviewService(tx *Dispatcher, logger zerolog.Logger) *ReviewService {
	if tx == nil {
		panic("review service requires a dispatcher")
	}
	return &ReviewService{tx: tx, logger: logger.With().Str("service", "reviews").Logger()}
}

func validateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return invalid("invalid_rating", "rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	return nil
}

func validateComment(c *string) error {
	if c != nil && len(*c) > maxCommentLength {
		return invalid("comment_too_long", "comment must be at most %d characters", maxCommentLength)
	}
	return nil
}

// Create files a PENDING review by the caller's customer profile.
func (s *ReviewService) Create(ctx context.Context, tenantID, userID string, in CreateReviewInput) (*models.Review, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, invalid("product_required", "product id is required")
	}
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	if err := validateComment(in.Comment); err != nil {
		return nil, err
	}

	var out *models.Review
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		customer, err := repos.Customers.GetByUserID(ctx, userID)
		if err != nil {
			return classify(err, "customer")
		}
		if _, err := repos.Products.GetByID(ctx, in.ProductID); err != nil {
			return classify(err, "product")
		}

		rv := &models.Review{
			ID:         newID(),
			CustomerID: customer.ID,
			ProductID:  in.ProductID,
			Rating:     in.Rating,
			Comment:    in.Comment,
			Status:     models.ReviewStatusPending,
			CreatedAt:  b.at,
			UpdatedAt:  b.at,
		}
		if err := repos.Reviews.Create(ctx, rv); err != nil {
			return classify(err, "review")
		}
		b.Emit(models.EventReviewSubmitted, rv.ID, map[string]any{
			"product_id":  rv.ProductID,
			"customer_id": rv.CustomerID,
			"rating":      rv.Rating,
		})
		out = rv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ownReview loads the review and checks it belongs to the caller. A caller
// without a customer profile owns nothing.
func ownReview(ctx context.Context, repos *repository.Repositories, userID, id string) (*models.Review, error) {
	rv, err := repos.Reviews.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "review")
	}
	customer, err := repos.Customers.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, classify(err, "customer")
	}
	if customer == nil || customer.ID != rv.CustomerID {
		return nil, apperr.Forbidden("not_review_owner", "review belongs to another customer")
	}
	return rv, nil
}

// Update edits the caller's own review while it is still PENDING.
func (s *ReviewService) Update(ctx context.Context, tenantID, userID, id string, patch ReviewPatch) (*models.Review, error) {
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}
	if err := validateComment(patch.Comment); err != nil {
		return nil, err
	}

	var out *models.Review
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		rv, err := ownReview(ctx, repos, userID, id)
		if err != nil {
			return err
		}
		if rv.Status != models.ReviewStatusPending {
			return apperr.Conflict("review_moderated", "a moderated review can no longer be edited")
		}
		if patch.Rating != nil {
			rv.Rating = *patch.Rating
		}
		if patch.Comment != nil {
			rv.Comment = patch.Comment
		}
		rv.UpdatedAt = b.at
		if err := repos.Reviews.Update(ctx, rv); err != nil {
			return classify(err, "review")
		}
		out = rv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the caller's own review in any status.
func (s *ReviewService) Delete(ctx context.Context, tenantID, userID, id string) error {
	return s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, _ *Batch) error {
		if _, err := ownReview(ctx, repos, userID, id); err != nil {
			return err
		}
		return classify(repos.Reviews.Delete(ctx, id), "review")
	})
}

// Moderate approves or rejects a PENDING review. Both outcomes are terminal.
func (s *ReviewService) Moderate(ctx context.Context, tenantID, id string, to models.ReviewStatus) (*models.Review, error) {
	if to != models.ReviewStatusApproved && to != models.ReviewStatusRejected {
		return nil, invalid("invalid_status", "moderation status must be APPROVED or REJECTED")
	}
	var out *models.Review
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		rv, err := repos.Reviews.GetByID(ctx, id)
		if err != nil {
			return classify(err, "review")
		}
		if err := models.ReviewTransitions.Check(rv.Status, to); err != nil {
			return classify(err, "review")
		}
		rv.Status = to
		rv.UpdatedAt = b.at
		if err := repos.Reviews.Update(ctx, rv); err != nil {
			return classify(err, "review")
		}
		s.logger.Info().
			Str("tenant_id", tenantID).
			Str("review_id", rv.ID).
			Str("status", string(to)).
			Msg("review moderated")
		out = rv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListForProduct is the storefront view: APPROVED reviews only.
func (s *ReviewService) ListForProduct(ctx context.Context, tenantID, productID string, page models.Page) ([]models.Review, error) {
	return s.list(ctx, tenantID, models.ReviewFilter{
		Status:    models.ReviewStatusApproved,
		ProductID: productID,
		Page:      page,
	})
}

func (s *ReviewService) ListAdmin(ctx context.Context, tenantID string, f models.ReviewFilter) ([]models.Review, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("invalid_status", "unknown review status %q", f.Status)
	}
	return s.list(ctx, tenantID, f)
}

func (s *ReviewService) ListMine(ctx context.Context, tenantID, userID string, page models.Page) ([]models.Review, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	customer, err := repos.Customers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, classify(err, "customer")
	}
	return s.list(ctx, tenantID, models.ReviewFilter{CustomerID: customer.ID, Page: page})
}

func (s *ReviewService) list(ctx context.Context, tenantID string, f models.ReviewFilter) ([]models.Review, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	out, err := repos.Reviews.List(ctx, f)
	return out, classify(err, "review")
}

// Stats is recomputed from the approved reviews on every call.
func (s *ReviewService) Stats(ctx context.Context, tenantID, productID string) (*models.ReviewStats, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	stats, err := repos.Reviews.Stats(ctx, productID)
	return stats, classify(err, "review")
}
