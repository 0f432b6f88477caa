package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

func TestReviewStatsOnlyCountApproved(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.customer(t, tenantA, "user-1", models.SegmentRetail)
	p := h.product(t, tenantA, "cat-1", "10", 5)

	rv, err := h.reviews.Create(ctx, tenantA, "user-1", CreateReviewInput{ProductID: p.ID, Rating: 5, Comment: ptr("great")})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusPending, rv.Status)
	assert.Equal(t, []models.EventType{models.EventReviewSubmitted}, h.rec.Types())

	stats, err := h.reviews.Stats(ctx, tenantA, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalReviews)
	assert.True(t, stats.AverageRating.IsZero())

	_, err = h.reviews.Moderate(ctx, tenantA, rv.ID, models.ReviewStatusApproved)
	require.NoError(t, err)

	stats, err = h.reviews.Stats(ctx, tenantA, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalReviews)
	assert.True(t, stats.AverageRating.Equal(dec("5")), stats.AverageRating.String())
	assert.Equal(t, 1, stats.Distribution[5])
	assert.Equal(t, 0, stats.Distribution[1])

	public, err := h.reviews.ListForProduct(ctx, tenantA, p.ID, models.Page{})
	require.NoError(t, err)
	require.Len(t, public, 1)
}

func TestDeletingRejectedReviewKeepsAverage(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.customer(t, tenantA, "user-1", models.SegmentRetail)
	h.customer(t, tenantA, "user-2", models.SegmentRetail)
	h.customer(t, tenantA, "user-3", models.SegmentRetail)
	p := h.product(t, tenantA, "cat-1", "10", 5)

	review := func(user string, rating int) *models.Review {
		rv, err := h.reviews.Create(ctx, tenantA, user, CreateReviewInput{ProductID: p.ID, Rating: rating})
		require.NoError(t, err)
		return rv
	}
	a := review("user-1", 4)
	b := review("user-2", 5)
	c := review("user-3", 1)
	for _, id := range []string{a.ID, b.ID} {
		_, err := h.reviews.Moderate(ctx, tenantA, id, models.ReviewStatusApproved)
		require.NoError(t, err)
	}
	_, err := h.reviews.Moderate(ctx, tenantA, c.ID, models.ReviewStatusRejected)
	require.NoError(t, err)

	before, err := h.reviews.Stats(ctx, tenantA, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "4.50", before.AverageRating.StringFixed(2))
	assert.Equal(t, 2, before.TotalReviews)

	require.NoError(t, h.reviews.Delete(ctx, tenantA, "user-3", c.ID))

	after, err := h.reviews.Stats(ctx, tenantA, p.ID)
	require.NoError(t, err)
	assert.True(t, before.AverageRating.Equal(after.AverageRating))
	assert.Equal(t, before.TotalReviews, after.TotalReviews)

	require.NoError(t, h.reviews.Delete(ctx, tenantA, "user-2", b.ID))
	after, err = h.reviews.Stats(ctx, tenantA, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "4.00", after.AverageRating.StringFixed(2))
	assert.Equal(t, 1, after.TotalReviews)
}

func TestReviewOwnership(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.customer(t, tenantA, "user-1", models.SegmentRetail)
	h.customer(t, tenantA, "user-2", models.SegmentRetail)
	p := h.product(t, tenantA, "cat-1", "10", 5)
	rv, err := h.reviews.Create(ctx, tenantA, "user-1", CreateReviewInput{ProductID: p.ID, Rating: 3})
	require.NoError(t, err)

	_, err = h.reviews.Update(ctx, tenantA, "user-2", rv.ID, ReviewPatch{Rating: ptr(1)})
	requireAppErr(t, err, apperr.KindForbidden, "not_review_owner")

	err = h.reviews.Delete(ctx, tenantA, "user-2", rv.ID)
	requireAppErr(t, err, apperr.KindForbidden, "not_review_owner")

	err = h.reviews.Delete(ctx, tenantA, "no-profile", rv.ID)
	requireAppErr(t, err, apperr.KindForbidden, "not_review_owner")

	got, err := h.reviews.Update(ctx, tenantA, "user-1", rv.ID, ReviewPatch{Rating: ptr(4), Comment: ptr("better")})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "better", *got.Comment)

	mine, err := h.reviews.ListMine(ctx, tenantA, "user-1", models.Page{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 4, mine[0].Rating)
}

func TestReviewRules(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.customer(t, tenantA, "user-1", models.SegmentRetail)
	p := h.product(t, tenantA, "cat-1", "10", 5)

	_, err := h.reviews.Create(ctx, tenantA, "user-1", CreateReviewInput{ProductID: p.ID, Rating: 6})
	requireAppErr(t, err, apperr.KindValidation, "invalid_rating")
	_, err = h.reviews.Create(ctx, tenantA, "user-1", CreateReviewInput{ProductID: p.ID, Rating: 0})
	requireAppErr(t, err, apperr.KindValidation, "invalid_rating")
	_, err = h.reviews.Create(ctx, tenantA, "user-1", CreateReviewInput{ProductID: p.ID, Rating: 3, Comment: ptr(strings.Repeat("a", 2001))})
	requireAppErr(t, err, apperr.KindValidation, "comment_too_long")
	_, err = h.reviews.Create(ctx, tenantA, "user-1", CreateReviewInput{ProductID: "missing", Rating: 3})
	requireAppErr(t, err, apperr.KindNotFound, "product_not_found")

	rv, err := h.reviews.Create(ctx, tenantA, "user-1", CreateReviewInput{ProductID: p.ID, Rating: 3})
	require.NoError(t, err)
	_, err = h.reviews.Create(ctx, tenantA, "user-1", CreateReviewInput{ProductID: p.ID, Rating: 4})
	requireAppErr(t, err, apperr.KindConflict, "review_exists")

	_, err = h.reviews.Moderate(ctx, tenantA, rv.ID, models.ReviewStatusPending)
	requireAppErr(t, err, apperr.KindValidation, "invalid_status")

	_, err = h.reviews.Moderate(ctx, tenantA, rv.ID, models.ReviewStatusRejected)
	require.NoError(t, err)
	_, err = h.reviews.Moderate(ctx, tenantA, rv.ID, models.ReviewStatusApproved)
	requireAppErr(t, err, apperr.KindConflict, "illegal_transition")

	_, err = h.reviews.Update(ctx, tenantA, "user-1", rv.ID, ReviewPatch{Rating: ptr(5)})
	requireAppErr(t, err, apperr.KindConflict, "review_moderated")

	pending, err := h.reviews.ListAdmin(ctx, tenantA, models.ReviewFilter{Status: models.ReviewStatusPending})
	require.NoError(t, err)
	assert.Empty(t, pending)
	rejected, err := h.reviews.ListAdmin(ctx, tenantA, models.ReviewFilter{Status: models.ReviewStatusRejected})
	require.NoError(t, err)
	assert.Len(t, rejected, 1)
}
