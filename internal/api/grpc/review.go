package grpc

import (
	"context"

	"github.com/go-playground/validator/v10"

	"rentalhub-backend/internal/service"
)

type ReviewHandler struct {
	reviewSvc service.ReviewService
	validate  *validator.Validate
}

func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc, validate: validator.New()}
}

func (h *ReviewHandler) SubmitReview(ctx context.Context, req *SubmitReviewRequest) (*ReviewResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	review, err := h.reviewSvc.SubmitReview(ctx, userID, req.RentalID, req.Rating, req.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReviewResponse{Review: mapDomainReviewToWire(review)}, nil
}

// ListUserReviews is open to any signed-in user; received reviews are public.
func (h *ReviewHandler) ListUserReviews(ctx context.Context, req *ListUserReviewsRequest) (*ListUserReviewsResponse, error) {
	if _, err := GetUserIDFromContext(ctx); err != nil {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	reviews, summary, err := h.reviewSvc.ListUserReviews(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListUserReviewsResponse{
		Reviews:       mapDomainReviewsToWire(reviews),
		Count:         summary.Count,
		AverageRating: summary.Average,
	}, nil
}

func (h *ReviewHandler) ListRentalReviews(ctx context.Context, req *RentalIDRequest) (*ListReviewsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	reviews, err := h.reviewSvc.ListRentalReviews(ctx, userID, req.RentalID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListReviewsResponse{Reviews: mapDomainReviewsToWire(reviews)}, nil
}
