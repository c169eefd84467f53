package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
)

type reviewService struct {
	reviewRepo repository.ReviewRepository
	rentalRepo repository.RentalRepository
	now        func() time.Time
}

func NewReviewService(reviewRepo repository.ReviewRepository, rentalRepo repository.RentalRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, rentalRepo: rentalRepo, now: time.Now}
}

// SubmitReview records the reviewer's rating of the other party. Only a
// completed rental can be reviewed, once by each side.
func (s *reviewService) SubmitReview(ctx context.Context, reviewerID, rentalID, rating int32, text string) (*domain.Review, error) {
	logger.EnterMethod("reviewService.SubmitReview", "reviewerID", reviewerID, "rentalID", rentalID, "rating", rating)

	review, err := s.submit(ctx, reviewerID, rentalID, rating, text)
	if err != nil {
		logger.ExitMethodWithError("reviewService.SubmitReview", err, "reviewerID", reviewerID, "rentalID", rentalID)
		return nil, err
	}
	logger.ExitMethod("reviewService.SubmitReview", "reviewID", review.ID)
	return review, nil
}

func (s *reviewService) submit(ctx context.Context, reviewerID, rentalID, rating int32, text string) (*domain.Review, error) {
	if rating < domain.MinReviewRating || rating > domain.MaxReviewRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", domain.ErrValidation, domain.MinReviewRating, domain.MaxReviewRating)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: review text must not be blank", domain.ErrValidation)
	}
	if utf8.RuneCountInString(text) > domain.MaxReviewLength {
		return nil, fmt.Errorf("%w: review text exceeds %d characters", domain.ErrValidation, domain.MaxReviewLength)
	}

	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if err := requireParty(rt, reviewerID); err != nil {
		return nil, err
	}
	if rt.Status != domain.RentalStatusCompleted {
		return nil, fmt.Errorf("%w: rental %d is %s, only completed rentals can be reviewed", domain.ErrInvalidState, rt.ID, rt.Status)
	}

	review := &domain.Review{
		RentalID:     rt.ID,
		ReviewerID:   reviewerID,
		RevieweeID:   rt.OwnerID,
		RevieweeRole: domain.ReviewRoleOwner,
		Rating:       rating,
		Text:         text,
		CreatedAt:    s.now().UTC(),
	}
	if reviewerID == rt.OwnerID {
		review.RevieweeID = rt.RenterID
		review.RevieweeRole = domain.ReviewRoleRenter
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListUserReviews(ctx context.Context, userID int32) ([]domain.Review, *domain.RatingSummary, error) {
	reviews, err := s.reviewRepo.ListByReviewee(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return reviews, summarize(userID, reviews), nil
}

func (s *reviewService) ListRentalReviews(ctx context.Context, actorID, rentalID int32) ([]domain.Review, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if err := requireParty(rt, actorID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByRental(ctx, rt.ID)
}

// summarize averages ratings to one decimal place. No reviews gives a zero average.
func summarize(userID int32, reviews []domain.Review) *domain.RatingSummary {
	out := &domain.RatingSummary{UserID: userID, Count: int32(len(reviews))}
	if len(reviews) == 0 {
		return out
	}
	var total int64
	for _, rv := range reviews {
		total += int64(rv.Rating)
	}
	out.Average = math.Round(float64(total)/float64(len(reviews))*10) / 10
	return out
}
