package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
)

const uniqueViolation = "23505"

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	logger.EnterMethod("reviewRepository.Create", "rentalID", rv.RentalID, "reviewerID", rv.ReviewerID)

	query := `INSERT INTO reviews (rental_id, reviewer_id, reviewee_id, reviewee_role, rating, review_text, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	logger.DatabaseCall("INSERT", "reviews", "rentalID", rv.RentalID, "reviewerID", rv.ReviewerID)

	err := r.db.QueryRowContext(ctx, query, rv.RentalID, rv.ReviewerID, rv.RevieweeID, string(rv.RevieweeRole),
		rv.Rating, rv.Text, rv.CreatedAt).Scan(&rv.ID)
	logger.DatabaseResult("INSERT", 1, err, "reviewID", rv.ID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		err = fmt.Errorf("%w: user %d already reviewed rental %d", domain.ErrConflict, rv.ReviewerID, rv.RentalID)
	}
	if err != nil {
		logger.ExitMethodWithError("reviewRepository.Create", err, "rentalID", rv.RentalID, "reviewerID", rv.ReviewerID)
		return err
	}
	logger.ExitMethod("reviewRepository.Create", "reviewID", rv.ID)
	return nil
}

func (r *reviewRepository) ListByReviewee(ctx context.Context, userID int32) ([]domain.Review, error) {
	return r.query(ctx, `SELECT id, rental_id, reviewer_id, reviewee_id, reviewee_role, rating, review_text, created_at
	          FROM reviews WHERE reviewee_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *reviewRepository) ListByRental(ctx context.Context, rentalID int32) ([]domain.Review, error) {
	return r.query(ctx, `SELECT id, rental_id, reviewer_id, reviewee_id, reviewee_role, rating, review_text, created_at
	          FROM reviews WHERE rental_id = $1 ORDER BY created_at DESC, id DESC`, rentalID)
}

func (r *reviewRepository) query(ctx context.Context, query string, arg int32) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var role string
		if err := rows.Scan(&rv.ID, &rv.RentalID, &rv.ReviewerID, &rv.RevieweeID, &role, &rv.Rating, &rv.Text, &rv.CreatedAt); err != nil {
			return nil, err
		}
		rv.RevieweeRole = domain.ReviewRole(role)
		out = append(out, rv)
	}
	return out, rows.Err()
}
