package postgres_test

import (
	"context"
	"testing"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewReviewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Create", func(t *testing.T) {
		rv := &domain.Review{RentalID: 5, ReviewerID: 2, RevieweeID: 3, RevieweeRole: domain.ReviewRoleOwner,
			Rating: 5, Text: "great drill", CreatedAt: now}
		mock.ExpectQuery("INSERT INTO reviews").
			WithArgs(int32(5), int32(2), int32(3), "owner", int32(5), "great drill", now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		require.NoError(t, repo.Create(ctx, rv))
		assert.Equal(t, int32(11), rv.ID)
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		rv := &domain.Review{RentalID: 5, ReviewerID: 2, RevieweeID: 3, RevieweeRole: domain.ReviewRoleOwner,
			Rating: 1, Text: "again", CreatedAt: now}
		mock.ExpectQuery("INSERT INTO reviews").
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		err := repo.Create(ctx, rv)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("ListByReviewee", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reviews WHERE reviewee_id = \\$1").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "rental_id", "reviewer_id", "reviewee_id", "reviewee_role", "rating", "review_text", "created_at"}).
				AddRow(11, 5, 2, 3, "owner", 5, "great drill", now).
				AddRow(9, 4, 8, 3, "renter", 3, "late return", now.Add(-time.Hour)))

		reviews, err := repo.ListByReviewee(ctx, 3)
		require.NoError(t, err)
		require.Len(t, reviews, 2)
		assert.Equal(t, domain.ReviewRoleOwner, reviews[0].RevieweeRole)
		assert.Equal(t, int32(3), reviews[1].Rating)
	})

	t.Run("ListByRental", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reviews WHERE rental_id = \\$1").
			WithArgs(int32(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "rental_id", "reviewer_id", "reviewee_id", "reviewee_role", "rating", "review_text", "created_at"}))

		reviews, err := repo.ListByRental(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, reviews)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
