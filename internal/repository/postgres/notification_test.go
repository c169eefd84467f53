package postgres_test

import (
	"context"
	"testing"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Create", func(t *testing.T) {
		n := &domain.Notification{UserID: 4, RentalID: 5, Title: "New rental request", Message: "m",
			Attributes: map[string]string{"type": "RENTAL_REQUEST"}, CreatedOn: now}
		mock.ExpectQuery("INSERT INTO notifications").
			WithArgs(int32(4), int32(5), "New rental request", "m", false, `{"type":"RENTAL_REQUEST"}`, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		require.NoError(t, repo.Create(ctx, n))
		assert.Equal(t, int32(1), n.ID)
	})

	t.Run("List", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM notifications WHERE user_id = \\$1").
			WithArgs(int32(4), int32(10), int32(0)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "rental_id", "title", "message", "is_read", "attributes", "created_on"}).
				AddRow(1, 4, 5, "t", "m", false, []byte(`{"type":"RENTAL_REQUEST"}`), now))
		mock.ExpectQuery("SELECT count").
			WithArgs(int32(4)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		notes, total, err := repo.List(ctx, 4, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)
		require.Len(t, notes, 1)
		assert.Equal(t, "RENTAL_REQUEST", notes[0].Attributes["type"])
	})

	t.Run("MarkAsReadNotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET is_read = TRUE").
			WithArgs(int32(9), int32(4)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkAsRead(ctx, 9, 4)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
