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

func TestThreadRepository_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewThreadRepository(db)
	now := time.Now()
	entry := &domain.ThreadEntry{
		RentalID:  5,
		Kind:      domain.ThreadEntryMeetingProposed,
		AuthorID:  4,
		Meeting:   &domain.MeetingDetails{Location: "Station", Date: "2025-03-10", Time: "10:00"},
		CreatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO rental_thread_entries").
		WithArgs(int32(5), "meeting-proposed", int32(4), "", nil, nil,
			`{"location":"Station","date":"2025-03-10","time":"10:00"}`, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	err = repo.Append(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, int64(9), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewThreadRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "rental_id", "kind", "author_id", "body", "start_date", "end_date", "meeting", "created_at"}).
		AddRow(1, 5, "interval-proposed", 3, "", day("2025-03-10"), day("2025-03-12"), nil, now).
		AddRow(2, 5, "message", 4, "see you there", nil, nil, nil, now).
		AddRow(3, 5, "declined", 0, "conflicts with confirmed rental 2", nil, nil, nil, now)

	mock.ExpectQuery("SELECT (.+) FROM rental_thread_entries WHERE rental_id = \\$1 ORDER BY id ASC").
		WithArgs(int32(5)).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.NotNil(t, entries[0].Interval)
	assert.Equal(t, "[2025-03-10, 2025-03-12]", entries[0].Interval.String())
	assert.Nil(t, entries[1].Interval)
	assert.Equal(t, domain.ThreadEntryMessage, entries[1].Kind)
	assert.True(t, entries[2].IsSystem())
}
