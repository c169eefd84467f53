package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
)

type threadRepository struct {
	db *sql.DB
}

func NewThreadRepository(db *sql.DB) repository.ThreadRepository {
	return &threadRepository{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertThreadEntry(ctx context.Context, q execer, e *domain.ThreadEntry) error {
	var start, end any
	if e.Interval != nil {
		start, end = e.Interval.StartDate, e.Interval.EndDate
	}
	meeting, err := encodeMeeting(e.Meeting)
	if err != nil {
		return err
	}

	query := `INSERT INTO rental_thread_entries (rental_id, kind, author_id, body, start_date, end_date, meeting, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	logger.DatabaseCall("INSERT", "rental_thread_entries", "rentalID", e.RentalID, "kind", e.Kind)
	err = q.QueryRowContext(ctx, query, e.RentalID, string(e.Kind), e.AuthorID, e.Body, start, end, meeting, e.CreatedAt).Scan(&e.ID)
	logger.DatabaseResult("INSERT", 1, err, "entryID", e.ID)
	return err
}

func (r *threadRepository) Append(ctx context.Context, e *domain.ThreadEntry) error {
	return insertThreadEntry(ctx, r.db, e)
}

func (r *threadRepository) List(ctx context.Context, rentalID int32) ([]domain.ThreadEntry, error) {
	query := `SELECT id, rental_id, kind, author_id, body, start_date, end_date, meeting, created_at
	          FROM rental_thread_entries WHERE rental_id = $1 ORDER BY id ASC`
	logger.DatabaseCall("SELECT", "rental_thread_entries", "rentalID", rentalID)
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ThreadEntry
	for rows.Next() {
		var (
			e          domain.ThreadEntry
			kind       string
			start, end sql.NullTime
			meeting    []byte
		)
		if err := rows.Scan(&e.ID, &e.RentalID, &kind, &e.AuthorID, &e.Body, &start, &end, &meeting, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = domain.ThreadEntryKind(kind)
		if start.Valid && end.Valid {
			e.Interval = &domain.RentalInterval{StartDate: start.Time.UTC(), EndDate: end.Time.UTC()}
		}
		if len(meeting) > 0 {
			e.Meeting = &domain.MeetingDetails{}
			if err := json.Unmarshal(meeting, e.Meeting); err != nil {
				return nil, fmt.Errorf("decode meeting for thread entry %d: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(entries)), nil, "rentalID", rentalID)
	return entries, nil
}
