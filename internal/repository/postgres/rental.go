package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"

	"github.com/lib/pq"
)

const rentalColumns = `id, item_id, renter_id, owner_id, start_date, end_date, meeting, payment_method, status,
	daily_rate_cents, total_price_cents, deposit_cents, last_modified_by, completed_by, version, created_at, updated_at`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(s rowScanner) (*domain.RentalRequest, error) {
	var (
		rt                         domain.RentalRequest
		meeting                    []byte
		status, payment            string
		rate, total, deposit, done sql.NullInt32
	)
	err := s.Scan(&rt.ID, &rt.ItemID, &rt.RenterID, &rt.OwnerID, &rt.Interval.StartDate, &rt.Interval.EndDate,
		&meeting, &payment, &status, &rate, &total, &deposit, &rt.LastModifiedBy, &done, &rt.Version,
		&rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rt.Status = domain.RentalStatus(status)
	rt.PaymentMethod = domain.PaymentMethod(payment)
	rt.Interval.StartDate = rt.Interval.StartDate.UTC()
	rt.Interval.EndDate = rt.Interval.EndDate.UTC()
	rt.DailyRateCents = nullInt32(rate)
	rt.TotalPriceCents = nullInt32(total)
	rt.DepositCents = nullInt32(deposit)
	rt.CompletedBy = nullInt32(done)
	if len(meeting) > 0 {
		rt.Meeting = &domain.MeetingDetails{}
		if err := json.Unmarshal(meeting, rt.Meeting); err != nil {
			return nil, fmt.Errorf("decode meeting for rental %d: %w", rt.ID, err)
		}
	}
	return &rt, nil
}

func nullInt32(v sql.NullInt32) *int32 {
	if !v.Valid {
		return nil
	}
	n := v.Int32
	return &n
}

// encodeMeeting returns a JSON string for the jsonb column, or nil for NULL.
func encodeMeeting(m *domain.MeetingDetails) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.RentalRequest, entry *domain.ThreadEntry) (err error) {
	logger.EnterMethod("rentalRepository.Create", "itemID", rt.ItemID, "renterID", rt.RenterID)
	defer func() {
		if err != nil {
			logger.ExitMethodWithError("rentalRepository.Create", err, "itemID", rt.ItemID)
		} else {
			logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
		}
	}()

	meeting, err := encodeMeeting(rt.Meeting)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if rt.Version == 0 {
		rt.Version = 1
	}
	query := `INSERT INTO rentals (item_id, renter_id, owner_id, start_date, end_date, meeting, payment_method, status,
	          daily_rate_cents, total_price_cents, deposit_cents, last_modified_by, completed_by, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`
	logger.DatabaseCall("INSERT", "rentals", "itemID", rt.ItemID)
	err = tx.QueryRowContext(ctx, query, rt.ItemID, rt.RenterID, rt.OwnerID, rt.Interval.StartDate, rt.Interval.EndDate,
		meeting, string(rt.PaymentMethod), string(rt.Status), rt.DailyRateCents, rt.TotalPriceCents, rt.DepositCents,
		rt.LastModifiedBy, rt.CompletedBy, rt.Version, rt.CreatedAt, rt.UpdatedAt).Scan(&rt.ID)
	logger.DatabaseResult("INSERT", 1, err, "rentalID", rt.ID)
	if err != nil {
		return err
	}

	entry.RentalID = rt.ID
	if err = insertThreadEntry(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	logger.DatabaseCall("SELECT", "rentals", "rentalID", id)
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rental %d", domain.ErrNotFound, id)
	}
	return rt, err
}

func (r *rentalRepository) Transition(ctx context.Context, rt *domain.RentalRequest, expectedVersion int64, entry *domain.ThreadEntry) (err error) {
	logger.EnterMethod("rentalRepository.Transition", "rentalID", rt.ID, "status", rt.Status, "version", expectedVersion)
	defer func() {
		if err != nil {
			logger.ExitMethodWithError("rentalRepository.Transition", err, "rentalID", rt.ID)
		} else {
			logger.ExitMethod("rentalRepository.Transition", "rentalID", rt.ID, "version", rt.Version)
		}
	}()

	meeting, err := encodeMeeting(rt.Meeting)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `UPDATE rentals SET start_date=$1, end_date=$2, meeting=$3, payment_method=$4, status=$5,
	          daily_rate_cents=$6, total_price_cents=$7, deposit_cents=$8, last_modified_by=$9, completed_by=$10,
	          version=version+1, updated_at=$11
	          WHERE id=$12 AND version=$13`
	logger.DatabaseCall("UPDATE", "rentals", "rentalID", rt.ID)
	res, err := tx.ExecContext(ctx, query, rt.Interval.StartDate, rt.Interval.EndDate, meeting, string(rt.PaymentMethod),
		string(rt.Status), rt.DailyRateCents, rt.TotalPriceCents, rt.DepositCents, rt.LastModifiedBy, rt.CompletedBy,
		rt.UpdatedAt, rt.ID, expectedVersion)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	affected, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", affected, err, "rentalID", rt.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		err = repository.ErrStaleVersion
		return err
	}

	entry.RentalID = rt.ID
	if err = insertThreadEntry(ctx, tx, entry); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	rt.Version = expectedVersion + 1
	return nil
}

func (r *rentalRepository) ListCommittedByItem(ctx context.Context, itemID int32) ([]domain.RentalRequest, error) {
	return r.List(ctx, repository.RentalFilter{ItemID: itemID, Statuses: domain.CommittedStatuses})
}

func (r *rentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]domain.RentalRequest, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.OwnerID != 0 {
		add("owner_id = $%d", filter.OwnerID)
	}
	if filter.RenterID != 0 {
		add("renter_id = $%d", filter.RenterID)
	}
	if filter.ItemID != 0 {
		add("item_id = $%d", filter.ItemID)
	}
	if len(filter.Statuses) > 0 {
		add("status = ANY($%d)", pq.Array(statusStrings(filter.Statuses)))
	}

	query := `SELECT ` + rentalColumns + ` FROM rentals`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	return r.queryRentals(ctx, query, args...)
}

func (r *rentalRepository) ListStale(ctx context.Context, statuses []domain.RentalStatus, before time.Time) ([]domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = ANY($1) AND updated_at < $2 ORDER BY updated_at ASC`
	return r.queryRentals(ctx, query, pq.Array(statusStrings(statuses)), before)
}

func (r *rentalRepository) queryRentals(ctx context.Context, query string, args ...any) ([]domain.RentalRequest, error) {
	logger.DatabaseCall("SELECT", "rentals", "args", len(args))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.RentalRequest
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(rentals)), nil)
	return rentals, nil
}

func statusStrings(statuses []domain.RentalStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
