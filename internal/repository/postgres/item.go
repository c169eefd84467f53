package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
)

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	it := &domain.Item{}
	var kind string
	query := `SELECT id, owner_id, title, daily_rate_cents, deposit_kind, deposit_fixed_cents, deposit_multiplier
	          FROM items WHERE id = $1 AND deleted_on IS NULL`
	logger.DatabaseCall("SELECT", "items", "itemID", id)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&it.ID, &it.OwnerID, &it.Title, &it.DailyRateCents,
		&kind, &it.Deposit.FixedCents, &it.Deposit.Multiplier)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("SELECT", 0, nil, "itemID", id)
		return nil, fmt.Errorf("%w: item %d", domain.ErrNotFound, id)
	}
	logger.DatabaseResult("SELECT", 1, err, "itemID", id)
	if err != nil {
		return nil, err
	}
	it.Deposit.Kind = domain.DepositKind(kind)
	return it, nil
}
