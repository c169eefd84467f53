package postgres

import (
	"database/sql"

	"rentalhub-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ItemRepository
	repository.RentalRepository
	repository.ThreadRepository
	repository.NotificationRepository
	Reviews repository.ReviewRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		ItemRepository:         NewItemRepository(db),
		RentalRepository:       NewRentalRepository(db),
		ThreadRepository:       NewThreadRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		Reviews:                NewReviewRepository(db),
	}
}
