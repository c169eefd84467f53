package repository

import (
	"context"
	"errors"
	"time"

	"rentalhub-backend/internal/domain"
)

// ErrStaleVersion is returned by RentalRepository.Transition when the stored
// version no longer matches the version the caller read.
var ErrStaleVersion = errors.New("stale rental version")

// UserRepository reads profiles owned by the account subsystem.
type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

// ItemRepository reads listings owned by the listing subsystem.
type ItemRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Item, error)
}

type RentalFilter struct {
	OwnerID  int32
	RenterID int32
	ItemID   int32
	Statuses []domain.RentalStatus
}

type RentalRepository interface {
	// Create inserts the request and its opening thread entry atomically and
	// fills in the generated ids.
	Create(ctx context.Context, rt *domain.RentalRequest, entry *domain.ThreadEntry) error
	GetByID(ctx context.Context, id int32) (*domain.RentalRequest, error)
	// Transition persists rt if the stored version still equals expectedVersion
	// and appends entry in the same write. On success rt.Version is advanced.
	Transition(ctx context.Context, rt *domain.RentalRequest, expectedVersion int64, entry *domain.ThreadEntry) error
	// ListCommittedByItem returns confirmed and completed requests on an item.
	ListCommittedByItem(ctx context.Context, itemID int32) ([]domain.RentalRequest, error)
	List(ctx context.Context, filter RentalFilter) ([]domain.RentalRequest, error)
	// ListStale returns requests in the given statuses whose last transition is older than before.
	ListStale(ctx context.Context, statuses []domain.RentalStatus, before time.Time) ([]domain.RentalRequest, error)
}

type ThreadRepository interface {
	Append(ctx context.Context, entry *domain.ThreadEntry) error
	List(ctx context.Context, rentalID int32) ([]domain.ThreadEntry, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type ReviewRepository interface {
	// Create inserts the review and fills in its id. A second review of the
	// same rental by the same reviewer fails with domain.ErrConflict.
	Create(ctx context.Context, review *domain.Review) error
	// ListByReviewee returns reviews received by userID, newest first.
	ListByReviewee(ctx context.Context, userID int32) ([]domain.Review, error)
	ListByRental(ctx context.Context, rentalID int32) ([]domain.Review, error)
}
