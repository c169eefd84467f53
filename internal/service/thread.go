package service

import (
	"context"
	"fmt"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
)

// ThreadService is the append-only negotiation history of each rental.
// Entries recording status changes are written by the rental repository in
// the same write as the change; only free-text messages come through Append.
type ThreadService struct {
	repo repository.ThreadRepository
}

func NewThreadService(repo repository.ThreadRepository) *ThreadService {
	return &ThreadService{repo: repo}
}

func (t *ThreadService) Append(ctx context.Context, entry *domain.ThreadEntry) error {
	if entry.RentalID == 0 || entry.Kind == "" {
		return fmt.Errorf("%w: thread entry needs a rental and a kind", domain.ErrValidation)
	}
	return t.repo.Append(ctx, entry)
}

// List returns the entries of a rental oldest first.
func (t *ThreadService) List(ctx context.Context, rentalID int32) ([]domain.ThreadEntry, error) {
	return t.repo.List(ctx, rentalID)
}
