// Package memory keeps every repository in process memory. It backs the
// server when storage.driver is "memory" and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
)

// Store implements the repository interfaces over maps guarded by one mutex,
// so a rental write and its thread entry become visible together.
type Store struct {
	mu sync.RWMutex

	users         map[int32]domain.User
	items         map[int32]domain.Item
	rentals       map[int32]*domain.RentalRequest
	threads       map[int32][]domain.ThreadEntry
	notifications []domain.Notification
	reviews       []domain.Review

	nextRentalID       int32
	nextEntryID        int64
	nextNotificationID int32
	nextReviewID       int32
}

func NewStore() *Store {
	return &Store{
		users:   make(map[int32]domain.User),
		items:   make(map[int32]domain.Item),
		rentals: make(map[int32]*domain.RentalRequest),
		threads: make(map[int32][]domain.ThreadEntry),
	}
}

func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) PutItem(it domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.ID] = it
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Items() repository.ItemRepository                 { return itemRepo{s} }
func (s *Store) Rentals() repository.RentalRepository             { return rentalRepo{s} }
func (s *Store) Threads() repository.ThreadRepository             { return threadRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository             { return reviewRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id int32) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	return &u, nil
}

type itemRepo struct{ s *Store }

func (r itemRepo) GetByID(_ context.Context, id int32) (*domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %d", domain.ErrNotFound, id)
	}
	return &it, nil
}

type rentalRepo struct{ s *Store }

func (r rentalRepo) Create(_ context.Context, rt *domain.RentalRequest, entry *domain.ThreadEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextRentalID++
	rt.ID = r.s.nextRentalID
	if rt.Version == 0 {
		rt.Version = 1
	}
	r.s.rentals[rt.ID] = rt.Clone()
	entry.RentalID = rt.ID
	r.s.appendLocked(entry)
	return nil
}

func (r rentalRepo) GetByID(_ context.Context, id int32) (*domain.RentalRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rt, ok := r.s.rentals[id]
	if !ok {
		return nil, fmt.Errorf("%w: rental %d", domain.ErrNotFound, id)
	}
	return rt.Clone(), nil
}

func (r rentalRepo) Transition(_ context.Context, rt *domain.RentalRequest, expectedVersion int64, entry *domain.ThreadEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.rentals[rt.ID]
	if !ok {
		return fmt.Errorf("%w: rental %d", domain.ErrNotFound, rt.ID)
	}
	if stored.Version != expectedVersion {
		return repository.ErrStaleVersion
	}
	rt.Version = expectedVersion + 1
	r.s.rentals[rt.ID] = rt.Clone()
	entry.RentalID = rt.ID
	r.s.appendLocked(entry)
	return nil
}

func (r rentalRepo) ListCommittedByItem(ctx context.Context, itemID int32) ([]domain.RentalRequest, error) {
	return r.List(ctx, repository.RentalFilter{ItemID: itemID, Statuses: domain.CommittedStatuses})
}

func (r rentalRepo) List(_ context.Context, f repository.RentalFilter) ([]domain.RentalRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.RentalRequest
	for _, rt := range r.s.rentals {
		if f.OwnerID != 0 && rt.OwnerID != f.OwnerID {
			continue
		}
		if f.RenterID != 0 && rt.RenterID != f.RenterID {
			continue
		}
		if f.ItemID != 0 && rt.ItemID != f.ItemID {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, rt.Status) {
			continue
		}
		out = append(out, *rt.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r rentalRepo) ListStale(_ context.Context, statuses []domain.RentalStatus, before time.Time) ([]domain.RentalRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.RentalRequest
	for _, rt := range r.s.rentals {
		if hasStatus(statuses, rt.Status) && rt.UpdatedAt.Before(before) {
			out = append(out, *rt.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func hasStatus(statuses []domain.RentalStatus, st domain.RentalStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

type threadRepo struct{ s *Store }

func (s *Store) appendLocked(e *domain.ThreadEntry) {
	s.nextEntryID++
	e.ID = s.nextEntryID
	cp := *e
	if e.Interval != nil {
		iv := *e.Interval
		cp.Interval = &iv
	}
	if e.Meeting != nil {
		m := *e.Meeting
		cp.Meeting = &m
	}
	s.threads[e.RentalID] = append(s.threads[e.RentalID], cp)
}

func (r threadRepo) Append(_ context.Context, e *domain.ThreadEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rentals[e.RentalID]; !ok {
		return fmt.Errorf("%w: rental %d", domain.ErrNotFound, e.RentalID)
	}
	r.s.appendLocked(e)
	return nil
}

func (r threadRepo) List(_ context.Context, rentalID int32) ([]domain.ThreadEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entries := r.s.threads[rentalID]
	out := make([]domain.ThreadEntry, len(entries))
	copy(out, entries)
	return out, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextNotificationID++
	n.ID = r.s.nextNotificationID
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r notificationRepo) List(_ context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var mine []domain.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		if r.s.notifications[i].UserID == userID {
			mine = append(mine, r.s.notifications[i])
		}
	}
	total := int32(len(mine))
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

func (r notificationRepo) MarkAsRead(_ context.Context, id, userID int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		n := &r.s.notifications[i]
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return fmt.Errorf("%w: notification %d", domain.ErrNotFound, id)
}

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(_ context.Context, rv *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.RentalID == rv.RentalID && existing.ReviewerID == rv.ReviewerID {
			return fmt.Errorf("%w: user %d already reviewed rental %d", domain.ErrConflict, rv.ReviewerID, rv.RentalID)
		}
	}
	r.s.nextReviewID++
	rv.ID = r.s.nextReviewID
	r.s.reviews = append(r.s.reviews, *rv)
	return nil
}

func (r reviewRepo) ListByReviewee(_ context.Context, userID int32) ([]domain.Review, error) {
	return r.filter(func(rv domain.Review) bool { return rv.RevieweeID == userID }), nil
}

func (r reviewRepo) ListByRental(_ context.Context, rentalID int32) ([]domain.Review, error) {
	return r.filter(func(rv domain.Review) bool { return rv.RentalID == rentalID }), nil
}

// filter returns matching reviews, newest first.
func (r reviewRepo) filter(keep func(domain.Review) bool) []domain.Review {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Review
	for i := len(r.s.reviews) - 1; i >= 0; i-- {
		if keep(r.s.reviews[i]) {
			out = append(out, r.s.reviews[i])
		}
	}
	return out
}
