package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/lock"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/queue"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/utils"

	"github.com/google/uuid"
)

type rentalService struct {
	rentalRepo repository.RentalRepository
	itemRepo   repository.ItemRepository
	threads    *ThreadService
	locker     lock.Locker
	lockWait   time.Duration
	publisher  EventPublisher
	now        func() time.Time
}

type RentalOption func(*rentalService)

// WithClock replaces time.Now, which decides what "today" is for date checks.
func WithClock(now func() time.Time) RentalOption {
	return func(s *rentalService) { s.now = now }
}

func WithLocker(l lock.Locker) RentalOption {
	return func(s *rentalService) { s.locker = l }
}

// WithLockTimeout bounds how long an approval waits for the item lock.
func WithLockTimeout(d time.Duration) RentalOption {
	return func(s *rentalService) { s.lockWait = d }
}

func WithPublisher(p EventPublisher) RentalOption {
	return func(s *rentalService) { s.publisher = p }
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	threadRepo repository.ThreadRepository,
	itemRepo repository.ItemRepository,
	opts ...RentalOption,
) RentalService {
	s := &rentalService{
		rentalRepo: rentalRepo,
		itemRepo:   itemRepo,
		threads:    NewThreadService(threadRepo),
		locker:     lock.NewLocal(),
		publisher:  nopPublisher{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *rentalService) Submit(ctx context.Context, renterID int32, in SubmitInput) (*RentalDetail, error) {
	logger.EnterMethod("rentalService.Submit", "renterID", renterID, "itemID", in.ItemID)
	detail, err := s.submit(ctx, renterID, in)
	if err != nil {
		logger.ExitMethodWithError("rentalService.Submit", err, "renterID", renterID, "itemID", in.ItemID)
		return nil, err
	}
	logger.ExitMethod("rentalService.Submit", "rentalID", detail.Rental.ID)
	return detail, nil
}

func (s *rentalService) submit(ctx context.Context, renterID int32, in SubmitInput) (*RentalDetail, error) {
	now := s.now().UTC()
	interval, err := utils.ParseInterval(in.StartDate, in.EndDate, now)
	if err != nil {
		return nil, err
	}
	payment, err := domain.ParsePaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if err != nil {
		return nil, err
	}
	note, err := normalizeText(in.Note, false)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == renterID {
		return nil, fmt.Errorf("%w: owners cannot rent their own item %d", domain.ErrValidation, item.ID)
	}
	if _, err := utils.QuoteRental(item, interval); err != nil {
		return nil, err
	}

	// Unlocked check: overlapping pending requests are allowed, approval decides.
	if err := s.checkCommitted(ctx, item.ID, 0, interval); err != nil {
		return nil, err
	}

	rt := &domain.RentalRequest{
		ItemID:         item.ID,
		RenterID:       renterID,
		OwnerID:        item.OwnerID,
		Interval:       interval,
		PaymentMethod:  payment,
		Status:         domain.RentalStatusPending,
		LastModifiedBy: renterID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	proposed := interval
	entry := &domain.ThreadEntry{
		Kind:      domain.ThreadEntryIntervalProposed,
		AuthorID:  renterID,
		Body:      note,
		Interval:  &proposed,
		CreatedAt: now,
	}
	if err := s.rentalRepo.Create(ctx, rt, entry); err != nil {
		return nil, err
	}
	s.publish(ctx, rt, entry)
	return s.detail(ctx, rt)
}

func (s *rentalService) ProposeModification(ctx context.Context, ownerID, rentalID int32, in ModificationInput) (*RentalDetail, error) {
	return s.modify(ctx, "rentalService.ProposeModification", ownerID, rentalID, in, requireOwner, domain.RentalStatusModified)
}

func (s *rentalService) CounterPropose(ctx context.Context, renterID, rentalID int32, in ModificationInput) (*RentalDetail, error) {
	return s.modify(ctx, "rentalService.CounterPropose", renterID, rentalID, in, requireRenter, domain.RentalStatusPending)
}

func (s *rentalService) modify(
	ctx context.Context,
	method string,
	actorID, rentalID int32,
	in ModificationInput,
	authorize func(*domain.RentalRequest, int32) error,
	next domain.RentalStatus,
) (*RentalDetail, error) {
	logger.EnterMethod(method, "actorID", actorID, "rentalID", rentalID)

	interval, meeting, note, err := s.parseModification(in)
	if err != nil {
		logger.ExitMethodWithError(method, err, "rentalID", rentalID)
		return nil, err
	}

	rt, entry, err := s.transition(ctx, rentalID, func(rt *domain.RentalRequest) (*domain.ThreadEntry, error) {
		if err := authorize(rt, actorID); err != nil {
			return nil, err
		}
		if err := requireTransition(rt, next); err != nil {
			return nil, err
		}
		entry := &domain.ThreadEntry{Kind: domain.ThreadEntryMeetingProposed, AuthorID: actorID, Body: note}
		if interval != nil {
			if err := s.checkCommitted(ctx, rt.ItemID, rt.ID, *interval); err != nil {
				return nil, err
			}
			iv := *interval
			rt.Interval = iv
			entry.Kind = domain.ThreadEntryIntervalModified
			entry.Interval = &iv
		}
		if meeting != nil {
			m := *meeting
			rt.Meeting = &m
			entry.Meeting = meeting
		}
		rt.Status = next
		return entry, nil
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, "rentalID", rentalID)
		return nil, err
	}
	s.publish(ctx, rt, entry)
	logger.ExitMethod(method, "rentalID", rentalID, "status", rt.Status, "kind", entry.Kind)
	return s.detail(ctx, rt)
}

func (s *rentalService) parseModification(in ModificationInput) (*domain.RentalInterval, *domain.MeetingDetails, string, error) {
	var interval *domain.RentalInterval
	start, end := strings.TrimSpace(in.StartDate), strings.TrimSpace(in.EndDate)
	if start != "" || end != "" {
		iv, err := utils.ParseInterval(start, end, s.now().UTC())
		if err != nil {
			return nil, nil, "", err
		}
		interval = &iv
	}
	meeting, err := utils.NormalizeMeeting(in.Meeting)
	if err != nil {
		return nil, nil, "", err
	}
	if interval == nil && meeting == nil {
		return nil, nil, "", fmt.Errorf("%w: a new interval or meeting details are required", domain.ErrValidation)
	}
	note, err := normalizeText(in.Note, false)
	if err != nil {
		return nil, nil, "", err
	}
	return interval, meeting, note, nil
}

func (s *rentalService) AcceptModification(ctx context.Context, renterID, rentalID int32) (*RentalDetail, error) {
	logger.EnterMethod("rentalService.AcceptModification", "renterID", renterID, "rentalID", rentalID)
	rt, entry, err := s.transition(ctx, rentalID, func(rt *domain.RentalRequest) (*domain.ThreadEntry, error) {
		if err := requireRenter(rt, renterID); err != nil {
			return nil, err
		}
		if err := requireTransition(rt, domain.RentalStatusPending); err != nil {
			return nil, err
		}
		rt.Status = domain.RentalStatusPending
		return &domain.ThreadEntry{Kind: domain.ThreadEntryModificationAccepted, AuthorID: renterID}, nil
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.AcceptModification", err, "rentalID", rentalID)
		return nil, err
	}
	s.publish(ctx, rt, entry)
	logger.ExitMethod("rentalService.AcceptModification", "rentalID", rentalID)
	return s.detail(ctx, rt)
}

// Approve confirms the request while holding the item lock, so the overlap
// check against committed requests and the confirming write cannot interleave
// with another approval on the same item. A request that lost the race is
// declined on behalf of the system and ErrConflict is returned.
func (s *rentalService) Approve(ctx context.Context, ownerID, rentalID int32) (*RentalDetail, error) {
	logger.EnterMethod("rentalService.Approve", "ownerID", ownerID, "rentalID", rentalID)
	detail, err := s.approve(ctx, ownerID, rentalID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.Approve", err, "rentalID", rentalID)
		return nil, err
	}
	logger.ExitMethod("rentalService.Approve", "rentalID", rentalID, "totalPriceCents", *detail.Rental.TotalPriceCents)
	return detail, nil
}

func (s *rentalService) approve(ctx context.Context, ownerID, rentalID int32) (*RentalDetail, error) {
	current, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(current, ownerID); err != nil {
		return nil, err
	}
	if err := requireTransition(current, domain.RentalStatusConfirmed); err != nil {
		return nil, err
	}

	release, err := s.acquireItem(ctx, current.ItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	item, err := s.currentItem(ctx, current.ItemID)
	if err != nil {
		return nil, err
	}

	var lostTo *domain.RentalRequest
	rt, entry, err := s.transition(ctx, rentalID, func(rt *domain.RentalRequest) (*domain.ThreadEntry, error) {
		lostTo = nil
		if err := requireOwner(rt, ownerID); err != nil {
			return nil, err
		}
		if err := requireTransition(rt, domain.RentalStatusConfirmed); err != nil {
			return nil, err
		}
		committed, err := s.rentalRepo.ListCommittedByItem(ctx, rt.ItemID)
		if err != nil {
			return nil, err
		}
		if other := utils.FindConflict(rt.Interval, committed, rt.ID); other != nil {
			lostTo = other.Clone()
			rt.Status = domain.RentalStatusDeclined
			return &domain.ThreadEntry{
				Kind:     domain.ThreadEntryDeclined,
				AuthorID: domain.SystemAuthorID,
				Body: fmt.Sprintf("Automatically declined: %s overlaps confirmed rental %d %s.",
					rt.Interval, other.ID, other.Interval),
			}, nil
		}

		quote, err := utils.QuoteRental(item, rt.Interval)
		if err != nil {
			return nil, err
		}
		rt.Status = domain.RentalStatusConfirmed
		rt.DailyRateCents = &quote.DailyRateCents
		rt.TotalPriceCents = &quote.TotalPriceCents
		rt.DepositCents = &quote.DepositCents
		return &domain.ThreadEntry{
			Kind:     domain.ThreadEntryApproved,
			AuthorID: ownerID,
			Body: fmt.Sprintf("Confirmed %s: %d day(s) at %d cents/day, total %d cents, deposit %d cents.",
				rt.Interval, quote.BillableDays, quote.DailyRateCents, quote.TotalPriceCents, quote.DepositCents),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, rt, entry)
	if lostTo != nil {
		return nil, fmt.Errorf("%w: rental %d overlaps confirmed rental %d and was declined", domain.ErrConflict, rentalID, lostTo.ID)
	}
	return s.detail(ctx, rt)
}

func (s *rentalService) Decline(ctx context.Context, ownerID, rentalID int32, reason string) (*RentalDetail, error) {
	return s.closeOut(ctx, "rentalService.Decline", ownerID, rentalID, reason, requireOwner,
		domain.RentalStatusDeclined, domain.ThreadEntryDeclined)
}

func (s *rentalService) Cancel(ctx context.Context, actorID, rentalID int32, reason string) (*RentalDetail, error) {
	return s.closeOut(ctx, "rentalService.Cancel", actorID, rentalID, reason, requireParty,
		domain.RentalStatusCancelled, domain.ThreadEntryCancelled)
}

func (s *rentalService) closeOut(
	ctx context.Context,
	method string,
	actorID, rentalID int32,
	reason string,
	authorize func(*domain.RentalRequest, int32) error,
	next domain.RentalStatus,
	kind domain.ThreadEntryKind,
) (*RentalDetail, error) {
	logger.EnterMethod(method, "actorID", actorID, "rentalID", rentalID)
	body, err := normalizeText(reason, false)
	if err != nil {
		logger.ExitMethodWithError(method, err, "rentalID", rentalID)
		return nil, err
	}
	rt, entry, err := s.transition(ctx, rentalID, func(rt *domain.RentalRequest) (*domain.ThreadEntry, error) {
		if err := authorize(rt, actorID); err != nil {
			return nil, err
		}
		if err := requireTransition(rt, next); err != nil {
			return nil, err
		}
		rt.Status = next
		// Only committed requests carry a price.
		rt.DailyRateCents, rt.TotalPriceCents, rt.DepositCents = nil, nil, nil
		return &domain.ThreadEntry{Kind: kind, AuthorID: actorID, Body: body}, nil
	})
	if err != nil {
		logger.ExitMethodWithError(method, err, "rentalID", rentalID)
		return nil, err
	}
	s.publish(ctx, rt, entry)
	logger.ExitMethod(method, "rentalID", rentalID, "status", rt.Status)
	return s.detail(ctx, rt)
}

func (s *rentalService) Complete(ctx context.Context, actorID, rentalID int32) (*RentalDetail, error) {
	logger.EnterMethod("rentalService.Complete", "actorID", actorID, "rentalID", rentalID)
	rt, entry, err := s.transition(ctx, rentalID, func(rt *domain.RentalRequest) (*domain.ThreadEntry, error) {
		if err := requireParty(rt, actorID); err != nil {
			return nil, err
		}
		if err := requireTransition(rt, domain.RentalStatusCompleted); err != nil {
			return nil, err
		}
		by := actorID
		rt.Status = domain.RentalStatusCompleted
		rt.CompletedBy = &by
		return &domain.ThreadEntry{Kind: domain.ThreadEntryCompleted, AuthorID: actorID}, nil
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.Complete", err, "rentalID", rentalID)
		return nil, err
	}
	s.publish(ctx, rt, entry)
	logger.ExitMethod("rentalService.Complete", "rentalID", rentalID)
	return s.detail(ctx, rt)
}

func (s *rentalService) PostMessage(ctx context.Context, actorID, rentalID int32, text string) (*RentalDetail, error) {
	logger.EnterMethod("rentalService.PostMessage", "actorID", actorID, "rentalID", rentalID)
	body, err := normalizeText(text, true)
	if err != nil {
		logger.ExitMethodWithError("rentalService.PostMessage", err, "rentalID", rentalID)
		return nil, err
	}
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.PostMessage", err, "rentalID", rentalID)
		return nil, err
	}
	if err := requireParty(rt, actorID); err != nil {
		logger.ExitMethodWithError("rentalService.PostMessage", err, "rentalID", rentalID)
		return nil, err
	}
	entry := &domain.ThreadEntry{
		RentalID:  rt.ID,
		Kind:      domain.ThreadEntryMessage,
		AuthorID:  actorID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.threads.Append(ctx, entry); err != nil {
		logger.ExitMethodWithError("rentalService.PostMessage", err, "rentalID", rentalID)
		return nil, err
	}
	s.publish(ctx, rt, entry)
	logger.ExitMethod("rentalService.PostMessage", "rentalID", rentalID, "entryID", entry.ID)
	return s.detail(ctx, rt)
}

func (s *rentalService) GetRental(ctx context.Context, actorID, rentalID int32) (*RentalDetail, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if err := requireParty(rt, actorID); err != nil {
		return nil, err
	}
	return s.detail(ctx, rt)
}

func (s *rentalService) GetThread(ctx context.Context, actorID, rentalID int32) ([]domain.ThreadEntry, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if err := requireParty(rt, actorID); err != nil {
		return nil, err
	}
	return s.threads.List(ctx, rt.ID)
}

// ListIncoming returns requests on the owner's items, by default those still
// waiting for the owner or the renter to act.
func (s *rentalService) ListIncoming(ctx context.Context, ownerID int32, statuses []domain.RentalStatus) ([]domain.RentalRequest, error) {
	if len(statuses) == 0 {
		statuses = []domain.RentalStatus{domain.RentalStatusPending, domain.RentalStatusModified}
	}
	return s.rentalRepo.List(ctx, repository.RentalFilter{OwnerID: ownerID, Statuses: statuses})
}

func (s *rentalService) ListOutgoing(ctx context.Context, renterID int32, statuses []domain.RentalStatus) ([]domain.RentalRequest, error) {
	return s.rentalRepo.List(ctx, repository.RentalFilter{RenterID: renterID, Statuses: statuses})
}

// transitionFunc validates a freshly read request, applies the change to it
// and returns the thread entry recording the change.
type transitionFunc func(rt *domain.RentalRequest) (*domain.ThreadEntry, error)

// transition reads the request, applies fn and writes the result guarded by
// the version it read. A stale write is retried once from a fresh read.
func (s *rentalService) transition(ctx context.Context, rentalID int32, fn transitionFunc) (*domain.RentalRequest, *domain.ThreadEntry, error) {
	for attempt := 0; ; attempt++ {
		rt, err := s.rentalRepo.GetByID(ctx, rentalID)
		if err != nil {
			return nil, nil, err
		}
		expected := rt.Version
		entry, err := fn(rt)
		if err != nil {
			return nil, nil, err
		}

		now := s.now().UTC()
		rt.UpdatedAt = now
		rt.LastModifiedBy = entry.AuthorID
		entry.CreatedAt = now

		err = s.rentalRepo.Transition(ctx, rt, expected, entry)
		if errors.Is(err, repository.ErrStaleVersion) {
			if attempt == 0 {
				logger.Warn("Rental changed concurrently, retrying", "rentalID", rentalID, "version", expected)
				continue
			}
			return nil, nil, fmt.Errorf("%w: rental %d was modified concurrently", domain.ErrConflict, rentalID)
		}
		if err != nil {
			return nil, nil, err
		}
		return rt, entry, nil
	}
}

func (s *rentalService) checkCommitted(ctx context.Context, itemID, selfID int32, interval domain.RentalInterval) error {
	committed, err := s.rentalRepo.ListCommittedByItem(ctx, itemID)
	if err != nil {
		return err
	}
	if other := utils.FindConflict(interval, committed, selfID); other != nil {
		return fmt.Errorf("%w: %s overlaps confirmed rental %d %s", domain.ErrConflict, interval, other.ID, other.Interval)
	}
	return nil
}

// acquireItem takes the item lock, waiting at most lockWait when it is set.
func (s *rentalService) acquireItem(ctx context.Context, itemID int32) (func(), error) {
	lockCtx := ctx
	if s.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockWait)
		defer cancel()
	}
	release, err := s.locker.Acquire(lockCtx, lock.ItemKey(itemID))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: item %d is busy: %v", domain.ErrConflict, itemID, err)
	}
	return release, nil
}

// freshItemReader is implemented by item caches that can bypass cached entries.
type freshItemReader interface {
	GetFresh(ctx context.Context, id int32) (*domain.Item, error)
}

// currentItem reads the item for pricing, skipping any cache so the rate
// frozen on confirmation is the one in effect right now.
func (s *rentalService) currentItem(ctx context.Context, id int32) (*domain.Item, error) {
	if f, ok := s.itemRepo.(freshItemReader); ok {
		return f.GetFresh(ctx, id)
	}
	return s.itemRepo.GetByID(ctx, id)
}

func (s *rentalService) detail(ctx context.Context, rt *domain.RentalRequest) (*RentalDetail, error) {
	thread, err := s.threads.List(ctx, rt.ID)
	if err != nil {
		return nil, err
	}
	return &RentalDetail{Rental: rt, Thread: thread}, nil
}

// publish reports a committed change. Failures are logged and never undo the change.
func (s *rentalService) publish(ctx context.Context, rt *domain.RentalRequest, entry *domain.ThreadEntry) {
	ev := queue.RentalEvent{
		EventID:         uuid.NewString(),
		RentalID:        rt.ID,
		ItemID:          rt.ItemID,
		Kind:            entry.Kind,
		ActorID:         entry.AuthorID,
		OwnerID:         rt.OwnerID,
		RenterID:        rt.RenterID,
		Status:          rt.Status,
		Interval:        rt.Interval,
		TotalPriceCents: rt.TotalPriceCents,
		DepositCents:    rt.DepositCents,
		Body:            entry.Body,
		OccurredAt:      entry.CreatedAt,
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		logger.Error("Failed to publish rental event", "rentalID", rt.ID, "kind", entry.Kind, "error", err)
	}
}

func requireOwner(rt *domain.RentalRequest, userID int32) error {
	if rt.OwnerID != userID {
		return fmt.Errorf("%w: user %d is not the owner on rental %d", domain.ErrUnauthorized, userID, rt.ID)
	}
	return nil
}

func requireRenter(rt *domain.RentalRequest, userID int32) error {
	if rt.RenterID != userID {
		return fmt.Errorf("%w: user %d is not the renter on rental %d", domain.ErrUnauthorized, userID, rt.ID)
	}
	return nil
}

func requireParty(rt *domain.RentalRequest, userID int32) error {
	if !rt.IsParty(userID) {
		return fmt.Errorf("%w: user %d is not a party to rental %d", domain.ErrUnauthorized, userID, rt.ID)
	}
	return nil
}

func requireTransition(rt *domain.RentalRequest, next domain.RentalStatus) error {
	if !rt.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: rental %d cannot move from %s to %s", domain.ErrInvalidState, rt.ID, rt.Status, next)
	}
	return nil
}

// normalizeText trims free text and enforces the length limit.
func normalizeText(text string, required bool) (string, error) {
	text = strings.TrimSpace(text)
	if required && text == "" {
		return "", fmt.Errorf("%w: text must not be blank", domain.ErrValidation)
	}
	if utf8.RuneCountInString(text) > domain.MaxTextLength {
		return "", fmt.Errorf("%w: text exceeds %d characters", domain.ErrValidation, domain.MaxTextLength)
	}
	return text, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.RentalEvent) error { return nil }
