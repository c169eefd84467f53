package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/lock"
	"rentalhub-backend/internal/queue"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	ownerID    int32 = 10
	renterA    int32 = 20
	renterB    int32 = 30
	strangerID int32 = 99
	itemID     int32 = 1
)

var testToday = time.Date(2025, 5, 1, 15, 0, 0, 0, time.UTC)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev queue.RentalEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type fixture struct {
	store *memory.Store
	svc   RentalService
	pub   *MockPublisher
}

func newFixture(t *testing.T, opts ...RentalOption) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutUser(domain.User{ID: ownerID, Name: "Olivia", Email: "olivia@example.com"})
	store.PutUser(domain.User{ID: renterA, Name: "Ravi", Email: "ravi@example.com"})
	store.PutUser(domain.User{ID: renterB, Name: "Bea", Email: "bea@example.com"})
	store.PutItem(domain.Item{
		ID:             itemID,
		OwnerID:        ownerID,
		Title:          "Cordless drill",
		DailyRateCents: 20,
		Deposit:        domain.DepositPolicy{Kind: domain.DepositKindMultiplier, Multiplier: 5},
	})

	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	all := append([]RentalOption{
		WithClock(func() time.Time { return testToday }),
		WithPublisher(pub),
	}, opts...)
	return &fixture{
		store: store,
		svc:   NewRentalService(store.Rentals(), store.Threads(), store.Items(), all...),
		pub:   pub,
	}
}

func (f *fixture) submit(t *testing.T, renterID int32, start, end string) *domain.RentalRequest {
	t.Helper()
	d, err := f.svc.Submit(context.Background(), renterID, SubmitInput{ItemID: itemID, StartDate: start, EndDate: end})
	require.NoError(t, err)
	return d.Rental
}

func (f *fixture) thread(t *testing.T, rentalID int32) []domain.ThreadEntry {
	t.Helper()
	entries, err := f.store.Threads().List(context.Background(), rentalID)
	require.NoError(t, err)
	return entries
}

func TestRentalService_SubmitThenApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rt := f.submit(t, renterA, "2025-06-01", "2025-06-03")
	assert.Equal(t, domain.RentalStatusPending, rt.Status)
	assert.Equal(t, ownerID, rt.OwnerID)
	assert.Nil(t, rt.TotalPriceCents)

	d, err := f.svc.Approve(ctx, ownerID, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusConfirmed, d.Rental.Status)
	require.NotNil(t, d.Rental.TotalPriceCents)
	assert.Equal(t, int32(60), *d.Rental.TotalPriceCents)
	assert.Equal(t, int32(100), *d.Rental.DepositCents)
	assert.Equal(t, int32(20), *d.Rental.DailyRateCents)

	require.Len(t, d.Thread, 2)
	assert.Equal(t, domain.ThreadEntryIntervalProposed, d.Thread[0].Kind)
	assert.Equal(t, domain.ThreadEntryApproved, d.Thread[1].Kind)
	assert.Equal(t, ownerID, d.Thread[1].AuthorID)

	f.pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestRentalService_ModificationHandshake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")

	d, err := f.svc.ProposeModification(ctx, ownerID, rt.ID, ModificationInput{StartDate: "2025-06-02", EndDate: "2025-06-04"})
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusModified, d.Rental.Status)
	assert.Equal(t, "[2025-06-02, 2025-06-04]", d.Rental.Interval.String())
	assert.Equal(t, domain.ThreadEntryIntervalModified, d.Thread[len(d.Thread)-1].Kind)

	d, err = f.svc.AcceptModification(ctx, renterA, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusPending, d.Rental.Status)
	assert.Equal(t, "[2025-06-02, 2025-06-04]", d.Rental.Interval.String())
	assert.Equal(t, domain.ThreadEntryModificationAccepted, d.Thread[len(d.Thread)-1].Kind)

	d, err = f.svc.Approve(ctx, ownerID, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusConfirmed, d.Rental.Status)
	assert.Equal(t, int32(60), *d.Rental.TotalPriceCents)
	assert.Len(t, d.Thread, 4)
}

func TestRentalService_MeetingProposalAndCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")

	meeting := &domain.MeetingDetails{Location: "Central Station", Date: "2025-06-01", Time: "09:00"}
	d, err := f.svc.ProposeModification(ctx, ownerID, rt.ID, ModificationInput{Meeting: meeting, Note: "front entrance"})
	require.NoError(t, err)
	last := d.Thread[len(d.Thread)-1]
	assert.Equal(t, domain.ThreadEntryMeetingProposed, last.Kind)
	assert.Equal(t, "front entrance", last.Body)
	require.NotNil(t, d.Rental.Meeting)
	assert.Equal(t, "Central Station", d.Rental.Meeting.Location)

	// A second proposal must wait for the renter.
	_, err = f.svc.ProposeModification(ctx, ownerID, rt.ID, ModificationInput{Meeting: meeting})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	d, err = f.svc.CounterPropose(ctx, renterA, rt.ID, ModificationInput{StartDate: "2025-06-05", EndDate: "2025-06-06"})
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusPending, d.Rental.Status)
	assert.Equal(t, "[2025-06-05, 2025-06-06]", d.Rental.Interval.String())
	require.NotNil(t, d.Rental.Meeting, "meeting is kept when only the interval changes")

	_, err = f.svc.CounterPropose(ctx, renterA, rt.ID, ModificationInput{StartDate: "2025-06-07", EndDate: "2025-06-08"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRentalService_ApproveConflictDeclinesLoser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.submit(t, renterA, "2025-06-01", "2025-06-05")
	b := f.submit(t, renterB, "2025-06-03", "2025-06-07")

	_, err := f.svc.Approve(ctx, ownerID, a.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, ownerID, b.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.svc.GetRental(ctx, renterB, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusDeclined, got.Rental.Status)
	assert.Nil(t, got.Rental.TotalPriceCents)
	last := got.Thread[len(got.Thread)-1]
	assert.Equal(t, domain.ThreadEntryDeclined, last.Kind)
	assert.True(t, last.IsSystem())
	assert.Contains(t, last.Body, "overlaps confirmed rental")

	// New submissions overlapping the confirmed interval are refused up front.
	_, err = f.svc.Submit(ctx, renterB, SubmitInput{ItemID: itemID, StartDate: "2025-06-05", EndDate: "2025-06-06"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Adjacent dates are fine.
	f.submit(t, renterB, "2025-06-06", "2025-06-07")
}

func TestRentalService_ConcurrentApprove(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		ctx := context.Background()
		a := f.submit(t, renterA, "2025-06-01", "2025-06-05")
		b := f.submit(t, renterB, "2025-06-05", "2025-06-09")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, id := range []int32{a.ID, b.ID} {
			wg.Add(1)
			go func(j int, id int32) {
				defer wg.Done()
				_, errs[j] = f.svc.Approve(ctx, ownerID, id)
			}(j, id)
		}
		wg.Wait()

		var confirmed, declined int
		for _, id := range []int32{a.ID, b.ID} {
			rt, err := f.store.Rentals().GetByID(ctx, id)
			require.NoError(t, err)
			switch rt.Status {
			case domain.RentalStatusConfirmed:
				confirmed++
			case domain.RentalStatusDeclined:
				declined++
				entries := f.thread(t, id)
				assert.True(t, entries[len(entries)-1].IsSystem())
			}
		}
		assert.Equal(t, 1, confirmed)
		assert.Equal(t, 1, declined)
		assert.True(t, (errs[0] == nil) != (errs[1] == nil))
		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrConflict)
			}
		}
	}
}

func TestRentalService_TerminalCallsFailWithoutNewEntries(t *testing.T) {
	ctx := context.Background()

	t.Run("Decline", func(t *testing.T) {
		f := newFixture(t)
		rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")
		_, err := f.svc.Decline(ctx, ownerID, rt.ID, "busy that week")
		require.NoError(t, err)
		before := len(f.thread(t, rt.ID))

		_, err = f.svc.Decline(ctx, ownerID, rt.ID, "again")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		_, err = f.svc.Cancel(ctx, renterA, rt.ID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		_, err = f.svc.Approve(ctx, ownerID, rt.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Len(t, f.thread(t, rt.ID), before)
	})

	t.Run("Cancel", func(t *testing.T) {
		f := newFixture(t)
		rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")
		d, err := f.svc.Cancel(ctx, renterA, rt.ID, "plans changed")
		require.NoError(t, err)
		last := d.Thread[len(d.Thread)-1]
		assert.Equal(t, domain.ThreadEntryCancelled, last.Kind)
		assert.Equal(t, renterA, last.AuthorID)
		assert.Equal(t, "plans changed", last.Body)

		_, err = f.svc.Cancel(ctx, ownerID, rt.ID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Len(t, f.thread(t, rt.ID), 2)
	})

	t.Run("Complete", func(t *testing.T) {
		f := newFixture(t)
		rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")
		_, err := f.svc.Complete(ctx, renterA, rt.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "only confirmed rentals complete")

		_, err = f.svc.Approve(ctx, ownerID, rt.ID)
		require.NoError(t, err)
		d, err := f.svc.Complete(ctx, renterA, rt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCompleted, d.Rental.Status)
		require.NotNil(t, d.Rental.CompletedBy)
		assert.Equal(t, renterA, *d.Rental.CompletedBy)
		assert.NotNil(t, d.Rental.TotalPriceCents)

		_, err = f.svc.Complete(ctx, ownerID, rt.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		_, err = f.svc.Cancel(ctx, ownerID, rt.ID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Len(t, f.thread(t, rt.ID), 3)
	})

	t.Run("DeclineConfirmed", func(t *testing.T) {
		f := newFixture(t)
		rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")
		_, err := f.svc.Approve(ctx, ownerID, rt.ID)
		require.NoError(t, err)
		_, err = f.svc.Decline(ctx, ownerID, rt.ID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestRentalService_CancelConfirmedDropsPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")
	_, err := f.svc.Approve(ctx, ownerID, rt.ID)
	require.NoError(t, err)

	d, err := f.svc.Cancel(ctx, ownerID, rt.ID, "drill broke")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusCancelled, d.Rental.Status)
	assert.Nil(t, d.Rental.TotalPriceCents)
	assert.Nil(t, d.Rental.DepositCents)

	// Freed dates can be booked again.
	again := f.submit(t, renterB, "2025-06-01", "2025-06-02")
	_, err = f.svc.Approve(ctx, ownerID, again.ID)
	assert.NoError(t, err)
}

func TestRentalService_PriceFrozenAtConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.submit(t, renterA, "2025-06-01", "2025-06-01")

	_, err := f.svc.Approve(ctx, ownerID, rt.ID)
	require.NoError(t, err)

	f.store.PutItem(domain.Item{ID: itemID, OwnerID: ownerID, DailyRateCents: 500,
		Deposit: domain.DepositPolicy{Kind: domain.DepositKindFixed, FixedCents: 1000}})

	d, err := f.svc.GetRental(ctx, ownerID, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(20), *d.Rental.TotalPriceCents, "same-day rental bills one day")
	assert.Equal(t, int32(100), *d.Rental.DepositCents)
}

func TestRentalService_PriceLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("Longest interval at a high rate", func(t *testing.T) {
		f := newFixture(t)
		f.store.PutItem(domain.Item{ID: itemID, OwnerID: ownerID, DailyRateCents: 100000,
			Deposit: domain.DepositPolicy{Kind: domain.DepositKindMultiplier, Multiplier: 5}})
		rt := f.submit(t, renterA, "2025-06-01", "2026-05-31")

		d, err := f.svc.Approve(ctx, ownerID, rt.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(36500000), *d.Rental.TotalPriceCents)
		assert.Equal(t, int32(500000), *d.Rental.DepositCents)
	})

	t.Run("Rate raised past the limit leaves request pending", func(t *testing.T) {
		f := newFixture(t)
		rt := f.submit(t, renterA, "2025-06-01", "2025-06-20")
		f.store.PutItem(domain.Item{ID: itemID, OwnerID: ownerID, DailyRateCents: math.MaxInt32 / 10})

		_, err := f.svc.Approve(ctx, ownerID, rt.ID)
		assert.ErrorIs(t, err, domain.ErrValidation)

		d, err := f.svc.GetRental(ctx, ownerID, rt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusPending, d.Rental.Status)
		assert.Nil(t, d.Rental.TotalPriceCents)
		assert.Len(t, f.thread(t, rt.ID), 1)
	})

	t.Run("Overflowing total rejected at submit", func(t *testing.T) {
		f := newFixture(t)
		f.store.PutItem(domain.Item{ID: itemID, OwnerID: ownerID, DailyRateCents: math.MaxInt32 / 2})
		_, err := f.svc.Submit(ctx, renterA, SubmitInput{ItemID: itemID, StartDate: "2025-06-01", EndDate: "2025-06-03"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestRentalService_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")

	_, err := f.svc.Approve(ctx, renterA, rt.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.Decline(ctx, strangerID, rt.ID, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.ProposeModification(ctx, renterA, rt.ID, ModificationInput{StartDate: "2025-06-03", EndDate: "2025-06-04"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.Cancel(ctx, strangerID, rt.ID, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.PostMessage(ctx, strangerID, rt.ID, "hello")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.GetRental(ctx, strangerID, rt.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.GetThread(ctx, strangerID, rt.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.ProposeModification(ctx, ownerID, rt.ID, ModificationInput{StartDate: "2025-06-03", EndDate: "2025-06-04"})
	require.NoError(t, err)
	_, err = f.svc.AcceptModification(ctx, ownerID, rt.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Authorization follows the stored owner even if the listing changes hands.
	f.store.PutItem(domain.Item{ID: itemID, OwnerID: strangerID, DailyRateCents: 20})
	_, err = f.svc.Decline(ctx, strangerID, rt.ID, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.Decline(ctx, ownerID, rt.ID, "")
	assert.NoError(t, err)

	assert.Len(t, f.thread(t, rt.ID), 3)
}

func TestRentalService_SubmitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   SubmitInput
		user int32
		want error
	}{
		{"end before start", SubmitInput{ItemID: itemID, StartDate: "2025-06-05", EndDate: "2025-06-01"}, renterA, domain.ErrValidation},
		{"start in the past", SubmitInput{ItemID: itemID, StartDate: "2025-04-30", EndDate: "2025-05-02"}, renterA, domain.ErrValidation},
		{"malformed date", SubmitInput{ItemID: itemID, StartDate: "June 1", EndDate: "2025-06-02"}, renterA, domain.ErrValidation},
		{"unknown payment", SubmitInput{ItemID: itemID, StartDate: "2025-06-01", EndDate: "2025-06-02", PaymentMethod: "gold"}, renterA, domain.ErrValidation},
		{"own item", SubmitInput{ItemID: itemID, StartDate: "2025-06-01", EndDate: "2025-06-02"}, ownerID, domain.ErrValidation},
		{"unknown item", SubmitInput{ItemID: 404, StartDate: "2025-06-01", EndDate: "2025-06-02"}, renterA, domain.ErrNotFound},
		{"longer than a year", SubmitInput{ItemID: itemID, StartDate: "2025-06-01", EndDate: "2099-12-31"}, renterA, domain.ErrValidation},
		{"far future end", SubmitInput{ItemID: itemID, StartDate: "2025-06-01", EndDate: "9999-12-31"}, renterA, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, tt.user, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	d, err := f.svc.Submit(ctx, renterA, SubmitInput{ItemID: itemID, StartDate: "2025-05-01", EndDate: "2025-05-01",
		PaymentMethod: "cash", Note: "  need it for a shelf  "})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodCash, d.Rental.PaymentMethod)
	assert.Equal(t, "need it for a shelf", d.Thread[0].Body)

	_, err = f.svc.ProposeModification(ctx, ownerID, d.Rental.ID, ModificationInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.GetRental(ctx, renterA, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRentalService_Messages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")

	_, err := f.svc.PostMessage(ctx, renterA, rt.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.PostMessage(ctx, renterA, rt.ID, strings.Repeat("x", domain.MaxTextLength+1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	d, err := f.svc.PostMessage(ctx, ownerID, rt.ID, "Is morning pickup OK?")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusPending, d.Rental.Status)
	assert.Equal(t, int64(1), d.Rental.Version, "messages do not bump the version")

	_, err = f.svc.Decline(ctx, ownerID, rt.ID, "")
	require.NoError(t, err)
	_, err = f.svc.PostMessage(ctx, renterA, rt.ID, "No worries")
	require.NoError(t, err, "messages are allowed in any status")

	entries, err := f.svc.GetThread(ctx, renterA, rt.ID)
	require.NoError(t, err)
	kinds := make([]domain.ThreadEntryKind, len(entries))
	for i, e := range entries {
		kinds[i] = e.Kind
	}
	// One entry per successful operation plus one per message.
	assert.Equal(t, []domain.ThreadEntryKind{
		domain.ThreadEntryIntervalProposed,
		domain.ThreadEntryMessage,
		domain.ThreadEntryDeclined,
		domain.ThreadEntryMessage,
	}, kinds)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].ID, entries[i-1].ID)
	}
}

func TestRentalService_Lists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.submit(t, renterA, "2025-06-01", "2025-06-02")
	b := f.submit(t, renterB, "2025-06-10", "2025-06-12")
	_, err := f.svc.Approve(ctx, ownerID, b.ID)
	require.NoError(t, err)

	incoming, err := f.svc.ListIncoming(ctx, ownerID, nil)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, a.ID, incoming[0].ID)

	confirmed, err := f.svc.ListIncoming(ctx, ownerID, []domain.RentalStatus{domain.RentalStatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, b.ID, confirmed[0].ID)

	outgoing, err := f.svc.ListOutgoing(ctx, renterB, nil)
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)
}

func TestRentalService_PublishFailureKeepsChange(t *testing.T) {
	f := newFixture(t)
	failing := new(MockPublisher)
	failing.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	svc := NewRentalService(f.store.Rentals(), f.store.Threads(), f.store.Items(),
		WithClock(func() time.Time { return testToday }), WithPublisher(failing))

	d, err := svc.Submit(context.Background(), renterA, SubmitInput{ItemID: itemID, StartDate: "2025-06-01", EndDate: "2025-06-02"})
	require.NoError(t, err)
	stored, err := f.store.Rentals().GetByID(context.Background(), d.Rental.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusPending, stored.Status)
	failing.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(ev queue.RentalEvent) bool {
		return ev.Kind == domain.ThreadEntryIntervalProposed && ev.ActorID == renterA && ev.OwnerID == ownerID
	}))
}

// staleRentalRepo reports a stale version for the first n transitions.
type staleRentalRepo struct {
	repository.RentalRepository
	mu    sync.Mutex
	stale int
}

func (r *staleRentalRepo) Transition(ctx context.Context, rt *domain.RentalRequest, expected int64, entry *domain.ThreadEntry) error {
	r.mu.Lock()
	if r.stale > 0 {
		r.stale--
		r.mu.Unlock()
		return repository.ErrStaleVersion
	}
	r.mu.Unlock()
	return r.RentalRepository.Transition(ctx, rt, expected, entry)
}

func TestRentalService_StaleVersionRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.submit(t, renterA, "2025-06-01", "2025-06-02")

	repo := &staleRentalRepo{RentalRepository: f.store.Rentals(), stale: 1}
	svc := NewRentalService(repo, f.store.Threads(), f.store.Items(), WithClock(func() time.Time { return testToday }))
	d, err := svc.Decline(ctx, ownerID, rt.ID, "")
	require.NoError(t, err, "one stale write is retried")
	assert.Equal(t, domain.RentalStatusDeclined, d.Rental.Status)

	other := f.submit(t, renterA, "2025-06-05", "2025-06-06")
	repo.stale = 2
	_, err = svc.Approve(ctx, ownerID, other.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	stored, _ := f.store.Rentals().GetByID(ctx, other.ID)
	assert.Equal(t, domain.RentalStatusPending, stored.Status)
	assert.Len(t, f.thread(t, other.ID), 1)
}

func TestRentalService_ApproveWaitsForItemLock(t *testing.T) {
	locker := lock.NewLocal()
	f := newFixture(t, WithLocker(locker), WithLockTimeout(20*time.Millisecond))
	rt := f.submit(t, renterA, "2025-06-01", "2025-06-03")

	release, err := locker.Acquire(context.Background(), lock.ItemKey(itemID))
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), ownerID, rt.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.store.Rentals().GetByID(context.Background(), rt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusPending, got.Status)

	release()
	d, err := f.svc.Approve(context.Background(), ownerID, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusConfirmed, d.Rental.Status)
}
