package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentalhub-backend/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error { f.acked++; return nil }
func (f *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}
func (f *fakeAck) Reject(tag uint64, requeue bool) error { return nil }

type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) HandleRentalEvent(ctx context.Context, ev RentalEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func sampleEvent() RentalEvent {
	total := int32(6000)
	return RentalEvent{
		EventID:         "e-1",
		RentalID:        5,
		ItemID:          7,
		Kind:            domain.ThreadEntryApproved,
		ActorID:         4,
		OwnerID:         4,
		RenterID:        3,
		Status:          domain.RentalStatusConfirmed,
		Interval:        domain.RentalInterval{StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)},
		TotalPriceCents: &total,
		OccurredAt:      time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestRentalEvent_EncodeDecode(t *testing.T) {
	body, err := sampleEvent().Encode()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"start_date":"2025-06-01"`)

	ev, err := DecodeRentalEvent(body)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), ev)

	_, err = DecodeRentalEvent([]byte(`{"event_id":"x"}`))
	assert.Error(t, err)
}

func TestRentalEvent_Recipients(t *testing.T) {
	ev := sampleEvent()
	assert.Equal(t, []int32{3}, ev.Recipients())

	ev.ActorID = 3
	assert.Equal(t, []int32{4}, ev.Recipients())

	ev.ActorID = domain.SystemAuthorID
	assert.Equal(t, []int32{4, 3}, ev.Recipients())
}

func TestConsumer_Handle(t *testing.T) {
	ctx := context.Background()
	body, _ := sampleEvent().Encode()

	t.Run("AckOnSuccess", func(t *testing.T) {
		h := new(MockHandler)
		h.On("HandleRentalEvent", ctx, sampleEvent()).Return(nil)
		c := NewConsumer("amqp://unused", 0, h)
		ack := &fakeAck{}

		c.handle(ctx, amqp.Delivery{Acknowledger: ack, Body: body})
		assert.Equal(t, 1, ack.acked)
		h.AssertExpectations(t)
	})

	t.Run("RequeueOnceOnFailure", func(t *testing.T) {
		h := new(MockHandler)
		h.On("HandleRentalEvent", ctx, mock.Anything).Return(errors.New("smtp down"))
		c := NewConsumer("amqp://unused", 0, h)

		first := &fakeAck{}
		c.handle(ctx, amqp.Delivery{Acknowledger: first, Body: body})
		assert.Equal(t, 1, first.nacked)
		assert.True(t, first.requeue)

		second := &fakeAck{}
		c.handle(ctx, amqp.Delivery{Acknowledger: second, Body: body, Redelivered: true})
		assert.False(t, second.requeue)
	})

	t.Run("DropMalformed", func(t *testing.T) {
		h := new(MockHandler)
		c := NewConsumer("amqp://unused", 0, h)
		ack := &fakeAck{}

		c.handle(ctx, amqp.Delivery{Acknowledger: ack, Body: []byte("not json")})
		assert.Equal(t, 1, ack.nacked)
		assert.False(t, ack.requeue)
		h.AssertNotCalled(t, "HandleRentalEvent", mock.Anything, mock.Anything)
	})
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConsumer("amqp://127.0.0.1:1/", 0, new(MockHandler))
	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
