// Package queue carries rental events from the negotiation engine to the
// notification side over RabbitMQ.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"rentalhub-backend/internal/domain"
)

// RentalEventsQueue is the durable queue every rental event is routed to.
const RentalEventsQueue = "rental.events"

// RentalEvent describes one committed transition or message on a rental.
type RentalEvent struct {
	EventID         string                 `json:"event_id"`
	RentalID        int32                  `json:"rental_id"`
	ItemID          int32                  `json:"item_id"`
	Kind            domain.ThreadEntryKind `json:"kind"`
	ActorID         int32                  `json:"actor_id"`
	OwnerID         int32                  `json:"owner_id"`
	RenterID        int32                  `json:"renter_id"`
	Status          domain.RentalStatus    `json:"status"`
	Interval        domain.RentalInterval  `json:"interval"`
	TotalPriceCents *int32                 `json:"total_price_cents,omitempty"`
	DepositCents    *int32                 `json:"deposit_cents,omitempty"`
	Body            string                 `json:"body,omitempty"`
	OccurredAt      time.Time              `json:"occurred_at"`
}

// Recipients returns the parties that should hear about the event: the
// counterparty of the actor, or both parties for system-authored events.
func (e RentalEvent) Recipients() []int32 {
	switch e.ActorID {
	case e.OwnerID:
		return []int32{e.RenterID}
	case e.RenterID:
		return []int32{e.OwnerID}
	}
	return []int32{e.OwnerID, e.RenterID}
}

func (e RentalEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeRentalEvent(body []byte) (RentalEvent, error) {
	var ev RentalEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return RentalEvent{}, fmt.Errorf("unmarshal rental event: %w", err)
	}
	if ev.RentalID == 0 || ev.Kind == "" {
		return RentalEvent{}, fmt.Errorf("rental event missing rental id or kind")
	}
	return ev, nil
}
