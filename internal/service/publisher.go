package service

import (
	"context"

	"rentalhub-backend/internal/queue"
)

// DirectPublisher hands events straight to a handler in the same process.
// It stands in for the broker when queue.enabled is false.
type DirectPublisher struct {
	handler queue.Handler
}

func NewDirectPublisher(handler queue.Handler) *DirectPublisher {
	return &DirectPublisher{handler: handler}
}

func (p *DirectPublisher) Publish(ctx context.Context, ev queue.RentalEvent) error {
	return p.handler.HandleRentalEvent(ctx, ev)
}
