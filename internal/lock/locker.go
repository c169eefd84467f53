// Package lock serializes state changes on the same item so that at most one
// approval for overlapping dates can commit.
package lock

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotAcquired is returned when the lock could not be taken before the
// context expired or the retry budget ran out.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive leases keyed by string. The returned release
// func must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ItemKey is the lock key guarding every rental on an item.
func ItemKey(itemID int32) string {
	return fmt.Sprintf("rentalhub:item:%d", itemID)
}
