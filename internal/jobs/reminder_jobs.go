package jobs

import (
	"context"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
)

// SendPendingReminders nudges whoever a stale request is waiting on: the
// owner for pending requests, the renter for modified ones. It never
// changes a request's status.
func (jr *JobRunner) SendPendingReminders() {
	jr.runWithRecovery("SendPendingReminders", func() {
		ctx := context.Background()
		cutoff := jr.now().UTC().Add(-jr.config.Reminders.PendingAfter())

		stale, err := jr.rentals.ListStale(ctx, []domain.RentalStatus{
			domain.RentalStatusPending,
			domain.RentalStatusModified,
		}, cutoff)
		if err != nil {
			logger.Error("Failed to list stale rental requests", "error", err)
			return
		}

		sent := 0
		for _, rt := range stale {
			recipient := rt.OwnerID
			if rt.Status == domain.RentalStatusModified {
				recipient = rt.RenterID
			}
			if err := jr.reminders.SendReminder(ctx, rt, recipient); err != nil {
				logger.Error("Failed to send rental reminder", "rental_id", rt.ID, "user_id", recipient, "error", err)
				continue
			}
			sent++
			logger.Debug("Sent rental reminder", "rental_id", rt.ID, "user_id", recipient, "status", rt.Status)
		}

		logger.Info("Sent pending rental reminders", "candidates", len(stale), "sent", sent)
	})
}
