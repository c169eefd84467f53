package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/queue"
	"rentalhub-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

const messagePreviewLength = 140

// Dispatcher turns rental events into in-app notifications and emails for the
// parties who did not cause them.
type Dispatcher struct {
	userRepo repository.UserRepository
	itemRepo repository.ItemRepository
	noteRepo repository.NotificationRepository
	emailSvc EmailService
	now      func() time.Time
}

func NewDispatcher(
	userRepo repository.UserRepository,
	itemRepo repository.ItemRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
) *Dispatcher {
	return &Dispatcher{
		userRepo: userRepo,
		itemRepo: itemRepo,
		noteRepo: noteRepo,
		emailSvc: emailSvc,
		now:      time.Now,
	}
}

func (d *Dispatcher) HandleRentalEvent(ctx context.Context, ev queue.RentalEvent) error {
	logger.EnterMethod("Dispatcher.HandleRentalEvent", "rentalID", ev.RentalID, "kind", ev.Kind)

	itemTitle := d.itemTitle(ctx, ev.ItemID)
	actorName := "RentalHub"
	if ev.ActorID != domain.SystemAuthorID {
		actorName = d.userName(ctx, ev.ActorID)
	}
	title, message := describeEvent(ev, itemTitle, actorName)
	attrs := map[string]string{
		"type":      "RENTAL_" + kindAttribute(ev.Kind),
		"rental_id": strconv.Itoa(int(ev.RentalID)),
		"item_id":   strconv.Itoa(int(ev.ItemID)),
		"status":    string(ev.Status),
	}

	for _, userID := range ev.Recipients() {
		if err := d.notify(ctx, userID, ev.RentalID, title, message, attrs); err != nil {
			logger.ExitMethodWithError("Dispatcher.HandleRentalEvent", err, "rentalID", ev.RentalID, "userID", userID)
			return err
		}
	}
	logger.ExitMethod("Dispatcher.HandleRentalEvent", "rentalID", ev.RentalID, "recipients", len(ev.Recipients()))
	return nil
}

// SendReminder nudges userID about a rental that has been waiting on them.
func (d *Dispatcher) SendReminder(ctx context.Context, rt domain.RentalRequest, userID int32) error {
	itemTitle := d.itemTitle(ctx, rt.ItemID)
	var title, message string
	switch rt.Status {
	case domain.RentalStatusModified:
		title = "Proposed changes waiting"
		message = fmt.Sprintf("The owner of %s proposed changes to your request for %s. Accept them or cancel the request.", itemTitle, rt.Interval)
	default:
		title = "Rental request waiting"
		message = fmt.Sprintf("A request to rent %s for %s is waiting for your answer.", itemTitle, rt.Interval)
	}
	attrs := map[string]string{
		"type":      "RENTAL_REMINDER",
		"rental_id": strconv.Itoa(int(rt.ID)),
		"status":    string(rt.Status),
	}
	return d.notify(ctx, userID, rt.ID, title, message, attrs)
}

// notify stores the in-app notification and then tries the email. Email
// failures are logged only, so a redelivered event does not duplicate the
// stored notification because of a mail outage.
func (d *Dispatcher) notify(ctx context.Context, userID, rentalID int32, title, message string, attrs map[string]string) error {
	note := &domain.Notification{
		UserID:     userID,
		RentalID:   rentalID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
		CreatedOn:  d.now().UTC(),
	}
	if err := d.noteRepo.Create(ctx, note); err != nil {
		return err
	}
	if d.emailSvc == nil {
		return nil
	}
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Warn("Skipping rental email, recipient lookup failed", "userID", userID, "error", err)
		return nil
	}
	if err := d.emailSvc.SendRentalNotification(ctx, user.Email, user.Name, title, message); err != nil {
		logger.Error("Failed to send rental email", "userID", userID, "rentalID", rentalID, "error", err)
	}
	return nil
}

func (d *Dispatcher) itemTitle(ctx context.Context, itemID int32) string {
	item, err := d.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Sprintf("item #%d", itemID)
	}
	return item.Title
}

func (d *Dispatcher) userName(ctx context.Context, userID int32) string {
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil || user.Name == "" {
		return fmt.Sprintf("user #%d", userID)
	}
	return user.Name
}

func describeEvent(ev queue.RentalEvent, itemTitle, actorName string) (string, string) {
	switch ev.Kind {
	case domain.ThreadEntryIntervalProposed:
		return "New rental request", fmt.Sprintf("%s requested to rent %s for %s.", actorName, itemTitle, ev.Interval)
	case domain.ThreadEntryIntervalModified:
		return "New dates proposed", fmt.Sprintf("%s proposed %s for %s.", actorName, ev.Interval, itemTitle)
	case domain.ThreadEntryMeetingProposed:
		return "Meeting proposed", fmt.Sprintf("%s proposed where and when to meet for %s.", actorName, itemTitle)
	case domain.ThreadEntryModificationAccepted:
		return "Changes accepted", fmt.Sprintf("%s accepted the proposed changes for %s. The request is back with the owner.", actorName, itemTitle)
	case domain.ThreadEntryApproved:
		return "Rental confirmed", fmt.Sprintf("%s confirmed the rental of %s for %s. Total %s, deposit %s.",
			actorName, itemTitle, ev.Interval, formatCents(ev.TotalPriceCents), formatCents(ev.DepositCents))
	case domain.ThreadEntryDeclined:
		if ev.ActorID == domain.SystemAuthorID {
			return "Rental declined", fmt.Sprintf("The request for %s on %s was declined because the dates were already booked.", itemTitle, ev.Interval)
		}
		return "Rental declined", withReason(fmt.Sprintf("%s declined the request for %s.", actorName, itemTitle), ev.Body)
	case domain.ThreadEntryCancelled:
		return "Rental cancelled", withReason(fmt.Sprintf("%s cancelled the rental of %s for %s.", actorName, itemTitle, ev.Interval), ev.Body)
	case domain.ThreadEntryCompleted:
		return "Rental completed", fmt.Sprintf("%s marked the rental of %s as completed.", actorName, itemTitle)
	case domain.ThreadEntryMessage:
		return "New message", fmt.Sprintf("%s about %s: %s", actorName, itemTitle, preview(ev.Body))
	}
	return "Rental updated", fmt.Sprintf("The rental of %s was updated.", itemTitle)
}

func withReason(msg, reason string) string {
	if reason == "" {
		return msg
	}
	return msg + " Reason: " + preview(reason)
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= messagePreviewLength {
		return text
	}
	return string(r[:messagePreviewLength]) + "..."
}

func formatCents(c *int32) string {
	if c == nil {
		return "n/a"
	}
	return fmt.Sprintf("$%d.%02d", *c/100, *c%100)
}

func kindAttribute(kind domain.ThreadEntryKind) string {
	out := []byte(kind)
	for i, b := range out {
		switch {
		case b == '-':
			out[i] = '_'
		case b >= 'a' && b <= 'z':
			out[i] = b - 'a' + 'A'
		}
	}
	return string(out)
}
