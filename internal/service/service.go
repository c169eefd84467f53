package service

import (
	"context"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/queue"
)

// RentalDetail is a request together with its negotiation thread, oldest entry first.
type RentalDetail struct {
	Rental *domain.RentalRequest
	Thread []domain.ThreadEntry
}

type SubmitInput struct {
	ItemID        int32
	StartDate     string
	EndDate       string
	PaymentMethod string
	Note          string
}

// ModificationInput replaces the interval when both dates are set and the
// meeting when Meeting is non-nil. At least one of the two is required.
type ModificationInput struct {
	StartDate string
	EndDate   string
	Meeting   *domain.MeetingDetails
	Note      string
}

type RentalService interface {
	Submit(ctx context.Context, renterID int32, in SubmitInput) (*RentalDetail, error)
	ProposeModification(ctx context.Context, ownerID, rentalID int32, in ModificationInput) (*RentalDetail, error)
	AcceptModification(ctx context.Context, renterID, rentalID int32) (*RentalDetail, error)
	CounterPropose(ctx context.Context, renterID, rentalID int32, in ModificationInput) (*RentalDetail, error)
	Approve(ctx context.Context, ownerID, rentalID int32) (*RentalDetail, error)
	Decline(ctx context.Context, ownerID, rentalID int32, reason string) (*RentalDetail, error)
	Cancel(ctx context.Context, actorID, rentalID int32, reason string) (*RentalDetail, error)
	Complete(ctx context.Context, actorID, rentalID int32) (*RentalDetail, error)
	PostMessage(ctx context.Context, actorID, rentalID int32, text string) (*RentalDetail, error)

	GetRental(ctx context.Context, actorID, rentalID int32) (*RentalDetail, error)
	GetThread(ctx context.Context, actorID, rentalID int32) ([]domain.ThreadEntry, error)
	ListIncoming(ctx context.Context, ownerID int32, statuses []domain.RentalStatus) ([]domain.RentalRequest, error)
	ListOutgoing(ctx context.Context, renterID int32, statuses []domain.RentalStatus) ([]domain.RentalRequest, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type ReviewService interface {
	SubmitReview(ctx context.Context, reviewerID, rentalID, rating int32, text string) (*domain.Review, error)
	// ListUserReviews returns the reviews userID has received and their average.
	ListUserReviews(ctx context.Context, userID int32) ([]domain.Review, *domain.RatingSummary, error)
	ListRentalReviews(ctx context.Context, actorID, rentalID int32) ([]domain.Review, error)
}

type EmailService interface {
	SendRentalNotification(ctx context.Context, toEmail, toName, subject, body string) error
}

// EventPublisher delivers committed rental events to the notification side.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.RentalEvent) error
}
