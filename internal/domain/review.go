package domain

import "time"

const (
	MinReviewRating = 1
	MaxReviewRating = 5
	// MaxReviewLength is the rune limit for review text.
	MaxReviewLength = 1000
)

// ReviewRole names which side of the rental the reviewed user was on.
type ReviewRole string

const (
	ReviewRoleOwner  ReviewRole = "owner"
	ReviewRoleRenter ReviewRole = "renter"
)

// Review is one party's rating of the other after a completed rental. Each
// party reviews a rental at most once.
type Review struct {
	ID           int32      `json:"id"`
	RentalID     int32      `json:"rental_id"`
	ReviewerID   int32      `json:"reviewer_id"`
	RevieweeID   int32      `json:"reviewee_id"`
	RevieweeRole ReviewRole `json:"reviewee_role"`
	Rating       int32      `json:"rating"`
	Text         string     `json:"text"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RatingSummary aggregates the reviews a user has received.
type RatingSummary struct {
	UserID  int32   `json:"user_id"`
	Count   int32   `json:"count"`
	Average float64 `json:"average"`
}
