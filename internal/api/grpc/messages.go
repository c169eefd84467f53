package grpc

// Wire messages for rentalhub.v1. Dates are YYYY-MM-DD, timestamps RFC 3339.

type Meeting struct {
	Location string `json:"location" validate:"required,max=500"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,datetime=15:04"`
	Notes    string `json:"notes,omitempty" validate:"max=2000"`
}

type Rental struct {
	ID              int32    `json:"id"`
	ItemID          int32    `json:"item_id"`
	RenterID        int32    `json:"renter_id"`
	OwnerID         int32    `json:"owner_id"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	Meeting         *Meeting `json:"meeting,omitempty"`
	PaymentMethod   string   `json:"payment_method,omitempty"`
	Status          string   `json:"status"`
	DailyRateCents  *int32   `json:"daily_rate_cents,omitempty"`
	TotalPriceCents *int32   `json:"total_price_cents,omitempty"`
	DepositCents    *int32   `json:"deposit_cents,omitempty"`
	LastModifiedBy  int32    `json:"last_modified_by"`
	CompletedBy     *int32   `json:"completed_by,omitempty"`
	Version         int64    `json:"version"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type ThreadEntry struct {
	ID         int64    `json:"id"`
	Kind       string   `json:"kind"`
	AuthorID   int32    `json:"author_id"`
	AuthorRole string   `json:"author_role"`
	Body       string   `json:"body,omitempty"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
	Meeting    *Meeting `json:"meeting,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

type RentalResponse struct {
	Rental *Rental        `json:"rental"`
	Thread []*ThreadEntry `json:"thread"`
}

type SubmitRentalRequestRequest struct {
	ItemID        int32  `json:"item_id" validate:"required,gt=0"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card paypal"`
	Note          string `json:"note,omitempty" validate:"max=2000"`
}

// ModificationRequest carries a new interval, a new meeting, or both.
type ModificationRequest struct {
	RentalID  int32    `json:"rental_id" validate:"required,gt=0"`
	StartDate string   `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Meeting   *Meeting `json:"meeting,omitempty"`
	Note      string   `json:"note,omitempty" validate:"max=2000"`
}

type RentalIDRequest struct {
	RentalID int32 `json:"rental_id" validate:"required,gt=0"`
}

type ReasonRequest struct {
	RentalID int32  `json:"rental_id" validate:"required,gt=0"`
	Reason   string `json:"reason,omitempty" validate:"max=2000"`
}

type PostMessageRequest struct {
	RentalID int32  `json:"rental_id" validate:"required,gt=0"`
	Text     string `json:"text" validate:"required,max=2000"`
}

type ListRentalsRequest struct {
	Statuses []string `json:"statuses,omitempty" validate:"dive,oneof=pending modified confirmed declined cancelled completed"`
}

type ListRentalsResponse struct {
	Rentals []*Rental `json:"rentals"`
}

type Notification struct {
	ID         int32             `json:"id"`
	RentalID   int32             `json:"rental_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedOn  string            `json:"created_on"`
}

type GetNotificationsRequest struct {
	Page     int32 `json:"page" validate:"gte=0"`
	PageSize int32 `json:"page_size" validate:"gte=0,lte=100"`
}

type GetNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	TotalCount    int32           `json:"total_count"`
}

type MarkNotificationReadRequest struct {
	NotificationID int32 `json:"notification_id" validate:"required,gt=0"`
}

type MarkNotificationReadResponse struct {
	Success bool `json:"success"`
}

type Review struct {
	ID           int32  `json:"id"`
	RentalID     int32  `json:"rental_id"`
	ReviewerID   int32  `json:"reviewer_id"`
	RevieweeID   int32  `json:"reviewee_id"`
	RevieweeRole string `json:"reviewee_role"`
	Rating       int32  `json:"rating"`
	Text         string `json:"text"`
	CreatedAt    string `json:"created_at"`
}

type SubmitReviewRequest struct {
	RentalID int32  `json:"rental_id" validate:"required,gt=0"`
	Rating   int32  `json:"rating" validate:"gte=1,lte=5"`
	Text     string `json:"text" validate:"required,max=1000"`
}

type ReviewResponse struct {
	Review *Review `json:"review"`
}

type ListUserReviewsRequest struct {
	UserID int32 `json:"user_id" validate:"required,gt=0"`
}

type ListUserReviewsResponse struct {
	Reviews       []*Review `json:"reviews"`
	Count         int32     `json:"count"`
	AverageRating float64   `json:"average_rating"`
}

type ListReviewsResponse struct {
	Reviews []*Review `json:"reviews"`
}
