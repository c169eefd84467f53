package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// MaxRentalDays bounds the length of a requested interval, both ends included.
const MaxRentalDays = 365

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusModified  RentalStatus = "modified"
	RentalStatusConfirmed RentalStatus = "confirmed"
	RentalStatusDeclined  RentalStatus = "declined"
	RentalStatusCancelled RentalStatus = "cancelled"
	RentalStatusCompleted RentalStatus = "completed"
)

// rentalTransitions is the complete set of allowed status moves. Approval is a
// single pending|modified -> confirmed move recorded as an "approved" thread entry.
var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusPending:   {RentalStatusModified, RentalStatusConfirmed, RentalStatusDeclined, RentalStatusCancelled},
	RentalStatusModified:  {RentalStatusPending, RentalStatusConfirmed, RentalStatusDeclined, RentalStatusCancelled},
	RentalStatusConfirmed: {RentalStatusCompleted, RentalStatusCancelled},
}

// AllRentalStatuses lists every status in lifecycle order.
var AllRentalStatuses = []RentalStatus{
	RentalStatusPending,
	RentalStatusModified,
	RentalStatusConfirmed,
	RentalStatusDeclined,
	RentalStatusCancelled,
	RentalStatusCompleted,
}

// CommittedStatuses are the statuses whose interval binds the item.
var CommittedStatuses = []RentalStatus{RentalStatusConfirmed, RentalStatusCompleted}

func ParseRentalStatus(s string) (RentalStatus, error) {
	for _, st := range AllRentalStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown rental status %q", ErrValidation, s)
}

func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range rentalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RentalStatus) IsTerminal() bool {
	return len(rentalTransitions[s]) == 0
}

// IsCommitted reports whether a request in this status holds its interval.
func (s RentalStatus) IsCommitted() bool {
	return s == RentalStatusConfirmed || s == RentalStatusCompleted
}

type PaymentMethod string

const (
	PaymentMethodNone   PaymentMethod = ""
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPaypal PaymentMethod = "paypal"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentMethodNone, PaymentMethodCash, PaymentMethodCard, PaymentMethodPaypal:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("%w: unsupported payment method %q", ErrValidation, s)
}

// RentalInterval is an inclusive range of calendar dates (UTC midnight).
type RentalInterval struct {
	StartDate time.Time
	EndDate   time.Time
}

func (i RentalInterval) String() string {
	return fmt.Sprintf("[%s, %s]", i.StartDate.Format(DateLayout), i.EndDate.Format(DateLayout))
}

type rentalIntervalJSON struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (i RentalInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(rentalIntervalJSON{
		StartDate: i.StartDate.Format(DateLayout),
		EndDate:   i.EndDate.Format(DateLayout),
	})
}

func (i *RentalInterval) UnmarshalJSON(data []byte) error {
	var raw rentalIntervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.Parse(DateLayout, raw.StartDate)
	if err != nil {
		return err
	}
	end, err := time.Parse(DateLayout, raw.EndDate)
	if err != nil {
		return err
	}
	i.StartDate, i.EndDate = start, end
	return nil
}

type MeetingDetails struct {
	Location string `json:"location"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes,omitempty"`
}

type RentalRequest struct {
	ID       int32 `json:"id"`
	ItemID   int32 `json:"item_id"`
	RenterID int32 `json:"renter_id"`
	// OwnerID is copied from the item at submission and used for every
	// authorization check afterwards.
	OwnerID       int32           `json:"owner_id"`
	Interval      RentalInterval  `json:"interval"`
	Meeting       *MeetingDetails `json:"meeting,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	Status        RentalStatus    `json:"status"`
	// Price snapshot, frozen at confirmation.
	DailyRateCents  *int32    `json:"daily_rate_cents,omitempty"`
	TotalPriceCents *int32    `json:"total_price_cents,omitempty"`
	DepositCents    *int32    `json:"deposit_cents,omitempty"`
	LastModifiedBy  int32     `json:"last_modified_by"`
	CompletedBy     *int32    `json:"completed_by,omitempty"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (r *RentalRequest) IsParty(userID int32) bool {
	return userID == r.OwnerID || userID == r.RenterID
}

// Role returns "owner", "renter" or "system" for an author id on this request.
func (r *RentalRequest) Role(userID int32) string {
	switch userID {
	case SystemAuthorID:
		return "system"
	case r.OwnerID:
		return "owner"
	case r.RenterID:
		return "renter"
	}
	return ""
}

// Clone returns a deep copy so callers cannot alias stored state.
func (r *RentalRequest) Clone() *RentalRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.Meeting != nil {
		m := *r.Meeting
		c.Meeting = &m
	}
	c.DailyRateCents = cloneInt32(r.DailyRateCents)
	c.TotalPriceCents = cloneInt32(r.TotalPriceCents)
	c.DepositCents = cloneInt32(r.DepositCents)
	c.CompletedBy = cloneInt32(r.CompletedBy)
	return &c
}

func cloneInt32(p *int32) *int32 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
