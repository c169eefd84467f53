package domain

type DepositKind string

const (
	DepositKindFixed      DepositKind = "fixed"
	DepositKindMultiplier DepositKind = "multiplier"
)

// DepositPolicy is either a fixed amount or a multiple of the daily rate.
type DepositPolicy struct {
	Kind       DepositKind `json:"kind"`
	FixedCents int32       `json:"fixed_cents,omitempty"`
	Multiplier float64     `json:"multiplier,omitempty"`
}

// Item is owned by the listing subsystem; the negotiation engine only reads it.
type Item struct {
	ID             int32         `json:"id"`
	OwnerID        int32         `json:"owner_id"`
	Title          string        `json:"title"`
	DailyRateCents int32         `json:"daily_rate_cents"`
	Deposit        DepositPolicy `json:"deposit"`
}
