package utils

import (
	"fmt"
	"math"
	"time"

	"rentalhub-backend/internal/domain"
)

// PriceQuote is the binding price computed when a request is confirmed.
type PriceQuote struct {
	DailyRateCents  int32
	BillableDays    int32
	TotalPriceCents int32
	DepositCents    int32
}

const secondsPerDay = 24 * 60 * 60

// dayNumber is the count of days since the Unix epoch for t's calendar date.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// BillableDays counts calendar days in the interval, both ends included, so a
// same-day rental is charged for one day.
func BillableDays(i domain.RentalInterval) int64 {
	days := dayNumber(i.EndDate) - dayNumber(i.StartDate) + 1
	if days < 1 {
		return 1
	}
	return days
}

// CalculateTotalPrice multiplies the rate by the billable days and fails with
// ErrValidation when the total does not fit in int32 cents.
func CalculateTotalPrice(dailyRateCents int32, i domain.RentalInterval) (int32, error) {
	days := BillableDays(i)
	if dailyRateCents < 0 {
		return 0, fmt.Errorf("%w: daily rate %d is negative", domain.ErrValidation, dailyRateCents)
	}
	if dailyRateCents != 0 && days > math.MaxInt32/int64(dailyRateCents) {
		return 0, fmt.Errorf("%w: total for %d day(s) at %d cents/day exceeds the price limit",
			domain.ErrValidation, days, dailyRateCents)
	}
	return int32(int64(dailyRateCents) * days), nil
}

func CalculateDeposit(item *domain.Item) (int32, error) {
	switch item.Deposit.Kind {
	case domain.DepositKindFixed:
		if item.Deposit.FixedCents < 0 {
			return 0, fmt.Errorf("%w: deposit %d is negative", domain.ErrValidation, item.Deposit.FixedCents)
		}
		return item.Deposit.FixedCents, nil
	case domain.DepositKindMultiplier:
		v := math.Round(float64(item.DailyRateCents) * item.Deposit.Multiplier)
		if math.IsNaN(v) || v < 0 || v > math.MaxInt32 {
			return 0, fmt.Errorf("%w: deposit of %.2f x %d cents is out of range",
				domain.ErrValidation, item.Deposit.Multiplier, item.DailyRateCents)
		}
		return int32(v), nil
	default:
		return 0, nil
	}
}

// QuoteRental prices an interval against the item's current rate and deposit policy.
func QuoteRental(item *domain.Item, i domain.RentalInterval) (PriceQuote, error) {
	days := BillableDays(i)
	if days > domain.MaxRentalDays {
		return PriceQuote{}, fmt.Errorf("%w: %d day(s) exceeds the %d day limit", domain.ErrValidation, days, domain.MaxRentalDays)
	}
	total, err := CalculateTotalPrice(item.DailyRateCents, i)
	if err != nil {
		return PriceQuote{}, err
	}
	deposit, err := CalculateDeposit(item)
	if err != nil {
		return PriceQuote{}, err
	}
	return PriceQuote{
		DailyRateCents:  item.DailyRateCents,
		BillableDays:    int32(days),
		TotalPriceCents: total,
		DepositCents:    deposit,
	}, nil
}
