package utils

import (
	"fmt"
	"strings"
	"time"

	"rentalhub-backend/internal/domain"
)

// ParseDate converts a yyyy-mm-dd string into a UTC midnight time.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	t, err := time.ParseInLocation(domain.DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected yyyy-mm-dd", domain.ErrValidation, dateStr)
	}
	return t, nil
}

// TruncateToDate drops the clock part of t, in UTC.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseInterval parses and validates a candidate rental period. Start dates
// before today and intervals longer than domain.MaxRentalDays are rejected.
func ParseInterval(startStr, endStr string, today time.Time) (domain.RentalInterval, error) {
	start, err := ParseDate(startStr)
	if err != nil {
		return domain.RentalInterval{}, err
	}
	end, err := ParseDate(endStr)
	if err != nil {
		return domain.RentalInterval{}, err
	}
	interval := domain.RentalInterval{StartDate: start, EndDate: end}
	if err := ValidateInterval(interval, today); err != nil {
		return domain.RentalInterval{}, err
	}
	return interval, nil
}

func ValidateInterval(i domain.RentalInterval, today time.Time) error {
	if i.EndDate.Before(i.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s", domain.ErrValidation,
			i.EndDate.Format(domain.DateLayout), i.StartDate.Format(domain.DateLayout))
	}
	if i.StartDate.Before(TruncateToDate(today)) {
		return fmt.Errorf("%w: start date %s is in the past", domain.ErrValidation, i.StartDate.Format(domain.DateLayout))
	}
	if days := BillableDays(i); days > domain.MaxRentalDays {
		return fmt.Errorf("%w: interval %s spans %d days, the limit is %d", domain.ErrValidation, i, days, domain.MaxRentalDays)
	}
	return nil
}

// Overlaps reports whether two closed date intervals share at least one day.
func Overlaps(a, b domain.RentalInterval) bool {
	return !a.StartDate.After(b.EndDate) && !b.StartDate.After(a.EndDate)
}

// FindConflict returns the first committed request whose interval overlaps the
// candidate, ignoring the request identified by selfID.
func FindConflict(candidate domain.RentalInterval, committed []domain.RentalRequest, selfID int32) *domain.RentalRequest {
	for i := range committed {
		other := &committed[i]
		if other.ID == selfID || !other.Status.IsCommitted() {
			continue
		}
		if Overlaps(candidate, other.Interval) {
			return other
		}
	}
	return nil
}
