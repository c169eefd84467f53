package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rentalhub-backend/internal/domain"
)

const meetingTimeLayout = "15:04"

// NormalizeMeeting trims the fields of m and checks that the location, date
// and time are usable. It returns a new value and leaves m untouched.
func NormalizeMeeting(m *domain.MeetingDetails) (*domain.MeetingDetails, error) {
	if m == nil {
		return nil, nil
	}
	out := &domain.MeetingDetails{
		Location: strings.TrimSpace(m.Location),
		Date:     strings.TrimSpace(m.Date),
		Time:     strings.TrimSpace(m.Time),
		Notes:    strings.TrimSpace(m.Notes),
	}
	if out.Location == "" {
		return nil, fmt.Errorf("%w: meeting location is required", domain.ErrValidation)
	}
	if _, err := ParseDate(out.Date); err != nil {
		return nil, err
	}
	if _, err := time.Parse(meetingTimeLayout, out.Time); err != nil {
		return nil, fmt.Errorf("%w: invalid meeting time %q, expected HH:MM", domain.ErrValidation, out.Time)
	}
	if utf8.RuneCountInString(out.Notes) > domain.MaxTextLength {
		return nil, fmt.Errorf("%w: meeting notes exceed %d characters", domain.ErrValidation, domain.MaxTextLength)
	}
	return out, nil
}
