package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"rentalhub-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		d, err := ParseDate("2024-01-15")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.Contains(t, err.Error(), "expected yyyy-mm-dd")
	})

	t.Run("Invalid day", func(t *testing.T) {
		_, err := ParseDate("2024-02-30")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ParseDate(" ")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestParseInterval(t *testing.T) {
	today := time.Date(2025, 5, 20, 15, 30, 0, 0, time.UTC)

	t.Run("Valid", func(t *testing.T) {
		i, err := ParseInterval("2025-06-01", "2025-06-03", today)
		assert.NoError(t, err)
		assert.Equal(t, "[2025-06-01, 2025-06-03]", i.String())
	})

	t.Run("Starting today is allowed", func(t *testing.T) {
		_, err := ParseInterval("2025-05-20", "2025-05-20", today)
		assert.NoError(t, err)
	})

	t.Run("End before start", func(t *testing.T) {
		_, err := ParseInterval("2025-06-03", "2025-06-01", today)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.Contains(t, err.Error(), "before start date")
	})

	t.Run("In the past", func(t *testing.T) {
		_, err := ParseInterval("2025-05-19", "2025-06-01", today)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.Contains(t, err.Error(), "in the past")
	})

	t.Run("Longest allowed span", func(t *testing.T) {
		_, err := ParseInterval("2025-06-01", "2026-05-31", today)
		assert.NoError(t, err)
	})

	t.Run("Span over the limit", func(t *testing.T) {
		for _, end := range []string{"2026-06-01", "2099-12-31", "9999-12-31"} {
			_, err := ParseInterval("2025-06-01", end, today)
			assert.ErrorIs(t, err, domain.ErrValidation, end)
		}
	})
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     [2]string
		expected bool
	}{
		{"disjoint", [2]string{"2025-06-01", "2025-06-02"}, [2]string{"2025-06-04", "2025-06-05"}, false},
		{"adjacent days", [2]string{"2025-06-01", "2025-06-02"}, [2]string{"2025-06-03", "2025-06-05"}, false},
		{"shared boundary day", [2]string{"2025-06-01", "2025-06-03"}, [2]string{"2025-06-03", "2025-06-05"}, true},
		{"partial", [2]string{"2025-06-01", "2025-06-05"}, [2]string{"2025-06-03", "2025-06-07"}, true},
		{"contained", [2]string{"2025-06-01", "2025-06-10"}, [2]string{"2025-06-03", "2025-06-04"}, true},
		{"same single day", [2]string{"2025-06-01", "2025-06-01"}, [2]string{"2025-06-01", "2025-06-01"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustInterval(t, tt.a[0], tt.a[1])
			b := mustInterval(t, tt.b[0], tt.b[1])
			assert.Equal(t, tt.expected, Overlaps(a, b))
			assert.Equal(t, tt.expected, Overlaps(b, a))
		})
	}
}

func TestFindConflict(t *testing.T) {
	committed := []domain.RentalRequest{
		{ID: 1, Status: domain.RentalStatusConfirmed, Interval: mustInterval(t, "2025-06-01", "2025-06-05")},
		{ID: 2, Status: domain.RentalStatusCompleted, Interval: mustInterval(t, "2025-07-01", "2025-07-02")},
		{ID: 3, Status: domain.RentalStatusPending, Interval: mustInterval(t, "2025-08-01", "2025-08-02")},
	}

	t.Run("Overlaps confirmed", func(t *testing.T) {
		c := FindConflict(mustInterval(t, "2025-06-05", "2025-06-06"), committed, 9)
		if assert.NotNil(t, c) {
			assert.Equal(t, int32(1), c.ID)
		}
	})

	t.Run("Overlaps completed", func(t *testing.T) {
		c := FindConflict(mustInterval(t, "2025-06-30", "2025-07-01"), committed, 9)
		if assert.NotNil(t, c) {
			assert.Equal(t, int32(2), c.ID)
		}
	})

	t.Run("Pending requests never conflict", func(t *testing.T) {
		assert.Nil(t, FindConflict(mustInterval(t, "2025-08-01", "2025-08-01"), committed, 9))
	})

	t.Run("Ignores itself", func(t *testing.T) {
		assert.Nil(t, FindConflict(mustInterval(t, "2025-06-01", "2025-06-05"), committed, 1))
	})
}

func TestNormalizeMeeting(t *testing.T) {
	m, err := NormalizeMeeting(&domain.MeetingDetails{Location: "  Main St  ", Date: "2025-06-01", Time: "09:30"})
	require.NoError(t, err)
	assert.Equal(t, "Main St", m.Location)

	m, err = NormalizeMeeting(&domain.MeetingDetails{Location: "x", Date: "2025-06-01", Time: "09:30",
		Notes: strings.Repeat("é", domain.MaxTextLength)})
	require.NoError(t, err)
	assert.Len(t, []rune(m.Notes), domain.MaxTextLength)

	m, err = NormalizeMeeting(nil)
	assert.NoError(t, err)
	assert.Nil(t, m)

	for _, bad := range []domain.MeetingDetails{
		{Location: "", Date: "2025-06-01", Time: "09:30"},
		{Location: "x", Date: "06/01/2025", Time: "09:30"},
		{Location: "x", Date: "2025-06-01", Time: "9.30am"},
		{Location: "x", Date: "2025-06-01", Time: "09:30", Notes: strings.Repeat("é", domain.MaxTextLength+1)},
	} {
		_, err := NormalizeMeeting(&bad)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}
