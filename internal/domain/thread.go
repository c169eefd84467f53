package domain

import "time"

// SystemAuthorID marks thread entries written by the engine itself.
const SystemAuthorID int32 = 0

// MaxTextLength is the rune limit for messages, reasons and meeting notes.
const MaxTextLength = 2000

type ThreadEntryKind string

const (
	ThreadEntryMessage              ThreadEntryKind = "message"
	ThreadEntryIntervalProposed     ThreadEntryKind = "interval-proposed"
	ThreadEntryIntervalModified     ThreadEntryKind = "interval-modified"
	ThreadEntryMeetingProposed      ThreadEntryKind = "meeting-proposed"
	ThreadEntryModificationAccepted ThreadEntryKind = "modification-accepted"
	ThreadEntryApproved             ThreadEntryKind = "approved"
	ThreadEntryDeclined             ThreadEntryKind = "declined"
	ThreadEntryCompleted            ThreadEntryKind = "completed"
	ThreadEntryCancelled            ThreadEntryKind = "cancelled"
)

// ThreadEntry is one immutable record in a rental's negotiation history.
type ThreadEntry struct {
	ID        int64           `json:"id"`
	RentalID  int32           `json:"rental_id"`
	Kind      ThreadEntryKind `json:"kind"`
	AuthorID  int32           `json:"author_id"`
	Body      string          `json:"body,omitempty"`
	Interval  *RentalInterval `json:"interval,omitempty"`
	Meeting   *MeetingDetails `json:"meeting,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (e *ThreadEntry) IsSystem() bool {
	return e.AuthorID == SystemAuthorID
}
