package grpc

import (
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/service"
)

func MapDomainRentalToWire(rt *domain.RentalRequest) *Rental {
	if rt == nil {
		return nil
	}
	return &Rental{
		ID:              rt.ID,
		ItemID:          rt.ItemID,
		RenterID:        rt.RenterID,
		OwnerID:         rt.OwnerID,
		StartDate:       rt.Interval.StartDate.Format(domain.DateLayout),
		EndDate:         rt.Interval.EndDate.Format(domain.DateLayout),
		Meeting:         mapDomainMeetingToWire(rt.Meeting),
		PaymentMethod:   string(rt.PaymentMethod),
		Status:          string(rt.Status),
		DailyRateCents:  rt.DailyRateCents,
		TotalPriceCents: rt.TotalPriceCents,
		DepositCents:    rt.DepositCents,
		LastModifiedBy:  rt.LastModifiedBy,
		CompletedBy:     rt.CompletedBy,
		Version:         rt.Version,
		CreatedAt:       rt.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       rt.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func MapDomainThreadEntryToWire(rt *domain.RentalRequest, e *domain.ThreadEntry) *ThreadEntry {
	out := &ThreadEntry{
		ID:         e.ID,
		Kind:       string(e.Kind),
		AuthorID:   e.AuthorID,
		AuthorRole: rt.Role(e.AuthorID),
		Body:       e.Body,
		Meeting:    mapDomainMeetingToWire(e.Meeting),
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.Interval != nil {
		out.StartDate = e.Interval.StartDate.Format(domain.DateLayout)
		out.EndDate = e.Interval.EndDate.Format(domain.DateLayout)
	}
	return out
}

func mapRentalDetailToWire(d *service.RentalDetail) *RentalResponse {
	resp := &RentalResponse{
		Rental: MapDomainRentalToWire(d.Rental),
		Thread: make([]*ThreadEntry, len(d.Thread)),
	}
	for i := range d.Thread {
		resp.Thread[i] = MapDomainThreadEntryToWire(d.Rental, &d.Thread[i])
	}
	return resp
}

func mapDomainMeetingToWire(m *domain.MeetingDetails) *Meeting {
	if m == nil {
		return nil
	}
	return &Meeting{Location: m.Location, Date: m.Date, Time: m.Time, Notes: m.Notes}
}

func mapWireMeetingToDomain(m *Meeting) *domain.MeetingDetails {
	if m == nil {
		return nil
	}
	return &domain.MeetingDetails{Location: m.Location, Date: m.Date, Time: m.Time, Notes: m.Notes}
}

func mapDomainNotificationToWire(n *domain.Notification) *Notification {
	return &Notification{
		ID:         n.ID,
		RentalID:   n.RentalID,
		Title:      n.Title,
		Message:    n.Message,
		IsRead:     n.IsRead,
		Attributes: n.Attributes,
		CreatedOn:  n.CreatedOn.UTC().Format(time.RFC3339),
	}
}

func mapDomainReviewToWire(rv *domain.Review) *Review {
	return &Review{
		ID:           rv.ID,
		RentalID:     rv.RentalID,
		ReviewerID:   rv.ReviewerID,
		RevieweeID:   rv.RevieweeID,
		RevieweeRole: string(rv.RevieweeRole),
		Rating:       rv.Rating,
		Text:         rv.Text,
		CreatedAt:    rv.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapDomainReviewsToWire(reviews []domain.Review) []*Review {
	out := make([]*Review, len(reviews))
	for i := range reviews {
		out[i] = mapDomainReviewToWire(&reviews[i])
	}
	return out
}
