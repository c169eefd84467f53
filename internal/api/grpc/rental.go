package grpc

import (
	"context"

	"github.com/go-playground/validator/v10"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
	validate  *validator.Validate
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc, validate: validator.New()}
}

// caller resolves the authenticated user and validates the request payload.
func (h *RentalHandler) caller(ctx context.Context, req any) (int32, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if err := h.validate.Struct(req); err != nil {
		return 0, toStatus(err)
	}
	return userID, nil
}

func detailResponse(d *service.RentalDetail, err error) (*RentalResponse, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return mapRentalDetailToWire(d), nil
}

func (h *RentalHandler) SubmitRentalRequest(ctx context.Context, req *SubmitRentalRequestRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.Submit(ctx, userID, service.SubmitInput{
		ItemID:        req.ItemID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
	}))
}

func modificationInput(req *ModificationRequest) service.ModificationInput {
	return service.ModificationInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Meeting:   mapWireMeetingToDomain(req.Meeting),
		Note:      req.Note,
	}
}

func (h *RentalHandler) ProposeModification(ctx context.Context, req *ModificationRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.ProposeModification(ctx, userID, req.RentalID, modificationInput(req)))
}

func (h *RentalHandler) AcceptModification(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.AcceptModification(ctx, userID, req.RentalID))
}

func (h *RentalHandler) CounterPropose(ctx context.Context, req *ModificationRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.CounterPropose(ctx, userID, req.RentalID, modificationInput(req)))
}

func (h *RentalHandler) ApproveRentalRequest(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.Approve(ctx, userID, req.RentalID))
}

func (h *RentalHandler) DeclineRentalRequest(ctx context.Context, req *ReasonRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.Decline(ctx, userID, req.RentalID, req.Reason))
}

func (h *RentalHandler) CancelRental(ctx context.Context, req *ReasonRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.Cancel(ctx, userID, req.RentalID, req.Reason))
}

func (h *RentalHandler) CompleteRental(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.Complete(ctx, userID, req.RentalID))
}

func (h *RentalHandler) PostMessage(ctx context.Context, req *PostMessageRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.PostMessage(ctx, userID, req.RentalID, req.Text))
}

func (h *RentalHandler) GetRental(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	return detailResponse(h.rentalSvc.GetRental(ctx, userID, req.RentalID))
}

func (h *RentalHandler) ListIncomingRequests(ctx context.Context, req *ListRentalsRequest) (*ListRentalsResponse, error) {
	return h.list(ctx, req, h.rentalSvc.ListIncoming)
}

func (h *RentalHandler) ListOutgoingRequests(ctx context.Context, req *ListRentalsRequest) (*ListRentalsResponse, error) {
	return h.list(ctx, req, h.rentalSvc.ListOutgoing)
}

type listFunc func(ctx context.Context, userID int32, statuses []domain.RentalStatus) ([]domain.RentalRequest, error)

func (h *RentalHandler) list(ctx context.Context, req *ListRentalsRequest, fn listFunc) (*ListRentalsResponse, error) {
	userID, err := h.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	statuses := make([]domain.RentalStatus, 0, len(req.Statuses))
	for _, s := range req.Statuses {
		st, err := domain.ParseRentalStatus(s)
		if err != nil {
			return nil, toStatus(err)
		}
		statuses = append(statuses, st)
	}
	rentals, err := fn(ctx, userID, statuses)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &ListRentalsResponse{Rentals: make([]*Rental, len(rentals))}
	for i := range rentals {
		resp.Rentals[i] = MapDomainRentalToWire(&rentals[i])
	}
	return resp, nil
}
