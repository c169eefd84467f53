package grpc

import (
	"context"

	"github.com/go-playground/validator/v10"

	"rentalhub-backend/internal/service"
)

type NotificationHandler struct {
	noteSvc  service.NotificationService
	validate *validator.Validate
}

func NewNotificationHandler(noteSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc, validate: validator.New()}
}

func (h *NotificationHandler) GetNotifications(ctx context.Context, req *GetNotificationsRequest) (*GetNotificationsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}

	notes, count, err := h.noteSvc.GetNotifications(ctx, userID, req.Page, req.PageSize)
	if err != nil {
		return nil, toStatus(err)
	}
	out := make([]*Notification, len(notes))
	for i := range notes {
		out[i] = mapDomainNotificationToWire(&notes[i])
	}
	return &GetNotificationsResponse{
		Notifications: out,
		TotalCount:    count,
	}, nil
}

func (h *NotificationHandler) MarkNotificationRead(ctx context.Context, req *MarkNotificationReadRequest) (*MarkNotificationReadResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	if err := h.noteSvc.MarkAsRead(ctx, userID, req.NotificationID); err != nil {
		return nil, toStatus(err)
	}
	return &MarkNotificationReadResponse{Success: true}, nil
}
