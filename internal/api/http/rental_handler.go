package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/security"
	"rentalhub-backend/internal/service"
)

// ThreadEntryView is a thread entry ready for display.
type ThreadEntryView struct {
	ID         int64                  `json:"id"`
	Kind       string                 `json:"kind"`
	AuthorID   int32                  `json:"author_id"`
	AuthorName string                 `json:"author_name"`
	AuthorRole string                 `json:"author_role"`
	Text       string                 `json:"text,omitempty"`
	Interval   *domain.RentalInterval `json:"interval,omitempty"`
	Meeting    *domain.MeetingDetails `json:"meeting,omitempty"`
	Timestamp  string                 `json:"timestamp"`
}

type RentalView struct {
	Rental *domain.RentalRequest `json:"rental"`
	Thread []ThreadEntryView     `json:"thread"`
}

// RentalHandler serves read-only rental views for rendering.
type RentalHandler struct {
	rentalSvc service.RentalService
	userRepo  repository.UserRepository
}

func NewRentalHandler(rentalSvc service.RentalService, userRepo repository.UserRepository) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc, userRepo: userRepo}
}

// NewRouter builds the HTTP surface: a public health check and bearer-protected
// rental views.
func NewRouter(rentalSvc service.RentalService, userRepo repository.UserRepository, tm security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	router.HandleFunc("/healthz", HandleHealth).Methods("GET")
	RegisterRentalRoutes(router, NewRentalHandler(rentalSvc, userRepo), tm)
	return router
}

// RegisterRentalRoutes registers the rental read endpoints
func RegisterRentalRoutes(router *mux.Router, handler *RentalHandler, tm security.TokenManager) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tm))
	api.HandleFunc("/rentals/{id:[0-9]+}", handler.HandleGetRental).Methods("GET")
	api.HandleFunc("/rentals/{id:[0-9]+}/thread", handler.HandleGetThread).Methods("GET")
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RentalHandler) HandleGetRental(w http.ResponseWriter, r *http.Request) {
	userID, rentalID, ok := requestIDs(w, r)
	if !ok {
		return
	}
	detail, err := h.rentalSvc.GetRental(r.Context(), userID, rentalID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RentalView{
		Rental: detail.Rental,
		Thread: h.renderThread(r.Context(), detail.Rental, detail.Thread),
	})
}

func (h *RentalHandler) HandleGetThread(w http.ResponseWriter, r *http.Request) {
	userID, rentalID, ok := requestIDs(w, r)
	if !ok {
		return
	}
	detail, err := h.rentalSvc.GetRental(r.Context(), userID, rentalID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.renderThread(r.Context(), detail.Rental, detail.Thread))
}

func (h *RentalHandler) renderThread(ctx context.Context, rt *domain.RentalRequest, entries []domain.ThreadEntry) []ThreadEntryView {
	names := map[int32]string{domain.SystemAuthorID: "RentalHub"}
	views := make([]ThreadEntryView, len(entries))
	for i, e := range entries {
		name, seen := names[e.AuthorID]
		if !seen {
			name = h.authorName(ctx, e.AuthorID)
			names[e.AuthorID] = name
		}
		views[i] = ThreadEntryView{
			ID:         e.ID,
			Kind:       string(e.Kind),
			AuthorID:   e.AuthorID,
			AuthorName: name,
			AuthorRole: rt.Role(e.AuthorID),
			Text:       e.Body,
			Interval:   e.Interval,
			Meeting:    e.Meeting,
			Timestamp:  e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return views
}

func (h *RentalHandler) authorName(ctx context.Context, userID int32) string {
	u, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to resolve thread author", "userID", userID, "error", err)
		return "Unknown user"
	}
	return u.Name
}

func requestIDs(w http.ResponseWriter, r *http.Request) (int32, int32, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return 0, 0, false
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid rental id")
		return 0, 0, false
	}
	return userID, int32(id), true
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Rental view failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
