package api

import (
	"encoding/json"
	"net/http"

	"loungebook/internal/ledger"
	"loungebook/internal/metrics"
)

// CreateBookingRequest is the request body for POST /bookings.
type CreateBookingRequest struct {
	UserEmail string `json:"userEmail"`
	Date      string `json:"date"`     // Format: YYYY-MM-DD
	TimeSlot  string `json:"timeSlot"` // e.g. "09:00-10:00"
	GuestName string `json:"guestName,omitempty"`
	Purpose   string `json:"purpose,omitempty"`
}

// UpdateBookingRequest is the request body for PUT /bookings. Pointer
// fields distinguish "absent" from "set to empty".
type UpdateBookingRequest struct {
	ID        string  `json:"id"`
	Status    *string `json:"status,omitempty"`
	GuestName *string `json:"guestName,omitempty"`
	Purpose   *string `json:"purpose,omitempty"`
}

// handleBookings dispatches on the HTTP verb: list, create, update and
// cancel all live on the /bookings route.
func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListBookings(w, r)
	case http.MethodPost:
		s.handleCreateBooking(w, r)
	case http.MethodPut:
		s.handleUpdateBooking(w, r)
	case http.MethodDelete:
		s.handleCancelBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleListBookings returns bookings, optionally narrowed by exact
// email and/or date match.
// GET /bookings?email=&date=
func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_list")

	filter := ledger.Filter{
		Email: r.URL.Query().Get("email"),
		Date:  r.URL.Query().Get("date"),
	}
	bookings, err := s.ledger.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"bookings": bookings,
	})
}

// handleCreateBooking creates a confirmed booking for a free slot.
// POST /bookings
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_create")

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.ledger.Create(r.Context(), req.UserEmail, req.Date, req.TimeSlot, req.GuestName, req.Purpose)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// handleUpdateBooking applies a partial-field update.
// PUT /bookings
func (s *Server) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_update")

	var req UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Booking ID is required")
		return
	}

	_, err := s.ledger.ApplyUpdate(r.Context(), req.ID, ledger.Update{
		Status:    req.Status,
		GuestName: req.GuestName,
		Purpose:   req.Purpose,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Booking updated successfully",
	})
}

// handleCancelBooking soft-cancels a booking; the record stays in the
// collection with status cancelled.
// DELETE /bookings?id=
func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_cancel")

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Booking ID is required")
		return
	}

	if _, err := s.ledger.Cancel(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Booking cancelled successfully",
	})
}
