package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/models"
	"github.com/biblio-app/biblio/internal/services"
)

// ReservationHandler handles the reservation lifecycle HTTP requests
type ReservationHandler struct {
	reservationService *services.ReservationService
	sweeper            *services.Sweeper
}

func NewReservationHandler(reservationService *services.ReservationService, sweeper *services.Sweeper) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService, sweeper: sweeper}
}

// CreateReservation places a user in a book's hold queue
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// members reserve for themselves; only staff may pass another user_id
	actorID := c.GetInt64("user_id")
	if req.UserID == 0 {
		req.UserID = actorID
	}
	if req.UserID != actorID && !isStaff(c) {
		respondForbidden(c)
		return
	}

	reservation, err := h.reservationService.CreateReservation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, reservation, "reservation created successfully")
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := h.reservationService.GetReservation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if reservation.UserID != c.GetInt64("user_id") && !isStaff(c) {
		respondForbidden(c)
		return
	}
	respondSuccess(c, http.StatusOK, reservation, "")
}

// CancelReservation closes an active reservation and promotes the next one
// when the cancelled hold was already notified. Members may only cancel
// their own holds.
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if !isStaff(c) {
		current, err := h.reservationService.GetReservation(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if current.UserID != c.GetInt64("user_id") {
			respondForbidden(c)
			return
		}
	}

	reservation, err := h.reservationService.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, reservation, "reservation cancelled")
}

// FulfillReservation closes a notified reservation after the hold was
// picked up
func (h *ReservationHandler) FulfillReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := h.reservationService.Fulfill(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, reservation, "reservation fulfilled")
}

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	reservations, err := h.reservationService.ListReservations(c.Request.Context(), int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, reservations, "")
}

// ListBookQueue returns the active hold queue of a book in position order
func (h *ReservationHandler) ListBookQueue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservations, err := h.reservationService.ListBookQueue(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, reservations, "")
}

func (h *ReservationHandler) ListUserReservations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	reservations, err := h.reservationService.ListUserReservations(c.Request.Context(), id, int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, reservations, "")
}

// ExpireReservations runs the stale hold sweep on demand
func (h *ReservationHandler) ExpireReservations(c *gin.Context) {
	expired, err := h.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"expired": expired}, "expired reservations processed")
}
