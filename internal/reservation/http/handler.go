package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitslot/trainer-booking-backend/internal/auth"
	"github.com/fitslot/trainer-booking-backend/internal/pkg/request"
	"github.com/fitslot/trainer-booking-backend/internal/pkg/response"
	"github.com/fitslot/trainer-booking-backend/internal/reservation"
)

type Handler struct {
	service reservation.Service
}

func NewHandler(service reservation.Service) *Handler {
	return &Handler{service: service}
}

// actor builds the reservation actor from the authenticated request.
// The system role is never reachable through HTTP.
func actor(c *gin.Context) reservation.Actor {
	return reservation.Actor{
		ID:   auth.GetUserID(c),
		Role: reservation.Role(auth.GetUserRole(c)),
	}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateReservationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if _, err := uuid.Parse(body.OfferingID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offering_id"})
		return
	}

	r, err := h.service.Create(c.Request.Context(), reservation.CreateRequest{
		ConsumerID: auth.GetUserID(c),
		OfferingID: body.OfferingID,
		StartTime:  body.StartTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReservationResponse(r))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), uri.ID, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(r))
}

// List returns the reservations visible to the caller: their own for
// consumers, those on their offerings for providers.
func (h *Handler) List(c *gin.Context) {
	var params request.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	var (
		reservations []*reservation.Reservation
		err          error
	)
	switch auth.GetUserRole(c) {
	case string(reservation.RoleProvider):
		reservations, err = h.service.ListForProvider(c.Request.Context(), auth.GetUserID(c))
	default:
		reservations, err = h.service.ListForConsumer(c.Request.Context(), auth.GetUserID(c))
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	total := len(reservations)
	from := min((params.Page-1)*params.PageSize, total)
	to := min(from+params.PageSize, total)

	items := make([]ReservationResponse, 0, to-from)
	for _, r := range reservations[from:to] {
		items = append(items, NewReservationResponse(r))
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, params.Page, params.PageSize, total))
}

// Transition applies a lifecycle action to one reservation.
func (h *Handler) Transition(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body TransitionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	action, err := reservation.ParseAction(body.Action)
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := h.service.ApplyTransition(c.Request.Context(), uri.ID, actor(c), action, body.StartTime)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(r))
}
