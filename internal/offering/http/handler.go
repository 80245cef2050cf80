package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitslot/trainer-booking-backend/internal/auth"
	"github.com/fitslot/trainer-booking-backend/internal/offering"
	"github.com/fitslot/trainer-booking-backend/internal/pkg/request"
	"github.com/fitslot/trainer-booking-backend/internal/pkg/response"
)

type Handler struct {
	service offering.Service
}

func NewHandler(service offering.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body OfferingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	schedule, err := body.CanonicalSchedule()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := offering.CreateRequest{
		ProviderID:  auth.GetUserID(c),
		Title:       body.Title,
		Description: body.Description,
		Price:       body.Price,
		Category:    body.Category,
		Duration:    body.Duration,
		InPerson:    *body.InPerson,
		Schedule:    schedule,
	}

	off, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewOfferingResponse(off))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body OfferingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	schedule, err := body.CanonicalSchedule()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := offering.UpdateRequest{
		Title:       body.Title,
		Description: body.Description,
		Price:       body.Price,
		Category:    body.Category,
		Duration:    body.Duration,
		InPerson:    *body.InPerson,
		Schedule:    schedule,
	}

	off, err := h.service.Update(c.Request.Context(), uri.ID, auth.GetUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewOfferingResponse(off))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Get returns one offering. Anonymous and consumer requests bump the
// view counter; provider requests do not.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	off, err := h.service.GetByID(c.Request.Context(), uri.ID, auth.GetUserRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewOfferingResponse(off))
}

// ListMine returns all offerings of the authenticated provider,
// published or not.
func (h *Handler) ListMine(c *gin.Context) {
	offerings, err := h.service.ListByProvider(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OfferingResponse, len(offerings))
	for i, o := range offerings {
		items[i] = NewOfferingResponse(o)
	}
	c.JSON(http.StatusOK, gin.H{"offerings": items})
}

// ListByProvider returns the published offerings of one provider as
// public previews.
func (h *Handler) ListByProvider(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	offerings, err := h.service.ListPublishedByProvider(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OfferingPreview, len(offerings))
	for i, o := range offerings {
		items[i] = NewOfferingPreview(o)
	}
	c.JSON(http.StatusOK, gin.H{"offerings": items})
}

func (h *Handler) TogglePublish(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	off, err := h.service.TogglePublish(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": off.ID, "published": off.Published})
}

// Availability returns the free slot starts of an offering for one
// calendar date (?date=YYYY-MM-DD).
func (h *Handler) Availability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	slots, err := h.service.Availability(c.Request.Context(), uri.ID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{Date: date, Slots: slots})
}
