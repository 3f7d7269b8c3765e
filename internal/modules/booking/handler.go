package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"roombook/internal/domain"
	"roombook/internal/pkg/response"
	"roombook/internal/recurrence"
	"roombook/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.PATCH("/bookings/:id/confirm", h.ConfirmBooking)
	rg.PATCH("/bookings/:id/cancel", h.CancelBooking)

	rg.GET("/rooms/:id/busy", h.GetBusySlots)

	rg.POST("/recurring-bookings/preview", h.PreviewRecurring)
	rg.POST("/recurring-bookings", h.CreateRecurring)
	rg.PATCH("/recurring-bookings/:id/confirm", h.ConfirmRecurring)
	rg.PATCH("/recurring-bookings/:id/cancel", h.CancelRecurring)
	rg.DELETE("/recurring-bookings/:id", h.DeleteRecurring)
	rg.GET("/recurring-bookings/:id/total", h.RuleTotalAmount)

	rg.GET("/organizations/:id/bookings", h.ListOrganizationBookings)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": toDetails(*b)})
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, err := h.service.ConfirmBooking(c.Request.Context(), id, actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": toDetails(*b)})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Cancellation reason is required")
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), id, actorID(c), req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": toDetails(*b)})
}

func (h *Handler) GetBusySlots(c *gin.Context) {
	roomID, ok := pathID(c)
	if !ok {
		return
	}

	from, err1 := time.Parse(time.RFC3339, c.Query("from"))
	to, err2 := time.Parse(time.RFC3339, c.Query("to"))
	if err1 != nil || err2 != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "from and to must be RFC3339 timestamps")
		return
	}

	slots, err := h.service.GetBusySlots(c.Request.Context(), roomID, from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"busy_slots": slots})
}

func (h *Handler) PreviewRecurring(c *gin.Context) {
	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	preview, err := h.service.PreviewRecurring(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"preview": preview})
}

func (h *Handler) CreateRecurring(c *gin.Context) {
	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	rule, drafts, err := h.service.CreateRecurring(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	details := make([]BookingDetails, 0, len(drafts))
	for _, d := range drafts {
		details = append(details, toDetails(d))
	}

	response.Success(c, http.StatusCreated, gin.H{
		"rule":     rule,
		"bookings": details,
		"bookable": Bookable(drafts),
	})
}

func (h *Handler) ConfirmRecurring(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rule, err := h.service.ConfirmRecurring(c.Request.Context(), id, actorID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rule": rule})
}

func (h *Handler) CancelRecurring(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Cancellation reason is required")
		return
	}

	rule, err := h.service.CancelRecurring(c.Request.Context(), id, actorID(c), req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rule": rule})
}

func (h *Handler) DeleteRecurring(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	decouple := c.Query("decouple") == "true"
	if err := h.service.DeleteRecurring(c.Request.Context(), id, actorID(c), decouple); err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "Deleting a rule requires decouple=true")
			return
		}
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) RuleTotalAmount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	total, err := h.service.RuleTotalAmount(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rule_id": id, "total_amount": total})
}

func (h *Handler) ListOrganizationBookings(c *gin.Context) {
	orgID, ok := pathID(c)
	if !ok {
		return
	}

	f, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}

	rows, err := h.service.ListOrganizationBookings(c.Request.Context(), orgID, actorID(c), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

// filterFromQuery maps query params onto the typed filter scopes.
func filterFromQuery(c *gin.Context) (repository.BookingFilter, error) {
	var f repository.BookingFilter

	if v := c.Query("status"); v != "" {
		st := domain.BookingStatus(v)
		f.Status = &st
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("from must be an RFC3339 timestamp")
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("to must be an RFC3339 timestamp")
		}
		f.To = &t
	}
	if v := c.Query("recurring"); v != "" {
		recurring := v == "true"
		f.Recurring = &recurring
	}
	return f, nil
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid id")
		return 0, false
	}
	return id, true
}

// actorID is set by middleware from the authenticated principal; the auth
// mechanism itself lives outside this service.
func actorID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

func writeServiceError(c *gin.Context, err error) {
	var verr *recurrence.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, verr.Error(),
			gin.H{"field": verr.Field})
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid booking request")
	case errors.Is(err, ErrNotAvailable), errors.Is(err, ErrOverbooking):
		response.Error(c, http.StatusConflict, response.CodeBookingConflict, "Room is not available for the selected time")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, response.CodeInvalidTransition, "Status transition is not allowed")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "Not allowed")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Resource not found")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Unexpected error")
	}
}
