package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"roombook/internal/pkg/response"
	"roombook/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rooms", h.ListRooms)
	rg.GET("/rooms/:id", h.GetRoom)
	rg.POST("/rooms", h.CreateRoom)

	rg.POST("/organizations", h.CreateOrganization)
	rg.GET("/organizations/:id", h.GetOrganization)
	rg.GET("/organizations/:id/compensations", h.ListCompensations)
	rg.POST("/organizations/:id/compensations", h.CreateCompensation)
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	room, err := h.service.CreateRoom(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"room": room})
}

func (h *Handler) GetOrganization(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	org, err := h.service.GetOrganization(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"organization": org})
}

func (h *Handler) CreateOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	org, err := h.service.CreateOrganization(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"organization": org})
}

func (h *Handler) ListCompensations(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	comps, err := h.service.ListCompensations(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"compensations": comps})
}

func (h *Handler) CreateCompensation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CreateCompensationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	comp, err := h.service.CreateCompensation(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"compensation": comp})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid id")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	var fields validator.FieldErrors
	switch {
	case errors.As(err, &fields):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, fields.Error(),
			gin.H{"fields": fields})
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Resource not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "Not allowed")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "An internal error occurred")
	}
}
