package reservation

import (
	"errors"
	"net/http"
	"strconv"

	"reservehub/internal/domain"
	"reservehub/internal/modules/ledger"
	"reservehub/internal/pkg/response"
	"reservehub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	reservations := protected.Group("/reservations")
	{
		reservations.POST("", h.Create)
		reservations.GET("", h.ListMine)
		reservations.POST("/:id/cancel", h.Cancel)
		reservations.POST("/:id/change-date", h.ChangeDate)
	}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	reservations := admin.Group("/reservations")
	{
		reservations.GET("", h.AdminList)
		reservations.POST("/confirm", h.bulk(domain.EventConfirm))
		reservations.POST("/cancel", h.bulk(domain.EventCancel))
		reservations.POST("/approve-cancellation", h.bulk(domain.EventApproveCancellation))
		reservations.POST("/approve-modification", h.bulk(domain.EventApproveModification))
		reservations.POST("/reject-modification", h.bulk(domain.EventRejectModification))
		reservations.POST("/:id/message", h.SendMessage)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !bind(c, &req) {
		return
	}

	res, replayed, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.fail(c, err, "Failed to create reservation")
		return
	}

	status := http.StatusCreated
	if replayed {
		c.Header("Idempotent-Replayed", "true")
		status = http.StatusOK
	}
	response.Success(c, status, gin.H{"reservation": res})
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.fail(c, err, "Failed to list reservations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.service.RequestCancellation(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.fail(c, err, "Failed to request cancellation")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": res, "message": "Cancellation requested"})
}

func (h *Handler) ChangeDate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ChangeDateRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.service.RequestDateChange(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		h.fail(c, err, "Failed to request date change")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": res, "message": "Date change requested"})
}

func (h *Handler) AdminList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	list, total, err := h.service.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		h.fail(c, err, "Failed to list reservations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list, "total": total})
}

func (h *Handler) bulk(ev domain.ReservationEvent) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkRequest
		if !bind(c, &req) {
			return
		}
		results := h.service.Bulk(c.Request.Context(), ev, req.IDs)

		succeeded := 0
		for _, r := range results {
			if r.OK {
				succeeded++
			}
		}
		response.Success(c, http.StatusOK, gin.H{"results": results, "succeeded": succeeded})
	}
}

func (h *Handler) SendMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req MessageRequest
	if !bind(c, &req) {
		return
	}
	msg, err := h.service.SendMessage(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "Failed to send message")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrOptionMismatch):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInvalidDate):
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", "Invalid date format")
	case errors.Is(err, ErrDateInPast):
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", "Date cannot be in the past")
	case errors.Is(err, ErrInvalidRange):
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", "End date must be after start date")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown reservation status")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		response.Error(c, http.StatusConflict, "INSUFFICIENT_BALANCE", "Not enough points for this reservation")
	case errors.Is(err, ErrAlreadyPendingCancellation):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Cancellation already requested")
	case errors.Is(err, domain.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Action not allowed in the current status")
	default:
		response.Internal(c, fallback)
	}
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(c, details)
		return false
	}
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return 0, false
	}
	return id, true
}
