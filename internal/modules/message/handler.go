package message

import (
	"errors"
	"net/http"
	"strconv"

	"reservehub/internal/middleware"
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
	messages := protected.Group("/messages")
	{
		messages.GET("", h.ListMine)
		messages.POST("", h.Send)
		messages.GET("/unread-count", h.UnreadCount)
	}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	messages := admin.Group("/messages")
	{
		messages.GET("", h.AdminList)
		messages.POST("", h.AdminSend)
		messages.POST("/read", h.SetRead)
		messages.POST("/:id/reply", h.Reply)
	}
}

func (h *Handler) ListMine(c *gin.Context) {
	msgs, err := h.service.ListForUser(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.fail(c, err, "Failed to list messages")
		return
	}
	// listing marks staff messages read, which changes unread_replies
	middleware.MarkCacheDirty(c)
	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if !bind(c, &req) {
		return
	}
	m, err := h.service.SendFromUser(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.fail(c, err, "Failed to send message")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.fail(c, err, "Failed to count messages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": n})
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

	msgs, total, err := h.service.ListFromUsers(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err, "Failed to list messages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs, "total": total})
}

func (h *Handler) AdminSend(c *gin.Context) {
	var req AdminSendRequest
	if !bind(c, &req) {
		return
	}
	m, err := h.service.SendAdminMessage(c.Request.Context(), req.UserID, req.Subject, req.Content, req.ReservationIDs)
	if err != nil {
		h.fail(c, err, "Failed to send message")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) Reply(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid message id")
		return
	}
	var req ReplyRequest
	if !bind(c, &req) {
		return
	}
	m, err := h.service.Reply(c.Request.Context(), id, req.Response)
	if err != nil {
		h.fail(c, err, "Failed to reply")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": m})
}

func (h *Handler) SetRead(c *gin.Context) {
	var req ReadRequest
	if !bind(c, &req) {
		return
	}
	n, err := h.service.SetRead(c.Request.Context(), req.IDs, *req.IsRead)
	if err != nil {
		h.fail(c, err, "Failed to update messages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForeignReservation):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrEmptyResponse):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
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
