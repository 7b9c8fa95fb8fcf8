package admin

import (
	"errors"
	"net/http"
	"strconv"

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

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// users
	admin.GET("/users", h.GetUsers)
	admin.PATCH("/users/:id/active", h.SetActive)
	admin.POST("/users/:id/balance-adjustments", h.AdjustBalance)
}

func (h *Handler) GetUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		response.Internal(c, "Failed to list users")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users, "total": total, "limit": limit, "offset": offset})
}

func (h *Handler) SetActive(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "is_active is required")
		return
	}

	user, err := h.service.SetActive(c.Request.Context(), c.GetInt64("user_id"), id, *req.IsActive)
	if err != nil {
		h.fail(c, err, "Failed to update user")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) AdjustBalance(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(c, details)
		return
	}

	txn, err := h.service.AdjustBalance(c.Request.Context(), c.GetInt64("user_id"), id, req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.fail(c, err, "Failed to adjust balance")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"transaction": txn})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, ErrZeroAmount):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrSelfDeactivate):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		response.Error(c, http.StatusConflict, "INSUFFICIENT_BALANCE", "Adjustment would make the balance negative")
	default:
		response.Internal(c, fallback)
	}
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id")
		return 0, false
	}
	return id, true
}
